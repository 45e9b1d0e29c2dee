package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/models"
)

const roleAssignmentKeyPrefix = "authz:assignments:"

// CacheRepository caches per-principal role assignment sets in Redis so the
// authorization middleware does not hit Postgres on every request. Cache
// failures degrade to a miss; they never fail the request.
type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheRepository creates a CacheRepository.
func NewCacheRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CacheRepository{client: client, ttl: ttl, logger: logger}
}

// GetRoleAssignments returns the cached assignment set and whether it was
// present.
func (r *CacheRepository) GetRoleAssignments(ctx context.Context, principalID string) ([]models.RoleAssignment, bool) {
	if r == nil || r.client == nil {
		return nil, false
	}
	payload, err := r.client.Get(ctx, roleAssignmentKeyPrefix+principalID).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("role assignment cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var assignments []models.RoleAssignment
	if err := json.Unmarshal(payload, &assignments); err != nil {
		r.logger.Warn("role assignment cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return assignments, true
}

// SetRoleAssignments stores the assignment set with the configured TTL.
func (r *CacheRepository) SetRoleAssignments(ctx context.Context, principalID string, assignments []models.RoleAssignment) {
	if r == nil || r.client == nil {
		return
	}
	payload, err := json.Marshal(assignments)
	if err != nil {
		r.logger.Warn("role assignment cache encode failed", zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, roleAssignmentKeyPrefix+principalID, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("role assignment cache write failed", zap.Error(err))
	}
}

// InvalidatePrincipal drops the cached assignments of one principal. Called
// after role mutations and after any cascade touching the principal.
func (r *CacheRepository) InvalidatePrincipal(ctx context.Context, principalID string) {
	if r == nil || r.client == nil {
		return
	}
	if err := r.client.Del(ctx, roleAssignmentKeyPrefix+principalID).Err(); err != nil {
		r.logger.Warn("role assignment cache invalidation failed", zap.Error(err))
	}
}

// FlushRoleAssignments drops every cached assignment set. Semester cascades
// flip role_assignments rows for many principals at once, so a targeted
// invalidation is not possible there.
func (r *CacheRepository) FlushRoleAssignments(ctx context.Context) {
	if r == nil || r.client == nil {
		return
	}
	iter := r.client.Scan(ctx, 0, roleAssignmentKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn("role assignment cache flush failed", zap.Error(err))
			return
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("role assignment cache scan failed", zap.Error(err))
	}
}

// Ping verifies the cache connection for readiness checks.
func (r *CacheRepository) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("cache not configured")
	}
	return r.client.Ping(ctx).Err()
}
