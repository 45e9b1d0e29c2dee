package middleware

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/authz"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/repository"
	"github.com/noah-isme/thesis-hub-api/internal/service"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
	"github.com/noah-isme/thesis-hub-api/pkg/response"
)

// SemesterContextKey names the query parameter and header clients use to
// scope a request to one semester.
const (
	SemesterQueryParam = "semester_id"
	SemesterHeader     = "X-Semester-ID"
)

// AssignmentSource resolves a principal's active role assignments.
type AssignmentSource interface {
	ListActiveByPrincipal(ctx context.Context, principalID string) ([]models.RoleAssignment, error)
}

// RBAC builds authorization middleware around the pure evaluator. Assignments
// are fetched once per request (cache first, repository on miss) and every
// denial is written to the audit trail.
type RBAC struct {
	assignments AssignmentSource
	cache       *repository.CacheRepository
	audit       *service.AuditService
	metrics     *service.MetricsService
}

// NewRBAC creates the middleware factory.
func NewRBAC(assignments AssignmentSource, cache *repository.CacheRepository, audit *service.AuditService, metrics *service.MetricsService) *RBAC {
	return &RBAC{assignments: assignments, cache: cache, audit: audit, metrics: metrics}
}

// Require returns middleware allowing only callers holding one of the roles
// permitted to perform the action, evaluated against the request's semester
// context.
func (r *RBAC) Require(action authz.Action) gin.HandlerFunc {
	required := authz.RolesFor(action)
	return r.require(string(action), required)
}

// RequireRoles returns middleware with an explicit role set, for routes that
// do not map cleanly onto a single action.
func (r *RBAC) RequireRoles(roles ...models.RoleName) gin.HandlerFunc {
	return r.require("", authz.Roles(roles...))
}

func (r *RBAC) require(action string, required authz.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextPrincipalKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		assignments, err := r.resolveAssignments(c.Request.Context(), claims.PrincipalID)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role assignments"))
			c.Abort()
			return
		}

		semesterID := semesterContext(c)
		decision := authz.Authorize(assignments, required, semesterID)
		if decision.Allowed {
			c.Next()
			return
		}

		r.metrics.RecordAuthDenial(string(decision.Reason))
		r.recordDenial(c, claims.PrincipalID, action, semesterID, decision.Reason)
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, string(decision.Reason)))
		c.Abort()
	}
}

func (r *RBAC) resolveAssignments(ctx context.Context, principalID string) ([]models.RoleAssignment, error) {
	if cached, ok := r.cache.GetRoleAssignments(ctx, principalID); ok {
		r.metrics.RecordCacheOperation(true)
		return cached, nil
	}
	r.metrics.RecordCacheOperation(false)

	assignments, err := r.assignments.ListActiveByPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	r.cache.SetRoleAssignments(ctx, principalID, assignments)
	return assignments, nil
}

func (r *RBAC) recordDenial(c *gin.Context, principalID, action, semesterID string, reason authz.DenyReason) {
	metadata, _ := json.Marshal(map[string]interface{}{
		"path":        c.FullPath(),
		"method":      c.Request.Method,
		"action":      action,
		"semester_id": semesterID,
		"reason":      string(reason),
	})
	r.audit.Record(c.Request.Context(), &models.AuditRecord{
		ActorID:     &principalID,
		Action:      models.AuditActionAccessDenied,
		EntityType:  "route",
		Severity:    models.AuditWarning,
		Description: "authorization denied",
		Metadata:    metadata,
	})
}

// semesterContext extracts the semester scope of a request. The query
// parameter wins; the header is the fallback so mutating endpoints can keep
// semester out of their bodies.
func semesterContext(c *gin.Context) string {
	if v := c.Query(SemesterQueryParam); v != "" {
		return v
	}
	return c.GetHeader(SemesterHeader)
}
