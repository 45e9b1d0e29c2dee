package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/authz"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/repository"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

type roleAssignmentRepository interface {
	ListActiveByPrincipal(ctx context.Context, principalID string) ([]models.RoleAssignment, error)
	FindByID(ctx context.Context, id string) (*models.RoleAssignment, error)
	Create(ctx context.Context, a *models.RoleAssignment) error
	Deactivate(ctx context.Context, id string) error
}

type semesterLookup interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

// GrantRoleRequest represents payload for granting a role to a principal.
type GrantRoleRequest struct {
	PrincipalID string `json:"principal_id" validate:"required,uuid"`
	Role        string `json:"role" validate:"required"`
	SemesterID  string `json:"semester_id" validate:"omitempty,uuid"`
}

// RoleService manages role assignments. Grants enforce scope rules: a
// system-wide role may not carry a semester, a scoped role must.
type RoleService struct {
	repo      roleAssignmentRepository
	semesters semesterLookup
	cache     *repository.CacheRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService creates an instance of RoleService.
func NewRoleService(repo roleAssignmentRepository, semesters semesterLookup, cache *repository.CacheRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{repo: repo, semesters: semesters, cache: cache, audit: audit, validator: validate, logger: logger}
}

// ListForPrincipal returns the active assignments of a principal.
func (s *RoleService) ListForPrincipal(ctx context.Context, principalID string) ([]models.RoleAssignment, error) {
	assignments, err := s.repo.ListActiveByPrincipal(ctx, principalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role assignments")
	}
	return assignments, nil
}

// Grant creates a role assignment for a principal.
func (s *RoleService) Grant(ctx context.Context, req GrantRoleRequest, actorID string) (*models.RoleAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grant payload")
	}

	role := models.RoleName(req.Role)
	if !authz.Known(role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role name")
	}
	if authz.IsSystemWide(role) && req.SemesterID != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "system-wide roles do not take a semester")
	}
	if !authz.IsSystemWide(role) && req.SemesterID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester-scoped roles require a semester")
	}

	// A scoped assignment must reference a live semester.
	if req.SemesterID != "" {
		sem, err := s.semesters.FindByID(ctx, req.SemesterID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "semester does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
		}
		if sem.IsDeleted {
			return nil, appErrors.Clone(appErrors.ErrScopeConflict, "semester is deleted")
		}
	}

	existing, err := s.repo.ListActiveByPrincipal(ctx, req.PrincipalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assignments")
	}
	for _, a := range existing {
		if a.Role != role {
			continue
		}
		if a.SemesterID == nil && req.SemesterID == "" {
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already exists")
		}
		if a.SemesterID != nil && *a.SemesterID == req.SemesterID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already exists")
		}
	}

	assignment := &models.RoleAssignment{
		PrincipalID: req.PrincipalID,
		Role:        role,
		Active:      true,
	}
	if req.SemesterID != "" {
		assignment.SemesterID = &req.SemesterID
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role assignment")
	}

	s.cache.InvalidatePrincipal(ctx, req.PrincipalID)

	metadata, _ := json.Marshal(map[string]interface{}{"role": req.Role, "semester_id": req.SemesterID})
	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionRoleGrant,
		EntityType:  "role_assignment",
		EntityID:    &assignment.ID,
		Severity:    models.AuditInfo,
		Description: "role granted",
		Metadata:    metadata,
	})

	return assignment, nil
}

// Revoke deactivates an assignment. The row stays behind for the audit trail.
func (s *RoleService) Revoke(ctx context.Context, id, actorID string) error {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "role assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role assignment")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke role assignment")
	}

	s.cache.InvalidatePrincipal(ctx, assignment.PrincipalID)

	before, _ := json.Marshal(map[string]interface{}{"role": assignment.Role, "semester_id": assignment.SemesterID, "active": assignment.Active})
	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionRoleRevoke,
		EntityType:  "role_assignment",
		EntityID:    &assignment.ID,
		Severity:    models.AuditInfo,
		Description: "role revoked",
		Before:      before,
	})

	return nil
}
