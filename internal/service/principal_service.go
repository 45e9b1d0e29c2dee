package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/repository"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

type principalRepository interface {
	List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, int, error)
	FindByID(ctx context.Context, id string) (*models.Principal, error)
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
	Create(ctx context.Context, p *models.Principal) error
	Update(ctx context.Context, p *models.Principal) error
}

type cascader interface {
	CascadeSoftDelete(ctx context.Context, root lifecycle.EntityType, rootID, actorID, scopeSemesterID string) (*lifecycle.Result, error)
	Restore(ctx context.Context, root lifecycle.EntityType, rootID, actorID string) (*lifecycle.Result, error)
}

type auditRecorder interface {
	Record(ctx context.Context, rec *models.AuditRecord)
}

// CreatePrincipalRequest represents payload for creating principals.
type CreatePrincipalRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Active   bool   `json:"active"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdatePrincipalRequest payload for updating principals.
type UpdatePrincipalRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Active   *bool  `json:"active"`
}

// PrincipalService handles principal management workflows. Deletion and
// restore route through the lifecycle coordinator so every dependent row
// moves with the principal.
type PrincipalService struct {
	repo        principalRepository
	coordinator cascader
	audit       auditRecorder
	cache       *repository.CacheRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPrincipalService creates an instance of PrincipalService.
func NewPrincipalService(repo principalRepository, coordinator cascader, audit auditRecorder, cache *repository.CacheRepository, validate *validator.Validate, logger *zap.Logger) *PrincipalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PrincipalService{repo: repo, coordinator: coordinator, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns paginated principals and pagination metadata.
func (s *PrincipalService) List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, *models.Pagination, error) {
	principals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list principals")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return principals, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a principal by ID.
func (s *PrincipalService) Get(ctx context.Context, id string) (*models.Principal, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "principal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load principal")
	}
	return p, nil
}

// Create adds a new principal.
func (s *PrincipalService) Create(ctx context.Context, req CreatePrincipalRequest, actorID string) (*models.Principal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create principal payload")
	}

	if _, err := s.repo.FindByEmail(ctx, strings.ToLower(req.Email)); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	p := &models.Principal{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(req.Email),
		FullName:     req.FullName,
		Active:       req.Active,
		PasswordHash: string(passwordHash),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create principal")
	}

	metadata, _ := json.Marshal(map[string]interface{}{"email": p.Email})
	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionPrincipalCreate,
		EntityType:  string(lifecycle.EntityPrincipal),
		EntityID:    &p.ID,
		Severity:    models.AuditInfo,
		Description: "principal created",
		Metadata:    metadata,
	})

	return p, nil
}

// Update modifies the principal attributes.
func (s *PrincipalService) Update(ctx context.Context, id string, req UpdatePrincipalRequest, actorID string) (*models.Principal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before, _ := json.Marshal(map[string]interface{}{"full_name": p.FullName, "active": p.Active})

	p.FullName = req.FullName
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update principal")
	}

	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionPrincipalUpdate,
		EntityType:  string(lifecycle.EntityPrincipal),
		EntityID:    &p.ID,
		Severity:    models.AuditInfo,
		Description: "principal updated",
		Before:      before,
	})

	return p, nil
}

// Delete soft-deletes a principal and everything it owns through the
// lifecycle coordinator, optionally restricted to one semester.
func (s *PrincipalService) Delete(ctx context.Context, id, actorID, scopeSemesterID string) (*lifecycle.Result, error) {
	result, err := s.coordinator.CascadeSoftDelete(ctx, lifecycle.EntityPrincipal, id, actorID, scopeSemesterID)
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	s.cache.InvalidatePrincipal(ctx, id)
	return result, nil
}

// Restore brings a soft-deleted principal and its dependents back.
func (s *PrincipalService) Restore(ctx context.Context, id, actorID string) (*lifecycle.Result, error) {
	result, err := s.coordinator.Restore(ctx, lifecycle.EntityPrincipal, id, actorID)
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	s.cache.InvalidatePrincipal(ctx, id)
	return result, nil
}
