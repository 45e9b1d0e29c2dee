package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

type assignmentCacheFlusher interface {
	FlushRoleAssignments(ctx context.Context)
}

type semesterRepository interface {
	List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindByCode(ctx context.Context, code string) (*models.Semester, error)
	ListPendingStatusChange(ctx context.Context, now time.Time) ([]models.Semester, error)
	Create(ctx context.Context, s *models.Semester) error
	Update(ctx context.Context, s *models.Semester) error
	UpdateStatus(ctx context.Context, id string, from, to models.SemesterStatus) (bool, error)
}

// CreateSemesterRequest represents payload for creating semesters.
type CreateSemesterRequest struct {
	Code      string    `json:"code" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// UpdateSemesterRequest payload for updating semesters.
type UpdateSemesterRequest struct {
	Code      string    `json:"code" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// SemesterService handles semester management and the time-driven status
// transitions. Deleting a semester cascades to everything scoped to it but
// never touches principals.
type SemesterService struct {
	repo        semesterRepository
	coordinator cascader
	audit       auditRecorder
	cache       assignmentCacheFlusher
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSemesterService creates an instance of SemesterService.
func NewSemesterService(repo semesterRepository, coordinator cascader, audit auditRecorder, cache assignmentCacheFlusher, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SemesterService{repo: repo, coordinator: coordinator, audit: audit, cache: cache, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns paginated semesters.
func (s *SemesterService) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, *models.Pagination, error) {
	semesters, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return semesters, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a semester by ID.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	sem, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return sem, nil
}

// Create adds a new semester with a status derived from its date range.
func (s *SemesterService) Create(ctx context.Context, req CreateSemesterRequest, actorID string) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create semester payload")
	}

	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check code uniqueness")
	}

	sem := &models.Semester{
		Code:      req.Code,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	sem.Status = sem.ExpectedStatus(s.now())

	if err := s.repo.Create(ctx, sem); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}

	metadata, _ := json.Marshal(map[string]interface{}{"code": sem.Code, "status": sem.Status})
	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionSemesterCreate,
		EntityType:  string(lifecycle.EntitySemester),
		EntityID:    &sem.ID,
		Severity:    models.AuditInfo,
		Description: "semester created",
		Metadata:    metadata,
	})

	return sem, nil
}

// Update modifies semester attributes and re-derives its status.
func (s *SemesterService) Update(ctx context.Context, id string, req UpdateSemesterRequest, actorID string) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	sem, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before, _ := json.Marshal(map[string]interface{}{"code": sem.Code, "start_date": sem.StartDate, "end_date": sem.EndDate, "status": sem.Status})

	sem.Code = req.Code
	sem.StartDate = req.StartDate
	sem.EndDate = req.EndDate
	sem.Status = sem.ExpectedStatus(s.now())

	if err := s.repo.Update(ctx, sem); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester")
	}

	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionSemesterUpdate,
		EntityType:  string(lifecycle.EntitySemester),
		EntityID:    &sem.ID,
		Severity:    models.AuditInfo,
		Description: "semester updated",
		Before:      before,
	})

	return sem, nil
}

// Delete soft-deletes a semester and everything scoped to it.
func (s *SemesterService) Delete(ctx context.Context, id, actorID string) (*lifecycle.Result, error) {
	result, err := s.coordinator.CascadeSoftDelete(ctx, lifecycle.EntitySemester, id, actorID, "")
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	s.flushAssignments(ctx, result)
	return result, nil
}

// Restore brings a soft-deleted semester and its dependents back.
func (s *SemesterService) Restore(ctx context.Context, id, actorID string) (*lifecycle.Result, error) {
	result, err := s.coordinator.Restore(ctx, lifecycle.EntitySemester, id, actorID)
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	s.flushAssignments(ctx, result)
	return result, nil
}

// flushAssignments drops all cached assignment sets when the cascade touched
// role_assignments rows, so authorization never serves assignments the
// cascade just flipped.
func (s *SemesterService) flushAssignments(ctx context.Context, result *lifecycle.Result) {
	if s.cache == nil || result == nil {
		return
	}
	if result.Affected[lifecycle.EntityRoleAssignment] > 0 {
		s.cache.FlushRoleAssignments(ctx)
	}
}

// SweepStatuses advances every semester whose stored status lags its date
// range. It runs on the jobs queue; the compare-and-set update keeps it safe
// against concurrent cascades on the same rows. A row that fails to update is
// skipped and picked up again on the next tick.
func (s *SemesterService) SweepStatuses(ctx context.Context) (int, error) {
	now := s.now()
	pending, err := s.repo.ListPendingStatusChange(ctx, now)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, sem := range pending {
		expected := sem.ExpectedStatus(now)
		if expected == sem.Status {
			continue
		}
		ok, err := s.repo.UpdateStatus(ctx, sem.ID, sem.Status, expected)
		if err != nil {
			s.logger.Warn("semester status update failed, skipping",
				zap.String("semester_id", sem.ID),
				zap.Error(err),
			)
			continue
		}
		if ok {
			changed++
			s.logger.Info("semester status advanced",
				zap.String("semester_id", sem.ID),
				zap.String("from", string(sem.Status)),
				zap.String("to", string(expected)),
			)
		}
	}
	return changed, nil
}
