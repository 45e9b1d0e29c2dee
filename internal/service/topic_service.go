package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

type topicRepository interface {
	List(ctx context.Context, filter models.TopicFilter) ([]models.Topic, int, error)
	FindByID(ctx context.Context, id string) (*models.Topic, error)
	Create(ctx context.Context, t *models.Topic) error
	Update(ctx context.Context, t *models.Topic) error
}

// CreateTopicRequest represents payload for proposing a topic.
type CreateTopicRequest struct {
	Code       string `json:"code" validate:"required"`
	Title      string `json:"title" validate:"required"`
	SemesterID string `json:"semester_id" validate:"required,uuid"`
}

// UpdateTopicRequest payload for updating a topic.
type UpdateTopicRequest struct {
	Title  string             `json:"title" validate:"required"`
	Status models.TopicStatus `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

// TopicService handles topic proposal and review workflows. Topics are
// deletion roots: removing one cascades to its reports and documents, but an
// active registration blocks the whole operation.
type TopicService struct {
	repo        topicRepository
	coordinator cascader
	audit       auditRecorder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTopicService creates an instance of TopicService.
func NewTopicService(repo topicRepository, coordinator cascader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *TopicService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TopicService{repo: repo, coordinator: coordinator, audit: audit, validator: validate, logger: logger}
}

// List returns paginated topics.
func (s *TopicService) List(ctx context.Context, filter models.TopicFilter) ([]models.Topic, *models.Pagination, error) {
	topics, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list topics")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return topics, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a topic by ID.
func (s *TopicService) Get(ctx context.Context, id string) (*models.Topic, error) {
	topic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "topic not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load topic")
	}
	return topic, nil
}

// Create proposes a new topic in PENDING status.
func (s *TopicService) Create(ctx context.Context, req CreateTopicRequest, actorID string) (*models.Topic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create topic payload")
	}

	topic := &models.Topic{
		Code:       req.Code,
		Title:      req.Title,
		CreatedBy:  actorID,
		SemesterID: req.SemesterID,
		Status:     models.TopicPending,
	}
	if err := s.repo.Create(ctx, topic); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create topic")
	}

	metadata, _ := json.Marshal(map[string]interface{}{"code": topic.Code, "semester_id": topic.SemesterID})
	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionTopicCreate,
		EntityType:  string(lifecycle.EntityTopic),
		EntityID:    &topic.ID,
		Severity:    models.AuditInfo,
		Description: "topic proposed",
		Metadata:    metadata,
	})

	return topic, nil
}

// Update modifies a topic's title or review status.
func (s *TopicService) Update(ctx context.Context, id string, req UpdateTopicRequest, actorID string) (*models.Topic, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	topic, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	before, _ := json.Marshal(map[string]interface{}{"title": topic.Title, "status": topic.Status})

	topic.Title = req.Title
	topic.Status = req.Status

	if err := s.repo.Update(ctx, topic); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update topic")
	}

	s.audit.Record(ctx, &models.AuditRecord{
		ActorID:     &actorID,
		Action:      models.AuditActionTopicUpdate,
		EntityType:  string(lifecycle.EntityTopic),
		EntityID:    &topic.ID,
		Severity:    models.AuditInfo,
		Description: "topic updated",
		Before:      before,
	})

	return topic, nil
}

// Delete soft-deletes a topic and its subtree. Fails when an active
// registration still references it.
func (s *TopicService) Delete(ctx context.Context, id, actorID, scopeSemesterID string) (*lifecycle.Result, error) {
	result, err := s.coordinator.CascadeSoftDelete(ctx, lifecycle.EntityTopic, id, actorID, scopeSemesterID)
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	return result, nil
}

// Restore brings a soft-deleted topic and its dependents back.
func (s *TopicService) Restore(ctx context.Context, id, actorID string) (*lifecycle.Result, error) {
	result, err := s.coordinator.Restore(ctx, lifecycle.EntityTopic, id, actorID)
	if err != nil {
		return nil, mapLifecycleError(err)
	}
	return result, nil
}
