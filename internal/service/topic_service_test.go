package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

type mockTopicRepo struct {
	topics  map[string]*models.Topic
	created *models.Topic
	updated *models.Topic
}

func (m *mockTopicRepo) List(ctx context.Context, filter models.TopicFilter) ([]models.Topic, int, error) {
	var out []models.Topic
	for _, topic := range m.topics {
		out = append(out, *topic)
	}
	return out, len(out), nil
}

func (m *mockTopicRepo) FindByID(ctx context.Context, id string) (*models.Topic, error) {
	topic, ok := m.topics[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return topic, nil
}

func (m *mockTopicRepo) Create(ctx context.Context, t *models.Topic) error {
	m.created = t
	return nil
}

func (m *mockTopicRepo) Update(ctx context.Context, t *models.Topic) error {
	m.updated = t
	return nil
}

func TestTopicServiceCreateStartsPending(t *testing.T) {
	repo := &mockTopicRepo{}
	audit := &capturedAudit{}
	svc := NewTopicService(repo, &stubCascader{}, audit, validator.New(), zap.NewNop())

	topic, err := svc.Create(context.Background(), CreateTopicRequest{
		Code:       "THE-101",
		Title:      "Distributed Cache Invalidation",
		SemesterID: testSemesterID,
	}, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, models.TopicPending, topic.Status)
	assert.Equal(t, "actor-1", topic.CreatedBy)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionTopicCreate, audit.records[0].Action)
}

func TestTopicServiceCreateRequiresSemester(t *testing.T) {
	svc := NewTopicService(&mockTopicRepo{}, &stubCascader{}, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateTopicRequest{Code: "THE-101", Title: "No Semester"}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTopicServiceUpdateStatus(t *testing.T) {
	repo := &mockTopicRepo{topics: map[string]*models.Topic{
		"t1": {ID: "t1", Title: "Draft Title", Status: models.TopicPending},
	}}
	audit := &capturedAudit{}
	svc := NewTopicService(repo, &stubCascader{}, audit, validator.New(), zap.NewNop())

	topic, err := svc.Update(context.Background(), "t1", UpdateTopicRequest{Title: "Final Title", Status: models.TopicApproved}, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, models.TopicApproved, topic.Status)
	require.Len(t, audit.records, 1)
	assert.NotEmpty(t, audit.records[0].Before)
}

func TestTopicServiceUpdateRejectsUnknownStatus(t *testing.T) {
	repo := &mockTopicRepo{topics: map[string]*models.Topic{"t1": {ID: "t1"}}}
	svc := NewTopicService(repo, &stubCascader{}, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "t1", UpdateTopicRequest{Title: "X", Status: "ARCHIVED"}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTopicServiceDeleteBlockedByRegistrations(t *testing.T) {
	cascade := &stubCascader{err: &lifecycle.BlockedByActiveChildrenError{Entity: lifecycle.EntityTopicRegistration, Count: 1}}
	svc := NewTopicService(&mockTopicRepo{}, cascade, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Delete(context.Background(), "t1", "actor-1", "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBlockedByChildren.Code, appErr.Code)
}

func TestTopicServiceDeleteScoped(t *testing.T) {
	cascade := &stubCascader{result: &lifecycle.Result{RootType: lifecycle.EntityTopic, RootID: "t1", RootMutated: true}}
	svc := NewTopicService(&mockTopicRepo{}, cascade, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Delete(context.Background(), "t1", "actor-1", testSemesterID)
	require.NoError(t, err)
	assert.Equal(t, testSemesterID, cascade.lastScope)
}

func TestTopicServiceRestoreScopeConflict(t *testing.T) {
	cascade := &stubCascader{err: lifecycle.ErrScopeConflict}
	svc := NewTopicService(&mockTopicRepo{}, cascade, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Restore(context.Background(), "t1", "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScopeConflict.Code, appErr.Code)
}
