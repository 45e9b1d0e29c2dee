package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/models"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
	"github.com/noah-isme/thesis-hub-api/pkg/jobs"
)

type mockAuditStore struct {
	mu        sync.Mutex
	inserted  []*models.AuditRecord
	failFirst int
	attempts  int
	succeeded chan struct{}
	records   []models.AuditRecord
	trail     []models.AuditRecord
}

func (m *mockAuditStore) Insert(ctx context.Context, rec *models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.attempts <= m.failFirst {
		return errors.New("connection refused")
	}
	m.inserted = append(m.inserted, rec)
	if m.succeeded != nil {
		close(m.succeeded)
		m.succeeded = nil
	}
	return nil
}

func (m *mockAuditStore) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, int, error) {
	return m.records, len(m.records), nil
}

func (m *mockAuditStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditRecord, error) {
	return m.trail, nil
}

func (m *mockAuditStore) insertedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

func TestAuditServiceRecord(t *testing.T) {
	store := &mockAuditStore{}
	svc := NewAuditService(store, zap.NewNop())

	svc.Record(context.Background(), &models.AuditRecord{Action: models.AuditActionLogin, EntityType: "principal"})
	assert.Equal(t, 1, store.insertedCount())
}

func TestAuditServiceRecordFailureWithoutFallback(t *testing.T) {
	store := &mockAuditStore{failFirst: 1}
	svc := NewAuditService(store, zap.NewNop())

	// must not panic or block when no fallback queue is attached
	svc.Record(context.Background(), &models.AuditRecord{Action: models.AuditActionLogin, EntityType: "principal"})
	assert.Zero(t, store.insertedCount())
}

func TestAuditServiceRecordRetriesOnFallback(t *testing.T) {
	done := make(chan struct{})
	store := &mockAuditStore{failFirst: 1, succeeded: done}
	svc := NewAuditService(store, zap.NewNop())

	queue := jobs.NewQueue("audit-fallback", svc.RetryJob, jobs.QueueConfig{Workers: 1, RetryDelay: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()
	svc.AttachFallback(queue)

	svc.Record(context.Background(), &models.AuditRecord{Action: models.AuditActionCascadeDelete, EntityType: "topic"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fallback retry never landed the record")
	}
	assert.Equal(t, 1, store.insertedCount())
}

func TestAuditServiceRetryJobBadPayload(t *testing.T) {
	svc := NewAuditService(&mockAuditStore{}, zap.NewNop())

	err := svc.RetryJob(context.Background(), jobs.Job{ID: "j1", Type: "audit_record", Payload: "not a record"})
	require.Error(t, err)
}

func TestAuditServiceListDefaults(t *testing.T) {
	store := &mockAuditStore{records: []models.AuditRecord{{ID: "a1"}, {ID: "a2"}}}
	svc := NewAuditService(store, zap.NewNop())

	records, pagination, err := svc.List(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestAuditServiceExportTrailPDF(t *testing.T) {
	now := time.Now().UTC()
	store := &mockAuditStore{trail: []models.AuditRecord{
		{ID: "a1", Action: models.AuditActionCascadeDelete, EntityType: "topic", Severity: models.AuditInfo, Description: "cascade", CreatedAt: now},
	}}
	svc := NewAuditService(store, zap.NewNop())

	pdf, err := svc.ExportTrailPDF(context.Background(), "topic", "t1")
	require.NoError(t, err)
	assert.True(t, len(pdf) > 4)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestAuditServiceExportTrailEmpty(t *testing.T) {
	svc := NewAuditService(&mockAuditStore{}, zap.NewNop())

	_, err := svc.ExportTrailPDF(context.Background(), "topic", "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
