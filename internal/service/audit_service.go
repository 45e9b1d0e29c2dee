package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/models"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
	"github.com/noah-isme/thesis-hub-api/pkg/export"
	"github.com/noah-isme/thesis-hub-api/pkg/jobs"
)

type auditRepository interface {
	Insert(ctx context.Context, rec *models.AuditRecord) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, int, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditRecord, error)
}

// AuditService is the audit recorder: append-only writes plus the read
// surface for the trail. Record is best-effort; a failed insert is retried on
// the fallback queue and never fails the operation being described.
type AuditService struct {
	repo     auditRepository
	exporter *export.AuditPDFExporter
	fallback *jobs.Queue
	logger   *zap.Logger
}

// NewAuditService constructs an AuditService. Call AttachFallback once the
// queue exists; the queue handler itself needs the service.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, exporter: export.NewAuditPDFExporter(), logger: logger}
}

// AttachFallback wires the retry queue for failed audit writes.
func (s *AuditService) AttachFallback(q *jobs.Queue) {
	s.fallback = q
}

// Record appends an audit record, pushing it onto the fallback queue when the
// store is unavailable.
func (s *AuditService) Record(ctx context.Context, rec *models.AuditRecord) {
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.logger.Warn("audit record write failed",
			zap.String("action", rec.Action),
			zap.String("entity_type", rec.EntityType),
			zap.Error(err),
		)
		if s.fallback != nil {
			if qErr := s.fallback.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "audit_record", Payload: rec}); qErr != nil {
				s.logger.Error("audit record lost, fallback queue unavailable", zap.Error(qErr))
			}
		}
	}
}

// RetryJob is the fallback queue handler: it re-attempts the insert and
// returns the error so the queue applies its retry policy.
func (s *AuditService) RetryJob(ctx context.Context, job jobs.Job) error {
	rec, ok := job.Payload.(*models.AuditRecord)
	if !ok {
		return fmt.Errorf("unexpected audit job payload %T", job.Payload)
	}
	return s.repo.Insert(ctx, rec)
}

// List returns audit records matching the filter.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit records")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	return records, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ExportTrailPDF renders the full trail of one entity as a PDF.
func (s *AuditService) ExportTrailPDF(ctx context.Context, entityType, entityID string) ([]byte, error) {
	records, err := s.repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no audit records for entity")
	}
	pdf, err := s.exporter.Render(records, fmt.Sprintf("Audit trail %s %s", entityType, entityID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render audit trail")
	}
	return pdf, nil
}
