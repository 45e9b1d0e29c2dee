package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/thesis-hub-api/internal/models"
)

const semesterColumns = `id, code, start_date, end_date, status, is_deleted, created_at, updated_at`

// SemesterRepository provides database access for semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository creates a SemesterRepository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// FindByID returns a semester by identifier.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE id = $1 LIMIT 1`, semesterColumns)
	var s models.Semester
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find semester by id: %w", err)
	}
	return &s, nil
}

// FindByCode returns a semester by its unique code.
func (r *SemesterRepository) FindByCode(ctx context.Context, code string) (*models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE code = $1 AND is_deleted = FALSE LIMIT 1`, semesterColumns)
	var s models.Semester
	if err := r.db.GetContext(ctx, &s, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find semester by code: %w", err)
	}
	return &s, nil
}

// List returns semesters based on filters with total count.
func (r *SemesterRepository) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error) {
	baseQuery := `FROM semesters WHERE 1=1`
	var conditions []string
	var args []interface{}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "is_deleted = FALSE")
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY start_date DESC LIMIT %d OFFSET %d", semesterColumns, baseQuery, pageSize, offset)

	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list semesters: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count semesters: %w", err)
	}

	return semesters, total, nil
}

// ListPendingStatusChange returns non-deleted semesters whose stored status
// no longer matches their date range. The status sweeper feeds on this.
func (r *SemesterRepository) ListPendingStatusChange(ctx context.Context, now time.Time) ([]models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE is_deleted = FALSE AND (
		(status = $1 AND start_date <= $4) OR
		(status = $2 AND end_date < $4) OR
		(status = $3 AND start_date > $4)
	)`, semesterColumns)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, models.SemesterUpcoming, models.SemesterActive, models.SemesterComplete, now); err != nil {
		return nil, fmt.Errorf("list semesters pending status change: %w", err)
	}
	return semesters, nil
}

// Create inserts a new semester.
func (r *SemesterRepository) Create(ctx context.Context, s *models.Semester) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	const query = `INSERT INTO semesters (id, code, start_date, end_date, status, is_deleted, created_at, updated_at) VALUES (:id, :code, :start_date, :end_date, :status, :is_deleted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}

// Update updates mutable fields of a semester.
func (r *SemesterRepository) Update(ctx context.Context, s *models.Semester) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semesters SET code = :code, start_date = :start_date, end_date = :end_date, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	return nil
}

// UpdateStatus transitions a semester's status only when the stored status
// still matches the expected previous value, so concurrent sweeps and
// cascades cannot clobber each other.
func (r *SemesterRepository) UpdateStatus(ctx context.Context, id string, from, to models.SemesterStatus) (bool, error) {
	const query = `UPDATE semesters SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2 AND is_deleted = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update semester status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update semester status: %w", err)
	}
	return rows > 0, nil
}
