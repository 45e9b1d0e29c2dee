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

const topicColumns = `id, code, title, created_by, semester_id, status, is_deleted, created_at, updated_at`

// TopicRepository provides database access for thesis topics.
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository creates a TopicRepository.
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// FindByID returns a topic by identifier.
func (r *TopicRepository) FindByID(ctx context.Context, id string) (*models.Topic, error) {
	query := fmt.Sprintf(`SELECT %s FROM topics WHERE id = $1 LIMIT 1`, topicColumns)
	var t models.Topic
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find topic by id: %w", err)
	}
	return &t, nil
}

// List returns topics based on filters with total count.
func (r *TopicRepository) List(ctx context.Context, filter models.TopicFilter) ([]models.Topic, int, error) {
	baseQuery := `FROM topics WHERE 1=1`
	var conditions []string
	var args []interface{}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "is_deleted = FALSE")
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", topicColumns, baseQuery, pageSize, offset)

	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list topics: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count topics: %w", err)
	}

	return topics, total, nil
}

// Create inserts a new topic.
func (r *TopicRepository) Create(ctx context.Context, t *models.Topic) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	const query = `INSERT INTO topics (id, code, title, created_by, semester_id, status, is_deleted, created_at, updated_at) VALUES (:id, :code, :title, :created_by, :semester_id, :status, :is_deleted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

// Update updates mutable fields of a topic.
func (r *TopicRepository) Update(ctx context.Context, t *models.Topic) error {
	t.UpdatedAt = time.Now().UTC()
	const query = `UPDATE topics SET title = :title, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	return nil
}
