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

const principalColumns = `id, email, password_hash, full_name, active, is_deleted, last_login, created_at, updated_at`

// PrincipalRepository provides database access for principals. Deletion does
// not live here: principals only leave through the lifecycle coordinator.
type PrincipalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates a PrincipalRepository.
func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// FindByEmail returns a principal by email address.
func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	query := fmt.Sprintf(`SELECT %s FROM principals WHERE email = $1 AND is_deleted = FALSE LIMIT 1`, principalColumns)
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find principal by email: %w", err)
	}
	return &p, nil
}

// FindByID returns a principal by identifier, deleted or not. Callers decide
// what a deleted row means for them.
func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	query := fmt.Sprintf(`SELECT %s FROM principals WHERE id = $1 LIMIT 1`, principalColumns)
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find principal by id: %w", err)
	}
	return &p, nil
}

// List returns principals based on filters with total count.
func (r *PrincipalRepository) List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, int, error) {
	baseQuery := `FROM principals WHERE 1=1`
	var conditions []string
	var args []interface{}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "is_deleted = FALSE")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"email":      true,
		"full_name":  true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", principalColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var principals []models.Principal
	if err := r.db.SelectContext(ctx, &principals, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list principals: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count principals: %w", err)
	}

	return principals, total, nil
}

// Create inserts a new principal.
func (r *PrincipalRepository) Create(ctx context.Context, p *models.Principal) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	const query = `INSERT INTO principals (id, email, password_hash, full_name, active, is_deleted, created_at, updated_at) VALUES (:id, :email, :password_hash, :full_name, :active, :is_deleted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create principal: %w", err)
	}
	return nil
}

// Update updates mutable fields of a principal.
func (r *PrincipalRepository) Update(ctx context.Context, p *models.Principal) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE principals SET full_name = :full_name, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("update principal: %w", err)
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp.
func (r *PrincipalRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE principals SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *PrincipalRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, principal_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent) VALUES (:id, :principal_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *PrincipalRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, principal_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *PrincipalRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokePrincipalRefreshTokens revokes every live refresh token of a
// principal.
func (r *PrincipalRepository) RevokePrincipalRefreshTokens(ctx context.Context, principalID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE principal_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, principalID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke principal refresh tokens: %w", err)
	}
	return nil
}
