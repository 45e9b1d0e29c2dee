package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/thesis-hub-api/internal/models"
)

// RoleAssignmentRepository provides database access for role assignments.
type RoleAssignmentRepository struct {
	db *sqlx.DB
}

// NewRoleAssignmentRepository creates a RoleAssignmentRepository.
func NewRoleAssignmentRepository(db *sqlx.DB) *RoleAssignmentRepository {
	return &RoleAssignmentRepository{db: db}
}

// ListActiveByPrincipal returns the active, non-deleted assignments of a
// principal. This is the narrow read the authorization middleware performs
// once per request.
func (r *RoleAssignmentRepository) ListActiveByPrincipal(ctx context.Context, principalID string) ([]models.RoleAssignment, error) {
	const query = `SELECT id, principal_id, role, semester_id, active, is_deleted FROM role_assignments WHERE principal_id = $1 AND active = TRUE AND is_deleted = FALSE`
	var assignments []models.RoleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, principalID); err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	return assignments, nil
}

// FindByID returns a single assignment.
func (r *RoleAssignmentRepository) FindByID(ctx context.Context, id string) (*models.RoleAssignment, error) {
	const query = `SELECT id, principal_id, role, semester_id, active, is_deleted FROM role_assignments WHERE id = $1`
	var a models.RoleAssignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, fmt.Errorf("find role assignment: %w", err)
	}
	return &a, nil
}

// Create inserts a role assignment.
func (r *RoleAssignmentRepository) Create(ctx context.Context, a *models.RoleAssignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const query = `INSERT INTO role_assignments (id, principal_id, role, semester_id, active, is_deleted, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.PrincipalID, a.Role, a.SemesterID, a.Active, time.Now().UTC()); err != nil {
		return fmt.Errorf("create role assignment: %w", err)
	}
	return nil
}

// Deactivate marks an assignment inactive without deleting it.
func (r *RoleAssignmentRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE role_assignments SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate role assignment: %w", err)
	}
	return nil
}
