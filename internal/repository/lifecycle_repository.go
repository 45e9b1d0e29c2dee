package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	"github.com/noah-isme/thesis-hub-api/internal/models"
)

// LifecycleRepository implements lifecycle.Store on a sqlx Postgres pool.
// Every cascade runs on one transaction; predicates are generated from the
// entity graph catalog rather than hand-written per entity.
type LifecycleRepository struct {
	db *sqlx.DB
}

// NewLifecycleRepository creates a LifecycleRepository.
func NewLifecycleRepository(db *sqlx.DB) *LifecycleRepository {
	return &LifecycleRepository{db: db}
}

// WithinTx runs fn inside a single database transaction, rolling back on any
// error so a failed cascade leaves no partial state.
func (r *LifecycleRepository) WithinTx(ctx context.Context, fn func(tx lifecycle.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade tx: %w", err)
	}
	if err := fn(&lifecycleTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade tx: %w", err)
	}
	return nil
}

type lifecycleTx struct {
	tx *sqlx.Tx
}

// GetRoot re-reads the root row inside the transaction and snapshots it for
// the audit trail.
func (t *lifecycleTx) GetRoot(ctx context.Context, entity lifecycle.EntityType, id string) (*lifecycle.RootState, error) {
	query := fmt.Sprintf(`SELECT is_deleted, row_to_json(t.*) FROM %s t WHERE id = $1`, lifecycle.Table(entity))
	var (
		deleted  bool
		snapshot []byte
	)
	if err := t.tx.QueryRowxContext(ctx, query, id).Scan(&deleted, &snapshot); err != nil {
		if err == sql.ErrNoRows {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("read cascade root: %w", err)
	}
	return &lifecycle.RootState{ID: id, IsDeleted: deleted, Snapshot: snapshot}, nil
}

func (t *lifecycleTx) ActiveRoles(ctx context.Context, principalID string) ([]models.RoleName, error) {
	const query = `SELECT role FROM role_assignments WHERE principal_id = $1 AND active = TRUE AND is_deleted = FALSE`
	var roles []models.RoleName
	if err := t.tx.SelectContext(ctx, &roles, query, principalID); err != nil {
		return nil, fmt.Errorf("list active roles: %w", err)
	}
	return roles, nil
}

func (t *lifecycleTx) CountReachable(ctx context.Context, path lifecycle.Path, rootID, scopeSemesterID string) (int, error) {
	cond, args := reachableCondition(path, rootID, scopeSemesterID, false)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE is_deleted = FALSE AND %s`, lifecycle.Table(path.Leaf().Entity), cond)
	var count int
	if err := t.tx.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count reachable %s: %w", path.Leaf().Entity, err)
	}
	return count, nil
}

func (t *lifecycleTx) SoftDeleteReachable(ctx context.Context, path lifecycle.Path, rootID, scopeSemesterID string) (int64, error) {
	cond, args := reachableCondition(path, rootID, scopeSemesterID, false)
	args = append(args, time.Now().UTC())
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = TRUE, updated_at = $%d WHERE is_deleted = FALSE AND %s`,
		lifecycle.Table(path.Leaf().Entity), len(args), cond)
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("soft delete %s: %w", path.Leaf().Entity, err)
	}
	return res.RowsAffected()
}

func (t *lifecycleTx) RestoreReachable(ctx context.Context, path lifecycle.Path, rootID string, guards []lifecycle.Edge) (int64, error) {
	cond, args := reachableCondition(path, rootID, "", true)
	table := lifecycle.Table(path.Leaf().Entity)

	conds := []string{cond}
	for _, g := range guards {
		conds = append(conds, fmt.Sprintf(
			`NOT EXISTS (SELECT 1 FROM %s p WHERE p.id = %s.%s AND p.is_deleted = TRUE)`,
			lifecycle.Table(g.Parent), table, g.FKColumn,
		))
	}

	args = append(args, time.Now().UTC())
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = FALSE, updated_at = $%d WHERE is_deleted = TRUE AND %s`,
		table, len(args), strings.Join(conds, " AND "))
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("restore %s: %w", path.Leaf().Entity, err)
	}
	return res.RowsAffected()
}

func (t *lifecycleTx) CountActiveDirectChildren(ctx context.Context, edge lifecycle.Edge, rootID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND is_deleted = FALSE`, lifecycle.Table(edge.Entity), edge.FKColumn)
	var count int
	if err := t.tx.GetContext(ctx, &count, query, rootID); err != nil {
		return 0, fmt.Errorf("count direct %s: %w", edge.Entity, err)
	}
	return count, nil
}

func (t *lifecycleTx) SetRootDeleted(ctx context.Context, entity lifecycle.EntityType, id string, deleted bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = $2, updated_at = $3 WHERE id = $1`, lifecycle.Table(entity))
	if _, err := t.tx.ExecContext(ctx, query, id, deleted, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark root %s: %w", entity, err)
	}
	return nil
}

func (t *lifecycleTx) InsertAudit(ctx context.Context, rec *models.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_records (id, actor_id, action, entity_type, entity_id, severity, description, metadata, before_state, created_at) VALUES (:id, :actor_id, :action, :entity_type, :entity_id, :severity, :description, :metadata, :before_state, :created_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("insert cascade audit record: %w", err)
	}
	return nil
}

// reachableCondition builds the predicate selecting leaf rows reachable from
// the root along the path. Placeholders number from the innermost subquery
// outward, so the root id is always $1. With liveParents set, every
// intermediate parent in the chain must be non-deleted, which is what makes
// restores bottom-up safe.
func reachableCondition(path lifecycle.Path, rootID, scopeSemesterID string, liveParents bool) (string, []interface{}) {
	var args []interface{}

	var build func(i int) string
	build = func(i int) string {
		e := path[i]
		var conds []string
		if i == 0 {
			args = append(args, rootID)
			conds = append(conds, fmt.Sprintf("%s = $%d", e.FKColumn, len(args)))
		} else {
			inner := build(i - 1)
			if liveParents {
				inner += " AND is_deleted = FALSE"
			}
			conds = append(conds, fmt.Sprintf("%s IN (SELECT id FROM %s WHERE %s)", e.FKColumn, lifecycle.Table(e.Parent), inner))
		}
		if scopeSemesterID != "" && e.SemesterColumn != "" {
			args = append(args, scopeSemesterID)
			conds = append(conds, fmt.Sprintf("%s = $%d", e.SemesterColumn, len(args)))
		}
		return strings.Join(conds, " AND ")
	}

	return build(len(path) - 1), args
}
