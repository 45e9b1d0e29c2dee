package lifecycle

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/authz"
	"github.com/noah-isme/thesis-hub-api/internal/models"
)

// RootState is the current persisted state of a cascade root, read inside the
// cascade transaction so concurrent writers (such as the semester status
// sweeper) cannot leave the coordinator acting on stale data.
type RootState struct {
	ID        string
	IsDeleted bool
	Snapshot  json.RawMessage
}

// Tx exposes the transactional primitives a cascade runs on. Implementations
// must scope every call to one database transaction.
type Tx interface {
	// GetRoot re-reads a root row, returning ErrNotFound when absent.
	GetRoot(ctx context.Context, entity EntityType, id string) (*RootState, error)
	// ActiveRoles lists the active, non-deleted role names of a principal.
	ActiveRoles(ctx context.Context, principalID string) ([]models.RoleName, error)
	// CountReachable counts active rows of the path's leaf entity reachable
	// from the root, optionally restricted to one semester.
	CountReachable(ctx context.Context, path Path, rootID, scopeSemesterID string) (int, error)
	// SoftDeleteReachable marks reachable active leaf rows deleted and
	// returns the number of rows flipped.
	SoftDeleteReachable(ctx context.Context, path Path, rootID, scopeSemesterID string) (int64, error)
	// RestoreReachable un-deletes reachable leaf rows whose every parent
	// named in guards is non-deleted.
	RestoreReachable(ctx context.Context, path Path, rootID string, guards []Edge) (int64, error)
	// CountActiveDirectChildren counts active child rows directly referencing
	// the root through the edge, regardless of semester.
	CountActiveDirectChildren(ctx context.Context, edge Edge, rootID string) (int, error)
	// SetRootDeleted flips the root's is_deleted flag.
	SetRootDeleted(ctx context.Context, entity EntityType, id string, deleted bool) error
	// InsertAudit appends an audit record within the transaction.
	InsertAudit(ctx context.Context, rec *models.AuditRecord) error
}

// Store opens cascade transactions.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Recorder receives best-effort audit records for failures. Cascade summary
// records do not go through it; they commit with the cascade.
type Recorder interface {
	Record(ctx context.Context, rec *models.AuditRecord)
}

// Result reports what a cascade changed. AlreadyInState marks an idempotent
// no-op: the root was already in the requested state and nothing was written.
type Result struct {
	RootType       EntityType           `json:"root_type"`
	RootID         string               `json:"root_id"`
	AlreadyInState bool                 `json:"already_in_state"`
	RootMutated    bool                 `json:"root_mutated"`
	Affected       map[EntityType]int64 `json:"affected"`
}

// Coordinator walks the entity graph catalog and applies soft-delete and
// restore cascades inside single transactions.
type Coordinator struct {
	store  Store
	audit  Recorder
	logger *zap.Logger
}

// NewCoordinator builds a Coordinator.
func NewCoordinator(store Store, audit Recorder, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{store: store, audit: audit, logger: logger}
}

// CascadeSoftDelete marks the root and every reachable CASCADE dependent as
// deleted in one transaction. With a scope semester only rows of that
// semester are touched, and the root itself survives while it is still
// referenced outside the scope. Re-running against an already-deleted root is
// a no-op reported through Result.AlreadyInState.
func (c *Coordinator) CascadeSoftDelete(ctx context.Context, root EntityType, rootID, actorID, scopeSemesterID string) (*Result, error) {
	if !IsRoot(root) {
		return nil, ErrInvalidRoot
	}

	res := &Result{RootType: root, RootID: rootID, Affected: make(map[EntityType]int64)}

	err := c.store.WithinTx(ctx, func(tx Tx) error {
		state, err := tx.GetRoot(ctx, root, rootID)
		if err != nil {
			return err
		}
		if state.IsDeleted {
			res.AlreadyInState = true
			return nil
		}

		if scopeSemesterID != "" {
			scope, err := tx.GetRoot(ctx, EntitySemester, scopeSemesterID)
			if errors.Is(err, ErrNotFound) || (err == nil && scope.IsDeleted) {
				return ErrScopeConflict
			}
			if err != nil {
				return err
			}
		}

		if root == EntityPrincipal {
			roles, err := tx.ActiveRoles(ctx, rootID)
			if err != nil {
				return err
			}
			var protected []models.RoleName
			for _, r := range roles {
				if authz.IsProtected(r) {
					protected = append(protected, r)
				}
			}
			if len(protected) > 0 {
				return &ProtectedEntityError{Roles: protected}
			}
		}

		paths := PathsFrom(root)

		// BLOCK relationships veto the cascade before anything is written.
		for _, path := range paths {
			if path.Leaf().Policy != PolicyBlock {
				continue
			}
			n, err := tx.CountReachable(ctx, path, rootID, scopeSemesterID)
			if err != nil {
				return err
			}
			if n > 0 {
				return &BlockedByActiveChildrenError{Entity: path.Leaf().Entity, Count: n}
			}
		}

		// Deepest paths first so children flip before their owners.
		for _, path := range paths {
			if path.Leaf().Policy != PolicyCascade {
				continue
			}
			n, err := tx.SoftDeleteReachable(ctx, path, rootID, scopeSemesterID)
			if err != nil {
				return err
			}
			res.Affected[path.Leaf().Entity] += n
		}

		keepRoot := false
		if scopeSemesterID != "" {
			for _, edge := range ChildEdges(root) {
				if edge.Policy == PolicyIgnore {
					continue
				}
				n, err := tx.CountActiveDirectChildren(ctx, edge, rootID)
				if err != nil {
					return err
				}
				if n > 0 {
					keepRoot = true
					break
				}
			}
		}
		if !keepRoot {
			if err := tx.SetRootDeleted(ctx, root, rootID, true); err != nil {
				return err
			}
			res.RootMutated = true
		}

		return tx.InsertAudit(ctx, c.summaryRecord(models.AuditActionCascadeDelete, actorID, res, scopeSemesterID, state.Snapshot))
	})
	if err != nil {
		return nil, c.fail(ctx, models.AuditActionCascadeDelete, root, rootID, actorID, err)
	}
	return res, nil
}

// Restore flips the root back to non-deleted and walks the graph top-down,
// re-validating each row against its parents: a child only comes back when
// every one of its direct parents is itself non-deleted.
func (c *Coordinator) Restore(ctx context.Context, root EntityType, rootID, actorID string) (*Result, error) {
	if !IsRoot(root) {
		return nil, ErrInvalidRoot
	}

	res := &Result{RootType: root, RootID: rootID, Affected: make(map[EntityType]int64)}

	err := c.store.WithinTx(ctx, func(tx Tx) error {
		state, err := tx.GetRoot(ctx, root, rootID)
		if err != nil {
			return err
		}
		if !state.IsDeleted {
			res.AlreadyInState = true
			return nil
		}

		if err := tx.SetRootDeleted(ctx, root, rootID, false); err != nil {
			return err
		}
		res.RootMutated = true

		// Shallowest first: a parent must be restored before its children
		// pass the guard check.
		paths := PathsFrom(root)
		for i := len(paths) - 1; i >= 0; i-- {
			path := paths[i]
			if path.Leaf().Policy != PolicyCascade {
				continue
			}
			n, err := tx.RestoreReachable(ctx, path, rootID, ParentEdges(path.Leaf().Entity))
			if err != nil {
				return err
			}
			res.Affected[path.Leaf().Entity] += n
		}

		return tx.InsertAudit(ctx, c.summaryRecord(models.AuditActionCascadeRestore, actorID, res, "", state.Snapshot))
	})
	if err != nil {
		return nil, c.fail(ctx, models.AuditActionCascadeRestore, root, rootID, actorID, err)
	}
	return res, nil
}

func (c *Coordinator) summaryRecord(action, actorID string, res *Result, scopeSemesterID string, before json.RawMessage) *models.AuditRecord {
	meta := map[string]interface{}{
		"affected":     res.Affected,
		"root_mutated": res.RootMutated,
	}
	if scopeSemesterID != "" {
		meta["scope_semester_id"] = scopeSemesterID
	}
	metaJSON, _ := json.Marshal(meta)

	rec := &models.AuditRecord{
		Action:      action,
		EntityType:  string(res.RootType),
		EntityID:    &res.RootID,
		Severity:    models.AuditInfo,
		Description: action + " cascade",
		Metadata:    metaJSON,
		Before:      before,
	}
	if actorID != "" {
		rec.ActorID = &actorID
	}
	return rec
}

// fail classifies the transaction outcome, records a best-effort audit record
// outside the rolled-back transaction, and returns the error the caller sees.
func (c *Coordinator) fail(ctx context.Context, action string, root EntityType, rootID, actorID string, err error) error {
	var blocked *BlockedByActiveChildrenError
	var protected *ProtectedEntityError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrScopeConflict):
	case errors.As(err, &blocked), errors.As(err, &protected):
	default:
		err = &TransactionError{Err: err}
	}

	c.logger.Warn("cascade failed",
		zap.String("action", action),
		zap.String("root_type", string(root)),
		zap.String("root_id", rootID),
		zap.Error(err),
	)

	if c.audit != nil {
		metaJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		rec := &models.AuditRecord{
			Action:      action,
			EntityType:  string(root),
			EntityID:    &rootID,
			Severity:    models.AuditWarning,
			Description: action + " cascade failed",
			Metadata:    metaJSON,
		}
		if actorID != "" {
			rec.ActorID = &actorID
		}
		c.audit.Record(ctx, rec)
	}
	return err
}
