package service

import (
	"errors"
	"fmt"

	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

// mapLifecycleError translates engine errors into the HTTP-aware taxonomy so
// callers learn why a cascade was refused, including the blocking entity type
// and count.
func mapLifecycleError(err error) error {
	var blocked *lifecycle.BlockedByActiveChildrenError
	var protected *lifecycle.ProtectedEntityError
	var txErr *lifecycle.TransactionError

	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "entity not found")
	case errors.Is(err, lifecycle.ErrScopeConflict):
		return appErrors.Clone(appErrors.ErrScopeConflict, "")
	case errors.As(err, &blocked):
		return appErrors.Wrap(err, appErrors.ErrBlockedByChildren.Code, appErrors.ErrBlockedByChildren.Status,
			fmt.Sprintf("%d active %s rows block this operation", blocked.Count, blocked.Entity))
	case errors.As(err, &protected):
		return appErrors.Wrap(err, appErrors.ErrProtectedEntity.Code, appErrors.ErrProtectedEntity.Status,
			"principal holds a protected role and cannot be deleted")
	case errors.As(err, &txErr):
		return appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, appErrors.ErrTransaction.Message)
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lifecycle operation failed")
	}
}
