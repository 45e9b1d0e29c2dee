package lifecycle

import (
	"errors"
	"fmt"

	"github.com/noah-isme/thesis-hub-api/internal/models"
)

var (
	// ErrNotFound means the cascade root does not exist.
	ErrNotFound = errors.New("lifecycle: root entity not found")
	// ErrScopeConflict means the scope semester is missing or itself deleted.
	ErrScopeConflict = errors.New("lifecycle: scope semester missing or deleted")
	// ErrInvalidRoot means the entity type cannot start a cascade.
	ErrInvalidRoot = errors.New("lifecycle: entity type is not a cascade root")
)

// ProtectedEntityError refuses a cascade against a principal holding a
// protected role. No writes happen before this is raised.
type ProtectedEntityError struct {
	Roles []models.RoleName
}

func (e *ProtectedEntityError) Error() string {
	return fmt.Sprintf("lifecycle: principal holds protected roles %v", e.Roles)
}

// BlockedByActiveChildrenError aborts a cascade because a BLOCK-policy
// relationship still has active children.
type BlockedByActiveChildrenError struct {
	Entity EntityType
	Count  int
}

func (e *BlockedByActiveChildrenError) Error() string {
	return fmt.Sprintf("lifecycle: blocked by %d active %s rows", e.Count, e.Entity)
}

// TransactionError wraps a store-level fault. The cascade was rolled back in
// full and the caller may retry.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("lifecycle: transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may safely retry the operation.
// Precondition failures are final; only transaction faults are transient.
func Retryable(err error) bool {
	var txErr *TransactionError
	return errors.As(err, &txErr)
}
