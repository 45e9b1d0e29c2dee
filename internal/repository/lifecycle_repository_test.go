package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/thesis-hub-api/internal/lifecycle"
	"github.com/noah-isme/thesis-hub-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var (
	edgeGroupSemester = lifecycle.Edge{
		Entity: lifecycle.EntityGroup, Parent: lifecycle.EntitySemester,
		FKColumn: "semester_id", Policy: lifecycle.PolicyCascade, SemesterColumn: "semester_id",
	}
	edgeMemberGroup = lifecycle.Edge{
		Entity: lifecycle.EntityGroupMember, Parent: lifecycle.EntityGroup,
		FKColumn: "group_id", Policy: lifecycle.PolicyCascade, SemesterColumn: "semester_id",
	}
)

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRootNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_deleted, row_to_json(t.*) FROM topics t WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"is_deleted", "row_to_json"}))
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		_, err := tx.GetRoot(context.Background(), lifecycle.EntityTopic, "missing")
		return err
	})
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRootSnapshotsRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_deleted, row_to_json(t.*) FROM semesters t WHERE id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"is_deleted", "row_to_json"}).AddRow(false, []byte(`{"id":"s1"}`)))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		state, err := tx.GetRoot(context.Background(), lifecycle.EntitySemester, "s1")
		require.NoError(t, err)
		assert.False(t, state.IsDeleted)
		assert.JSONEq(t, `{"id":"s1"}`, string(state.Snapshot))
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteReachableNestedPath(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	path := lifecycle.Path{edgeGroupSemester, edgeMemberGroup}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_members SET is_deleted = TRUE, updated_at = $2 WHERE is_deleted = FALSE AND group_id IN (SELECT id FROM groups WHERE semester_id = $1)")).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		n, err := tx.SoftDeleteReachable(context.Background(), path, "s1", "")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteReachableScoped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	path := lifecycle.Path{edgeMemberGroup}

	// Scoped cascades filter on the leaf's denormalized semester column.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE group_members SET is_deleted = TRUE, updated_at = $3 WHERE is_deleted = FALSE AND group_id = $1 AND semester_id = $2")).
		WithArgs("g1", "sem-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		n, err := tx.SoftDeleteReachable(context.Background(), path, "g1", "sem-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreReachableParentGuards(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	path := lifecycle.Path{edgeGroupSemester}
	guards := []lifecycle.Edge{edgeGroupSemester}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE groups SET is_deleted = FALSE, updated_at = $2 WHERE is_deleted = TRUE AND semester_id = $1 AND NOT EXISTS (SELECT 1 FROM semesters p WHERE p.id = groups.semester_id AND p.is_deleted = TRUE)")).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		n, err := tx.RestoreReachable(context.Background(), path, "s1", guards)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreReachableRequiresLiveIntermediates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	path := lifecycle.Path{edgeGroupSemester, edgeMemberGroup}

	// The inner subquery only admits non-deleted parents so members under a
	// still-deleted group stay deleted.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("group_id IN (SELECT id FROM groups WHERE semester_id = $1 AND is_deleted = FALSE)")).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		n, err := tx.RestoreReachable(context.Background(), path, "s1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountReachableBlockCheck(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	path := lifecycle.Path{{
		Entity: lifecycle.EntityTopicRegistration, Parent: lifecycle.EntityTopic,
		FKColumn: "topic_id", Policy: lifecycle.PolicyBlock, SemesterColumn: "semester_id",
	}}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM topic_registrations WHERE is_deleted = FALSE AND topic_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		n, err := tx.CountReachable(context.Background(), path, "t1", "")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveDirectChildren(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM groups WHERE semester_id = $1 AND is_deleted = FALSE")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		n, err := tx.CountActiveDirectChildren(context.Background(), edgeGroupSemester, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRootDeleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE topics SET is_deleted = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("t1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		return tx.SetRootDeleted(context.Background(), lifecycle.EntityTopic, "t1", true)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAuditInsideTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLifecycleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entityID := "t1"
	err := repo.WithinTx(context.Background(), func(tx lifecycle.Tx) error {
		return tx.InsertAudit(context.Background(), &models.AuditRecord{
			Action:      models.AuditActionCascadeDelete,
			EntityType:  "topic",
			EntityID:    &entityID,
			Severity:    models.AuditInfo,
			Description: "cascade",
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
