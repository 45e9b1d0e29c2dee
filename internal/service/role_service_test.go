package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-hub-api/internal/models"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

type mockRoleRepo struct {
	active      []models.RoleAssignment
	byID        *models.RoleAssignment
	created     *models.RoleAssignment
	deactivated []string
}

func (m *mockRoleRepo) ListActiveByPrincipal(ctx context.Context, principalID string) ([]models.RoleAssignment, error) {
	return m.active, nil
}

func (m *mockRoleRepo) FindByID(ctx context.Context, id string) (*models.RoleAssignment, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockRoleRepo) Create(ctx context.Context, a *models.RoleAssignment) error {
	m.created = a
	return nil
}

func (m *mockRoleRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

type mockSemesterLookup struct {
	semesters map[string]*models.Semester
}

func (m *mockSemesterLookup) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	s, ok := m.semesters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

const (
	testPrincipalID = "3f6f2cda-41f0-4360-9d53-9b188f04f4a2"
	testSemesterID  = "9a2b71d4-8f11-4ab8-9a5f-6d2de67f4af0"
)

func liveSemesters(ids ...string) *mockSemesterLookup {
	m := &mockSemesterLookup{semesters: make(map[string]*models.Semester)}
	for _, id := range ids {
		m.semesters[id] = &models.Semester{ID: id, Status: models.SemesterActive}
	}
	return m
}

func TestRoleServiceGrantScopedRole(t *testing.T) {
	repo := &mockRoleRepo{}
	audit := &capturedAudit{}
	svc := NewRoleService(repo, liveSemesters(testSemesterID), nil, audit, validator.New(), zap.NewNop())

	a, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "mentor",
		SemesterID:  testSemesterID,
	}, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, a.Role)
	require.NotNil(t, a.SemesterID)
	assert.Equal(t, testSemesterID, *a.SemesterID)
	assert.True(t, a.Active)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionRoleGrant, audit.records[0].Action)
}

func TestRoleServiceGrantSystemWideRole(t *testing.T) {
	repo := &mockRoleRepo{}
	svc := NewRoleService(repo, liveSemesters(testSemesterID), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	a, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "admin",
	}, "actor-1")
	require.NoError(t, err)
	assert.Nil(t, a.SemesterID)
}

func TestRoleServiceGrantUnknownRole(t *testing.T) {
	svc := NewRoleService(&mockRoleRepo{}, liveSemesters(testSemesterID), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "superuser",
	}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRoleServiceGrantSystemWideRejectsSemester(t *testing.T) {
	svc := NewRoleService(&mockRoleRepo{}, liveSemesters(testSemesterID), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "admin",
		SemesterID:  testSemesterID,
	}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRoleServiceGrantScopedRequiresSemester(t *testing.T) {
	svc := NewRoleService(&mockRoleRepo{}, liveSemesters(testSemesterID), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "student",
	}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRoleServiceGrantDuplicate(t *testing.T) {
	semID := testSemesterID
	repo := &mockRoleRepo{active: []models.RoleAssignment{
		{ID: "ra1", PrincipalID: testPrincipalID, Role: models.RoleMentor, SemesterID: &semID, Active: true},
	}}
	svc := NewRoleService(repo, liveSemesters(testSemesterID), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "mentor",
		SemesterID:  testSemesterID,
	}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRoleServiceGrantSameRoleDifferentSemester(t *testing.T) {
	otherSem := "1b9e4f72-4a8a-4a24-9c4a-2f54a0f0d111"
	repo := &mockRoleRepo{active: []models.RoleAssignment{
		{ID: "ra1", PrincipalID: testPrincipalID, Role: models.RoleMentor, SemesterID: &otherSem, Active: true},
	}}
	svc := NewRoleService(repo, liveSemesters(testSemesterID), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	a, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "mentor",
		SemesterID:  testSemesterID,
	}, "actor-1")
	require.NoError(t, err)
	require.NotNil(t, a.SemesterID)
	assert.Equal(t, testSemesterID, *a.SemesterID)
}

func TestRoleServiceRevoke(t *testing.T) {
	semID := testSemesterID
	repo := &mockRoleRepo{byID: &models.RoleAssignment{ID: "ra1", PrincipalID: testPrincipalID, Role: models.RoleMentor, SemesterID: &semID, Active: true}}
	audit := &capturedAudit{}
	svc := NewRoleService(repo, liveSemesters(testSemesterID), nil, audit, validator.New(), zap.NewNop())

	require.NoError(t, svc.Revoke(context.Background(), "ra1", "actor-1"))
	assert.Equal(t, []string{"ra1"}, repo.deactivated)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionRoleRevoke, audit.records[0].Action)
	assert.NotEmpty(t, audit.records[0].Before)
}

func TestRoleServiceGrantUnknownSemester(t *testing.T) {
	repo := &mockRoleRepo{}
	svc := NewRoleService(repo, liveSemesters(), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "mentor",
		SemesterID:  testSemesterID,
	}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestRoleServiceGrantDeletedSemester(t *testing.T) {
	repo := &mockRoleRepo{}
	semesters := &mockSemesterLookup{semesters: map[string]*models.Semester{
		testSemesterID: {ID: testSemesterID, Status: models.SemesterComplete, IsDeleted: true},
	}}
	svc := NewRoleService(repo, semesters, nil, &capturedAudit{}, validator.New(), zap.NewNop())

	_, err := svc.Grant(context.Background(), GrantRoleRequest{
		PrincipalID: testPrincipalID,
		Role:        "mentor",
		SemesterID:  testSemesterID,
	}, "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScopeConflict.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestRoleServiceRevokeNotFound(t *testing.T) {
	svc := NewRoleService(&mockRoleRepo{}, liveSemesters(testSemesterID), nil, &capturedAudit{}, validator.New(), zap.NewNop())

	err := svc.Revoke(context.Background(), "missing", "actor-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
