package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/authz"
	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/service"
)

type fakeAssignments struct {
	assignments []models.RoleAssignment
	calls       int
}

func (f *fakeAssignments) ListActiveByPrincipal(ctx context.Context, principalID string) ([]models.RoleAssignment, error) {
	f.calls++
	return f.assignments, nil
}

type memoryAuditRepo struct {
	mu       sync.Mutex
	inserted []*models.AuditRecord
}

func (m *memoryAuditRepo) Insert(ctx context.Context, rec *models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, rec)
	return nil
}

func (m *memoryAuditRepo) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditRecord, int, error) {
	return nil, 0, nil
}

func (m *memoryAuditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditRecord, error) {
	return nil, nil
}

func rbacRouter(assignments []models.RoleAssignment, action authz.Action, auditRepo *memoryAuditRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	source := &fakeAssignments{assignments: assignments}
	rbac := NewRBAC(source, nil, service.NewAuditService(auditRepo, nil), nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextPrincipalKey, &models.JWTClaims{PrincipalID: "p1", Email: "p1@example.com"})
	})
	router.GET("/guarded", rbac.Require(action), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRBACAllowsSystemWideRole(t *testing.T) {
	router := rbacRouter([]models.RoleAssignment{
		{ID: "ra1", PrincipalID: "p1", Role: models.RoleAdmin, Active: true},
	}, authz.ActionManageSemesters, &memoryAuditRepo{})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestRBACAllowsScopedRoleOnItsSemester(t *testing.T) {
	semID := "sem-1"
	router := rbacRouter([]models.RoleAssignment{
		{ID: "ra1", PrincipalID: "p1", Role: models.RoleMentor, SemesterID: &semID, Active: true},
	}, authz.ActionManageTopics, &memoryAuditRepo{})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded?semester_id=sem-1", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestRBACSemesterHeaderFallback(t *testing.T) {
	semID := "sem-1"
	router := rbacRouter([]models.RoleAssignment{
		{ID: "ra1", PrincipalID: "p1", Role: models.RoleMentor, SemesterID: &semID, Active: true},
	}, authz.ActionManageTopics, &memoryAuditRepo{})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(SemesterHeader, "sem-1")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestRBACDeniesWrongSemesterAndAudits(t *testing.T) {
	semID := "sem-1"
	auditRepo := &memoryAuditRepo{}
	router := rbacRouter([]models.RoleAssignment{
		{ID: "ra1", PrincipalID: "p1", Role: models.RoleMentor, SemesterID: &semID, Active: true},
	}, authz.ActionManageTopics, auditRepo)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded?semester_id=sem-2", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	auditRepo.mu.Lock()
	defer auditRepo.mu.Unlock()
	if len(auditRepo.inserted) != 1 {
		t.Fatalf("expected one audit record, got %d", len(auditRepo.inserted))
	}
	if auditRepo.inserted[0].Action != models.AuditActionAccessDenied {
		t.Fatalf("unexpected audit action: %s", auditRepo.inserted[0].Action)
	}
	if auditRepo.inserted[0].Severity != models.AuditWarning {
		t.Fatalf("unexpected audit severity: %s", auditRepo.inserted[0].Severity)
	}
}

func TestRBACDeniesMissingSemesterContext(t *testing.T) {
	semID := "sem-1"
	router := rbacRouter([]models.RoleAssignment{
		{ID: "ra1", PrincipalID: "p1", Role: models.RoleMentor, SemesterID: &semID, Active: true},
	}, authz.ActionManageTopics, &memoryAuditRepo{})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRBACRejectsWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rbac := NewRBAC(&fakeAssignments{}, nil, service.NewAuditService(&memoryAuditRepo{}, nil), nil)

	router := gin.New()
	router.GET("/guarded", rbac.Require(authz.ActionManageTopics), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}
