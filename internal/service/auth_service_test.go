package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/thesis-hub-api/internal/models"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
)

type mockAuthRepo struct {
	principalByEmail *models.Principal
	principalByID    *models.Principal
	findByEmailErr   error
	findByIDErr      error
	refreshTokens    map[string]*models.RefreshToken
	createRefreshErr error
	lastLoginUpdated bool
	revokedAll       bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.principalByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.principalByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.principalByID != nil {
		return m.principalByID, nil
	}
	if m.principalByEmail != nil {
		return m.principalByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.createRefreshErr != nil {
		return m.createRefreshErr
	}
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokePrincipalRefreshTokens(ctx context.Context, principalID string) error {
	m.revokedAll = true
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour * 24,
		Issuer:             "thesis-hub",
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{principalByEmail: &models.Principal{ID: "p1", Email: "user@example.com", PasswordHash: string(password), Active: true}}
	audit := &capturedAudit{}
	svc := NewAuthService(repo, audit, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "p1", res.Principal.ID)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionLogin, audit.records[0].Action)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{principalByEmail: &models.Principal{ID: "p1", Email: "user@example.com", PasswordHash: string(password), Active: true}}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{principalByEmail: &models.Principal{ID: "p1", Email: "user@example.com", PasswordHash: string(password), Active: false}}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceLoginDeletedPrincipal(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{principalByEmail: &models.Principal{ID: "p1", Email: "user@example.com", PasswordHash: string(password), Active: true, IsDeleted: true}}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceLoginSingleSession(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{principalByEmail: &models.Principal{ID: "p1", Email: "user@example.com", PasswordHash: string(password), Active: true}}
	cfg := testAuthConfig()
	cfg.SingleSession = true
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), cfg)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.True(t, repo.revokedAll)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	principal := &models.Principal{ID: "p1", Email: "user@example.com", PasswordHash: "hash", Active: true}
	repo := &mockAuthRepo{principalByID: principal, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", PrincipalID: principal.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	audit := &capturedAudit{}
	svc := NewAuthService(repo, audit, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
	require.Len(t, audit.records, 1)
	assert.Equal(t, models.AuditActionTokenRefresh, audit.records[0].Action)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	principal := &models.Principal{ID: "p1", Active: true}
	repo := &mockAuthRepo{principalByID: principal, refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", PrincipalID: principal.ID, Token: "token", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceRefreshTokenUnknown(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "missing"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", PrincipalID: "p1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())

	require.NoError(t, svc.Logout(context.Background(), "token", "p1"))
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", PrincipalID: "p1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.Logout(context.Background(), "token", "p2")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.False(t, repo.refreshTokens["token"].Revoked)
}

func TestValidateToken(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())
	principal := &models.Principal{ID: "p1", Email: "user@example.com", FullName: "User"}
	token, _, err := svc.generateAccessToken(principal)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, claims.PrincipalID)
	assert.Equal(t, principal.Email, claims.Email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), testAuthConfig())
	principal := &models.Principal{ID: "p1"}
	token, _, err := svc.generateAccessToken(principal)
	require.NoError(t, err)

	other := NewAuthService(repo, &capturedAudit{}, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}
