package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

type stubAuthRepo struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	tokens       map[string]*models.RefreshToken
	revokedAll   []string
	created      []*models.User
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		usersByEmail: map[string]*models.User{},
		usersByID:    map[string]*models.User{},
		tokens:       map[string]*models.RefreshToken{},
	}
}

func (s *stubAuthRepo) add(user *models.User) {
	s.usersByEmail[user.Email] = user
	s.usersByID[user.ID] = user
}

func (s *stubAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubAuthRepo) Create(ctx context.Context, user *models.User) error {
	s.created = append(s.created, user)
	s.add(user)
	return nil
}

func (s *stubAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *stubAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if u, ok := s.usersByID[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (s *stubAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *stubAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, t := range s.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (s *stubAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedAll = append(s.revokedAll, userID)
	return nil
}

type stubProfileRepo struct {
	created []*models.Profile
}

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	s.created = append(s.created, profile)
	return nil
}

func authTestConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "skillbridge-test",
	}
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	repo := newStubAuthRepo()
	profiles := &stubProfileRepo{}
	svc := NewAuthService(repo, profiles, nil, nil, authTestConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "jane@example.com",
		Password:  "s3cret-pass",
		Role:      models.RoleStudent,
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Len(t, profiles.created, 1)
	assert.Equal(t, repo.created[0].ID, profiles.created[0].ID)
	assert.Equal(t, models.RoleStudent, profiles.created[0].Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.created[0].ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "usr-1", Email: "jane@example.com", Active: true})
	svc := NewAuthService(repo, &stubProfileRepo{}, nil, nil, authTestConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "jane@example.com",
		Password:  "s3cret-pass",
		Role:      models.RoleStudent,
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "usr-1", Email: "jane@example.com", PasswordHash: hashFor(t, "s3cret-pass"), Role: models.RoleStudent, Active: true})
	svc := NewAuthService(repo, &stubProfileRepo{}, nil, nil, authTestConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "usr-1", resp.User.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "usr-1", Email: "jane@example.com", PasswordHash: hashFor(t, "s3cret-pass"), Role: models.RoleStudent, Active: true})
	svc := NewAuthService(repo, &stubProfileRepo{}, nil, nil, authTestConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	require.Error(t, err)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "usr-1", Email: "jane@example.com", PasswordHash: hashFor(t, "s3cret-pass"), Role: models.RoleStudent, Active: false})
	svc := NewAuthService(repo, &stubProfileRepo{}, nil, nil, authTestConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jane@example.com", Password: "s3cret-pass"})
	require.Error(t, err)
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "usr-1", Email: "jane@example.com", Role: models.RoleStudent, Active: true})
	repo.tokens["old-token"] = &models.RefreshToken{ID: "rt-1", UserID: "usr-1", Token: "old-token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := NewAuthService(repo, &stubProfileRepo{}, nil, nil, authTestConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.True(t, repo.tokens["old-token"].Revoked)
}

func TestRefreshTokenExpiredRejected(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "usr-1", Email: "jane@example.com", Role: models.RoleStudent, Active: true})
	repo.tokens["old-token"] = &models.RefreshToken{ID: "rt-1", UserID: "usr-1", Token: "old-token", ExpiresAt: time.Now().Add(-time.Minute)}
	svc := NewAuthService(repo, &stubProfileRepo{}, nil, nil, authTestConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add(&models.User{ID: "usr-1", Email: "jane@example.com", PasswordHash: hashFor(t, "old-password"), Role: models.RoleStudent, Active: true})
	svc := NewAuthService(repo, &stubProfileRepo{}, nil, nil, authTestConfig())

	err := svc.ChangePassword(context.Background(), "usr-1", models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedAll, "usr-1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.usersByID["usr-1"].PasswordHash), []byte("new-password")))
}
