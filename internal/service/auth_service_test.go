package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pmolab/gpd-api/internal/models"
	appErrors "github.com/pmolab/gpd-api/pkg/errors"
)

type authUserRepoStub struct {
	users     map[string]*models.User
	lastLogin map[string]time.Time
}

func newAuthUserRepoStub() *authUserRepoStub {
	return &authUserRepoStub{
		users:     make(map[string]*models.User),
		lastLogin: make(map[string]time.Time),
	}
}

func (r *authUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := r.users[email]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *authUserRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	r.lastLogin[id] = ts
	return nil
}

type authAuditStub struct {
	logs []*models.AuditLog
}

func (a *authAuditStub) Create(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func seedUser(t *testing.T, repo *authUserRepoStub, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Alice Example",
		Active:       active,
	}
	repo.users[email] = user
	return user
}

func newAuthServiceForTest(repo *authUserRepoStub, audit *authAuditStub) *AuthService {
	return NewAuthService(repo, audit, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "gpd-api",
	})
}

func TestAuthLoginIssuesValidToken(t *testing.T) {
	repo := newAuthUserRepoStub()
	audit := &authAuditStub{}
	seedUser(t, repo, "alice@example.com", "s3cret", true)
	svc := newAuthServiceForTest(repo, audit)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "alice@example.com", resp.User.Email)
	require.NotZero(t, repo.lastLogin["user-1"])
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionLogin, audit.logs[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "Alice Example", claims.FullName)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	repo := newAuthUserRepoStub()
	seedUser(t, repo, "alice@example.com", "s3cret", true)
	svc := newAuthServiceForTest(repo, &authAuditStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(newAuthUserRepoStub(), &authAuditStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	repo := newAuthUserRepoStub()
	seedUser(t, repo, "alice@example.com", "s3cret", false)
	svc := newAuthServiceForTest(repo, &authAuditStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthServiceForTest(newAuthUserRepoStub(), &authAuditStub{})

	_, err := svc.ValidateToken("not-a-token")
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsWrongSecret(t *testing.T) {
	repo := newAuthUserRepoStub()
	seedUser(t, repo, "alice@example.com", "s3cret", true)
	issuer := newAuthServiceForTest(repo, &authAuditStub{})

	resp, err := issuer.Login(context.Background(), models.LoginRequest{
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, nil, AuthConfig{Secret: "different", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
