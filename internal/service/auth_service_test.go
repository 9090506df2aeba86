package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/domain"
)

func newAuthEnv() (*testEnv, *AuthService) {
	env := newTestEnv()
	cfg := config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   60,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              bcrypt.MinCost,
	}
	authService := NewAuthService(AuthDependencies{
		Repos:  env.repos,
		Tokens: auth.NewTokenManager(cfg.JWTSecret, time.Hour),
		Config: cfg,
	})
	return env, authService
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	_, authService := newAuthEnv()

	user, err := authService.Register(ctx, RegisterInput{
		FullName: "Dana Example",
		Email:    "Dana@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)

	_, err = authService.Register(ctx, RegisterInput{
		FullName: "Dana Again",
		Email:    "dana@example.com",
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	token, loggedIn, err := authService.Login(ctx, "dana@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = authService.Login(ctx, "dana@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestCreateAdminRequiresSuperAdmin(t *testing.T) {
	ctx := context.Background()
	_, authService := newAuthEnv()

	_, err := authService.CreateAdmin(ctx, domain.Actor{ID: "someone"}, RegisterInput{
		FullName: "New Admin",
		Email:    "admin@example.com",
		Password: "long enough",
	}, domain.AdminLevelAdmin)
	require.Error(t, err)

	created, err := authService.CreateAdmin(ctx, domain.Actor{ID: "root", IsSuperAdmin: true}, RegisterInput{
		FullName: "New Admin",
		Email:    "admin@example.com",
		Password: "long enough",
	}, domain.AdminLevelAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)
	assert.Equal(t, domain.AdminLevelAdmin, created.AdminLevel)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	_, authService := newAuthEnv()

	_, err := authService.Register(ctx, RegisterInput{
		FullName: "Dana Example",
		Email:    "dana@example.com",
		Password: "first password",
	})
	require.NoError(t, err)

	// Unknown emails get a silent success.
	token, err := authService.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = authService.RequestPasswordReset(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, authService.ResetPassword(ctx, token, "second password"))

	_, _, err = authService.Login(ctx, "dana@example.com", "second password")
	require.NoError(t, err)

	err = authService.ResetPassword(ctx, token, "third password")
	require.Error(t, err, "tokens are single use")
}
