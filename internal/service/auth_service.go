package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/repository"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// AuthService handles registration, login and password management.
type AuthService struct {
	repos  repository.Repositories
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// AuthDependencies bundles requirements for the service.
type AuthDependencies struct {
	Repos  repository.Repositories
	Tokens *auth.TokenManager
	Config config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		repos:  deps.Repos,
		tokens: deps.Tokens,
		cfg:    deps.Config,
	}
}

// RegisterInput describes a new end-user account.
type RegisterInput struct {
	FullName string
	Email    string
	Phone    *string
	Password string
}

// Register creates an end-user account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" || email == "" {
		return nil, apperrors.NewValidationError("full name and email are required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if existing, err := s.repos.Users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("an account with this email already exists", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CreateAdmin provisions an admin account. Only super admins may do this.
func (s *AuthService) CreateAdmin(ctx context.Context, actor domain.Actor, input RegisterInput, level domain.AdminLevel) (*domain.User, error) {
	if !actor.IsSuperAdmin {
		return nil, apperrors.NewForbidden("Only a super admin can create admin accounts.")
	}
	switch level {
	case domain.AdminLevelAdmin, domain.AdminLevelSuper:
	default:
		return nil, apperrors.NewValidationError("invalid admin level", nil)
	}

	user, err := s.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	user.Role = domain.RoleAdmin
	user.AdminLevel = level
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if user.Status != domain.UserStatusActive {
		return "", nil, apperrors.NewForbidden("account suspended")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, apperrors.NewUnauthorized("invalid email or password")
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, apperrors.MapError(err)
	}
	return token, user, nil
}

// RequestPasswordReset issues a single-use reset token. The token is
// returned to the caller here; delivery is the notification layer's job.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists.
		return "", nil
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.PasswordResetTTLMinutes) * time.Minute),
	}
	if err := s.repos.PasswordResets.Create(ctx, token); err != nil {
		return "", apperrors.MapError(err)
	}
	return token.Token, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	token, err := s.repos.PasswordResets.GetByToken(ctx, tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired reset token")
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("invalid or expired reset token")
	}

	user, err := s.repos.Users.GetByID(ctx, token.UserID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.repos.PasswordResets.MarkUsed(ctx, token.ID))
}

// ChangePassword updates the password for an authenticated user.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	return apperrors.MapError(s.repos.Users.Update(ctx, user))
}
