package dto

import (
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// RegisterRequest creates an end-user account.
type RegisterRequest struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password"`
}

// CreateAdminRequest provisions an admin account.
type CreateAdminRequest struct {
	RegisterRequest
	AdminLevel string `json:"admin_level"`
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest starts a reset flow.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm completes a reset flow.
type PasswordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest rotates the password of a signed-in account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserResponse is the account projection.
type UserResponse struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Role       string    `json:"role"`
	AdminLevel string    `json:"admin_level,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoginResponse carries the access token and the account.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse projects an account.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       string(user.Role),
		AdminLevel: string(user.AdminLevel),
		Status:     string(user.Status),
		CreatedAt:  user.CreatedAt,
	}
}
