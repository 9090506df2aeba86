package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AdminLevel distinguishes ordinary admins from the super admin tier.
type AdminLevel string

const (
	AdminLevelNone  AdminLevel = ""
	AdminLevelAdmin AdminLevel = "admin"
	AdminLevelSuper AdminLevel = "super_admin"
)

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the domain model for both end-users and admins.
type User struct {
	ID           string
	FullName     string
	Email        string
	Phone        *string
	PasswordHash string
	Role         Role
	AdminLevel   AdminLevel
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account holds any administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSuperAdmin reports whether the account holds the top administrative role.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleAdmin && u.AdminLevel == AdminLevelSuper
}

// Actor converts the account into the capability value the engine consumes.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, IsSuperAdmin: u.IsSuperAdmin()}
}
