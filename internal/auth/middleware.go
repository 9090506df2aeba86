package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/domain"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

const principalKey = "auth.principal"

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID     string
	Role       domain.Role
	AdminLevel domain.AdminLevel
}

// IsAdmin reports whether the principal holds any admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// IsSuperAdmin reports whether the principal is a super admin.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == domain.RoleAdmin && p.AdminLevel == domain.AdminLevelSuper
}

// Actor converts the principal into the engine's capability value.
func (p Principal) Actor() domain.Actor {
	return domain.Actor{ID: p.UserID, IsSuperAdmin: p.IsSuperAdmin()}
}

// Middleware validates the bearer token and stores the principal in locals.
func Middleware(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return apperrors.NewUnauthorized("missing bearer token")
		}
		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return apperrors.NewUnauthorized("invalid or expired token")
		}
		c.Locals(principalKey, Principal{
			UserID:     claims.UserID,
			Role:       claims.Role,
			AdminLevel: claims.AdminLevel,
		})
		return c.Next()
	}
}

// PrincipalFrom extracts the authenticated principal, if present.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	principal, ok := c.Locals(principalKey).(Principal)
	return principal, ok
}
