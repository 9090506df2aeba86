package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/complaint-portal/pkg/util"
)

// RequireAdmin allows only admin accounts through.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsAdmin() {
			return apperrors.NewForbidden("admin access required")
		}
		return c.Next()
	}
}

// RequireSuperAdmin allows only super admin accounts through.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.IsSuperAdmin() {
			return apperrors.NewForbidden("super admin access required")
		}
		return c.Next()
	}
}

// RequireUser allows only non-admin end-user accounts through.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.IsAdmin() {
			return apperrors.NewForbidden("user access required")
		}
		return c.Next()
	}
}
