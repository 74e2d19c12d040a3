package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/maestro-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny     = "any"
	AuthRoleAdmin   = "admin"
	AuthRoleMentor  = "mentor"
	AuthRoleStudent = "student"
)

// AuthOptions configures the WithAuth helper. Authentication is required
// unless AllowAnonymous is set, and AllowAnonymous only takes effect for
// AuthRoleAny without a master requirement.
type AuthOptions struct {
	Role           string
	AllowAnonymous bool
	RequireMaster  bool
}

// RequireAuth is the middleware form of WithAuth for route groups.
func RequireAuth(opts AuthOptions) fiber.Handler {
	return WithAuth(func(c *fiber.Ctx) error { return c.Next() }, opts)
}

// WithAuth wraps a handler with basic authentication/authorization guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	allowAnonymous := opts.AllowAnonymous && role == AuthRoleAny && !opts.RequireMaster

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if userID == nil && !allowAnonymous {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if role != AuthRoleAny {
			currentRole := normalizeRoleValue(c.Locals("user_role"))
			if currentRole != role {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		}

		if opts.RequireMaster {
			isMaster, _ := c.Locals("is_master").(bool)
			if !isMaster {
				return utils.Fail(c, fiber.StatusForbidden, "master mentor required", nil)
			}
		}

		return handler(c)
	}
}
