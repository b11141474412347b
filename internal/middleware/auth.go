package middleware

import (
	"strings"

	"movies-catalog/internal/auth"
	"movies-catalog/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID = "userID"
	LocalRole   = "role"
	LocalToken  = "token"
)

// BearerToken returns the bearer token from the Authorization header, or ""
// when none is present.
func BearerToken(c *fiber.Ctx) string {
	return strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
}

// RequireAuth resolves the bearer token against the session store and puts
// the caller's identity into locals. Missing or unknown tokens get a 401.
func RequireAuth(sessions auth.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header required"})
		}

		session, ok := sessions.Resolve(token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalRole, session.Role)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
		}
		return c.Next()
	}
}

// OptionalAuth resolves the token when one is supplied but never rejects
// the request.
func OptionalAuth(sessions auth.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := BearerToken(c); token != "" {
			if session, ok := sessions.Resolve(token); ok {
				c.Locals(LocalUserID, session.UserID)
				c.Locals(LocalRole, session.Role)
				c.Locals(LocalToken, token)
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's id from locals.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}
