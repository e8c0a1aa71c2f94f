package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"trending-score-service/internal/transport/httpserver/dto"
)

// AdminAuth returns a middleware that guards the admin trigger surface with a
// shared bearer token. The check runs before any handler work: a bad or
// missing token is rejected with 401 without touching the database.
//
// An empty token disables the surface entirely (503 on every call), so a
// deployment without the secret configured cannot be triggered at all.
func AdminAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: "admin endpoints are disabled",
				Code:  "ADMIN_DISABLED",
			})
		}

		header := c.Get(fiber.HeaderAuthorization)
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid or missing admin token",
				Code:  "UNAUTHORIZED",
			})
		}

		return c.Next()
	}
}
