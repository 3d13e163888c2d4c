package middleware

import (
	"context"
	"slices"

	"go-approvals/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

// UserLookup resolves the stored user behind a token. Roles are read from
// the store so a demoted user loses access before the token expires.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RequireRole only lets users holding one of roles through.
func RequireRole(users UserLookup, roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID := ActorID(c)
		if actorID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		u, err := users.GetUserByID(c.UserContext(), actorID)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: unknown user",
			})
		}

		if !slices.Contains(roles, u.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}
