package system

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

// Health reports liveness and store reachability.
func (c *HealthController) Health(ctx *fiber.Ctx) error {
	pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	if err := c.store.Ping(pingCtx); err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{"status": "ok"})
}
