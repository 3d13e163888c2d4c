package system

import (
	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	controller *HealthController
}

func NewHealthApi(controller *HealthController) *HealthApi {
	return &HealthApi{controller: controller}
}

// Setup registers the unauthenticated health route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", h.controller.Health)
}
