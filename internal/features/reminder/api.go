package reminder

import (
	"go-approvals/internal/common/models"
	"go-approvals/internal/config"
	"go-approvals/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReminderApi struct {
	controller *ReminderController
	users      middleware.UserLookup
	config     *config.Config
}

func NewReminderApi(controller *ReminderController, users middleware.UserLookup, config *config.Config) *ReminderApi {
	return &ReminderApi{
		controller: controller,
		users:      users,
		config:     config,
	}
}

// Setup registers the admin-only reminder routes
func (h *ReminderApi) Setup(app *fiber.App) {
	reminders := app.Group("/api/admin/reminders",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(h.users, models.RoleAdmin),
	)

	reminders.Post("/run", h.controller.RunCycle)
	reminders.Get("/last", h.controller.LastCycle)
	reminders.Get("/policy", h.controller.CurrentPolicy)
}
