package approval

import (
	"go-approvals/internal/config"
	"go-approvals/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ApprovalApi struct {
	controller *ApprovalController
	config     *config.Config
}

func NewApprovalApi(controller *ApprovalController, config *config.Config) *ApprovalApi {
	return &ApprovalApi{
		controller: controller,
		config:     config,
	}
}

func (h *ApprovalApi) Setup(app *fiber.App) {
	tasks := app.Group("/api/tasks", middleware.AuthMiddleware(h.config.SkipAuth))

	tasks.Post("/", h.controller.CreateTask)
	tasks.Get("/:id", h.controller.GetTask)
	tasks.Post("/:id/approve", h.controller.ApproveTask)
	tasks.Post("/:id/reject", h.controller.RejectTask)
	tasks.Post("/:id/snooze", h.controller.SnoozeTask)
	tasks.Get("/:id/audit", h.controller.AuditTimeline)
	tasks.Get("/:id/audit/export", h.controller.ExportTimeline)

	app.Get("/api/dashboard", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Dashboard)
}
