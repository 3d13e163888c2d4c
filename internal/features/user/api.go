package user

import (
	"go-approvals/internal/config"
	"go-approvals/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	users.Get("/me", h.controller.Me)
	users.Get("/approvers", h.controller.ListApprovers)
}
