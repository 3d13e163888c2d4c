package notification

import (
	"go-approvals/internal/config"
	"go-approvals/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type LiveApi struct {
	controller *LiveController
	config     *config.Config
}

func NewLiveApi(controller *LiveController, config *config.Config) *LiveApi {
	return &LiveApi{controller: controller, config: config}
}

// Setup registers the live notification feed
func (h *LiveApi) Setup(app *fiber.App) {
	app.Get("/api/ws",
		middleware.AuthMiddleware(h.config.SkipAuth),
		h.controller.Upgrade,
		websocket.New(h.controller.Stream),
	)
}
