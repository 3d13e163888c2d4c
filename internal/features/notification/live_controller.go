package notification

import (
	"time"

	"go-approvals/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	actorLocal   = "live_actor_id"
	pingInterval = 30 * time.Second
)

type LiveController struct {
	hub    *Hub
	logger *zap.Logger
}

func NewLiveController(hub *Hub, logger *zap.Logger) *LiveController {
	return &LiveController{hub: hub, logger: logger}
}

// Upgrade rejects plain HTTP requests and remembers who is connecting.
func (h *LiveController) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(actorLocal, middleware.ActorID(c))
	return c.Next()
}

// Stream forwards the actor's notifications as JSON frames until the
// client goes away.
func (h *LiveController) Stream(c *websocket.Conn) {
	userID, _ := c.Locals(actorLocal).(string)
	if userID == "" {
		_ = c.Close()
		return
	}

	sub := h.hub.Subscribe(userID)
	defer sub.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				h.logger.Debug("live write failed", zap.String("user_id", userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
