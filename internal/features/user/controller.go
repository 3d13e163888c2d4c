package user

import (
	"go-approvals/internal/common/api"
	"go-approvals/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

// Me returns the authenticated user.
func (c *UserController) Me(ctx *fiber.Ctx) error {
	u, err := c.Service.GetUserByID(ctx.UserContext(), middleware.ActorID(ctx))
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(u)
}

// ListApprovers returns the users a requester may pick as approver.
func (c *UserController) ListApprovers(ctx *fiber.Ctx) error {
	users, err := c.Service.ListApprovers(ctx.UserContext())
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(users)
}
