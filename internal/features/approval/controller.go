package approval

import (
	"fmt"

	"go-approvals/internal/common/api"
	"go-approvals/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApprovalController struct {
	Service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{Service: service}
}

// CreateTask opens a new request assigned to the given approver.
func (c *ApprovalController) CreateTask(ctx *fiber.Ctx) error {
	var input CreateTaskInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	task, err := c.Service.Create(ctx.UserContext(), middleware.ActorID(ctx), input)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(task)
}

func (c *ApprovalController) GetTask(ctx *fiber.Ctx) error {
	task, err := c.Service.Get(ctx.UserContext(), ctx.Params("id"), middleware.ActorID(ctx))
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(task)
}

func (c *ApprovalController) ApproveTask(ctx *fiber.Ctx) error {
	var input DecisionInput
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&input); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	task, err := c.Service.Approve(ctx.UserContext(), ctx.Params("id"), middleware.ActorID(ctx), input.Comment)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(task)
}

func (c *ApprovalController) RejectTask(ctx *fiber.Ctx) error {
	var input DecisionInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	task, err := c.Service.Reject(ctx.UserContext(), ctx.Params("id"), middleware.ActorID(ctx), input.Comment)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(task)
}

func (c *ApprovalController) SnoozeTask(ctx *fiber.Ctx) error {
	var input SnoozeInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	task, err := c.Service.Snooze(ctx.UserContext(), ctx.Params("id"), middleware.ActorID(ctx), input.Hours)
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(task)
}

func (c *ApprovalController) AuditTimeline(ctx *fiber.Ctx) error {
	logs, err := c.Service.AuditTimeline(ctx.UserContext(), ctx.Params("id"), middleware.ActorID(ctx))
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(logs)
}

func (c *ApprovalController) ExportTimeline(ctx *fiber.Ctx) error {
	data, filename, err := c.Service.ExportTimeline(ctx.UserContext(), ctx.Params("id"), middleware.ActorID(ctx))
	if err != nil {
		return api.Error(ctx, err)
	}

	ctx.Set(fiber.HeaderContentType, xlsxContentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Send(data)
}

func (c *ApprovalController) Dashboard(ctx *fiber.Ctx) error {
	board, err := c.Service.Dashboard(ctx.UserContext(), middleware.ActorID(ctx))
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(board)
}
