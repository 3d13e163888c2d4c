package reminder

import (
	"go-approvals/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type ReminderController struct {
	Scheduler *Scheduler
}

func NewReminderController(scheduler *Scheduler) *ReminderController {
	return &ReminderController{Scheduler: scheduler}
}

// RunCycle triggers one reminder cycle immediately.
func (c *ReminderController) RunCycle(ctx *fiber.Ctx) error {
	report, err := c.Scheduler.RunNow(ctx.UserContext())
	if err != nil {
		return api.Error(ctx, err)
	}
	return ctx.JSON(report)
}

func (c *ReminderController) LastCycle(ctx *fiber.Ctx) error {
	report := c.Scheduler.LastReport()
	if report == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no cycle has run yet"})
	}
	return ctx.JSON(report)
}

// CurrentPolicy shows the cadence the next cycle will use.
func (c *ReminderController) CurrentPolicy(ctx *fiber.Ctx) error {
	p := c.Scheduler.engine.Policy()
	intervals := make(map[string]string, len(p.Intervals))
	for u, d := range p.Intervals {
		intervals[string(u)] = d.String()
	}
	return ctx.JSON(fiber.Map{
		"intervals":        intervals,
		"default_interval": p.DefaultInterval.String(),
		"escalate_after":   p.EscalateAfter.String(),
	})
}
