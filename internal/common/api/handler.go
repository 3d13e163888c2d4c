package api

import (
	"errors"

	"go-approvals/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

// Route is an interface for any feature that wants to register endpoints
type Route interface {
	Setup(app *fiber.App)
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrInvalidState):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// Error writes err as the JSON body with the mapped status.
func Error(ctx *fiber.Ctx, err error) error {
	return ctx.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
