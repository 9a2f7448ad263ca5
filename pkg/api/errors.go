package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rocket-telemetry/dashboard/pkg/chart"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
	"github.com/rocket-telemetry/dashboard/services"
)

// StatusForError maps domain errors onto HTTP status codes.
func StatusForError(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, telemetry.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, telemetry.ErrUnknownDataset),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, chart.ErrUnknownPanel):
		return fiber.StatusNotFound
	case errors.Is(err, telemetry.ErrNoDataset):
		return fiber.StatusConflict
	case telemetry.IsUserError(err):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(StatusForError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
