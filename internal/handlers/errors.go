package handlers

import (
	"movies-catalog/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler is the application-wide Fiber error handler. Typed
// application errors keep their status and message; everything else becomes
// a generic 500 so internals never leak to clients.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		if appErr, ok := apperr.As(err); ok {
			status = appErr.Status
			message = appErr.Message
		} else if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		entry := log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"status": status,
		})
		if status >= fiber.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Debug("Request rejected")
		}

		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}
