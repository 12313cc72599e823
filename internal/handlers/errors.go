package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// ErrorHandler renders every error returned by a handler as
// {"status": code, "error": status text, "message": detail}.
// Errors that are not *fiber.Error are internal: logged, and their detail hidden.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An internal error occurred while processing the request"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		if code >= fiber.StatusInternalServerError {
			requestLogger(logger, c).Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"status":  code,
			"error":   utils.StatusMessage(code),
			"message": message,
		})
	}
}

// requestLogger tags logger with the id assigned by the requestid middleware.
func requestLogger(logger *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
