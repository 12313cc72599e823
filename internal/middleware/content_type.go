package middleware

import (
	"mime"

	"github.com/gofiber/fiber/v2"
)

// RequireContentType rejects requests whose media type is not contentType with 415.
// Parameters such as charset are allowed.
func RequireContentType(contentType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderContentType)
		mediaType, _, err := mime.ParseMediaType(header)
		if header == "" || err != nil || mediaType != contentType {
			return fiber.NewError(fiber.StatusUnsupportedMediaType, "Content-Type must be "+contentType)
		}
		return c.Next()
	}
}
