package middleware

import (
	"go-bom-graph/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestContext assigns a request id (reusing the caller's X-Request-ID when
// present), echoes it on the response and scopes the logger to it.
func RequestContext(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Locals("request_id", requestID)
		c.Set(HeaderRequestID, requestID)

		ctx := log.WithRequestID(c.UserContext(), requestID)
		ctx = log.WithFields(ctx, map[string]any{
			"method": c.Method(),
			"path":   c.Path(),
		})
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequestID returns the id assigned by RequestContext, or "" outside it.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("request_id").(string)
	return id
}
