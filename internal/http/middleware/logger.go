package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs each HTTP request with method, path, status and duration.
// The request_id field comes from the RequestID middleware, so RequestLogger
// must be registered after it.
func RequestLogger(log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		dur := time.Since(start)

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		log.Infow("http",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", float64(dur.Microseconds())/1000.0,
			"request_id", rid,
		)
		return err
	}
}
