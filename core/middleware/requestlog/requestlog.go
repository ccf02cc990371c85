package requestlog

import (
	"time"

	"stremio-service/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// New creates a middleware that logs every request with its ray id.
func New(l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rl := logger.WithRayID(l, c)
		begin := time.Now()

		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("took", time.Since(begin)),
		}
		if err != nil {
			rl.Error("Request error", append(fields, zap.Error(err))...)
			return err
		}
		rl.Debug("Request handled", fields...)
		return nil
	}
}
