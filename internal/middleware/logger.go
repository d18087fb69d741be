package middleware

import (
	"errors"
	"time"

	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger writes one access log line per request, at error level for
// 5xx responses and warn for 4xx.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()

		// an error returned here is rendered later by the error handler
		status := c.Response().StatusCode()
		if chainErr != nil {
			status = statusOf(chainErr)
		}

		level := zapcore.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= fiber.StatusBadRequest:
			level = zapcore.WarnLevel
		}

		if ce := logger.Check(level, "request"); ce != nil {
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.IP()),
			}
			if actor := ActorFrom(c); actor.Authenticated() {
				fields = append(fields, zap.Uint("user_id", actor.ID))
			}
			if chainErr != nil {
				fields = append(fields, zap.Error(chainErr))
			}
			ce.Write(fields...)
		}
		return chainErr
	}
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return types.StatusOf(err)
}
