package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger records one line per request. Capture endpoints are hit several
// times a second during a session, so those land at debug to keep the log
// readable while a verification is running.
func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case isCaptureRoute(c.Route().Path):
			level = slog.LevelDebug
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if requestID, ok := c.Locals("requestid").(string); ok {
			attrs = append(attrs, slog.String("request_id", requestID))
		}

		logger.Log(c.Context(), level, "http request", attrs...)

		return err
	}
}

func isCaptureRoute(routePath string) bool {
	return routePath == "/v1/sessions/:id/capture"
}
