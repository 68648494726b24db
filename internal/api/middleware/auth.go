package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/veridesk/facegate/internal/domain"
)

// Auth guards the local API with the kiosk token. The agent binds to
// localhost; the token keeps other local processes from driving the camera
// or submitting attendance on the employee's behalf.
func Auth(kioskToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return domain.ErrUnauthorized
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(kioskToken)) != 1 {
			return domain.ErrUnauthorized
		}

		return c.Next()
	}
}

// extractBearerToken pulls the token from the Authorization header, or from
// the token query parameter for WebSocket upgrades where custom headers are
// not available to browser clients.
func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
