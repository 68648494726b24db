package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(token string) *fiber.App {
	app := fiber.New()
	app.Use(Auth(token))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuth(t *testing.T) {
	t.Run("accepts the kiosk token", func(t *testing.T) {
		app := newAuthApp("secret-token")
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer secret-token")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("accepts the token query parameter", func(t *testing.T) {
		app := newAuthApp("secret-token")
		req := httptest.NewRequest("GET", "/protected?token=secret-token", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("rejects a wrong token", func(t *testing.T) {
		app := newAuthApp("secret-token")
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer wrong")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		app := newAuthApp("secret-token")
		req := httptest.NewRequest("GET", "/protected", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects a malformed scheme", func(t *testing.T) {
		app := newAuthApp("secret-token")
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic secret-token")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
