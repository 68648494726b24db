package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Handler upgrades the connection and streams session events. The optional
// session_id query parameter narrows the stream to one session; without it
// the client receives every event.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		sessionID := uuid.Nil
		if raw := c.Query("session_id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				_ = c.Close()
				return
			}
			sessionID = parsed
		}

		client := &Client{
			hub:       hub,
			conn:      c,
			sessionID: sessionID,
			send:      make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
