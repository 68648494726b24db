package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/veridesk/facegate/internal/geo"
)

type HealthHandler struct {
	watcher *geo.Watcher
}

func NewHealthHandler(watcher *geo.Watcher) *HealthHandler {
	return &HealthHandler{watcher: watcher}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
	})
}

// Ready reports whether the agent can gate a session yet. Until the first
// position arrives the geofence cannot be evaluated.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.watcher != nil {
		if _, ok := h.watcher.Latest(); !ok {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "waiting for position",
			})
		}
	}
	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
