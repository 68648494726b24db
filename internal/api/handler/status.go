package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/veridesk/facegate/internal/geo"
	"github.com/veridesk/facegate/internal/hrapi"
	"github.com/veridesk/facegate/internal/metrics"
	"github.com/veridesk/facegate/internal/verify"
)

// StatusHandler reports the agent's view of the world: the geofence, the
// trusted server clock, the active session and pipeline metrics.
type StatusHandler struct {
	strategy string
	watcher  *geo.Watcher
	clock    *hrapi.ServerClock
	recorder *metrics.Recorder
	manager  *verify.Manager
}

func NewStatusHandler(strategy string, watcher *geo.Watcher, clock *hrapi.ServerClock, recorder *metrics.Recorder, manager *verify.Manager) *StatusHandler {
	return &StatusHandler{
		strategy: strategy,
		watcher:  watcher,
		clock:    clock,
		recorder: recorder,
		manager:  manager,
	}
}

type GeofenceStatus struct {
	Fence    geo.Fence       `json:"fence"`
	Latest   *geo.Evaluation `json:"latest,omitempty"`
	HasFix   bool            `json:"has_fix"`
}

type SessionStatus struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	State string `json:"state"`
}

type StatusResponse struct {
	Strategy   string           `json:"strategy"`
	ServerTime *time.Time       `json:"server_time,omitempty"`
	Geofence   GeofenceStatus   `json:"geofence"`
	Session    *SessionStatus   `json:"session,omitempty"`
	Metrics    metrics.Snapshot `json:"metrics"`
}

func (h *StatusHandler) Status(c *fiber.Ctx) error {
	resp := StatusResponse{
		Strategy: h.strategy,
		Geofence: GeofenceStatus{Fence: h.watcher.Fence()},
		Metrics:  h.recorder.Snapshot(),
	}

	if ev, ok := h.watcher.Latest(); ok {
		resp.Geofence.Latest = &ev
		resp.Geofence.HasFix = true
	}

	if h.clock != nil {
		if ts, ok := h.clock.Now(); ok {
			resp.ServerTime = &ts
		}
	}

	if session, active := h.manager.Active(); active {
		resp.Session = &SessionStatus{
			ID:    session.ID().String(),
			Kind:  string(session.Kind()),
			State: session.State().String(),
		}
	}

	return c.JSON(resp)
}
