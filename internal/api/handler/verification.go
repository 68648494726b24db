package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/metrics"
	"github.com/veridesk/facegate/internal/verify"
)

// VerificationHandler drives sessions through the local API.
type VerificationHandler struct {
	manager  *verify.Manager
	recorder *metrics.Recorder
	logger   *slog.Logger
}

func NewVerificationHandler(manager *verify.Manager, recorder *metrics.Recorder, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{
		manager:  manager,
		recorder: recorder,
		logger:   logger,
	}
}

type BeginSessionRequest struct {
	Kind string `json:"kind"` // "check_in" or "check_out"
}

type MatchInfo struct {
	Matched    bool    `json:"matched"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label,omitempty"`
}

type SessionResponse struct {
	ID     uuid.UUID  `json:"id"`
	Kind   string     `json:"kind"`
	State  string     `json:"state"`
	Error  string     `json:"error,omitempty"`
	Result *MatchInfo `json:"result,omitempty"`
}

type CheckpointResponse struct {
	State          string     `json:"state"`
	FaceFound      bool       `json:"face_found"`
	TotalFaces     int        `json:"total_faces"`
	BlinkConfirmed bool       `json:"blink_confirmed"`
	Match          *MatchInfo `json:"match,omitempty"`
}

func sessionResponse(s *verify.Session) SessionResponse {
	resp := SessionResponse{
		ID:    s.ID(),
		Kind:  string(s.Kind()),
		State: s.State().String(),
	}
	if err := s.Err(); err != nil {
		resp.Error = err.Code
	}
	if result := s.Result(); result != nil {
		resp.Result = &MatchInfo{
			Matched:    result.IsMatch,
			Confidence: result.Confidence,
			Label:      result.Label,
		}
	}
	return resp
}

// Begin creates the session and opens the geofence gate.
func (h *VerificationHandler) Begin(c *fiber.Ctx) error {
	var req BeginSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	session, err := h.manager.Begin(c.Context(), domain.AttendanceKind(req.Kind))
	if err != nil {
		return err
	}

	h.recorder.SessionStarted()
	h.logger.Info("verification session created",
		slog.String("session_id", session.ID().String()),
		slog.String("kind", req.Kind))

	return c.Status(fiber.StatusCreated).JSON(sessionResponse(session))
}

// Get returns the session's current state.
func (h *VerificationHandler) Get(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(session))
}

// Start opens the camera once the geofence gate allows it.
func (h *VerificationHandler) Start(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	if err := session.Start(c.Context()); err != nil {
		h.recordFailure(session, err)
		return err
	}
	return c.JSON(sessionResponse(session))
}

// Capture runs one verification attempt.
func (h *VerificationHandler) Capture(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	start := time.Now()
	checkpoint, err := session.Capture(c.Context())
	h.recorder.ObserveLatency("capture", time.Since(start))

	if checkpoint != nil {
		h.recorder.FrameChecked(checkpoint.FaceFound)
		if checkpoint.BlinkJustConfirmed {
			h.recorder.BlinkConfirmed()
		}
	}
	if err != nil {
		h.recordFailure(session, err)
		return err
	}

	resp := CheckpointResponse{
		State:          session.State().String(),
		FaceFound:      checkpoint.FaceFound,
		TotalFaces:     checkpoint.TotalFaces,
		BlinkConfirmed: checkpoint.BlinkConfirmed,
	}
	if checkpoint.Match != nil {
		resp.Match = &MatchInfo{
			Matched:    checkpoint.Match.IsMatch,
			Confidence: checkpoint.Match.Confidence,
			Label:      checkpoint.Match.Label,
		}
	}
	return c.JSON(resp)
}

// Submit files the attendance event after the fresh geofence re-check.
func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	if err := session.Submit(c.Context()); err != nil {
		h.recordFailure(session, err)
		return err
	}

	h.recorder.SubmissionAccepted()
	h.recorder.SessionEnded(metrics.OutcomeSucceeded, "")
	return c.JSON(sessionResponse(session))
}

// Cancel ends the session and releases the camera.
func (h *VerificationHandler) Cancel(c *fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return err
	}

	wasActive := !session.State().Terminal()
	session.Cancel()
	if wasActive {
		h.recorder.SessionEnded(metrics.OutcomeCancelled, "")
	}
	return c.JSON(sessionResponse(session))
}

func (h *VerificationHandler) session(c *fiber.Ctx) (*verify.Session, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}
	return h.manager.Get(id)
}

// recordFailure counts a session that just reached the Failed state.
func (h *VerificationHandler) recordFailure(session *verify.Session, err error) {
	if errors.Is(err, domain.ErrNoSession) || session.State() != verify.StateFailed {
		return
	}
	code := ""
	if appErr := session.Err(); appErr != nil {
		code = appErr.Code
	}
	h.recorder.SessionEnded(metrics.OutcomeFailed, code)
}
