package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/hrapi"
)

// backendClient is the slice of the HR client these handlers proxy.
type backendClient interface {
	MyInfo(ctx context.Context) (*hrapi.EmployeeInfo, error)
	SubmitRequest(ctx context.Context, req *domain.AttendanceRequest) error
}

// AttendanceHandler proxies non-biometric backend operations for the kiosk
// UI: the employee profile and the manual exception fallback.
type AttendanceHandler struct {
	backend backendClient
	logger  *slog.Logger
}

func NewAttendanceHandler(backend backendClient, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{backend: backend, logger: logger}
}

// Profile returns the employee's geofence configuration and shift bounds.
func (h *AttendanceHandler) Profile(c *fiber.Ctx) error {
	info, err := h.backend.MyInfo(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(info)
}

type ManualRequest struct {
	Kind     string   `json:"kind"`
	Reason   string   `json:"reason"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Snapshot string   `json:"snapshot,omitempty"` // optional photo, base64 or data URL
}

// SubmitRequest files the manual exception fallback when automated
// verification cannot complete. It is reviewed by an administrator and
// never auto-approved.
func (h *AttendanceHandler) SubmitRequest(c *fiber.Ctx) error {
	var req ManualRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	kind := domain.AttendanceKind(req.Kind)
	if !kind.Valid() {
		return domain.ErrBadRequest
	}
	if req.Reason == "" {
		return domain.ErrBadRequest
	}

	var snapshot []byte
	if req.Snapshot != "" {
		var err error
		snapshot, err = hrapi.DecodeDataURL(req.Snapshot)
		if err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}

	err := h.backend.SubmitRequest(c.Context(), &domain.AttendanceRequest{
		Kind:     kind,
		Reason:   req.Reason,
		Lat:      req.Lat,
		Lng:      req.Lng,
		Snapshot: snapshot,
	})
	if err != nil {
		return err
	}

	h.logger.Info("manual attendance request submitted", slog.String("kind", req.Kind))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "request submitted for review"})
}
