package verify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veridesk/facegate/internal/camera"
	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
	"github.com/veridesk/facegate/internal/geo"
)

// submitter is the slice of the backend client a session needs to file the
// final attendance event.
type submitter interface {
	CheckIn(ctx context.Context, lat, lng float64) error
	CheckOut(ctx context.Context, lat, lng float64) error
}

// SessionConfig wires a session's collaborators. Strategy and Limiter must
// be fresh instances; sessions never share biometric state.
type SessionConfig struct {
	Kind     domain.AttendanceKind
	Strategy Strategy
	Camera   camera.Controller
	Watcher  *geo.Watcher
	Limiter  *AttemptLimiter
	Backend  submitter
	Logger   *slog.Logger
	Notify   Notifier
}

// Session drives one attendance verification from the geofence gate through
// liveness, matching and submission. All transitions happen under one mutex;
// long operations (camera, network) run outside it and their results are
// checked against a generation counter so a cancelled session never observes
// a late completion.
type Session struct {
	id       uuid.UUID
	kind     domain.AttendanceKind
	strategy Strategy
	camera   camera.Controller
	watcher  *geo.Watcher
	limiter  *AttemptLimiter
	backend  submitter
	logger   *slog.Logger
	notify   Notifier

	mu         sync.Mutex
	state      State
	generation uint64
	lastErr    *domain.AppError
	result     *face.MatchResult
	blinkSeen  bool
	unsubGeo   func()
	cleaned    bool
}

// NewSession creates a session in the geofence gate. The returned session
// observes watcher updates immediately; Start may be called once the gate
// reports inside.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		id:       uuid.New(),
		kind:     cfg.Kind,
		strategy: cfg.Strategy,
		camera:   cfg.Camera,
		watcher:  cfg.Watcher,
		limiter:  cfg.Limiter,
		backend:  cfg.Backend,
		logger:   cfg.Logger,
		notify:   cfg.Notify,
		state:    StateGeoPending,
	}
	if s.limiter == nil {
		s.limiter = NewAttemptLimiter(0, 0)
	}

	s.unsubGeo = s.watcher.Subscribe(s.onGeofence)
	if ev, ok := s.watcher.Latest(); ok {
		s.onGeofence(ev)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Kind returns the attendance kind this session verifies for.
func (s *Session) Kind() domain.AttendanceKind { return s.kind }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that terminated the session, if any.
func (s *Session) Err() *domain.AppError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Result returns the accepted match, set once the session succeeds.
func (s *Session) Result() *face.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// onGeofence applies a fence evaluation. The gate only moves the session
// between its three gate states; once the camera has been requested the
// fence is re-checked at submission instead.
func (s *Session) onGeofence(ev geo.Evaluation) {
	s.mu.Lock()
	gated := s.state == StateGeoPending || s.state == StateGeoBlocked || s.state == StateGeoOK
	if !gated {
		s.mu.Unlock()
		return
	}
	next := StateGeoOK
	if !ev.Inside {
		next = StateGeoBlocked
	}
	changed := next != s.state
	s.state = next
	s.mu.Unlock()

	if changed {
		s.emit(EventGeofence, map[string]any{
			"inside":     ev.Inside,
			"distance_m": ev.DistanceMeters,
		})
	}
}

// Start opens the camera and prepares the strategy. While the geofence gate
// is closed this is a strict no-op: no transition, no camera request.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateGeoBlocked {
		s.mu.Unlock()
		return domain.ErrGeofenceViolation
	}
	if !s.state.CanStart() {
		st := s.state
		s.mu.Unlock()
		if st.Terminal() {
			return domain.ErrNoSession
		}
		return domain.ErrInvalidState
	}
	s.state = StateCameraStarting
	gen := s.generation
	s.mu.Unlock()
	s.emit(EventState, nil)

	if err := s.camera.Start(ctx); err != nil {
		return s.fail(gen, asAppError(err, domain.ErrCameraUnavailable))
	}

	if err := s.strategy.Prepare(ctx); err != nil {
		return s.fail(gen, asAppError(err, domain.ErrInternal))
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return domain.ErrNoSession
	}
	s.state = StateCameraReady
	s.mu.Unlock()
	s.emit(EventState, nil)
	return nil
}

// Capture runs one verification attempt: grab a frame, check liveness, and
// once liveness is confirmed, check identity. A frame without a detectable
// face is recoverable and leaves the camera session open.
func (s *Session) Capture(ctx context.Context) (*Checkpoint, error) {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return nil, domain.ErrNoSession
	}
	if !s.state.CanCapture() {
		s.mu.Unlock()
		return nil, domain.ErrInvalidState
	}
	s.state = StateCapturing
	gen := s.generation
	s.mu.Unlock()
	s.emit(EventState, nil)

	frame, err := s.camera.CaptureFrame(ctx)
	if err != nil {
		return nil, s.fail(gen, asAppError(err, domain.ErrCameraUnavailable))
	}

	if err := s.setState(gen, StateMatching); err != nil {
		return nil, err
	}

	checkpoint, checkErr := s.strategy.Check(ctx, frame)

	s.mu.Lock()
	if gen != s.generation {
		// Cancelled while the check was in flight; the result is discarded.
		s.mu.Unlock()
		return nil, domain.ErrNoSession
	}

	if checkErr != nil {
		s.state = StateCameraReady
		s.mu.Unlock()
		s.emit(EventState, nil)
		return nil, asAppError(checkErr, domain.ErrInternal)
	}

	if checkpoint.BlinkConfirmed && !s.blinkSeen {
		s.blinkSeen = true
		checkpoint.BlinkJustConfirmed = true
	}

	var events []pendingEvent
	var outErr error

	switch {
	case !checkpoint.FaceFound:
		s.state = StateCameraReady
		events = append(events, pendingEvent{EventCheckpoint, checkpointDetail(checkpoint)})

	case checkpoint.Match == nil:
		s.state = StateLivenessWaiting
		events = append(events, pendingEvent{EventCheckpoint, checkpointDetail(checkpoint)})

	case checkpoint.Match.IsMatch:
		s.state = StateSucceeded
		s.result = checkpoint.Match
		events = append(events,
			pendingEvent{EventCheckpoint, checkpointDetail(checkpoint)},
			pendingEvent{EventResult, map[string]any{
				"matched":    true,
				"confidence": checkpoint.Match.Confidence,
				"label":      checkpoint.Match.Label,
			}})

	default:
		events = append(events, pendingEvent{EventCheckpoint, checkpointDetail(checkpoint)})
		if s.limiter.RecordFailure() {
			s.failLocked(domain.ErrAttemptsExhausted)
			events = append(events, pendingEvent{EventError, map[string]any{
				"code": domain.ErrAttemptsExhausted.Code,
			}})
			outErr = domain.ErrAttemptsExhausted
		} else {
			s.state = StateLivenessWaiting
		}
	}
	s.mu.Unlock()

	for _, ev := range events {
		s.emit(ev.typ, ev.detail)
	}
	s.emit(EventState, nil)
	return checkpoint, outErr
}

// Submit files the attendance event. The fence is re-evaluated with the
// freshest position first; a stale or outside re-check fails the session
// rather than submitting. A backend failure leaves the session in Succeeded
// so submission can be retried.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return domain.ErrNoSession
	}
	if s.state != StateSucceeded {
		s.mu.Unlock()
		return domain.ErrNotVerified
	}

	ev, ok := s.watcher.Latest()
	if !ok || !ev.Inside {
		s.failLocked(domain.ErrGeofenceViolation)
		s.mu.Unlock()
		s.emit(EventError, map[string]any{"code": domain.ErrGeofenceViolation.Code})
		s.emit(EventState, nil)
		return domain.ErrGeofenceViolation
	}
	gen := s.generation
	s.mu.Unlock()

	var err error
	switch s.kind {
	case domain.CheckOut:
		err = s.backend.CheckOut(ctx, ev.Position.Latitude, ev.Position.Longitude)
	default:
		err = s.backend.CheckIn(ctx, ev.Position.Latitude, ev.Position.Longitude)
	}
	if err != nil {
		s.logger.Warn("attendance submission failed",
			slog.String("session_id", s.id.String()),
			slog.String("kind", string(s.kind)),
			slog.String("error", err.Error()))
		return asAppError(err, domain.ErrNetwork)
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return domain.ErrNoSession
	}
	s.state = StateTerminal
	s.cleanupLocked()
	s.mu.Unlock()

	s.emit(EventResult, map[string]any{"submitted": true, "kind": string(s.kind)})
	s.emit(EventState, nil)
	return nil
}

// Cancel ends the session from any state. In-flight captures or checks are
// discarded when they complete, the camera is released and reference
// material is purged.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.state = StateTerminal
	s.cleanupLocked()
	s.mu.Unlock()
	s.emit(EventState, nil)
}

// setState transitions if the session generation is still current.
func (s *Session) setState(gen uint64, next State) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return domain.ErrNoSession
	}
	s.state = next
	s.mu.Unlock()
	s.emit(EventState, nil)
	return nil
}

// fail moves the session to Failed and releases resources, unless it was
// cancelled in the meantime.
func (s *Session) fail(gen uint64, appErr *domain.AppError) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return domain.ErrNoSession
	}
	s.failLocked(appErr)
	s.mu.Unlock()

	s.emit(EventError, map[string]any{"code": appErr.Code})
	s.emit(EventState, nil)
	return appErr
}

// failLocked records the terminal error and cleans up. Caller holds mu.
func (s *Session) failLocked(appErr *domain.AppError) {
	s.state = StateFailed
	s.lastErr = appErr
	s.cleanupLocked()
}

// cleanupLocked stops the camera, purges biometric material and drops the
// geofence subscription. Idempotent. Caller holds mu.
func (s *Session) cleanupLocked() {
	if s.cleaned {
		return
	}
	s.cleaned = true
	if s.unsubGeo != nil {
		s.unsubGeo()
	}
	_ = s.camera.Stop()
	s.strategy.Teardown()
	s.limiter.Reset()
}

type pendingEvent struct {
	typ    EventType
	detail map[string]any
}

func (s *Session) emit(typ EventType, detail map[string]any) {
	if s.notify == nil {
		return
	}
	s.notify(Event{
		SessionID: s.id,
		Type:      typ,
		State:     s.State().String(),
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	})
}

func checkpointDetail(c *Checkpoint) map[string]any {
	detail := map[string]any{
		"face_found":      c.FaceFound,
		"total_faces":     c.TotalFaces,
		"blink_confirmed": c.BlinkConfirmed,
	}
	if c.Match != nil {
		detail["matched"] = c.Match.IsMatch
		detail["confidence"] = c.Match.Confidence
	}
	return detail
}

// asAppError keeps an existing AppError or wraps err in fallback.
func asAppError(err error, fallback *domain.AppError) *domain.AppError {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return fallback.WithError(err)
}
