package verify

import (
	"context"
	"fmt"

	"github.com/veridesk/facegate/internal/face"
)

// Checkpoint is the outcome of checking one captured frame.
type Checkpoint struct {
	// FaceFound is false when the frame contained no detectable face; the
	// attempt is recoverable and the camera session stays open.
	FaceFound bool
	// TotalFaces counts faces seen in the frame; when more than one, the
	// highest-confidence face drove the result.
	TotalFaces int
	// BlinkConfirmed reports whether liveness has been established at any
	// point during this session. Once true it stays true.
	BlinkConfirmed bool
	// BlinkJustConfirmed marks the first confirming frame. Set by the
	// session, not by strategies.
	BlinkJustConfirmed bool
	// Match is nil until liveness is confirmed; no identity decision is
	// made against a frame that has not passed the blink gate.
	Match *face.MatchResult
}

// Strategy performs the face and liveness checks for one session. A strategy
// instance is stateful (it carries the blink detector and reference material)
// and must never be shared across sessions.
type Strategy interface {
	Name() string

	// Prepare loads models and reference material. Called once before the
	// first frame.
	Prepare(ctx context.Context) error

	// Check evaluates one frame. Liveness confirmation is sticky across
	// calls; a match result appears only on frames checked after (or at)
	// blink confirmation.
	Check(ctx context.Context, frame []byte) (*Checkpoint, error)

	// Teardown purges reference material. Idempotent; called exactly when
	// the session reaches a terminal state.
	Teardown()
}

const (
	StrategyLocal       = "local"
	StrategyRemote      = "remote"
	StrategyRekognition = "rekognition"
)

// Factory builds a fresh strategy per session so biometric state never
// leaks between sessions.
type Factory func(ctx context.Context) (Strategy, error)

// KnownStrategy reports whether name is a supported strategy selector.
func KnownStrategy(name string) bool {
	switch name {
	case StrategyLocal, StrategyRemote, StrategyRekognition:
		return true
	}
	return false
}

// ErrUnknownStrategy builds the configuration error for a bad selector.
func ErrUnknownStrategy(name string) error {
	return fmt.Errorf("unknown verification strategy %q", name)
}
