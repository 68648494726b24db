package camera

import (
	"context"
	"sync"

	"github.com/veridesk/facegate/internal/domain"
)

// Fake is a scriptable Controller for tests: queue frames and errors, and
// assert on lifecycle calls.
type Fake struct {
	// StartErr, when set, makes Start fail.
	StartErr error

	// Frames are returned in order by CaptureFrame; when exhausted the
	// last frame repeats.
	Frames [][]byte

	// CaptureErr, when set, makes every CaptureFrame fail.
	CaptureErr error

	mu       sync.Mutex
	started  bool
	captures int
	stops    int
}

// NewFake returns a fake that serves the given frames.
func NewFake(frames ...[]byte) *Fake {
	return &Fake{Frames: frames}
}

func (f *Fake) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.started = true
	return nil
}

func (f *Fake) CaptureFrame(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return nil, domain.ErrCameraUnavailable
	}
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	if len(f.Frames) == 0 {
		return nil, domain.ErrCameraUnavailable
	}
	idx := f.captures
	if idx >= len(f.Frames) {
		idx = len(f.Frames) - 1
	}
	f.captures++
	return f.Frames[idx], nil
}

func (f *Fake) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
	f.stops++
	return nil
}

// Started reports whether the camera is currently open.
func (f *Fake) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

// Stops returns how many times Stop has been called.
func (f *Fake) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// Captures returns how many frames were served.
func (f *Fake) Captures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captures
}

// Ensure Fake implements Controller
var _ Controller = (*Fake)(nil)
