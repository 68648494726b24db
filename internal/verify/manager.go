package verify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/veridesk/facegate/internal/domain"
)

// Manager owns the single active verification session. The agent drives one
// verification at a time; a second session cannot start until the first
// reaches a terminal state.
type Manager struct {
	factory Factory
	build   func(ctx context.Context, kind domain.AttendanceKind, strategy Strategy) *Session

	mu      sync.Mutex
	current *Session
}

// NewManager creates a manager. build is called with a freshly constructed
// strategy to assemble each session.
func NewManager(factory Factory, build func(ctx context.Context, kind domain.AttendanceKind, strategy Strategy) *Session) *Manager {
	return &Manager{factory: factory, build: build}
}

// Begin creates a new session if none is active. A session whose state is
// terminal no longer counts as active.
func (m *Manager) Begin(ctx context.Context, kind domain.AttendanceKind) (*Session, error) {
	if !kind.Valid() {
		return nil, domain.ErrBadRequest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && !m.current.State().Terminal() {
		return nil, domain.ErrSessionActive
	}

	strategy, err := m.factory(ctx)
	if err != nil {
		return nil, asAppError(err, domain.ErrInternal)
	}

	session := m.build(ctx, kind, strategy)
	m.current = session
	return session, nil
}

// Get returns the session with the given ID, active or terminal.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.ID() != id {
		return nil, domain.ErrNoSession
	}
	return m.current, nil
}

// Active returns the current session when one is in a non-terminal state.
func (m *Manager) Active() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.State().Terminal() {
		return nil, false
	}
	return m.current, true
}

// Shutdown cancels any active session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current != nil {
		current.Cancel()
	}
}
