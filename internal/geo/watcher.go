package geo

import (
	"context"
	"sync"
	"time"
)

// Source streams device positions. Implementations must close the returned
// channel when ctx is cancelled.
type Source interface {
	Watch(ctx context.Context) (<-chan Position, error)
}

// StaticSource emits a fixed position on an interval. Kiosk terminals are
// installed at a known location, so a configured coordinate stands in for a
// live GPS feed.
type StaticSource struct {
	Position Position
	Interval time.Duration
}

func (s *StaticSource) Watch(ctx context.Context) (<-chan Position, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	out := make(chan Position, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Emit immediately so the fence gate resolves without waiting a tick.
		select {
		case out <- s.Position:
		case <-ctx.Done():
			return
		}

		for {
			select {
			case <-ticker.C:
				select {
				case out <- s.Position:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Watcher continuously evaluates a position source against a fence and fans
// the classification out to subscribers. It replaces ad hoc interval timers
// with an owned goroutine and explicit teardown so nothing leaks across
// sessions.
type Watcher struct {
	fence Fence

	mu     sync.RWMutex
	latest *Evaluation
	subs   map[int]func(Evaluation)
	nextID int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher for the given fence. Call Run to start it.
func NewWatcher(fence Fence) *Watcher {
	return &Watcher{
		fence: fence,
		subs:  make(map[int]func(Evaluation)),
	}
}

// Run consumes the source until ctx is cancelled or Close is called. Each
// position update re-evaluates the fence and notifies every subscriber, so
// in/out transitions are observed live.
func (w *Watcher) Run(ctx context.Context, src Source) error {
	ctx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	w.cancel = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	positions, err := src.Watch(ctx)
	if err != nil {
		cancel()
		close(done)
		return err
	}

	go func() {
		defer close(done)
		for pos := range positions {
			ev := Evaluate(pos, w.fence)
			w.publish(ev)
		}
	}()
	return nil
}

func (w *Watcher) publish(ev Evaluation) {
	w.mu.Lock()
	w.latest = &ev
	fns := make([]func(Evaluation), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Latest returns the most recent evaluation, if any position has arrived yet.
func (w *Watcher) Latest() (Evaluation, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.latest == nil {
		return Evaluation{}, false
	}
	return *w.latest, true
}

// Fence returns the fence this watcher evaluates against.
func (w *Watcher) Fence() Fence {
	return w.fence
}

// Subscribe registers fn for every future evaluation and returns an
// unsubscribe func. Safe to call from multiple goroutines.
func (w *Watcher) Subscribe(fn func(Evaluation)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Close stops the watcher and waits for the delivery goroutine to exit.
func (w *Watcher) Close() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
