package geo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSource feeds scripted positions into a watcher.
type chanSource struct {
	ch chan Position
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan Position, 16)}
}

func (s *chanSource) Watch(ctx context.Context) (<-chan Position, error) {
	out := make(chan Position)
	go func() {
		defer close(out)
		for {
			select {
			case p, ok := <-s.ch:
				if !ok {
					return
				}
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWatcher_ReEmitsOnEveryUpdate(t *testing.T) {
	fence := Fence{Latitude: 0, Longitude: 0, RadiusMeters: 100}
	w := NewWatcher(fence)
	src := newChanSource()

	var mu sync.Mutex
	var got []Evaluation
	unsub := w.Subscribe(func(ev Evaluation) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	defer unsub()

	require.NoError(t, w.Run(context.Background(), src))
	defer w.Close()

	src.ch <- Position{Latitude: 0, Longitude: 0}      // inside
	src.ch <- Position{Latitude: 0, Longitude: 0.01}   // outside
	src.ch <- Position{Latitude: 0, Longitude: 0.0001} // back inside

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, got[0].Inside)
	assert.False(t, got[1].Inside)
	assert.True(t, got[2].Inside)
}

func TestWatcher_Latest(t *testing.T) {
	w := NewWatcher(Fence{RadiusMeters: 100})
	_, ok := w.Latest()
	assert.False(t, ok, "no evaluation before any position arrives")

	src := newChanSource()
	require.NoError(t, w.Run(context.Background(), src))
	defer w.Close()

	src.ch <- Position{Latitude: 0, Longitude: 0}
	waitFor(t, func() bool {
		_, ok := w.Latest()
		return ok
	})

	ev, ok := w.Latest()
	require.True(t, ok)
	assert.True(t, ev.Inside)
}

func TestWatcher_UnsubscribeStopsDelivery(t *testing.T) {
	w := NewWatcher(Fence{RadiusMeters: 100})
	src := newChanSource()

	var mu sync.Mutex
	count := 0
	unsub := w.Subscribe(func(Evaluation) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	require.NoError(t, w.Run(context.Background(), src))
	defer w.Close()

	src.ch <- Position{}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	})

	unsub()
	src.ch <- Position{}
	src.ch <- Position{}

	waitFor(t, func() bool {
		ev, ok := w.Latest()
		return ok && ev.Inside
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestWatcher_CloseTearsDown(t *testing.T) {
	w := NewWatcher(Fence{RadiusMeters: 100})
	src := newChanSource()
	require.NoError(t, w.Run(context.Background(), src))

	w.Close() // must not hang
}

func TestStaticSource_EmitsImmediately(t *testing.T) {
	src := &StaticSource{
		Position: Position{Latitude: 1, Longitude: 2},
		Interval: time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	positions, err := src.Watch(ctx)
	require.NoError(t, err)

	select {
	case p := <-positions:
		assert.Equal(t, 1.0, p.Latitude)
		assert.Equal(t, 2.0, p.Longitude)
	case <-time.After(time.Second):
		t.Fatal("no immediate position")
	}
}
