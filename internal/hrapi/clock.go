package hrapi

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// timeSource is the slice of Client the clock needs, split out for tests.
type timeSource interface {
	ServerTime(ctx context.Context) (time.Time, error)
}

// ServerClock polls the backend clock on an interval and fans the latest
// value out to subscribers. The kiosk displays this time instead of the
// local clock, which is never trusted for attendance.
type ServerClock struct {
	source   timeSource
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	latest  time.Time
	haveOne bool
	subs    map[int]func(time.Time)
	nextID  int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewServerClock creates a clock polling source every interval.
func NewServerClock(source timeSource, interval time.Duration, logger *slog.Logger) *ServerClock {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ServerClock{
		source:   source,
		interval: interval,
		logger:   logger,
		subs:     make(map[int]func(time.Time)),
		done:     make(chan struct{}),
	}
}

// Run polls until ctx is cancelled or Close is called. Poll failures are
// logged and the last good value is kept.
func (c *ServerClock) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	defer close(c.done)

	c.poll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *ServerClock) poll(ctx context.Context) {
	ts, err := c.source.ServerTime(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("server time poll failed", slog.String("error", err.Error()))
		}
		return
	}

	c.mu.Lock()
	c.latest = ts
	c.haveOne = true
	callbacks := make([]func(time.Time), 0, len(c.subs))
	for _, fn := range c.subs {
		callbacks = append(callbacks, fn)
	}
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(ts)
	}
}

// Now returns the last polled server time and whether one was ever received.
func (c *ServerClock) Now() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.haveOne
}

// Subscribe registers fn for every successful poll. The returned function
// removes the subscription.
func (c *ServerClock) Subscribe(fn func(time.Time)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close stops polling and waits for Run to return.
func (c *ServerClock) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-c.done
	}
}
