package session

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
)

// flight is one refresh call and everything waiting on it.
type flight struct {
	done    chan struct{}
	err     error
	waiters int
	failure sync.Once
}

// Coordinator guarantees at most one refresh is outstanding. Callers arriving
// while a refresh runs wait for it and share its outcome.
type Coordinator struct {
	mu       sync.Mutex
	inflight *flight
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Do runs refresh, or joins the refresh already in flight. The refresh itself is
// detached from ctx cancellation since other callers may depend on it; ctx only
// bounds how long this caller waits. onFailure runs at most once per failed
// refresh, however many callers observed the failure, and has finished before
// any of them returns.
func (c *Coordinator) Do(ctx context.Context, refresh func(context.Context) error, onFailure func()) error {
	f, leader := c.acquire()
	if leader {
		c.run(ctx, f, refresh)
	} else {
		select {
		case <-f.done:
		case <-ctx.Done():
			c.leave(f)
			return ctx.Err()
		}
	}

	if f.err != nil && onFailure != nil {
		f.failure.Do(onFailure)
	}
	return f.err
}

// Waiting reports how many callers are blocked on the refresh in flight.
func (c *Coordinator) Waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight == nil {
		return 0
	}
	return c.inflight.waiters
}

// InFlight reports whether a refresh is running.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != nil
}

func (c *Coordinator) run(ctx context.Context, f *flight, refresh func(context.Context) error) {
	// A panicking refresh still releases the slot and fails its waiters.
	f.err = apperrors.ErrRefreshFailed
	defer c.release(f)
	f.err = refresh(context.WithoutCancel(ctx))
}

func (c *Coordinator) acquire() (*flight, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != nil {
		c.inflight.waiters++
		return c.inflight, false
	}
	c.inflight = &flight{done: make(chan struct{})}
	return c.inflight, true
}

func (c *Coordinator) release(f *flight) {
	c.mu.Lock()
	if c.inflight == f {
		c.inflight = nil
	}
	c.mu.Unlock()
	close(f.done)
}

func (c *Coordinator) leave(f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight == f {
		f.waiters--
	}
}
