package service

import (
	"context"
	"sync"
	"time"
)

// outcome is the shared result of one coalesced sync execution. Every caller
// that joined the window blocks on it and observes the identical error value.
type outcome struct {
	done chan struct{}

	once sync.Once
	err  error
}

func newOutcome() *outcome {
	return &outcome{done: make(chan struct{})}
}

func (o *outcome) resolve(err error) {
	o.once.Do(func() {
		o.err = err
		close(o.done)
	})
}

// wait blocks until the outcome resolves or the caller's context is
// cancelled. Context cancellation releases only this caller; the shared
// execution continues for everyone else.
func (o *outcome) wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// debouncer coalesces trigger calls arriving within one fixed window into a
// single execution of run. There is no resolver-array bookkeeping: late
// callers simply subscribe to the window's shared outcome.
type debouncer struct {
	window time.Duration
	run    func() error

	mu      sync.Mutex
	timer   *time.Timer
	pending *outcome
	stopped bool
}

func newDebouncer(window time.Duration, run func() error) *debouncer {
	if window <= 0 {
		window = time.Second
	}
	return &debouncer{window: window, run: run}
}

// trigger joins the current coalescing window, opening one if none is
// pending, and returns its shared outcome.
func (d *debouncer) trigger() *outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		o := newOutcome()
		o.resolve(ErrSessionStopped)
		return o
	}
	if d.pending != nil {
		return d.pending
	}

	o := newOutcome()
	d.pending = o
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()

		o.resolve(d.run())
	})

	return o
}

// stop cancels a pending, not-yet-fired window. The session's cycle
// cancellation does not reach a timer that has not fired, so this is an
// explicit, separate concern. Callers already waiting on the cancelled window
// resolve with ErrSessionStopped.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.pending.resolve(ErrSessionStopped)
	}
	d.timer = nil
	d.pending = nil
}
