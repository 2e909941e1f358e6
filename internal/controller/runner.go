package controller

import (
	"context"
	"sync"
	"time"
)

// Runner serializes closures onto a single goroutine. Transport handlers,
// HTTP handlers and timers submit work with Do; Run executes it in
// arrival order.
type Runner struct {
	mu      sync.Mutex
	pending []func()
	stopped bool
	signal  chan struct{}
}

// NewRunner creates an idle runner.
func NewRunner() *Runner {
	return &Runner{
		pending: make([]func(), 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Do queues fn. It never blocks.
func (r *Runner) Do(fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return ErrRunnerStopped
	}
	r.pending = append(r.pending, fn)

	select {
	case r.signal <- struct{}{}:
	default:
	}
	return nil
}

// Call runs fn on the runner and waits for it. It must not be used from
// inside a closure already running on the runner.
func (r *Runner) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := r.Do(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After submits fn once d has elapsed. The returned function cancels the
// timer if it has not fired yet.
func (r *Runner) After(d time.Duration, fn func()) (stop func() bool) {
	t := time.AfterFunc(d, func() {
		_ = r.Do(fn) //nolint:errcheck // A stopped runner drops timer work
	})
	return t.Stop
}

// Run executes queued closures until ctx is cancelled. Work still queued at
// that point is dropped and later Do calls fail.
func (r *Runner) Run(ctx context.Context) error {
	defer r.stop()
	for {
		for {
			fn, ok := r.next()
			if !ok {
				break
			}
			fn()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.signal:
		}
	}
}

func (r *Runner) next() (func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil, false
	}
	fn := r.pending[0]
	r.pending[0] = nil
	if len(r.pending) == 1 {
		r.pending = r.pending[:0]
	} else {
		r.pending = r.pending[1:]
	}
	return fn, true
}

func (r *Runner) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	clear(r.pending)
	r.pending = nil
}
