// Package debounce coalesces bursts of calls into a single deferred invocation.
//
// A Debouncer runs its callback once the caller has been quiet for the
// configured delay. Each Call replaces the pending argument and restarts the
// timer, so only the most recent argument of a burst is ever delivered.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer delays calls to fn until no new Call arrived for delay.
// It is safe for concurrent use.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	value   T
	stopped bool
}

// New returns a Debouncer that invokes fn after delay of call-quiescence.
// A non-positive delay still defers fn to a timer goroutine.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// NewContext is like New but stops the debouncer when ctx is done, dropping
// any pending invocation.
func NewContext[T any](ctx context.Context, delay time.Duration, fn func(T)) *Debouncer[T] {
	d := New(delay, fn)
	context.AfterFunc(ctx, d.Stop)
	return d
}

// Call schedules fn(v), cancelling the previously scheduled invocation.
// Calls after Stop are ignored.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.value = v
	d.pending = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs fn if gen is still the latest scheduled generation. A timer that
// lost the race with Stop, Flush or a newer Call sees a stale gen and returns.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = false
	v := d.value
	var zero T
	d.value = zero
	d.mu.Unlock()

	d.fn(v)
}

// Flush runs the pending invocation immediately on the calling goroutine.
// It reports whether there was anything to run.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return false
	}
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.value
	var zero T
	d.value = zero
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels the pending invocation and disables the debouncer.
// It is idempotent.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	var zero T
	d.value = zero
}
