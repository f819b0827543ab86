package search

import (
	"context"
	"sync"
	"time"
)

// Timer is a scheduled task that can be stopped before it fires
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed
type Scheduler func(d time.Duration, f func()) Timer

// AfterFunc is the wall-clock Scheduler
func AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Deferred is a single-slot cancellable deferred task. Arming it replaces
// any task that has not fired yet.
type Deferred struct {
	mu       sync.Mutex
	schedule Scheduler
	timer    Timer
	fn       func()
	gen      uint64

	running int
	settled chan struct{}
}

// NewDeferred creates an empty slot. A nil scheduler uses AfterFunc.
func NewDeferred(schedule Scheduler) *Deferred {
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Deferred{schedule: schedule}
}

// Arm cancels the pending task, if any, and schedules fn to run after delay
func (d *Deferred) Arm(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.fn = fn
	d.timer = d.schedule(delay, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run
		if d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.gen++
		d.timer, d.fn = nil, nil
		d.running++
		d.mu.Unlock()

		defer d.done()
		fn()
	})
}

// Cancel drops the pending task. It reports whether a task was pending.
func (d *Deferred) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	d.stopLocked()
	return pending
}

// Flush runs the pending task immediately on the calling goroutine. It
// reports whether a task was pending.
func (d *Deferred) Flush() bool {
	d.mu.Lock()
	fn := d.fn
	d.stopLocked()
	if fn != nil {
		d.running++
	}
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	defer d.done()
	fn()
	return true
}

// Wait blocks until no task is running or ctx is done. A task that is
// armed but has not fired yet is not waited for.
func (d *Deferred) Wait(ctx context.Context) error {
	d.mu.Lock()
	if d.running == 0 {
		d.mu.Unlock()
		return nil
	}
	if d.settled == nil {
		d.settled = make(chan struct{})
	}
	settled := d.settled
	d.mu.Unlock()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Deferred) done() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.running--
	if d.running == 0 && d.settled != nil {
		close(d.settled)
		d.settled = nil
	}
}

// Pending reports whether a task is armed and has not fired
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Deferred) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer, d.fn = nil, nil
}
