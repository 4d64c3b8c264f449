// Package debounce runs a call after input settles and keeps only the
// result of the most recent input.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Config describes a debounced call.
type Config[T, R any] struct {
	// Wait is the quiet period after the last Trigger.
	Wait time.Duration
	// Call does the work. ctx is cancelled when newer input arrives.
	Call func(ctx context.Context, input T) (R, error)
	// Fire, if set, runs when the quiet period ends, before Call.
	Fire func(input T)
	// Commit receives the result of the latest input only.
	Commit func(input T, result R, err error)
}

// Debouncer is a latest-wins debounced caller. Fire and Commit run with the
// debouncer's lock held and must not call back into it.
type Debouncer[T, R any] struct {
	cfg Config[T, R]

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// New returns a Debouncer for cfg. Call is required.
func New[T, R any](cfg Config[T, R]) *Debouncer[T, R] {
	return &Debouncer[T, R]{cfg: cfg}
}

// Trigger schedules a call for input, superseding any pending or running one.
func (d *Debouncer[T, R]) Trigger(input T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.abortLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.cfg.Wait, func() { d.fire(gen, input) })
}

// Cancel drops pending and running work without committing anything.
func (d *Debouncer[T, R]) Cancel() {
	d.mu.Lock()
	d.abortLocked()
	d.mu.Unlock()
}

// Close cancels everything and ignores later Triggers.
func (d *Debouncer[T, R]) Close() {
	d.mu.Lock()
	d.abortLocked()
	d.closed = true
	d.mu.Unlock()
}

// Pending reports whether a timer or call is outstanding.
func (d *Debouncer[T, R]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil || d.cancel != nil
}

func (d *Debouncer[T, R]) abortLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer[T, R]) fire(gen uint64, input T) {
	d.mu.Lock()
	if gen != d.gen || d.closed {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	if d.cfg.Fire != nil {
		d.cfg.Fire(input)
	}
	d.mu.Unlock()

	res, err := d.cfg.Call(ctx, input)

	d.mu.Lock()
	if gen == d.gen && !d.closed {
		d.cancel = nil
		if d.cfg.Commit != nil {
			d.cfg.Commit(input, res, err)
		}
	}
	d.mu.Unlock()
	cancel()
}
