// Package task runs timer-driven side effects with an explicit lifecycle:
// a task starts when created and stops when its context ends or Stop is
// called.
package task

import (
	"context"
	"sync"
	"time"
)

// Periodic calls a function at a fixed cadence on its own goroutine.
type Periodic struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Every starts calling fn every interval until ctx is done or Stop is
// called. The first call happens one interval after start.
func Every(ctx context.Context, interval time.Duration, fn func()) *Periodic {
	ctx, cancel := context.WithCancel(ctx)
	p := &Periodic{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return p
}

// Stop cancels the task and waits for a running call to finish.
func (p *Periodic) Stop() {
	p.cancel()
	<-p.done
}

// Debouncer runs only the last of a burst of triggers, once delay has passed
// without a new one.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
