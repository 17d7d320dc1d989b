// Package search drives the interactive search pipeline: debounced query
// dispatch, suggestion fetching and a state machine that tolerates
// out-of-order completions.
package search

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single trailing-edge callback
// carrying the most recent value.
type Debouncer struct {
	delay time.Duration
	fn    func(string)

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer builds a debouncer invoking fn after delay of quiet time.
func NewDebouncer(delay time.Duration, fn func(string)) *Debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn with the value, replacing any pending invocation.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fn(value)
	})
}

// Cancel drops any pending invocation.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
