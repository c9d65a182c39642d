package client

import (
	"sync"
	"time"
)

// DebounceInterval is how long a Debouncer waits after the last call
// before firing. Matches the search-box behavior of the dashboards.
const DebounceInterval = 500 * time.Millisecond

// Debouncer coalesces a burst of calls into a single trailing invocation
// carrying the value of the last call. Used for search inputs so a fast
// typist produces one request, not one per keystroke.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	fn       func(string)
	stopped  bool
}

// NewDebouncer builds a debouncer that invokes fn with the most recent
// value once interval has elapsed without further calls. An interval of
// zero or less falls back to DebounceInterval.
func NewDebouncer(interval time.Duration, fn func(string)) *Debouncer {
	if interval <= 0 {
		interval = DebounceInterval
	}
	return &Debouncer{interval: interval, fn: fn}
}

// Llamar schedules fn with valor, replacing any pending invocation.
func (d *Debouncer) Llamar(valor string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.fn(valor)
	})
}

// Stop cancels any pending invocation and disables the debouncer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
