package building

import (
	"sync"
	"time"
)

// Debouncer accepts at most one event per cooldown window. The window starts at the
// last accepted event; rejected events don't move it.
type Debouncer struct {
	mu       sync.Mutex
	last     time.Time
	cooldown time.Duration
}

// NewDebouncer creates a debouncer whose first window opens at start.
func NewDebouncer(cooldown time.Duration, start time.Time) *Debouncer {
	return &Debouncer{
		last:     start,
		cooldown: cooldown,
	}
}

// Accept reports whether an event at t should trigger a build, and records it if so.
func (d *Debouncer) Accept(t time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t.Before(d.last.Add(d.cooldown)) {
		return false
	}
	d.last = t
	return true
}

// Cooldown returns the window length.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}
