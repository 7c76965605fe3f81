package reader

import (
	"sync"
	"time"
)

// DefaultDebounce is how long a badge resting on the reader stays silent.
const DefaultDebounce = 2 * time.Second

// Debouncer suppresses an identifier that repeats the previous one within
// the window. Every sighting of the held badge restarts the window, so a
// badge left on the reader is reported once. A different identifier always
// passes.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   string
	seenAt time.Time
}

// NewDebouncer returns a Debouncer; window <= 0 selects DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window, now: time.Now}
}

// Allow reports whether id should be emitted.
func (d *Debouncer) Allow(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	repeat := id == d.last && !d.seenAt.IsZero() && now.Sub(d.seenAt) < d.window
	d.last = id
	d.seenAt = now
	return !repeat
}
