package watch

import "time"

// ShouldTrigger is the debounce decision applied to each stable-file
// observation: trigger when more than delay has elapsed since the stored
// timestamp, and advance the timestamp to now either way. Advancing
// unconditionally turns the debounce into an idle-period detector: a
// sweep fires only after at least delay of silence, not merely delay
// after the first event of a burst.
func ShouldTrigger(now, lastTrigger time.Time, delay time.Duration) (trigger bool, next time.Time) {
	return now.Sub(lastTrigger) > delay, now
}

// Debouncer holds the single mutable timestamp behind ShouldTrigger.
// It is not safe for concurrent use; the daemon's event loop is its
// only caller.
//
// Known limitation: a steady drip of stable files spaced under delay
// keeps resetting the clock and postpones the sweep indefinitely.
type Debouncer struct {
	delay time.Duration
	last  time.Time
}

// NewDebouncer builds a Debouncer whose timestamp starts at start, so
// observations within the first delay window after startup are
// suppressed.
func NewDebouncer(delay time.Duration, start time.Time) *Debouncer {
	return &Debouncer{delay: delay, last: start}
}

// Observe feeds one stable-file observation at now and reports whether
// a sweep should fire.
func (d *Debouncer) Observe(now time.Time) bool {
	trigger, next := ShouldTrigger(now, d.last, d.delay)
	d.last = next
	return trigger
}

// Delay returns the configured idle window
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Last returns the timestamp of the most recent observation
func (d *Debouncer) Last() time.Time { return d.last }
