// Package deadline provides a fixed point-in-time deadline for timed sessions.
package deadline

import "time"

// Deadline is an absolute wall-clock instant fixed at creation.
type Deadline struct {
	at time.Time
}

// New returns a deadline d after now.
func New(d time.Duration, now time.Time) Deadline {
	return Deadline{at: now.Add(d)}
}

// At returns the absolute instant of the deadline.
func (d Deadline) At() time.Time {
	return d.at
}

// Expired reports whether the deadline has passed at now.
func (d Deadline) Expired(now time.Time) bool {
	return !now.Before(d.at)
}

// Remaining returns the time left until the deadline, never negative.
func (d Deadline) Remaining(now time.Time) time.Duration {
	remaining := d.at.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingSeconds returns the remaining time rounded up to whole seconds,
// for countdown display.
func (d Deadline) RemainingSeconds(now time.Time) int {
	remaining := d.Remaining(now)
	if remaining == 0 {
		return 0
	}
	secs := int(remaining / time.Second)
	if remaining%time.Second > 0 {
		secs++
	}
	return secs
}
