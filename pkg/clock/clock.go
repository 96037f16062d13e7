// Package clock provides time abstractions for production and testing
package clock

import "time"

// SystemClock provides production time implementation using the standard library
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock reports the same instant on every call. Tests use it to pin
// time-window filtering and export filenames.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}
