// Package clock abstracts time.Now() to allow deterministic testing.
package clock

import "time"

// Clock is the single-method time source injected wherever "now" matters
// (window computation, today marking, feed stamps).
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the standard time package.
type Real struct{}

// Now returns the current local time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fixed implements Clock with a constant instant, for tests.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time {
	return f.Time
}
