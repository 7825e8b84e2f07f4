package engine

import "time"

// Clock abstracts time.Now so "today" can be pinned in tests.
// The engine never reads wall-clock time through any other path.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
