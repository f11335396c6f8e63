package audio

import "time"

// Clock is the output clock playback is scheduled against. Now is a
// monotonic position on that clock; AfterFunc fires once the clock reaches
// now+d. Tests substitute a manual clock.
type Clock interface {
	Now() time.Duration
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop cancels the callback if it has not fired yet.
	Stop() bool
}

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock backed by the wall clock, with position
// zero at the moment of creation.
func NewSystemClock() Clock {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) Now() time.Duration {
	return time.Since(c.start)
}

func (c *systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
