package clock

import (
	"innkeep/shared/timezone"
	"time"
)

// Clock supplies the current instant to lifecycle guards so tests can pin
// time instead of racing the wall clock.
type Clock interface {
	Now() time.Time
}

type appClock struct{}

func (appClock) Now() time.Time {
	return timezone.Now()
}

func New() Clock {
	return appClock{}
}

// Fixed is a Clock frozen at a single instant.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time {
	return f.Instant
}
