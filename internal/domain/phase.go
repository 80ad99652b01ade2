package domain

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseOpen     Phase = "open"
	PhaseExpired  Phase = "expired"
)

func (p Phase) Label() string {
	switch p {
	case PhaseUpcoming:
		return "Upcoming"
	case PhaseOpen:
		return "Open"
	case PhaseExpired:
		return "Expired"
	default:
		return string(p)
	}
}

// PhaseOf classifies now against the half-open window [StartsAt, EndsAt).
func PhaseOf(s Session, now time.Time) Phase {
	if now.Before(s.StartsAt) {
		return PhaseUpcoming
	}
	if now.Before(s.EndsAt) {
		return PhaseOpen
	}
	return PhaseExpired
}

// Remaining reports the time left in the window. ok is false unless the
// session is open at now.
func Remaining(s Session, now time.Time) (time.Duration, bool) {
	if PhaseOf(s, now) != PhaseOpen {
		return s.EndsAt.Sub(now), false
	}
	return s.EndsAt.Sub(now), true
}

func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "Expired"
	}

	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm %ds remaining", minutes, seconds)
}
