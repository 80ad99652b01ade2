package domain

import (
	"fmt"
	"strings"
	"time"
)

type SessionID string

type Subject struct {
	Name string
	Code string
}

// Attendance is the actor-scoped attendance flag reported for a session.
type Attendance int

const (
	AttendanceUnknown Attendance = iota
	AttendanceAbsent
	AttendancePresent
)

func (a Attendance) String() string {
	switch a {
	case AttendanceAbsent:
		return "absent"
	case AttendancePresent:
		return "present"
	default:
		return "unknown"
	}
}

func AttendanceFromFlag(flag *bool) Attendance {
	if flag == nil {
		return AttendanceUnknown
	}
	if *flag {
		return AttendancePresent
	}
	return AttendanceAbsent
}

type Session struct {
	ID              SessionID
	Subject         Subject
	StartsAt        time.Time
	EndsAt          time.Time
	CreatedAt       time.Time
	Attended        Attendance
	Active          bool
	AttendanceCount int
}

func (s Session) Validate() error {
	if strings.TrimSpace(string(s.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	if s.StartsAt.IsZero() || s.EndsAt.IsZero() {
		return fmt.Errorf("session %s: start and end are required", s.ID)
	}
	if !s.StartsAt.Before(s.EndsAt) {
		return fmt.Errorf("session %s: start must be before end", s.ID)
	}

	return nil
}

func (s Session) HasAttended() bool {
	return s.Attended == AttendancePresent
}

func (s Session) CreationInstant() time.Time {
	return s.CreatedAt
}

func (s Session) Label() string {
	if s.Subject.Code == "" {
		return s.Subject.Name
	}
	return fmt.Sprintf("%s (%s)", s.Subject.Name, s.Subject.Code)
}
