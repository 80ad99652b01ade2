package application

import (
	"io"
	"sync"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

var student = domain.Actor{ID: "stu-1", Role: domain.RoleStudent}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fixedClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixedClock) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 2, 14, hour, minute, 0, 0, time.UTC)
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mockAnyContext() interface{} {
	return mock.Anything
}

func openSession(id domain.SessionID) domain.Session {
	return domain.Session{
		ID:        id,
		Subject:   domain.Subject{Name: "Materials", Code: "MME 105"},
		StartsAt:  at(10, 0),
		EndsAt:    at(10, 15),
		CreatedAt: at(9, 55),
		Attended:  domain.AttendanceAbsent,
		Active:    true,
	}
}

func withAttendance(session domain.Session, attended domain.Attendance) domain.Session {
	session.Attended = attended
	return session
}
