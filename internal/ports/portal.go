package ports

import (
	"context"

	"github.com/bnema/classence-cli/internal/domain"
)

// SessionSource returns the server-authoritative sessions visible to an
// actor, each carrying the actor-scoped attendance flag.
type SessionSource interface {
	FetchActiveSessions(ctx context.Context, actor domain.Actor) ([]domain.Session, error)
}

// AttendanceSubmitter records a mark. Failures are *domain.MarkError values
// whose Kind is ErrDuplicateMark, ErrPrecondition, ErrSessionNotFound or
// ErrTransient.
type AttendanceSubmitter interface {
	SubmitAttendanceMark(ctx context.Context, id domain.SessionID, actor domain.Actor) error
}

type UpdateSource interface {
	FetchUpdates(ctx context.Context, actor domain.Actor) ([]domain.Update, error)
}

type NotificationSessionSource interface {
	FetchSessionsForNotification(ctx context.Context, actor domain.Actor) ([]domain.Session, error)
}

type Portal interface {
	SessionSource
	AttendanceSubmitter
	UpdateSource
	NotificationSessionSource
}
