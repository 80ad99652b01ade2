package application

import (
	"time"

	"github.com/bnema/classence-cli/internal/domain"
)

type SessionView struct {
	Session        domain.Session
	Phase          domain.Phase
	Remaining      time.Duration
	RemainingLabel string
	State          MarkState
}

func (v SessionView) CanMark() bool {
	return v.State == MarkEligible
}

// BuildSessionViews derives the display phase of every session at now.
// Admins only see sessions still flagged active.
func BuildSessionViews(sessions []domain.Session, actor domain.Actor, now time.Time, stateOf func(domain.SessionID) MarkState) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		if actor.IsAdmin() && !session.Active {
			continue
		}

		view := SessionView{
			Session: session,
			Phase:   domain.PhaseOf(session, now),
		}

		if remaining, ok := domain.Remaining(session, now); ok {
			view.Remaining = remaining
			view.RemainingLabel = domain.FormatRemaining(remaining)
		} else if view.Phase == domain.PhaseExpired {
			view.RemainingLabel = domain.FormatRemaining(0)
		}

		switch {
		case actor.IsAdmin():
			view.State = MarkIneligible
		case stateOf != nil:
			view.State = stateOf(session.ID)
		case session.HasAttended():
			view.State = MarkMarked
		case view.Phase == domain.PhaseOpen:
			view.State = MarkEligible
		default:
			view.State = MarkIneligible
		}

		views = append(views, view)
	}

	return views
}
