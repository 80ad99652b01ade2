package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// reconfirmAbsentRefreshes is how many consecutive refreshes must report a
// locally marked session as not attended before the local mark is dropped.
const reconfirmAbsentRefreshes = 2

// SessionRegistry owns the local copy of the sessions visible to one actor.
type SessionRegistry struct {
	source  ports.SessionSource
	actor   domain.Actor
	log     logrus.FieldLogger
	metrics *Metrics

	mu       sync.RWMutex
	sessions map[domain.SessionID]domain.Session
	pending  map[domain.SessionID]int
	issued   uint64
}

func NewSessionRegistry(source ports.SessionSource, actor domain.Actor, logger logrus.FieldLogger, metrics *Metrics) *SessionRegistry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &SessionRegistry{
		source:   source,
		actor:    actor,
		log:      logger.WithField("component", "session_registry"),
		metrics:  metrics,
		sessions: map[domain.SessionID]domain.Session{},
		pending:  map[domain.SessionID]int{},
	}
}

func (r *SessionRegistry) Actor() domain.Actor {
	return r.actor
}

// Refresh replaces the cache with the server's current answer. A failed
// fetch leaves the cache untouched. A response to a request that has since
// been superseded by a newer one is discarded and the current snapshot is
// returned instead.
func (r *SessionRegistry) Refresh(ctx context.Context) ([]domain.Session, error) {
	r.mu.Lock()
	r.issued++
	seq := r.issued
	r.mu.Unlock()

	sessions, err := r.source.FetchActiveSessions(ctx, r.actor)
	if err != nil {
		return nil, fmt.Errorf("fetch active sessions: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq < r.issued {
		r.log.WithFields(logrus.Fields{"seq": seq, "latest": r.issued}).Debug("discarding stale session snapshot")
		r.metrics.observeStale()
		return r.snapshotLocked(), nil
	}

	next := make(map[domain.SessionID]domain.Session, len(sessions))
	for _, session := range sessions {
		if err := session.Validate(); err != nil {
			r.log.WithError(err).Warn("dropping invalid session from snapshot")
			continue
		}
		next[session.ID] = session
	}

	r.reconcileLocked(next)
	r.sessions = next

	return r.snapshotLocked(), nil
}

func (r *SessionRegistry) Get(id domain.SessionID) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	return session, nil
}

// ApplyLocalAttendance marks the cached session as attended ahead of the next
// poll. Calling it again for the same session is a no-op.
func (r *SessionRegistry) ApplyLocalAttendance(id domain.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if session.HasAttended() {
		return nil
	}

	session.Attended = domain.AttendancePresent
	r.sessions[id] = session
	if _, ok := r.pending[id]; !ok {
		r.pending[id] = 0
	}

	return nil
}

func (r *SessionRegistry) Snapshot() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotLocked()
}

func (r *SessionRegistry) reconcileLocked(next map[domain.SessionID]domain.Session) {
	for id, misses := range r.pending {
		session, ok := next[id]
		if !ok || session.HasAttended() {
			delete(r.pending, id)
			continue
		}

		misses++
		if misses >= reconfirmAbsentRefreshes {
			r.log.WithField("session_id", id).Info("server reconfirmed attendance as not marked, dropping local mark")
			delete(r.pending, id)
			continue
		}

		r.pending[id] = misses
		session.Attended = domain.AttendancePresent
		next[id] = session
	}
}

func (r *SessionRegistry) snapshotLocked() []domain.Session {
	sessions := make([]domain.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartsAt.Equal(sessions[j].StartsAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartsAt.Before(sessions[j].StartsAt)
	})

	return sessions
}
