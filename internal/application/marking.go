package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

type MarkState string

const (
	MarkIneligible MarkState = "ineligible"
	MarkEligible   MarkState = "eligible"
	MarkMarking    MarkState = "marking"
	MarkMarked     MarkState = "marked"
)

type SignalKind string

const (
	SignalSuccess   SignalKind = "success"
	SignalInfo      SignalKind = "info"
	SignalBlocking  SignalKind = "blocking"
	SignalRetryable SignalKind = "retryable"
	SignalGone      SignalKind = "gone"
)

type MarkOutcome struct {
	SessionID domain.SessionID
	State     MarkState
	Signal    SignalKind
	Message   string
}

// MarkingCoordinator enforces at most one outstanding mark per session from
// this client. The server stays the arbiter of uniqueness.
type MarkingCoordinator struct {
	registry  *SessionRegistry
	submitter ports.AttendanceSubmitter
	clock     ports.Clock
	log       logrus.FieldLogger
	metrics   *Metrics

	mu       sync.Mutex
	inFlight map[domain.SessionID]struct{}
}

func NewMarkingCoordinator(registry *SessionRegistry, submitter ports.AttendanceSubmitter, clock ports.Clock, logger logrus.FieldLogger, metrics *Metrics) *MarkingCoordinator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &MarkingCoordinator{
		registry:  registry,
		submitter: submitter,
		clock:     clock,
		log:       logger.WithField("component", "marking"),
		metrics:   metrics,
		inFlight:  map[domain.SessionID]struct{}{},
	}
}

func (c *MarkingCoordinator) State(id domain.SessionID) MarkState {
	c.mu.Lock()
	_, marking := c.inFlight[id]
	c.mu.Unlock()
	if marking {
		return MarkMarking
	}

	session, err := c.registry.Get(id)
	if err != nil {
		return MarkIneligible
	}

	return stateOf(session, c.clock)
}

// Mark submits the actor's attendance for id. Local preconditions are checked
// before any network call. Remote failures come back as an outcome carrying
// the matching signal together with the error, except duplicates which
// converge to the marked state without an error.
func (c *MarkingCoordinator) Mark(ctx context.Context, id domain.SessionID) (MarkOutcome, error) {
	logger := c.log.WithField("session_id", id)

	session, err := c.registry.Get(id)
	if err != nil {
		c.metrics.observeMark("rejected")
		return MarkOutcome{SessionID: id, State: MarkIneligible}, err
	}
	if session.HasAttended() {
		c.metrics.observeMark("rejected")
		return MarkOutcome{SessionID: id, State: MarkMarked}, fmt.Errorf("%w: %s", ErrAlreadyMarked, id)
	}
	if phase := domain.PhaseOf(session, c.clock.Now()); phase != domain.PhaseOpen {
		c.metrics.observeMark("rejected")
		return MarkOutcome{SessionID: id, State: MarkIneligible}, fmt.Errorf("%w: session %s is %s", ErrSessionNotOpen, id, phase)
	}

	if !c.begin(id) {
		c.metrics.observeMark("rejected")
		return MarkOutcome{SessionID: id, State: MarkMarking}, fmt.Errorf("%w: %s", ErrMarkInFlight, id)
	}
	defer c.finish(id)

	// a mark that finished between the checks above and begin has already
	// updated the registry
	if current, getErr := c.registry.Get(id); getErr == nil && current.HasAttended() {
		c.metrics.observeMark("rejected")
		return MarkOutcome{SessionID: id, State: MarkMarked}, fmt.Errorf("%w: %s", ErrAlreadyMarked, id)
	}

	err = c.submitter.SubmitAttendanceMark(ctx, id, c.registry.Actor())
	if err == nil {
		if applyErr := c.registry.ApplyLocalAttendance(id); applyErr != nil {
			logger.WithError(applyErr).Warn("marked attendance for a session no longer cached")
		}
		logger.Info("attendance marked")
		c.metrics.observeMark(string(SignalSuccess))
		return MarkOutcome{
			SessionID: id,
			State:     MarkMarked,
			Signal:    SignalSuccess,
			Message:   "Attendance marked successfully!",
		}, nil
	}

	switch domain.ClassifyMarkError(err) {
	case domain.MarkFailureDuplicate:
		if applyErr := c.registry.ApplyLocalAttendance(id); applyErr != nil {
			logger.WithError(applyErr).Warn("duplicate mark for a session no longer cached")
		}
		if _, refreshErr := c.registry.Refresh(ctx); refreshErr != nil {
			logger.WithError(refreshErr).Warn("refresh after duplicate mark failed")
		}
		logger.Info("attendance was already marked")
		c.metrics.observeMark(string(domain.MarkFailureDuplicate))
		return MarkOutcome{
			SessionID: id,
			State:     MarkMarked,
			Signal:    SignalInfo,
			Message:   "You have already marked attendance for this session",
		}, nil
	case domain.MarkFailurePrecondition:
		reason := domain.PreconditionReason(err)
		logger.WithField("reason", reason).Warn("attendance precondition not met")
		c.metrics.observeMark(string(domain.MarkFailurePrecondition))
		return MarkOutcome{
			SessionID: id,
			State:     MarkEligible,
			Signal:    SignalBlocking,
			Message:   fmt.Sprintf("Please complete your profile before marking attendance: %s", reason),
		}, err
	case domain.MarkFailureNotFound:
		if _, refreshErr := c.registry.Refresh(ctx); refreshErr != nil {
			logger.WithError(refreshErr).Warn("refresh after missing session failed")
		}
		logger.Warn("session no longer exists")
		c.metrics.observeMark(string(domain.MarkFailureNotFound))
		return MarkOutcome{
			SessionID: id,
			State:     MarkIneligible,
			Signal:    SignalGone,
			Message:   "This session is no longer available",
		}, err
	default:
		logger.WithError(err).Warn("attendance mark failed")
		c.metrics.observeMark(string(domain.MarkFailureTransient))
		return MarkOutcome{
			SessionID: id,
			State:     MarkEligible,
			Signal:    SignalRetryable,
			Message:   "Failed to mark attendance, please try again",
		}, err
	}
}

func (c *MarkingCoordinator) begin(id domain.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.inFlight[id]; ok {
		return false
	}
	c.inFlight[id] = struct{}{}
	return true
}

func (c *MarkingCoordinator) finish(id domain.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inFlight, id)
}

func stateOf(session domain.Session, clock ports.Clock) MarkState {
	if session.HasAttended() {
		return MarkMarked
	}
	if domain.PhaseOf(session, clock.Now()) == domain.PhaseOpen {
		return MarkEligible
	}
	return MarkIneligible
}
