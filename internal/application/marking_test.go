package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type markingFixture struct {
	source    *mocks.MockSessionSource
	submitter *mocks.MockAttendanceSubmitter
	clock     *fixedClock
	registry  *SessionRegistry
	marking   *MarkingCoordinator
}

func newMarkingFixture(t *testing.T, sessions ...domain.Session) markingFixture {
	t.Helper()

	source := mocks.NewMockSessionSource(t)
	submitter := mocks.NewMockAttendanceSubmitter(t)
	clock := &fixedClock{now: at(10, 7)}
	registry := NewSessionRegistry(source, student, quietLogger(), nil)
	marking := NewMarkingCoordinator(registry, submitter, clock, quietLogger(), nil)

	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return(sessions, nil).Once()
	_, err := registry.Refresh(context.Background())
	require.NoError(t, err)

	return markingFixture{source: source, submitter: submitter, clock: clock, registry: registry, marking: marking}
}

func TestMarkSuccessIsVisibleBeforeNextPoll(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))
	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).Return(nil).Once()

	assert.Equal(t, MarkEligible, f.marking.State("s-1"))

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, MarkMarked, outcome.State)
	assert.Equal(t, SignalSuccess, outcome.Signal)

	session, err := f.registry.Get("s-1")
	require.NoError(t, err)
	assert.True(t, session.HasAttended())
	assert.Equal(t, MarkMarked, f.marking.State("s-1"))
}

func TestMarkRejectedLocallyWhenNotOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
	}{
		{name: "upcoming", now: at(9, 59)},
		{name: "at end instant", now: at(10, 15)},
		{name: "expired", now: at(11, 0)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newMarkingFixture(t, openSession("s-1"))
			f.clock.Set(tc.now)

			outcome, err := f.marking.Mark(context.Background(), "s-1")
			require.ErrorIs(t, err, ErrSessionNotOpen)
			assert.Equal(t, MarkIneligible, outcome.State)
			f.submitter.AssertNotCalled(t, "SubmitAttendanceMark", mockAnyContext(), domain.SessionID("s-1"), student)
		})
	}
}

func TestMarkRejectedWhenAlreadyAttended(t *testing.T) {
	f := newMarkingFixture(t, withAttendance(openSession("s-1"), domain.AttendancePresent))

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.ErrorIs(t, err, ErrAlreadyMarked)
	assert.Equal(t, MarkMarked, outcome.State)
}

func TestMarkUnknownSession(t *testing.T) {
	f := newMarkingFixture(t)

	outcome, err := f.marking.Mark(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, MarkIneligible, outcome.State)
}

func TestConcurrentMarkIssuesSingleNetworkCall(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))

	started := make(chan struct{})
	release := make(chan struct{})
	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).RunAndReturn(func(context.Context, domain.SessionID, domain.Actor) error {
		close(started)
		<-release
		return nil
	}).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = f.marking.Mark(context.Background(), "s-1")
	}()

	<-started
	assert.Equal(t, MarkMarking, f.marking.State("s-1"))

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.ErrorIs(t, err, ErrMarkInFlight)
	assert.Equal(t, MarkMarking, outcome.State)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, MarkMarked, f.marking.State("s-1"))
}

func TestMarkDuplicateConvergesToMarked(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))

	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).
		Return(domain.NewMarkError(domain.ErrDuplicateMark, "already marked", nil)).Once()
	f.source.EXPECT().FetchActiveSessions(mockAnyContext(), student).
		Return([]domain.Session{withAttendance(openSession("s-1"), domain.AttendancePresent)}, nil).Once()

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, MarkMarked, outcome.State)
	assert.Equal(t, SignalInfo, outcome.Signal)
	assert.Contains(t, outcome.Message, "already marked")

	session, err := f.registry.Get("s-1")
	require.NoError(t, err)
	assert.True(t, session.HasAttended())
}

func TestMarkDuplicateStaysMarkedWhenRefreshFails(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))

	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).
		Return(domain.NewMarkError(domain.ErrDuplicateMark, "", nil)).Once()
	f.source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return(nil, errors.New("timeout")).Once()

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, MarkMarked, outcome.State)
	assert.Equal(t, MarkMarked, f.marking.State("s-1"))
}

func TestMarkPreconditionReturnsToEligible(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))

	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).
		Return(domain.NewMarkError(domain.ErrPrecondition, "no signature on file", nil)).Once()

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.ErrorIs(t, err, domain.ErrPrecondition)
	assert.Equal(t, MarkEligible, outcome.State)
	assert.Equal(t, SignalBlocking, outcome.Signal)
	assert.Contains(t, outcome.Message, "no signature on file")
	assert.Equal(t, MarkEligible, f.marking.State("s-1"))
}

func TestMarkPreconditionWithoutDetailNamesTheMissingStep(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))

	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).
		Return(domain.ErrPrecondition).Once()

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.ErrorIs(t, err, domain.ErrPrecondition)
	assert.Equal(t, "Please complete your profile before marking attendance: signature missing", outcome.Message)
}

func TestConcurrentMarksNeverResubmit(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))

	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).
		Return(nil).Once()

	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.marking.Mark(context.Background(), "s-1")
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, ErrMarkInFlight) || errors.Is(err, ErrAlreadyMarked), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, MarkMarked, f.marking.State("s-1"))
}

func TestMarkTransientIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "structured transient", err: domain.NewMarkError(domain.ErrTransient, "", errors.New("502 bad gateway"))},
		{name: "unclassified", err: errors.New("something odd")},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newMarkingFixture(t, openSession("s-1"))
			f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).Return(tc.err).Once()

			outcome, err := f.marking.Mark(context.Background(), "s-1")
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, MarkEligible, outcome.State)
			assert.Equal(t, SignalRetryable, outcome.Signal)
		})
	}
}

func TestMarkSessionGoneRefreshesRegistry(t *testing.T) {
	f := newMarkingFixture(t, openSession("s-1"))

	f.submitter.EXPECT().SubmitAttendanceMark(mockAnyContext(), domain.SessionID("s-1"), student).
		Return(domain.NewMarkError(domain.ErrSessionNotFound, "", nil)).Once()
	f.source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{}, nil).Once()

	outcome, err := f.marking.Mark(context.Background(), "s-1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, SignalGone, outcome.Signal)
	assert.Equal(t, MarkIneligible, f.marking.State("s-1"))
}
