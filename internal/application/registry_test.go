package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRefreshReplacesCache(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	registry := NewSessionRegistry(source, student, quietLogger(), nil)

	first := openSession("s-1")
	second := openSession("s-2")
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{first, second}, nil).Once()
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{second}, nil).Once()

	got, err := registry.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = registry.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Session{second}, got)

	_, err = registry.Get("s-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRegistryFailedRefreshKeepsCache(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	registry := NewSessionRegistry(source, student, quietLogger(), nil)

	session := openSession("s-1")
	networkErr := errors.New("connection refused")
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{session}, nil).Once()
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return(nil, networkErr).Once()

	_, err := registry.Refresh(context.Background())
	require.NoError(t, err)

	_, err = registry.Refresh(context.Background())
	require.ErrorIs(t, err, networkErr)
	assert.Equal(t, []domain.Session{session}, registry.Snapshot())
}

func TestRegistryDropsInvalidSessions(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	registry := NewSessionRegistry(source, student, quietLogger(), nil)

	valid := openSession("s-1")
	inverted := openSession("s-2")
	inverted.StartsAt, inverted.EndsAt = inverted.EndsAt, inverted.StartsAt
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{valid, inverted}, nil)

	got, err := registry.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Session{valid}, got)
}

func TestRegistryApplyLocalAttendance(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	registry := NewSessionRegistry(source, student, quietLogger(), nil)

	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{openSession("s-1")}, nil)
	_, err := registry.Refresh(context.Background())
	require.NoError(t, err)

	require.NoError(t, registry.ApplyLocalAttendance("s-1"))
	require.NoError(t, registry.ApplyLocalAttendance("s-1"))

	got, err := registry.Get("s-1")
	require.NoError(t, err)
	assert.True(t, got.HasAttended())

	assert.ErrorIs(t, registry.ApplyLocalAttendance("missing"), domain.ErrSessionNotFound)
}

func TestRegistryLocalMarkSurvivesLaggingRefreshUntilReconfirmedTwice(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	registry := NewSessionRegistry(source, student, quietLogger(), nil)

	absent := openSession("s-1")
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{absent}, nil).Times(3)

	_, err := registry.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, registry.ApplyLocalAttendance("s-1"))

	_, err = registry.Refresh(context.Background())
	require.NoError(t, err)
	got, err := registry.Get("s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendancePresent, got.Attended, "first lagging refresh must not clobber the local mark")

	_, err = registry.Refresh(context.Background())
	require.NoError(t, err)
	got, err = registry.Get("s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceAbsent, got.Attended, "second reconfirmation wins")
}

func TestRegistryServerConfirmationClearsPendingMark(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	registry := NewSessionRegistry(source, student, quietLogger(), nil)

	absent := openSession("s-1")
	present := withAttendance(absent, domain.AttendancePresent)
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{absent}, nil).Once()
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{present}, nil).Once()
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{absent}, nil).Once()

	_, err := registry.Refresh(context.Background())
	require.NoError(t, err)
	require.NoError(t, registry.ApplyLocalAttendance("s-1"))

	_, err = registry.Refresh(context.Background())
	require.NoError(t, err)

	_, err = registry.Refresh(context.Background())
	require.NoError(t, err)
	got, err := registry.Get("s-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceAbsent, got.Attended)
}

func TestRegistryDiscardsResponseOlderThanLastIssued(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	registry := NewSessionRegistry(source, student, quietLogger(), metrics)

	stale := []domain.Session{openSession("old")}
	fresh := []domain.Session{openSession("new")}

	started := make(chan struct{})
	release := make(chan struct{})
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).RunAndReturn(func(context.Context, domain.Actor) ([]domain.Session, error) {
		close(started)
		<-release
		return stale, nil
	}).Once()
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return(fresh, nil).Once()

	type result struct {
		sessions []domain.Session
		err      error
	}
	slow := make(chan result, 1)
	go func() {
		sessions, err := registry.Refresh(context.Background())
		slow <- result{sessions: sessions, err: err}
	}()

	<-started
	got, err := registry.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	close(release)
	late := <-slow
	require.NoError(t, late.err)
	assert.Equal(t, fresh, late.sessions)
	assert.Equal(t, fresh, registry.Snapshot())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.staleSnapshots))
}

func TestRegistrySnapshotSortedByStart(t *testing.T) {
	source := mocks.NewMockSessionSource(t)
	registry := NewSessionRegistry(source, student, quietLogger(), nil)

	later := openSession("a")
	later.StartsAt, later.EndsAt = at(11, 0), at(11, 30)
	earlier := openSession("b")
	source.EXPECT().FetchActiveSessions(mockAnyContext(), student).Return([]domain.Session{later, earlier}, nil)

	got, err := registry.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.SessionID("b"), got[0].ID)
	assert.Equal(t, domain.SessionID("a"), got[1].ID)
}
