package chain

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/domain"
	portmocks "github.com/bnema/classence-cli/internal/ports/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var acknowledgedAt = time.Date(2026, 2, 14, 9, 15, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *portmocks.MockCheckpointStore, *portmocks.MockCheckpointStore) {
	t.Helper()

	primary := portmocks.NewMockCheckpointStore(t)
	fallback := portmocks.NewMockCheckpointStore(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewStore(primary, fallback, logger)
	require.NoError(t, err)

	return store, primary, fallback
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, portmocks.NewMockCheckpointStore(t), nil)
	assert.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(portmocks.NewMockCheckpointStore(t), nil, nil)
	assert.ErrorIs(t, err, errNilFallbackStore)
}

func TestStoreGetKeepsLaterAcknowledgment(t *testing.T) {
	t.Parallel()

	later := acknowledgedAt.Add(time.Hour)
	tests := []struct {
		name        string
		primary     time.Time
		primaryErr  error
		fallback    time.Time
		fallbackErr error
		want        time.Time
		wantErr     error
	}{
		{name: "primary newer", primary: later, fallback: acknowledgedAt, want: later},
		{name: "fallback newer", primary: acknowledgedAt, fallback: later, want: later},
		{name: "only fallback", primaryErr: domain.ErrCheckpointNotFound, fallback: later, want: later},
		{name: "only primary", primary: later, fallbackErr: domain.ErrCheckpointNotFound, want: later},
		{name: "neither", primaryErr: domain.ErrCheckpointNotFound, fallbackErr: domain.ErrCheckpointNotFound, wantErr: domain.ErrCheckpointNotFound},
		{name: "fallback broken", primary: later, fallbackErr: errors.New("read-only fs"), want: later},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store, primary, fallback := newTestStore(t)

			primary.EXPECT().Get(mock.Anything, domain.CategoryUpdates).Return(tc.primary, tc.primaryErr).Once()
			fallback.EXPECT().Get(mock.Anything, domain.CategoryUpdates).Return(tc.fallback, tc.fallbackErr).Once()

			got, err := store.Get(context.Background(), domain.CategoryUpdates)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()
	store, primary, fallback := newTestStore(t)

	primary.EXPECT().Get(mock.Anything, domain.CategoryUpdates).Return(time.Time{}, errors.New("redis down")).Once()
	fallback.EXPECT().Get(mock.Anything, domain.CategoryUpdates).Return(acknowledgedAt, nil).Once()

	got, err := store.Get(context.Background(), domain.CategoryUpdates)
	require.NoError(t, err)
	assert.Equal(t, acknowledgedAt, got)
}

func TestStoreGetReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()
	store, primary, fallback := newTestStore(t)

	primary.EXPECT().Get(mock.Anything, domain.CategoryUpdates).Return(time.Time{}, errors.New("redis failed")).Once()
	fallback.EXPECT().Get(mock.Anything, domain.CategoryUpdates).Return(time.Time{}, errors.New("file failed")).Once()

	_, err := store.Get(context.Background(), domain.CategoryUpdates)
	require.Error(t, err)
	assert.ErrorContains(t, err, "primary backend")
	assert.ErrorContains(t, err, "fallback backend")
	assert.ErrorContains(t, err, "redis failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestStoreGetDoesNotFallbackOnCanceledContext(t *testing.T) {
	t.Parallel()
	store, primary, _ := newTestStore(t)

	primary.EXPECT().Get(mock.Anything, domain.CategoryUpdates).Return(time.Time{}, context.Canceled).Once()

	_, err := store.Get(context.Background(), domain.CategoryUpdates)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()
	store, primary, fallback := newTestStore(t)

	primary.EXPECT().Put(mock.Anything, domain.CategoryUpdates, acknowledgedAt).Return(errors.New("redis down")).Once()
	fallback.EXPECT().Put(mock.Anything, domain.CategoryUpdates, acknowledgedAt).Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), domain.CategoryUpdates, acknowledgedAt))
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()
	store, primary, _ := newTestStore(t)

	primary.EXPECT().Put(mock.Anything, domain.CategoryUpdates, acknowledgedAt).Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), domain.CategoryUpdates, acknowledgedAt))
}

func TestStorePutDoesNotFallbackOnDeadline(t *testing.T) {
	t.Parallel()
	store, primary, _ := newTestStore(t)

	primary.EXPECT().Put(mock.Anything, domain.CategoryUpdates, acknowledgedAt).Return(context.DeadlineExceeded).Once()

	require.ErrorIs(t, store.Put(context.Background(), domain.CategoryUpdates, acknowledgedAt), context.DeadlineExceeded)
}

func TestStoreListFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()
	store, primary, fallback := newTestStore(t)
	want := []domain.Checkpoint{{Category: domain.CategoryUpdates, AcknowledgedAt: acknowledgedAt}}

	primary.EXPECT().List(mock.Anything).Return(nil, errors.New("redis down")).Once()
	fallback.EXPECT().List(mock.Anything).Return(want, nil).Once()

	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStoreListMergesBothBackends(t *testing.T) {
	t.Parallel()
	store, primary, fallback := newTestStore(t)
	later := acknowledgedAt.Add(time.Hour)

	primary.EXPECT().List(mock.Anything).Return([]domain.Checkpoint{
		{Category: domain.CategoryUpdates, AcknowledgedAt: acknowledgedAt},
		{Category: domain.CategorySessions, AcknowledgedAt: later},
	}, nil).Once()
	fallback.EXPECT().List(mock.Anything).Return([]domain.Checkpoint{
		{Category: domain.CategoryUpdates, AcknowledgedAt: later},
		{Category: domain.CategorySessions, AcknowledgedAt: acknowledgedAt},
	}, nil).Once()

	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Checkpoint{
		{Category: domain.CategoryUpdates, AcknowledgedAt: later},
		{Category: domain.CategorySessions, AcknowledgedAt: later},
	}, got)
}

func TestStoreListUsesPrimaryWhenFallbackFails(t *testing.T) {
	t.Parallel()
	store, primary, fallback := newTestStore(t)
	want := []domain.Checkpoint{{Category: domain.CategoryUpdates, AcknowledgedAt: acknowledgedAt}}

	primary.EXPECT().List(mock.Anything).Return(want, nil).Once()
	fallback.EXPECT().List(mock.Anything).Return(nil, errors.New("read-only fs")).Once()

	got, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStoreResetClearsBothBackends(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		primaryErr  error
		fallbackErr error
		wantErr     string
	}{
		{name: "both succeed"},
		{name: "primary down", primaryErr: errors.New("redis down"), wantErr: "primary backend reset failed"},
		{name: "fallback fails", fallbackErr: errors.New("read-only fs"), wantErr: "fallback backend reset failed"},
		{name: "both fail", primaryErr: errors.New("redis down"), fallbackErr: errors.New("read-only fs"), wantErr: "primary backend reset failed"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store, primary, fallback := newTestStore(t)

			primary.EXPECT().Reset(mock.Anything).Return(tc.primaryErr).Once()
			fallback.EXPECT().Reset(mock.Anything).Return(tc.fallbackErr).Once()

			err := store.Reset(context.Background())
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

var errBackendDown = errors.New("backend down")

// memoryStore is a checkpoint store that can be switched off.
type memoryStore struct {
	mu          sync.Mutex
	down        bool
	checkpoints map[domain.Category]time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{checkpoints: map[domain.Category]time.Time{}}
}

func (m *memoryStore) setDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

func (m *memoryStore) Get(_ context.Context, category domain.Category) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return time.Time{}, errBackendDown
	}
	value, ok := m.checkpoints[category]
	if !ok {
		return time.Time{}, domain.ErrCheckpointNotFound
	}
	return value, nil
}

func (m *memoryStore) Put(_ context.Context, category domain.Category, acknowledgedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errBackendDown
	}
	m.checkpoints[category] = acknowledgedAt
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]domain.Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errBackendDown
	}
	checkpoints := make([]domain.Checkpoint, 0, len(m.checkpoints))
	for category, value := range m.checkpoints {
		checkpoints = append(checkpoints, domain.Checkpoint{Category: category, AcknowledgedAt: value})
	}
	return checkpoints, nil
}

func (m *memoryStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errBackendDown
	}
	m.checkpoints = map[domain.Category]time.Time{}
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newMemoryChain(t *testing.T) (*Store, *memoryStore, *memoryStore) {
	t.Helper()

	primary := newMemoryStore()
	fallback := newMemoryStore()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewStore(primary, fallback, logger)
	require.NoError(t, err)

	return store, primary, fallback
}

func TestAcknowledgmentDuringOutageSurvivesRecovery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, primary, _ := newMemoryChain(t)
	at := func(hour, minute int) time.Time { return time.Date(2026, 2, 14, hour, minute, 0, 0, time.UTC) }
	items := domain.UpdatesAsTimestamped([]domain.Update{
		{ID: "u-1", CreatedAt: at(9, 0)},
		{ID: "u-2", CreatedAt: at(9, 30)},
		{ID: "u-3", CreatedAt: at(10, 0)},
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	primary.setDown(true)
	tracker := application.NewDeltaTracker(store, fixedClock{now: at(11, 0)}, logger)
	_, err := tracker.Acknowledge(ctx, domain.CategoryUpdates)
	require.NoError(t, err)

	primary.setDown(false)
	reloaded := application.NewDeltaTracker(store, fixedClock{now: at(11, 5)}, logger)
	require.NoError(t, reloaded.Load(ctx))

	unseen, err := reloaded.UnseenCount(ctx, domain.CategoryUpdates, items)
	require.NoError(t, err)
	assert.Equal(t, 0, unseen)

	got, err := store.Get(ctx, domain.CategoryUpdates)
	require.NoError(t, err)
	assert.Equal(t, at(11, 0), got)
}

func TestResetWhilePrimaryDownIsReported(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, primary, _ := newMemoryChain(t)

	require.NoError(t, store.Put(ctx, domain.CategoryUpdates, acknowledgedAt))

	primary.setDown(true)
	require.ErrorIs(t, store.Reset(ctx), errBackendDown)

	primary.setDown(false)
	require.NoError(t, store.Reset(ctx))

	_, err := store.Get(ctx, domain.CategoryUpdates)
	require.ErrorIs(t, err, domain.ErrCheckpointNotFound)
}
