package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// DeltaTracker counts items created after the last acknowledgment of their
// category. Checkpoints are read from the store on Load and written through on
// Acknowledge.
type DeltaTracker struct {
	store ports.CheckpointStore
	clock ports.Clock
	log   logrus.FieldLogger

	mu          sync.RWMutex
	loaded      bool
	checkpoints map[domain.Category]time.Time
}

func NewDeltaTracker(store ports.CheckpointStore, clock ports.Clock, logger logrus.FieldLogger) *DeltaTracker {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &DeltaTracker{
		store:       store,
		clock:       clock,
		log:         logger.WithField("component", "delta_tracker"),
		checkpoints: map[domain.Category]time.Time{},
	}
}

func (t *DeltaTracker) Load(ctx context.Context) error {
	checkpoints, err := t.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list checkpoints: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.checkpoints = make(map[domain.Category]time.Time, len(checkpoints))
	for _, checkpoint := range checkpoints {
		t.checkpoints[checkpoint.Category] = checkpoint.AcknowledgedAt
	}
	t.loaded = true

	return nil
}

// UnseenCount returns how many items were created strictly after the
// category's checkpoint. A category never acknowledged counts every item.
func (t *DeltaTracker) UnseenCount(ctx context.Context, category domain.Category, items []domain.Timestamped) (int, error) {
	checkpoint, ok, err := t.checkpoint(ctx, category)
	if err != nil {
		return 0, err
	}
	if !ok {
		return len(items), nil
	}

	unseen := 0
	for _, item := range items {
		if item.CreationInstant().After(checkpoint) {
			unseen++
		}
	}

	return unseen, nil
}

// Acknowledge moves the category's checkpoint to now. Call it only once the
// user has viewed the category's full list.
func (t *DeltaTracker) Acknowledge(ctx context.Context, category domain.Category) (time.Time, error) {
	if err := category.Validate(); err != nil {
		return time.Time{}, err
	}

	now := t.clock.Now()
	if err := t.store.Put(ctx, category, now); err != nil {
		return time.Time{}, fmt.Errorf("save %s checkpoint: %w", category, err)
	}

	t.mu.Lock()
	t.checkpoints[category] = now
	t.mu.Unlock()

	t.log.WithFields(logrus.Fields{"category": category, "at": now}).Debug("category acknowledged")

	return now, nil
}

// Reset drops every checkpoint, as on logout.
func (t *DeltaTracker) Reset(ctx context.Context) error {
	if err := t.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset checkpoints: %w", err)
	}

	t.mu.Lock()
	t.checkpoints = map[domain.Category]time.Time{}
	t.mu.Unlock()

	return nil
}

func (t *DeltaTracker) Summary(ctx context.Context, collections map[domain.Category][]domain.Timestamped) ([]domain.Delta, error) {
	deltas := make([]domain.Delta, 0, len(collections))
	for category, items := range collections {
		unseen, err := t.UnseenCount(ctx, category, items)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, domain.Delta{Category: category, Unseen: unseen, Total: len(items)})
	}

	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].Category < deltas[j].Category
	})

	return deltas, nil
}

func (t *DeltaTracker) checkpoint(ctx context.Context, category domain.Category) (time.Time, bool, error) {
	t.mu.RLock()
	checkpoint, ok := t.checkpoints[category]
	loaded := t.loaded
	t.mu.RUnlock()

	if ok || loaded {
		return checkpoint, ok, nil
	}

	checkpoint, err := t.store.Get(ctx, category)
	if err != nil {
		if errors.Is(err, domain.ErrCheckpointNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("load %s checkpoint: %w", category, err)
	}

	t.mu.Lock()
	t.checkpoints[category] = checkpoint
	t.mu.Unlock()

	return checkpoint, true, nil
}
