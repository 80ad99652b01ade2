package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// Store reads and writes the primary checkpoint store and falls back to the
// secondary one when the primary fails. Reads consult both backends and keep
// the later acknowledgment per category, so a write that landed on the
// fallback during a primary outage still counts once the primary is back.
type Store struct {
	primary  ports.CheckpointStore
	fallback ports.CheckpointStore
	log      logrus.FieldLogger
}

var _ ports.CheckpointStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary checkpoint store is nil")
	errNilFallbackStore = errors.New("fallback checkpoint store is nil")
)

func NewStore(primary, fallback ports.CheckpointStore, logger logrus.FieldLogger) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Store{primary: primary, fallback: fallback, log: logger.WithField("component", "checkpoint_chain")}, nil
}

func (s *Store) Get(ctx context.Context, category domain.Category) (time.Time, error) {
	value, err := s.primary.Get(ctx, category)
	if err != nil && !errors.Is(err, domain.ErrCheckpointNotFound) {
		if shouldSkipFallback(err) {
			return time.Time{}, err
		}
		s.warn("get", err)

		fallbackValue, fallbackErr := s.fallback.Get(ctx, category)
		if fallbackErr == nil || errors.Is(fallbackErr, domain.ErrCheckpointNotFound) {
			return fallbackValue, fallbackErr
		}

		return time.Time{}, fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, category)
	switch {
	case fallbackErr == nil:
		if err != nil || fallbackValue.After(value) {
			return fallbackValue, nil
		}
	case !errors.Is(fallbackErr, domain.ErrCheckpointNotFound):
		if shouldSkipFallback(fallbackErr) {
			return time.Time{}, fallbackErr
		}
		s.log.WithField("op", "get").WithError(fallbackErr).Warn("fallback checkpoint store failed, using primary")
	}

	return value, err
}

func (s *Store) Put(ctx context.Context, category domain.Category, acknowledgedAt time.Time) error {
	err := s.primary.Put(ctx, category, acknowledgedAt)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}
	s.warn("put", err)

	fallbackErr := s.fallback.Put(ctx, category, acknowledgedAt)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) List(ctx context.Context) ([]domain.Checkpoint, error) {
	checkpoints, err := s.primary.List(ctx)
	if err != nil {
		if shouldSkipFallback(err) {
			return nil, err
		}
		s.warn("list", err)

		fallbackCheckpoints, fallbackErr := s.fallback.List(ctx)
		if fallbackErr == nil {
			return fallbackCheckpoints, nil
		}

		return nil, fmt.Errorf("primary backend list failed: %w; fallback backend list failed: %w", err, fallbackErr)
	}

	fallbackCheckpoints, fallbackErr := s.fallback.List(ctx)
	if fallbackErr != nil {
		if shouldSkipFallback(fallbackErr) {
			return nil, fallbackErr
		}
		s.log.WithField("op", "list").WithError(fallbackErr).Warn("fallback checkpoint store failed, using primary")
		return checkpoints, nil
	}

	return merge(checkpoints, fallbackCheckpoints), nil
}

// Reset clears both backends so a checkpoint written to the fallback during
// a primary outage cannot resurface later. A primary that could not be
// cleared is an error even when the fallback was: its checkpoints would come
// back with it.
func (s *Store) Reset(ctx context.Context) error {
	err := s.primary.Reset(ctx)
	if err != nil && shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Reset(ctx)
	switch {
	case err == nil && fallbackErr == nil:
		return nil
	case err != nil && fallbackErr != nil:
		return fmt.Errorf("primary backend reset failed: %w; fallback backend reset failed: %w", err, fallbackErr)
	case err != nil:
		return fmt.Errorf("primary backend reset failed: %w", err)
	default:
		return fmt.Errorf("fallback backend reset failed: %w", fallbackErr)
	}
}

// merge keeps the later acknowledgment per category, in first-seen order.
func merge(primary, fallback []domain.Checkpoint) []domain.Checkpoint {
	merged := make([]domain.Checkpoint, 0, len(primary)+len(fallback))
	index := make(map[domain.Category]int, len(primary)+len(fallback))

	for _, checkpoint := range append(append([]domain.Checkpoint{}, primary...), fallback...) {
		i, seen := index[checkpoint.Category]
		if !seen {
			index[checkpoint.Category] = len(merged)
			merged = append(merged, checkpoint)
			continue
		}
		if checkpoint.AcknowledgedAt.After(merged[i].AcknowledgedAt) {
			merged[i] = checkpoint
		}
	}

	return merged
}

func (s *Store) warn(op string, err error) {
	s.log.WithField("op", op).WithError(err).Warn("primary checkpoint store failed, using fallback")
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
