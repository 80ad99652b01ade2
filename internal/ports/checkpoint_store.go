package ports

import (
	"context"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
)

// CheckpointStore persists one acknowledgment instant per category. Get
// returns domain.ErrCheckpointNotFound for a category never acknowledged.
type CheckpointStore interface {
	Get(ctx context.Context, category domain.Category) (time.Time, error)
	Put(ctx context.Context, category domain.Category, acknowledgedAt time.Time) error
	List(ctx context.Context) ([]domain.Checkpoint, error)
	Reset(ctx context.Context) error
}
