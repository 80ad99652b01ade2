package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "classence"

// Store keeps an actor's checkpoints in one redis hash, one field per
// category.
type Store struct {
	client goredis.UniversalClient
	key    string
}

var _ ports.CheckpointStore = (*Store)(nil)

// NewClient dials with short timeouts so a missing redis fails fast and the
// chain can fall back.
func NewClient(addr string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

func NewStore(client goredis.UniversalClient, prefix, actorID string) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if strings.TrimSpace(actorID) == "" {
		return nil, errors.New("actor id is required")
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Store{client: client, key: fmt.Sprintf("%s:checkpoints:%s", prefix, actorID)}, nil
}

// Key is the redis hash holding the actor's checkpoints.
func (s *Store) Key() string {
	return s.key
}

// Ping reports whether redis answers within ctx.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping for %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, category domain.Category) (time.Time, error) {
	raw, err := s.client.HGet(ctx, s.key, string(category)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return time.Time{}, domain.ErrCheckpointNotFound
		}
		return time.Time{}, fmt.Errorf("redis hget %s: %w", s.key, err)
	}

	return parseTime(raw)
}

func (s *Store) Put(ctx context.Context, category domain.Category, acknowledgedAt time.Time) error {
	if err := category.Validate(); err != nil {
		return err
	}

	if err := s.client.HSet(ctx, s.key, string(category), acknowledgedAt.UTC().Format(time.RFC3339Nano)).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", s.key, err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.Checkpoint, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", s.key, err)
	}

	checkpoints := make([]domain.Checkpoint, 0, len(fields))
	for category, raw := range fields {
		acknowledgedAt, err := parseTime(raw)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, domain.Checkpoint{
			Category:       domain.Category(category),
			AcknowledgedAt: acknowledgedAt,
		})
	}
	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].Category < checkpoints[j].Category
	})

	return checkpoints, nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}

	return nil
}

func parseTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode checkpoint instant %q: %w", raw, err)
	}

	return parsed, nil
}
