package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	checkpointsFileMode = 0o600
	checkpointsDirMode  = 0o700
	tempFilePattern     = ".checkpoints-*.toml.tmp"
)

// Store keeps one actor's acknowledgment checkpoints in a TOML file shared
// by every actor on the machine.
type Store struct {
	path  string
	actor string
	mu    *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CheckpointStore = (*Store)(nil)

func NewStore(path, actorID string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("checkpoints path is empty")
	}
	if strings.TrimSpace(actorID) == "" {
		return nil, errors.New("actor id is required")
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, actor: actorID, mu: lockForPath(path)}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, category domain.Category) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return time.Time{}, err
	}

	for _, entry := range file.Checkpoints {
		if entry.Actor == s.actor && entry.Category == string(category) {
			return parseTime(entry.AcknowledgedAt)
		}
	}

	return time.Time{}, domain.ErrCheckpointNotFound
}

func (s *Store) Put(ctx context.Context, category domain.Category, acknowledgedAt time.Time) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}

	encoded := checkpointSchema{
		Actor:          s.actor,
		Category:       string(category),
		AcknowledgedAt: acknowledgedAt.UTC().Format(time.RFC3339Nano),
	}
	updated := false
	for i := range file.Checkpoints {
		if file.Checkpoints[i].Actor == s.actor && file.Checkpoints[i].Category == encoded.Category {
			file.Checkpoints[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Checkpoints = append(file.Checkpoints, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.writeSchema(file)
}

func (s *Store) List(ctx context.Context) ([]domain.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return nil, err
	}

	checkpoints := make([]domain.Checkpoint, 0, len(file.Checkpoints))
	for _, entry := range file.Checkpoints {
		if entry.Actor != s.actor {
			continue
		}
		acknowledgedAt, err := parseTime(entry.AcknowledgedAt)
		if err != nil {
			return nil, err
		}
		checkpoints = append(checkpoints, domain.Checkpoint{
			Category:       domain.Category(entry.Category),
			AcknowledgedAt: acknowledgedAt,
		})
	}
	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].Category < checkpoints[j].Category
	})

	return checkpoints, nil
}

// Reset drops this actor's checkpoints and leaves other actors untouched.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readSchema()
	if err != nil {
		return err
	}

	kept := file.Checkpoints[:0]
	for _, entry := range file.Checkpoints {
		if entry.Actor != s.actor {
			kept = append(kept, entry)
		}
	}
	file.Checkpoints = kept

	return s.writeSchema(file)
}

func (s *Store) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read checkpoints file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode checkpoints file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (s *Store) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.path), checkpointsDirMode); err != nil {
		return fmt.Errorf("create checkpoints directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode checkpoints file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp checkpoints file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp checkpoints file: %w", err)
	}

	if err := tempFile.Chmod(checkpointsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp checkpoints file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp checkpoints file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace checkpoints file: %w", err)
	}

	cleanup = false

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve checkpoints path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func parseTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode checkpoint instant %q: %w", raw, err)
	}

	return parsed, nil
}
