package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// NotificationFeed keeps the latest fetched collection per notification
// category and the unseen count derived from it.
type NotificationFeed struct {
	updates  ports.UpdateSource
	sessions ports.NotificationSessionSource
	tracker  *DeltaTracker
	actor    domain.Actor
	log      logrus.FieldLogger
	metrics  *Metrics

	mu     sync.RWMutex
	issued map[domain.Category]uint64
	items  map[domain.Category][]domain.Timestamped
	latest []domain.Update
	deltas map[domain.Category]domain.Delta
}

func NewNotificationFeed(updates ports.UpdateSource, sessions ports.NotificationSessionSource, tracker *DeltaTracker, actor domain.Actor, logger logrus.FieldLogger, metrics *Metrics) *NotificationFeed {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &NotificationFeed{
		updates:  updates,
		sessions: sessions,
		tracker:  tracker,
		actor:    actor,
		log:      logger.WithField("component", "notification_feed"),
		metrics:  metrics,
		issued:   map[domain.Category]uint64{},
		items:    map[domain.Category][]domain.Timestamped{},
		deltas:   map[domain.Category]domain.Delta{},
	}
}

func (f *NotificationFeed) RefreshUpdates(ctx context.Context) (domain.Delta, error) {
	seq := f.issue(domain.CategoryUpdates)

	updates, err := f.updates.FetchUpdates(ctx, f.actor)
	if err != nil {
		return f.Delta(domain.CategoryUpdates), fmt.Errorf("fetch updates: %w", err)
	}

	return f.apply(ctx, domain.CategoryUpdates, seq, domain.UpdatesAsTimestamped(updates), func() {
		f.latest = updates
	})
}

func (f *NotificationFeed) RefreshSessions(ctx context.Context) (domain.Delta, error) {
	seq := f.issue(domain.CategorySessions)

	sessions, err := f.sessions.FetchSessionsForNotification(ctx, f.actor)
	if err != nil {
		return f.Delta(domain.CategorySessions), fmt.Errorf("fetch sessions for notification: %w", err)
	}

	return f.apply(ctx, domain.CategorySessions, seq, domain.SessionsAsTimestamped(sessions), nil)
}

// ViewUpdates fetches the full update list and acknowledges the category,
// since the caller is about to show every update.
func (f *NotificationFeed) ViewUpdates(ctx context.Context) ([]domain.Update, error) {
	if _, err := f.RefreshUpdates(ctx); err != nil {
		return nil, err
	}

	if _, err := f.Acknowledge(ctx, domain.CategoryUpdates); err != nil {
		return nil, err
	}

	return f.Updates(), nil
}

func (f *NotificationFeed) Acknowledge(ctx context.Context, category domain.Category) (domain.Delta, error) {
	if _, err := f.tracker.Acknowledge(ctx, category); err != nil {
		return domain.Delta{}, err
	}

	f.mu.RLock()
	items := f.items[category]
	f.mu.RUnlock()

	unseen, err := f.tracker.UnseenCount(ctx, category, items)
	if err != nil {
		return domain.Delta{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	delta := domain.Delta{Category: category, Unseen: unseen, Total: len(items)}
	f.deltas[category] = delta

	return delta, nil
}

func (f *NotificationFeed) Updates() []domain.Update {
	f.mu.RLock()
	defer f.mu.RUnlock()

	updates := make([]domain.Update, len(f.latest))
	copy(updates, f.latest)
	return updates
}

func (f *NotificationFeed) Delta(category domain.Category) domain.Delta {
	f.mu.RLock()
	defer f.mu.RUnlock()

	delta, ok := f.deltas[category]
	if !ok {
		return domain.Delta{Category: category}
	}
	return delta
}

func (f *NotificationFeed) Deltas() []domain.Delta {
	f.mu.RLock()
	defer f.mu.RUnlock()

	deltas := make([]domain.Delta, 0, len(f.deltas))
	for _, delta := range f.deltas {
		deltas = append(deltas, delta)
	}
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].Category < deltas[j].Category
	})

	return deltas
}

func (f *NotificationFeed) issue(category domain.Category) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.issued[category]++
	return f.issued[category]
}

func (f *NotificationFeed) apply(ctx context.Context, category domain.Category, seq uint64, items []domain.Timestamped, onApply func()) (domain.Delta, error) {
	unseen, err := f.tracker.UnseenCount(ctx, category, items)
	if err != nil {
		return f.Delta(category), err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq < f.issued[category] {
		f.log.WithFields(logrus.Fields{"category": category, "seq": seq}).Debug("discarding stale notification snapshot")
		f.metrics.observeStale()
		return f.deltas[category], nil
	}

	delta := domain.Delta{Category: category, Unseen: unseen, Total: len(items)}
	f.items[category] = items
	f.deltas[category] = delta
	if onApply != nil {
		onApply()
	}

	return delta, nil
}

// FilterUpdates keeps updates whose title or body contains term, ignoring
// case. An empty term keeps everything.
func FilterUpdates(updates []domain.Update, term string) []domain.Update {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return updates
	}

	filtered := make([]domain.Update, 0, len(updates))
	for _, update := range updates {
		if strings.Contains(strings.ToLower(update.Title), term) || strings.Contains(strings.ToLower(update.Body), term) {
			filtered = append(filtered, update)
		}
	}

	return filtered
}
