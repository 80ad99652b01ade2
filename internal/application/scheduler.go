package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/classence-cli/internal/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSessionsPollInterval = 30 * time.Second
	DefaultUpdatesPollInterval  = 30 * time.Second
)

// Trigger emits a value every time a fresh snapshot is requested. The channel
// is closed once the trigger will not fire again.
type Trigger interface {
	Events(ctx context.Context) <-chan struct{}
}

type tickerTrigger struct {
	interval time.Duration
}

func TickerTrigger(interval time.Duration) Trigger {
	return tickerTrigger{interval: interval}
}

func (t tickerTrigger) Events(ctx context.Context) <-chan struct{} {
	events := make(chan struct{}, 1)

	go func() {
		defer close(events)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case events <- struct{}{}:
				default:
				}
			}
		}
	}()

	return events
}

// ManualTrigger fires only when Fire is called, e.g. from a push channel.
type ManualTrigger struct {
	events chan struct{}
}

func NewManualTrigger() *ManualTrigger {
	return &ManualTrigger{events: make(chan struct{}, 1)}
}

func (t *ManualTrigger) Fire() {
	select {
	case t.events <- struct{}{}:
	default:
	}
}

func (t *ManualTrigger) Events(_ context.Context) <-chan struct{} {
	return t.events
}

type PollTask struct {
	Name      string
	Trigger   Trigger
	Refresh   func(ctx context.Context) error
	Immediate bool
}

func (t PollTask) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task name is required")
	}
	if t.Trigger == nil {
		return fmt.Errorf("task %s: trigger is required", t.Name)
	}
	if t.Refresh == nil {
		return fmt.Errorf("task %s: refresh is required", t.Name)
	}

	return nil
}

type PollEvent struct {
	Task     string
	At       time.Time
	Duration time.Duration
	Err      error
}

// Scheduler runs every registered task on its own trigger. Each trigger event
// starts a fetch in its own goroutine, so a slow fetch never holds back the
// next tick or another task.
type Scheduler struct {
	clock   ports.Clock
	log     logrus.FieldLogger
	metrics *Metrics

	mu          sync.RWMutex
	tasks       []PollTask
	subscribers []func(PollEvent)
}

func NewScheduler(clock ports.Clock, logger logrus.FieldLogger, metrics *Metrics) *Scheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Scheduler{
		clock:   clock,
		log:     logger.WithField("component", "scheduler"),
		metrics: metrics,
	}
}

func (s *Scheduler) Add(task PollTask) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tasks {
		if existing.Name == task.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, task.Name)
		}
	}
	s.tasks = append(s.tasks, task)

	return nil
}

func (s *Scheduler) Subscribe(fn func(PollEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, fn)
}

// Run blocks until ctx is cancelled, then waits for in-flight fetches to
// return before tearing down.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.RLock()
	tasks := make([]PollTask, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.RUnlock()

	if len(tasks) == 0 {
		return ErrNoTasks
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		group.Go(func() error {
			s.runTask(groupCtx, task)
			return nil
		})
	}

	return group.Wait()
}

func (s *Scheduler) runTask(ctx context.Context, task PollTask) {
	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	logger := s.log.WithField("task", task.Name)
	logger.Debug("poll task started")
	defer logger.Debug("poll task stopped")

	events := task.Trigger.Events(ctx)
	if task.Immediate {
		s.dispatch(ctx, task, &inFlight)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			s.dispatch(ctx, task, &inFlight)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, task PollTask, inFlight *sync.WaitGroup) {
	inFlight.Add(1)
	go func() {
		defer inFlight.Done()

		started := s.clock.Now()
		err := task.Refresh(ctx)
		elapsed := s.clock.Now().Sub(started)

		s.metrics.observePoll(task.Name, elapsed, err)
		if err != nil && ctx.Err() == nil {
			s.log.WithFields(logrus.Fields{"task": task.Name}).WithError(err).Warn("poll failed")
		}

		s.publish(PollEvent{Task: task.Name, At: started, Duration: elapsed, Err: err})
	}()
}

func (s *Scheduler) publish(event PollEvent) {
	s.mu.RLock()
	subscribers := make([]func(PollEvent), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}
