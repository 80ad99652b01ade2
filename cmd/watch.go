package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/classence-cli/internal/application"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

var errRedrawInterval = errors.New("redraw interval must be positive")

func newWatchCmd(loader *appLoader) *cobra.Command {
	var duration time.Duration
	var redrawEvery time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll sessions and updates and redraw the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if redrawEvery <= 0 {
				return errRedrawInterval
			}

			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			if err := app.tracker.Load(ctx); err != nil {
				return err
			}

			if app.cfg.Metrics.Addr != "" {
				shutdown := serveMetrics(app)
				defer shutdown()
			}

			scheduler, err := newWatchScheduler(app)
			if err != nil {
				return err
			}

			screen := &dashboardScreen{cmd: cmd, app: app}
			scheduler.Subscribe(screen.onPoll)

			displayCtx, stopDisplay := context.WithCancel(ctx)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				runDisplay(displayCtx, application.TickerTrigger(redrawEvery), screen.redraw)
			}()

			err = scheduler.Run(ctx)
			stopDisplay()
			wg.Wait()

			return err
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().DurationVar(&redrawEvery, "redraw", time.Second, "Redraw the dashboard this often between polls")

	return cmd
}

// dashboardScreen serializes redraws coming from polls and from the display
// timer. Redraws read the cached snapshot and never fetch.
type dashboardScreen struct {
	mu  sync.Mutex
	cmd *cobra.Command
	app *app
}

func (s *dashboardScreen) onPoll(event application.PollEvent) {
	if event.Err != nil {
		s.mu.Lock()
		_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), "%s refresh failed: %v\n", event.Task, event.Err)
		s.mu.Unlock()
		return
	}
	s.redraw()
}

func (s *dashboardScreen) redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeSessionsOutput(s.cmd, s.app, s.app.feed.Deltas(), false); err != nil {
		s.app.log.WithError(err).Warn("redraw dashboard")
	}
}

// runDisplay redraws on every trigger event until ctx is done, so phases and
// remaining time follow the clock between polls.
func runDisplay(ctx context.Context, trigger application.Trigger, redraw func()) {
	events := trigger.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			redraw()
		}
	}
}

func newWatchScheduler(app *app) (*application.Scheduler, error) {
	scheduler := application.NewScheduler(app.clock, app.log, app.metrics)

	tasks := []application.PollTask{
		{
			Name:      "sessions",
			Trigger:   application.TickerTrigger(app.cfg.Poll.SessionsInterval),
			Immediate: true,
			Refresh: func(ctx context.Context) error {
				_, err := app.registry.Refresh(ctx)
				return err
			},
		},
		{
			Name:      "session-notifications",
			Trigger:   application.TickerTrigger(app.cfg.Poll.SessionsInterval),
			Immediate: true,
			Refresh: func(ctx context.Context) error {
				_, err := app.feed.RefreshSessions(ctx)
				return err
			},
		},
		{
			Name:      "updates",
			Trigger:   application.TickerTrigger(app.cfg.Poll.UpdatesInterval),
			Immediate: true,
			Refresh: func(ctx context.Context) error {
				_, err := app.feed.RefreshUpdates(ctx)
				return err
			},
		},
	}

	for _, task := range tasks {
		if err := scheduler.Add(task); err != nil {
			return nil, err
		}
	}

	return scheduler, nil
}

func serveMetrics(app *app) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              app.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger := app.log.WithField("addr", server.Addr)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()
	logger.Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithFields(logrus.Fields{"timeout": metricsShutdownTimeout}).WithError(err).Warn("metrics server shutdown")
		}
	}
}
