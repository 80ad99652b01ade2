package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	chaincheckpoint "github.com/bnema/classence-cli/internal/adapters/checkpoint/chain"
	redischeckpoint "github.com/bnema/classence-cli/internal/adapters/checkpoint/redis"
	tomlcheckpoint "github.com/bnema/classence-cli/internal/adapters/checkpoint/toml"
	"github.com/bnema/classence-cli/internal/adapters/portal/httpapi"
	"github.com/bnema/classence-cli/internal/adapters/render/dashboard"
	"github.com/bnema/classence-cli/internal/application"
	"github.com/bnema/classence-cli/internal/config"
	"github.com/bnema/classence-cli/internal/domain"
	"github.com/bnema/classence-cli/internal/ports"
	"github.com/bnema/classence-cli/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	cfg      config.Config
	actor    domain.Actor
	log      *logrus.Logger
	clock    ports.Clock
	metrics  *application.Metrics
	gatherer prometheus.Gatherer

	checkpoints ports.CheckpointStore
	registry    *application.SessionRegistry
	marking     *application.MarkingCoordinator
	tracker     *application.DeltaTracker
	feed        *application.NotificationFeed

	renderDashboard func(dashboard.Snapshot, dashboard.RenderOptions) (string, error)
	renderUpdates   func([]domain.Update, dashboard.RenderOptions) (string, error)

	closers []io.Closer
}

// appLoader wires the application on first use so commands that need no
// configuration (version, sandbox) run without an actor.
type appLoader struct {
	v   *viper.Viper
	app *app
}

func (l *appLoader) load(cmd *cobra.Command) (*app, error) {
	if l.app != nil {
		return l.app, nil
	}

	a, err := wireApp(l.v, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	l.app = a

	return a, nil
}

func (l *appLoader) close() error {
	if l.app == nil {
		return nil
	}

	var errs []error
	for _, closer := range l.app.closers {
		errs = append(errs, closer.Close())
	}
	l.app = nil

	return errors.Join(errs...)
}

func wireApp(v *viper.Viper, logOutput io.Writer) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level, logOutput)
	if err != nil {
		return nil, err
	}

	actor := domain.Actor{ID: cfg.Actor.ID, Role: domain.Role(cfg.Actor.Role)}
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("configure actor: %w", err)
	}

	portal, err := httpapi.New(httpapi.Options{
		BaseURL:   cfg.Portal.BaseURL,
		Token:     cfg.Portal.Token,
		Timeout:   cfg.Portal.Timeout,
		UserAgent: "classence/" + version.Version,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire portal client: %w", err)
	}

	a := &app{
		cfg:             cfg,
		actor:           actor,
		log:             logger,
		clock:           ports.SystemClock{},
		renderDashboard: dashboard.Render,
		renderUpdates:   dashboard.RenderUpdates,
	}

	checkpoints, err := a.wireCheckpoints(cfg.Checkpoints)
	if err != nil {
		return nil, err
	}
	a.checkpoints = checkpoints

	registry := prometheus.NewRegistry()
	a.metrics = application.NewMetrics(registry)
	a.gatherer = registry

	a.registry = application.NewSessionRegistry(portal, actor, logger, a.metrics)
	a.marking = application.NewMarkingCoordinator(a.registry, portal, a.clock, logger, a.metrics)
	a.tracker = application.NewDeltaTracker(checkpoints, a.clock, logger)
	a.feed = application.NewNotificationFeed(portal, portal, a.tracker, actor, logger, a.metrics)

	return a, nil
}

const redisStartupPing = 2 * time.Second

// wireCheckpoints returns the TOML file store, or a redis-first chain with
// the file as fallback when a redis address is configured.
func (a *app) wireCheckpoints(cfg config.Checkpoints) (ports.CheckpointStore, error) {
	fileStore, err := tomlcheckpoint.NewStore(cfg.Path, a.actor.ID)
	if err != nil {
		return nil, fmt.Errorf("wire checkpoint file store: %w", err)
	}
	if cfg.RedisAddr == "" {
		return fileStore, nil
	}

	client := redischeckpoint.NewClient(cfg.RedisAddr)
	a.closers = append(a.closers, client)

	redisStore, err := redischeckpoint.NewStore(client, cfg.RedisPrefix, a.actor.ID)
	if err != nil {
		return nil, fmt.Errorf("wire checkpoint redis store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), redisStartupPing)
	defer cancel()
	if err := redisStore.Ping(pingCtx); err != nil {
		a.log.WithError(err).WithField("key", redisStore.Key()).
			Warn("redis checkpoint store unreachable, acknowledgments go to the local file until it recovers")
	}

	store, err := chaincheckpoint.NewStore(redisStore, fileStore, a.log)
	if err != nil {
		return nil, fmt.Errorf("wire checkpoint store chain: %w", err)
	}

	return store, nil
}

func newLogger(level string, output io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(parsed)

	return logger, nil
}

func (a *app) now() time.Time {
	return a.clock.Now()
}
