// Package app builds and owns the long-lived services of a linkrot run,
// acting as a small dependency injection container for the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkrot/internal/audit"
	"github.com/JakeFAU/linkrot/internal/checker"
	"github.com/JakeFAU/linkrot/internal/clock/system"
	"github.com/JakeFAU/linkrot/internal/config"
	collyfetcher "github.com/JakeFAU/linkrot/internal/fetcher/colly"
	iduuid "github.com/JakeFAU/linkrot/internal/id/uuid"
	"github.com/JakeFAU/linkrot/internal/linkrot"
	"github.com/JakeFAU/linkrot/internal/logging"
	"github.com/JakeFAU/linkrot/internal/metrics"
	"github.com/JakeFAU/linkrot/internal/pinboard"
	"github.com/JakeFAU/linkrot/internal/policy/ratelimit"
	"github.com/JakeFAU/linkrot/internal/progress"
	"github.com/JakeFAU/linkrot/internal/progress/sinks"
	"github.com/JakeFAU/linkrot/internal/prompt"
	"github.com/JakeFAU/linkrot/internal/remediate"
	"github.com/JakeFAU/linkrot/internal/wayback"
)

// Options carries process-level collaborators. Zero values fall back to the
// real stdio streams, a config-built logger and a fresh registry.
type Options struct {
	Stdin     *os.File
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *zap.Logger
	Registry  *prometheus.Registry
	Confirmer remediate.Confirmer
	Clock     linkrot.Clock
}

// App holds the services for one run.
type App struct {
	cfg           config.Config
	logger        *zap.Logger
	runID         uuid.UUID
	registry      *prometheus.Registry
	hub           *progress.Hub
	metricsServer *metrics.Server
	store         *pinboard.Client
	runner        *audit.Runner
}

// New wires every service from cfg and authenticates against the store.
// Authentication failure aborts construction before any other network work.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	opts = withDefaults(opts)
	logger := opts.Logger
	if logger == nil {
		l, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		logger = l
	}

	runID, err := iduuid.NewGenerator().NewRunID()
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.Stringer("run_id", runID))

	a := &App{cfg: cfg, logger: logger, runID: runID, registry: opts.Registry}
	if err := a.build(ctx, opts); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func withDefaults(opts Options) Options {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Clock == nil {
		opts.Clock = system.New()
	}
	return opts
}

func (a *App) build(ctx context.Context, opts Options) error {
	cfg := a.cfg
	collectors, err := metrics.NewCollectors(a.registry)
	if err != nil {
		return err
	}
	promSink, err := sinks.NewPrometheusSink(a.registry)
	if err != nil {
		return err
	}
	statusSink := sinks.NewStatusSink()
	hubSinks := []progress.Sink{promSink, statusSink}
	if cfg.Progress.LogEvents {
		hubSinks = append(hubSinks, sinks.NewLogSink(a.logger.Named("progress")))
	}
	a.hub = progress.NewHub(progress.Config{
		BufferSize:     cfg.Progress.BufferSize,
		MaxBatchEvents: cfg.Progress.MaxBatchEvents,
		MaxBatchWait:   cfg.ProgressBatchWait(),
		Logger:         a.logger.Named("progress"),
	}, hubSinks...)
	emitter := progress.Emitter(a.hub)
	if cfg.Progress.Terminal {
		emitter = progress.Tee(sinks.NewTerminal(opts.Stderr), a.hub)
	}

	if cfg.Metrics.Enabled {
		a.metricsServer, err = metrics.Start(cfg.Metrics.Addr, metrics.NewRouter(a.registry, collectors, func() any { return statusSink.Snapshot() }), a.logger.Named("metrics"))
		if err != nil {
			return err
		}
	}

	storeLimits := ratelimit.Every(cfg.StoreInterval())
	storeLimits.Observe = collectors.ObserveRateLimitDelay
	a.store, err = pinboard.New(pinboard.Config{
		BaseURL:   cfg.Store.BaseURL,
		Token:     cfg.Store.Token,
		UserAgent: cfg.Store.UserAgent,
		Timeout:   cfg.StoreTimeout(),
		Limiter:   ratelimit.New(storeLimits),
	}, a.logger.Named("store"))
	if err != nil {
		return err
	}
	if err := a.store.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticate store: %w", err)
	}

	checkerCfg, proberCfg := linkCheckerConfig(cfg, a.runID)
	linkChecker, err := checker.New(checkerCfg, collyfetcher.New(proberCfg),
		checker.WithEmitter(emitter),
		checker.WithLimiter(ratelimit.New(ratelimit.Config{
			RPS:     cfg.Checker.PerHostRPS,
			Observe: collectors.ObserveRateLimitDelay,
		})),
		checker.WithClock(opts.Clock),
		checker.WithLogger(a.logger.Named("checker")),
	)
	if err != nil {
		return err
	}

	resolver, err := wayback.New(wayback.Config{
		Endpoint:  cfg.Archive.Endpoint,
		UserAgent: cfg.Store.UserAgent,
		Timeout:   cfg.ArchiveTimeout(),
		Limiter: ratelimit.New(ratelimit.Config{
			RPS:     cfg.Archive.RPS,
			Observe: collectors.ObserveRateLimitDelay,
		}),
	}, a.logger.Named("archive"))
	if err != nil {
		return err
	}

	confirmer := opts.Confirmer
	if confirmer == nil {
		confirmer = prompt.ForStdio(opts.Stdin, opts.Stdout, a.logger.Named("prompt"))
	}
	orchestrator, err := remediate.New(a.store, resolver, confirmer,
		remediate.WithEmitter(emitter, a.runID),
		remediate.WithClock(opts.Clock),
		remediate.WithLogger(a.logger.Named("remediate")),
	)
	if err != nil {
		return err
	}

	a.runner, err = audit.New(audit.Deps{
		Store:      a.store,
		Checker:    linkChecker,
		Remediator: orchestrator,
		Emitter:    emitter,
		Clock:      opts.Clock,
		Logger:     a.logger.Named("audit"),
		Out:        opts.Stdout,
		RunID:      a.runID,
	})
	return err
}

// RunID identifies this run on logs and metrics.
func (a *App) RunID() uuid.UUID {
	return a.runID
}

// Logger returns the run-scoped logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Registry exposes the run's Prometheus registry.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// linkCheckerConfig derives the checker and prober settings from one timeout
// so the colly request bound never drifts from the per-check bound.
func linkCheckerConfig(cfg config.Config, runID uuid.UUID) (checker.Config, collyfetcher.Config) {
	timeout := checker.DefaultTimeout
	return checker.Config{
			Timeout:     timeout,
			SkipDomains: cfg.Checker.SkipDomains,
			RunID:       runID,
		}, collyfetcher.Config{
			UserAgent:   cfg.Checker.UserAgent,
			Timeout:     timeout,
			MaxBodySize: cfg.Checker.MaxBodyBytes,
		}
}

// Run executes one audit.
func (a *App) Run(ctx context.Context) (audit.Summary, error) {
	if a.runner == nil {
		return audit.Summary{}, errors.New("app not initialised")
	}
	return a.runner.Run(ctx)
}

// Close flushes progress, stops the metrics listener and syncs the logger.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.hub != nil {
		if err := a.hub.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		if dropped := a.hub.Dropped(); dropped > 0 {
			a.logger.Warn("progress events dropped during run", zap.Int64("dropped", dropped))
		}
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
