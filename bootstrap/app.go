package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/wirekit/config"
	"github.com/kbukum/wirekit/container"
	"github.com/kbukum/wirekit/errors"
	"github.com/kbukum/wirekit/logger"
	"github.com/kbukum/wirekit/observability"
	"github.com/kbukum/wirekit/optimizer"
	"github.com/kbukum/wirekit/version"
)

// App represents a generic application with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy the Config
// interface. Any struct embedding config.KitConfig automatically satisfies
// Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.AddModule(bootstrap.NewModule("database", registerDatabase))
//	app.OnReady(func(ctx context.Context) error {
//	    // everything is registered, validated and warmed up
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name      string
	Version   string
	Cfg       C
	Container *container.Container
	Optimizer *optimizer.Optimizer
	Logger    *logger.Logger
	Summary   *Summary

	modules         []Module
	gracefulTimeout time.Duration
	opts            appOptions

	watcher        *config.Watcher[config.KitConfig]
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	onRegistered []Hook
	onValidated  []Hook
	onReady      []Hook
	onStop       []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and
// telemetry, and builds the container and optimizer.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetKitConfig()
	o := resolveOptions(opts)

	// Fall back to the build's own version when config carries none.
	appVersion := base.Version
	if appVersion == "" {
		appVersion = version.Short()
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         appVersion,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		opts:            o,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.Get("bootstrap")
	}

	// Telemetry is opt-in. When enabled, the same exporter endpoint feeds
	// both traces and metrics, and resolve instruments attach to the
	// container built below.
	var metrics *observability.Metrics
	if base.Telemetry.Enabled {
		tcfg := observability.TracerConfig{
			ServiceName:    base.Name,
			ServiceVersion: appVersion,
			Environment:    base.Environment,
			Endpoint:       base.Telemetry.Endpoint,
			Insecure:       base.Telemetry.Insecure,
			SampleRate:     base.Telemetry.SampleRate,
		}
		tp, err := observability.InitTracer(context.Background(), &tcfg)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		app.tracerProvider = tp

		mcfg := observability.MeterConfig{
			ServiceName:    base.Name,
			ServiceVersion: appVersion,
			Environment:    base.Environment,
			Endpoint:       base.Telemetry.Endpoint,
			Insecure:       base.Telemetry.Insecure,
		}
		mp, err := observability.InitMeter(context.Background(), &mcfg)
		if err != nil {
			return nil, fmt.Errorf("init meter: %w", err)
		}
		app.meterProvider = mp

		m, err := observability.NewMetrics(observability.Meter(base.Name))
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
		metrics = m
	}

	// Container: use custom if provided, otherwise build from config.
	if o.container != nil {
		app.Container = o.container
	} else {
		copts := []container.Option{
			container.WithName(base.Container.Name),
			container.WithPromotionThreshold(base.Container.PromotionThreshold),
		}
		if metrics != nil {
			copts = append(copts, container.WithMetrics(metrics))
		}
		app.Container = container.New(copts...)
	}

	if !base.Optimizer.Disabled && !o.disableOptimizer {
		oopts := []optimizer.Option{optimizer.WithInterval(base.Optimizer.Interval)}
		if metrics != nil {
			oopts = append(oopts, optimizer.WithMetrics(metrics))
		}
		app.Optimizer = optimizer.New(app.Container, oopts...)
		if base.Optimizer.Threshold > 0 {
			app.Optimizer.SetThreshold(base.Optimizer.Threshold)
		}
	}

	app.Summary = NewSummary(base.Name, appVersion)
	return app, nil
}

// AddModule queues a module for registration during startup.
func (a *App[C]) AddModule(m Module) {
	a.modules = append(a.modules, m)
}

// AddModules queues multiple modules in order.
func (a *App[C]) AddModules(ms ...Module) {
	a.modules = append(a.modules, ms...)
}

// Health aggregates container and optimizer health into a service report.
func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(a.Name, a.Version)
	sh.AddComponent(a.Container.CheckHealth(ctx))
	if a.Optimizer != nil {
		sh.AddComponent(a.Optimizer.Health())
	}
	return sh
}

// Run executes the full application lifecycle for long-running services:
// Register → OnRegistered hooks → Validate → OnValidated hooks → Warm up →
// Optimizer start → OnReady hooks → Block on signal → OnStop hooks →
// Graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Block until shutdown signal
	a.Logger.Info("Application ready — waiting for shutdown signal")
	a.WaitForSignal(ctx)

	// Graceful shutdown
	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run(), it does not block on shutdown signals — it runs the task
// function and gracefully shuts down when the task completes or the context
// is canceled (e.g., via SIGINT/SIGTERM).
//
// Use RunTask for CLI tools, batch jobs, and one-shot processes that need
// the same bootstrap infrastructure (config, logger, registrations, hooks)
// but have a finite workflow instead of running forever.
//
// Example:
//
//	app, _ := bootstrap.NewApp(&cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return processData(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	// Set up signal-based cancellation for the task
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal — canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	// Execute the task
	taskErr := task(taskCtx)

	// Graceful shutdown
	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}

	return taskErr
}

// startup performs the common initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
		"modules": len(a.modules),
	})

	// Phase 1: Register — apply modules to the container
	if err := a.register(); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if err := runHooks(ctx, a.onRegistered); err != nil {
		return fmt.Errorf("onRegistered hook failed: %w", err)
	}

	// Phase 2: Validate — static graph check before anything resolves
	if err := a.validate(); err != nil {
		return err
	}
	if err := runHooks(ctx, a.onValidated); err != nil {
		return fmt.Errorf("onValidated hook failed: %w", err)
	}

	// Phase 3: Warm up — materialize eager registrations
	if err := a.warmUp(ctx); err != nil {
		return fmt.Errorf("warm-up failed: %w", err)
	}

	if a.Optimizer != nil {
		a.Optimizer.Start()
	}
	if a.opts.configWatch != "" {
		a.watchConfig()
	}

	// Run OnReady hooks
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	// Display startup summary
	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()

	return nil
}

// register applies modules to the container in order (Phase 1).
func (a *App[C]) register() error {
	a.Logger.Info("Phase 1: Applying modules", map[string]interface{}{
		"count": len(a.modules),
	})

	for _, m := range a.modules {
		before := a.Container.Len()
		if err := m.Register(a.Container); err != nil {
			a.Summary.TrackModule(m.Name(), 0, "failed")
			return fmt.Errorf("module %s: %w", m.Name(), err)
		}
		a.Summary.TrackModule(m.Name(), a.Container.Len()-before, "registered")
	}

	a.Logger.Info("Phase 1: All modules applied", map[string]interface{}{
		"registrations": a.Container.Len(),
	})
	return nil
}

// validate runs the static graph check (Phase 2). Cycles abort startup;
// edges pointing at unregistered types are logged, since the target may
// be registered later or resolved from a scope the graph never saw.
func (a *App[C]) validate() error {
	a.Logger.Info("Phase 2: Validating dependency graph")

	if cycles := a.Container.DetectCycles(); len(cycles) > 0 {
		for _, cy := range cycles {
			a.Logger.Error("Dependency cycle detected", map[string]interface{}{
				"path": cy.String(),
			})
		}
		return errors.CircularDependency(cycles[0].Names())
	}

	if dangling := a.Container.GraphSnapshot().Dangling(); len(dangling) > 0 {
		a.Logger.Warn("Dependency graph has unregistered edges", map[string]interface{}{
			"count": len(dangling),
		})
	}
	return nil
}

// warmUp materializes eager registrations (Phase 3).
func (a *App[C]) warmUp(ctx context.Context) error {
	eager := 0
	for _, r := range a.Container.Registrations() {
		if r.Eager {
			eager++
		}
	}
	if eager == 0 {
		return nil
	}

	a.Logger.Info("Phase 3: Warming up eager registrations", map[string]interface{}{
		"count": eager,
	})
	if err := a.Container.WarmUp(ctx); err != nil {
		return err
	}
	a.Summary.SetWarmed(eager)
	return nil
}

// watchConfig starts live re-tuning from the configured file. A broken
// watch is logged, not fatal; the app keeps its startup settings.
func (a *App[C]) watchConfig() {
	w, err := config.Watch[config.KitConfig](a.opts.configWatch, func(cfg *config.KitConfig) {
		a.retune(cfg)
	})
	if err != nil {
		a.Logger.Warn("Config watch unavailable", map[string]interface{}{
			"file":  a.opts.configWatch,
			"error": err.Error(),
		})
		return
	}
	a.watcher = w
	a.Logger.Info("Watching config file for runtime re-tuning", map[string]interface{}{
		"file": a.opts.configWatch,
	})
}

// retune applies runtime-tunable knobs from a fresh config snapshot.
// Structural settings (name, telemetry wiring) are ignored here; only
// knobs that are safe to change on a live container are applied.
func (a *App[C]) retune(cfg *config.KitConfig) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		a.Logger.Warn("Ignoring invalid config change", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	threshold := cfg.Container.PromotionThreshold
	if cfg.Optimizer.Threshold > 0 {
		threshold = cfg.Optimizer.Threshold
	}
	a.Container.SetPromotionThreshold(threshold)
	if a.Optimizer != nil {
		a.Optimizer.SetInterval(cfg.Optimizer.Interval)
	}
	if len(cfg.Logging.Components) > 0 {
		if err := logger.ApplyComponentLevels(cfg.Logging.Components); err != nil {
			a.Logger.Warn("Component level override rejected", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	a.Logger.Info("Runtime configuration re-applied", map[string]interface{}{
		"interval":  cfg.Optimizer.Interval.String(),
		"threshold": threshold,
	})
}

// DisplaySummary prints the startup summary. It auto-collects registrations,
// graph diagnostics, optimizer state and health from the container.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Container, a.Optimizer)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal — graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled — shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop gracefully releases everything within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	// Run OnStop hooks while everything is still resolvable
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.Optimizer != nil {
		a.Optimizer.Stop()
	}

	// Close the container (runs registered closers, drops all scopes)
	if err := a.Container.Close(); err != nil {
		a.Logger.Error("Container close error", map[string]interface{}{
			"error": err.Error(),
		})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			a.Logger.Error("Meter provider shutdown error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.Logger.Error("Tracer provider shutdown error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
