package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kbukum/aemkit/component"
	"github.com/kbukum/aemkit/config"
	"github.com/kbukum/aemkit/formsdocs"
	"github.com/kbukum/aemkit/httpclient"
	"github.com/kbukum/aemkit/logger"
	"github.com/kbukum/aemkit/observability"
	"github.com/kbukum/aemkit/packagemanager"
)

// App runs one aemctl task against an AEM server: it starts the transport
// component, runs the task and shuts everything down again.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := app.PackageManager().List(ctx)
//	    return err
//	})
type App struct {
	Name       string
	Version    string
	Cfg        *config.App
	Components *component.Registry
	Logger     *logger.Logger
	Transport  *httpclient.Component
	Summary    *Summary

	gracefulTimeout time.Duration
	sinkLevel       zerolog.Level

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from cfg. It applies defaults, validates the
// config, initializes the logger and registers the transport component.
func NewApp(cfg *config.App, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := resolveOptions(opts)
	app := &App{
		Name:            config.ServiceName,
		Version:         o.version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
		sinkLevel:       zerolog.DebugLevel,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Log)
		app.Logger = logger.GetGlobalLogger()
	}
	logger.RegisterComponents(app.Logger,
		logger.ComponentTransport, logger.ComponentPackageManager, logger.ComponentFormsDocs)

	transportOpts := append([]httpclient.Option{
		httpclient.WithSink(logger.Get(logger.ComponentTransport).Sink(app.sinkLevel)),
	}, o.transportOpts...)
	app.Transport = httpclient.NewComponent(cfg.Server.ClientConfig(), transportOpts...)
	if err := app.Components.Register(app.Transport); err != nil {
		return nil, err
	}

	if cfg.Tracing.Endpoint != "" {
		app.OnStart(app.startTelemetry)
	}

	app.Summary = NewSummary(app.Name, app.Version)
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Adapter returns the started transport. It is nil before RunTask starts the
// components.
func (a *App) Adapter() *httpclient.Adapter {
	return a.Transport.Adapter()
}

// PackageManager returns a package manager client on the started transport.
func (a *App) PackageManager() *packagemanager.Client {
	return packagemanager.New(a.Adapter(),
		packagemanager.WithSink(logger.Get(logger.ComponentPackageManager).Sink(a.sinkLevel)),
	)
}

// FormsDocs returns a Forms & Documents client on the started transport.
func (a *App) FormsDocs() *formsdocs.Client {
	return formsdocs.New(a.Adapter(),
		formsdocs.WithSink(logger.Get(logger.ComponentFormsDocs).Sink(a.sinkLevel)),
	)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// RunTask starts the components, runs task and shuts down. The task context
// is canceled on SIGINT or SIGTERM. The task error wins over a shutdown
// error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup starts the components and runs the start and ready hooks.
func (a *App) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Debug("Starting", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		"server", a.Cfg.Server.URL(),
	))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		return err
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Log(ctx, a.Components, a.Logger)
	return nil
}

// startTelemetry installs the OTLP tracer and meter providers and registers
// their shutdown.
func (a *App) startTelemetry(ctx context.Context) error {
	tracing := a.Cfg.Tracing
	if tracing.ServiceVersion == "" || tracing.ServiceVersion == "dev" {
		tracing.ServiceVersion = a.Version
	}
	tp, err := observability.InitTracer(ctx, &tracing)
	if err != nil {
		return err
	}
	a.OnStop(tp.Shutdown)

	meterCfg := observability.DefaultMeterConfig(tracing.ServiceName)
	meterCfg.ServiceVersion = tracing.ServiceVersion
	meterCfg.Environment = tracing.Environment
	meterCfg.Endpoint = tracing.Endpoint
	meterCfg.Insecure = tracing.Insecure
	mp, err := observability.InitMeter(ctx, &meterCfg)
	if err != nil {
		return err
	}
	a.OnStop(mp.Shutdown)
	return nil
}

// Shutdown stops the application. Use when managing your own lifecycle.
func (a *App) Shutdown(_ context.Context) error {
	return a.stop()
}

// stop runs the stop hooks and stops all components within the graceful
// timeout.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	stopHooks := slices.Clone(a.onStop)
	slices.Reverse(stopHooks)

	var shutdownErr error
	if err := runHooks(ctx, stopHooks); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Debug("Shutdown complete")
	return shutdownErr
}
