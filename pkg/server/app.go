package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "TokenPulse/internal/domain/repository"
	"TokenPulse/internal/scheduler"
	"TokenPulse/internal/usecase"
	"TokenPulse/pkg/config"
	xhttp "TokenPulse/pkg/http"
	applogger "TokenPulse/pkg/logger"
)

// App encapsulates the whole application lifecycle: the HTTP dashboard,
// the cron-driven scan loop, and the external sinks.
type App struct {
	cfg     *config.Config
	log     *applogger.Logger
	runner  *usecase.ScanRunner
	handler xhttp.Handler
	store   drepo.SignalStore    // may be nil
	alerts  drepo.AlertPublisher // may be nil

	httpServer *xhttp.Server
	sched      *scheduler.Scheduler
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, runner *usecase.ScanRunner, handler xhttp.Handler, store drepo.SignalStore, alerts drepo.AlertPublisher) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:     cfg,
		log:     log,
		runner:  runner,
		handler: handler,
		store:   store,
		alerts:  alerts,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	a.sched = scheduler.New(ctx, a.runner, a.log)
	if err := a.sched.Register(a.cfg.Scan.Cron); err != nil {
		return err
	}
	a.sched.Start()
	a.log.Info("scan schedule registered", applogger.String("cron", a.cfg.Scan.Cron))

	if a.cfg.Scan.RunOnStart {
		go a.sched.RunNow()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.alerts != nil {
		if err := a.alerts.Close(); err != nil {
			a.log.Warn("alert publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("signal store close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
