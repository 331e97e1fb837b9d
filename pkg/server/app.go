package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"

	"SignalQuest/internal/service/ratelimit"
	"SignalQuest/internal/usecase"
	"SignalQuest/pkg/cache"
	"SignalQuest/pkg/config"
	xhttp "SignalQuest/pkg/http"
	applogger "SignalQuest/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP server, the periodic
// model-cache sweep, and graceful shutdown.
type App struct {
	cfg        *config.Config
	signals    *usecase.SignalService
	handler    xhttp.Handler
	store      cache.Store
	log        *applogger.Logger
	httpServer *xhttp.Server
	sweeper    *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	signals *usecase.SignalService,
	handler xhttp.Handler,
	store cache.Store,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:     cfg,
		signals: signals,
		handler: handler,
		store:   store,
		log:     log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	e := a.httpServer.Echo()
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if a.cfg.RateLimit.Enabled {
		limiter := ratelimit.New(float64(a.cfg.RateLimit.Burst), a.cfg.RateLimit.RPS)
		e.Use(limiter.Middleware())
	}

	if err := a.startSweeper(); err != nil {
		return err
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// startSweeper schedules the periodic model-cache sweep.
func (a *App) startSweeper() error {
	if a.cfg.Model.SweepSchedule == "" {
		return nil
	}

	a.sweeper = cron.New()
	_, err := a.sweeper.AddFunc(a.cfg.Model.SweepSchedule, func() {
		removed := a.signals.ClearExpiredModels()
		if removed > 0 {
			a.log.Info("model cache sweep", applogger.Int("removed", removed))
		}
	})
	if err != nil {
		a.log.Error("sweep schedule invalid",
			applogger.String("schedule", a.cfg.Model.SweepSchedule),
			applogger.Error(err))
		return err
	}

	a.sweeper.Start()
	a.log.Info("cache sweeper scheduled", applogger.String("schedule", a.cfg.Model.SweepSchedule))
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.sweeper != nil {
		<-a.sweeper.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
