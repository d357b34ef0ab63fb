package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "StressWatch/internal/domain/repository"
	"StressWatch/internal/handler"
	"StressWatch/internal/usecase"
	pkgch "StressWatch/pkg/clickhouse"
	"StressWatch/pkg/config"
	xhttp "StressWatch/pkg/http"
	pkgkafka "StressWatch/pkg/kafka"
	applogger "StressWatch/pkg/logger"
)

// App encapsulates the engine lifecycle: Kafka intake, the cycle ticker, the
// ops HTTP surface, and graceful shutdown.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	runner     *usecase.CycleRunner
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	store      domrepo.ResultStore
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	runner *usecase.CycleRunner,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	store domrepo.ResultStore,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		runner:   runner,
		consumer: consumer,
		kh:       kh,
		store:    store,
		chClient: chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(handler.NewOpsHandler(a.store),
		xhttp.WithAddr("0.0.0.0", a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout),
		xhttp.WithMetricsPath(a.metricsPath()),
	)

	a.consumer.RegisterHandler(a.kh)
	if err := a.consumer.Start(); err != nil {
		a.log.Error("kafka consumer start error", applogger.Error(err))
		return err
	}
	a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))

	// The cycle ticker is the only internal driver; everything upstream
	// (fetching, scheduling, backfills) lives outside the engine.
	go a.cycleLoop(ctx)
	a.log.Info("cycle loop started", applogger.Duration("interval", a.cfg.Engine.CycleInterval))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) cycleLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Engine.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ts := <-ticker.C:
			if _, err := a.runner.RunCycle(ctx, ts.UTC()); err != nil {
				a.log.Error("cycle failed", applogger.Error(err))
			}
		}
	}
}

func (a *App) metricsPath() string {
	if !a.cfg.Metrics.Enabled {
		return ""
	}
	if a.cfg.Metrics.Path != "" {
		return a.cfg.Metrics.Path
	}
	return "/metrics"
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.consumer.Stop(shutdownCtx); err != nil {
		a.log.Warn("kafka consumer stop error", applogger.Error(err))
	}
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
