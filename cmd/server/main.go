package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hazard-admin/internal/auth"
	"hazard-admin/internal/catalog"
	"hazard-admin/internal/config"
	"hazard-admin/internal/logger"
	"hazard-admin/internal/notify"
	"hazard-admin/internal/observability"
	"hazard-admin/internal/routes"
	"hazard-admin/internal/services"
	"hazard-admin/internal/storage"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.ForEnvironment(os.Getenv("ENVIRONMENT")).Fatal("invalid configuration", zap.Error(err))
	}
	logr := logger.New(cfg)
	defer logr.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logr.Fatal("failed to load catalog", zap.Error(err))
	}

	persister, closeStorage, err := storage.Open(ctx, cfg, logr.Logger)
	if err != nil {
		logr.Fatal("failed to open storage", zap.Error(err), zap.String("driver", cfg.StorageDriver))
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logr.Warn("storage close error", zap.Error(err))
		}
	}()

	metrics := observability.NewMetrics()
	listeners := []services.ChangeListener{notify.NewLogListener(logr.Logger), metrics}
	if cfg.KafkaEnabled() {
		pub := notify.NewKafkaPublisher(cfg, logr.Logger)
		defer func() { _ = pub.Close() }()
		listeners = append(listeners, pub)
		logr.Info("publishing zone changes", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	clock := clockwork.NewRealClock()
	store := services.NewZoneStore(persister, cat, cfg.MinRadiusMeters, logr.Logger,
		services.WithClock(clock),
		services.WithListeners(listeners...),
	)
	if err := store.Init(ctx); err != nil {
		logr.Fatal("failed to load hazard zones", zap.Error(err))
	}
	defer store.Teardown()
	metrics.SetZones(len(store.List()))

	var jwtMgr *auth.JWTManager
	if cfg.AuthEnabled {
		jwtMgr, err = auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, "hazard-admin")
		if err != nil {
			logr.Fatal("failed to init jwt manager", zap.Error(err))
		}
	}

	r := routes.NewRouter(ctx, routes.Dependencies{
		Config:  cfg,
		Store:   store,
		Metrics: metrics,
		JWT:     jwtMgr,
		Clock:   clock,
	}, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageDriver),
			zap.Bool("auth", cfg.AuthEnabled),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	stop()

	logr.Info("server exited gracefully")
}
