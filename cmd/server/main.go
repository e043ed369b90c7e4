package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorhub/internal/cache"
	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/events"
	"tutorhub/internal/router"
	"tutorhub/internal/services"

	"go.uber.org/zap"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("starting tutorhub",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cacheClient, err := cache.NewCache(&cfg.Cache, logger)
	if err != nil {
		logger.Fatal("failed to initialize cache", zap.Error(err))
	}
	defer cacheClient.Close()

	eventBus := events.NewEventBus(events.DefaultEventBusConfig(), logger)
	if err := eventBus.Start(ctx); err != nil {
		logger.Fatal("failed to start event bus", zap.Error(err))
	}

	srvc, err := services.NewServiceCollection(db, cacheClient, eventBus, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize services", zap.Error(err))
	}

	if cfg.Badges.SeedOnStart {
		seedCtx, seedCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := srvc.SeedBadgeCatalog(seedCtx); err != nil {
			seedCancel()
			logger.Fatal("failed to seed badge catalog", zap.Error(err))
		}
		seedCancel()
	}

	handler := router.New(srvc, db, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	case sig := <-stop:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	if err := eventBus.Stop(shutdownCtx); err != nil {
		logger.Error("event bus shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func initLogger() (*zap.Logger, error) {
	if os.Getenv("GO_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
