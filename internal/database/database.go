package database

import (
	"context"
	"fmt"
	"os"

	"tutorhub/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Connect builds the database manager, waiting for the database to
// accept connections, and runs pending migrations. Failure here is
// fatal to startup; callers are expected to exit.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	var manager *Manager

	connect := func() error {
		m, err := NewManager(&cfg.Database, logger)
		if err != nil {
			logger.Warn("database not ready, retrying", zap.Error(err))
			return err
		}
		manager = m
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.Database.ConnectMaxWait

	if err := backoff.Retry(connect, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("database failed to become available: %w", err)
	}

	migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
	logger.Info("running database migrations", zap.String("path", migrationsPath))

	if err := manager.Migrate(migrationsPath); err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return manager, nil
}

// determineMigrationsPath falls back through common layouts when the
// configured path does not exist.
func determineMigrationsPath(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	paths := []string{
		"./migrations",
		"./internal/database/migrations",
		"../migrations",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./migrations"
}
