package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	keyringadapter "github.com/ericfisherdev/wifishare/internal/adapter/driven/keyring"
	"github.com/ericfisherdev/wifishare/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/wifishare/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/wifishare/internal/application"
	"github.com/ericfisherdev/wifishare/internal/config"
	"github.com/ericfisherdev/wifishare/internal/domain/port/driven"
)

// openStore opens the configured preference store. The returned cleanup
// function releases any resources held by the store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.PreferenceStore, func(), error) {
	switch cfg.Store {
	case config.StoreKeyring:
		logger.Debug("preference store opened", "store", cfg.Store, "service", cfg.KeyringService)
		return keyringadapter.NewStore(cfg.KeyringService), func() {}, nil

	case config.StoreMemory:
		logger.Debug("preference store opened", "store", cfg.Store)
		return memory.NewStore(), func() {}, nil
	}

	// Dual reader/writer connections with WAL mode.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		cleanup()
		return nil, nil, err
	}

	repo, err := sqliteadapter.NewPreferenceRepo(db, cfg.SecretKey)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create preference repo: %w", err)
	}

	logger.Debug("preference store opened", "store", cfg.Store, "path", cfg.DBPath, "sealed", repo.Sealed())
	return repo, cleanup, nil
}

// openManager opens the store and starts a credentials manager on it. The
// initial load is not awaited. The returned cleanup drains the manager's
// queue before the store is closed.
func openManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application.CredentialsManager, func(), error) {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	manager := application.NewCredentialsManager(store, logger, application.Options{
		CorruptPolicy: cfg.CorruptPolicy,
		StoreTimeout:  cfg.StoreTimeout,
	})

	return manager, func() {
		manager.Close()
		closeStore()
	}, nil
}

// loadEnv loads configuration and builds the logger for a command.
func loadEnv(errOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.NewLogger(errOut), nil
}
