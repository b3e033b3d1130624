package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/Simplici0/costcalc/internal/config"
	"github.com/Simplici0/costcalc/internal/db"
	"github.com/Simplici0/costcalc/internal/logger"
	"github.com/Simplici0/costcalc/internal/migrations"
	"github.com/Simplici0/costcalc/internal/preset"
	"github.com/Simplici0/costcalc/internal/seed"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	for _, warning := range cfg.Warnings {
		log.Warnw("config warning", "warning", warning)
	}

	loaded, err := config.LoadDefaults(cfg.DefaultsPath)
	if err != nil {
		log.Fatalw("failed to load calculator defaults", "path", cfg.DefaultsPath, "error", err)
	}
	for _, warning := range loaded.Warnings {
		log.Warnw("defaults warning", "path", cfg.DefaultsPath, "warning", warning)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalw("failed to open preset store", "backend", cfg.PresetBackend, "error", err)
	}
	defer closeStore()

	stats, err := seed.Run(context.Background(), store, loaded.Defaults)
	if err != nil {
		log.Fatalw("failed to seed presets", "error", err)
	}
	log.Infow("seed complete", "inserts", stats.Inserts, "updates", stats.Updates)

	srv := newServer(preset.NewService(store, log), loaded.Defaults, log)

	addr := ":" + cfg.Port
	log.Infow("listening", "addr", addr, "preset_backend", cfg.PresetBackend)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

// openStore returns the configured preset store and a function releasing it.
func openStore(cfg config.Config) (preset.Store, func(), error) {
	if cfg.PresetBackend != config.BackendSQLite {
		return preset.NewOSFileStore(cfg.PresetDir), func() {}, nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open preset database")
	}
	if err := migrations.Up(database); err != nil {
		_ = database.Close()
		return nil, nil, errors.Wrap(err, "run database migrations")
	}
	return preset.NewSQLStore(database), func() { _ = database.Close() }, nil
}
