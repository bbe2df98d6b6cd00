package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splax/notes/internal/app/migrate"
	"github.com/splax/notes/internal/repository"
	"github.com/splax/notes/internal/repository/memory"
	"github.com/splax/notes/internal/repository/postgres"
	"github.com/splax/notes/internal/repository/sqlite"
	"github.com/splax/notes/pkg/config"
)

// openStore migrates and opens the store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg config.APIConfig, log *slog.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		runner, err := migrate.New(migrate.DriverPostgres, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("configure migrations: %w", err)
		}
		if err := runner.Ping(ctx); err != nil {
			return nil, err
		}
		if err := runner.Ensure(ctx); err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return postgres.New(pool), nil
	case "sqlite":
		runner, err := migrate.New(migrate.DriverSQLite, sqlite.DSN(cfg.SQLitePath), log)
		if err != nil {
			return nil, fmt.Errorf("configure migrations: %w", err)
		}
		if err := runner.Ensure(ctx); err != nil {
			return nil, err
		}
		return sqlite.Open(cfg.SQLitePath)
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
