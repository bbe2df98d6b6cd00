package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/splax/notes/internal/app/migrate"
	"github.com/splax/notes/internal/repository/sqlite"
	"github.com/splax/notes/pkg/config"
	"github.com/splax/notes/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	flag.Parse()

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New("migrate", cfg.SlogLevel())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var runner migrate.Runner
	switch cfg.StoreDriver {
	case "postgres":
		runner, err = migrate.New(migrate.DriverPostgres, cfg.DatabaseURL, log)
	case "sqlite":
		runner, err = migrate.New(migrate.DriverSQLite, sqlite.DSN(cfg.SQLitePath), log)
	default:
		log.Error("store driver has no migrations", "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	if err != nil {
		log.Error("failed to configure migration runner", "error", err)
		os.Exit(1)
	}

	switch *command {
	case "up":
		if err := runner.Ensure(ctx); err != nil {
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	case "status":
		if err := runner.Status(ctx); err != nil {
			log.Error("failed to fetch migration status", "error", err)
			os.Exit(1)
		}
	case "down":
		if err := runner.Down(ctx, *target); err != nil {
			log.Error("failed to roll back migrations", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("unsupported command", "command", *command)
		os.Exit(1)
	}

	log.Info("migration command completed", "command", *command)
}
