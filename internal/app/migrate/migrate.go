package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Runner wraps database migration capabilities.
type Runner struct {
	driver    string
	sqlDriver string
	dialect   goose.Dialect
	dsn       string
	fsys      fs.FS
	log       *slog.Logger
}

// New returns a migration runner backed by goose for the given driver.
func New(driver, dsn string, log *slog.Logger) (Runner, error) {
	if strings.TrimSpace(dsn) == "" {
		return Runner{}, errors.New("empty database dsn")
	}
	if log == nil {
		log = slog.Default()
	}
	r := Runner{driver: driver, dsn: dsn, log: log}
	var dir string
	switch driver {
	case DriverPostgres:
		r.sqlDriver = "pgx"
		r.dialect = goose.DialectPostgres
		dir = "migrations/postgres"
	case DriverSQLite:
		r.sqlDriver = "sqlite"
		r.dialect = goose.DialectSQLite3
		dir = "migrations/sqlite"
	default:
		return Runner{}, fmt.Errorf("unsupported migration driver %q", driver)
	}
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return Runner{}, fmt.Errorf("locate migrations dir: %w", err)
	}
	r.fsys = sub
	return r, nil
}

// Ensure applies pending migrations.
func (r Runner) Ensure(ctx context.Context) error {
	return r.withProvider(func(p *goose.Provider) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		r.log.Info("applying migrations", "driver", r.driver)
		results, err := p.Up(runCtx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		r.log.Info("migrations applied", "count", len(results))
		return nil
	})
}

// Status reports applied and pending migrations.
func (r Runner) Status(ctx context.Context) error {
	return r.withProvider(func(p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, st := range statuses {
			r.log.Info("migration status",
				"version", st.Source.Version,
				"path", st.Source.Path,
				"state", string(st.State),
				"applied_at", st.AppliedAt,
			)
		}
		return nil
	})
}

// Down rolls back migrations either to the previous version or a specific target version.
func (r Runner) Down(ctx context.Context, targetVersion int64) error {
	return r.withProvider(func(p *goose.Provider) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if targetVersion > 0 {
			r.log.Info("rolling back migrations", "target", targetVersion)
			if _, err := p.DownTo(runCtx, targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
		} else {
			r.log.Info("rolling back latest migration")
			if _, err := p.Down(runCtx); err != nil {
				return fmt.Errorf("rollback latest migration: %w", err)
			}
		}

		r.log.Info("rollback complete")
		return nil
	})
}

// Ping ensures the database connection is alive.
func (r Runner) Ping(ctx context.Context) error {
	return r.withDB(func(db *sql.DB) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		return nil
	})
}

func (r Runner) withProvider(fn func(*goose.Provider) error) error {
	return r.withDB(func(db *sql.DB) error {
		provider, err := goose.NewProvider(r.dialect, db, r.fsys)
		if err != nil {
			return fmt.Errorf("configure goose: %w", err)
		}
		return fn(provider)
	})
}

func (r Runner) withDB(fn func(*sql.DB) error) error {
	db, err := sql.Open(r.sqlDriver, r.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping sql connection: %w", err)
	}

	return fn(db)
}
