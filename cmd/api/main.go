package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpx "github.com/splax/notes/internal/http"
	"github.com/splax/notes/internal/revocation"
	"github.com/splax/notes/internal/service/auth"
	"github.com/splax/notes/internal/service/notes"
	"github.com/splax/notes/pkg/config"
	"github.com/splax/notes/pkg/logger"
)

func main() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New("api", cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	denylist, err := openDenylist(cfg, log)
	if err != nil {
		log.Error("failed to configure token revocation", "backend", cfg.RevocationBackend, "error", err)
		os.Exit(1)
	}
	if denylist != nil {
		defer denylist.Close()
	}

	authSvc := auth.New(store, denylist, log, cfg)
	notesSvc := notes.New(store, log)

	router := httpx.NewRouter(log, authSvc, notesSvc, cfg.CORSAllowedOrigin, store.Ping)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", srv.Addr, "store", cfg.StoreDriver, "revocation", cfg.RevocationBackend)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

// openDenylist returns nil when revocation is disabled.
func openDenylist(cfg config.APIConfig, log *slog.Logger) (revocation.Denylist, error) {
	switch cfg.RevocationBackend {
	case "", "none":
		return nil, nil
	case "memory":
		return revocation.NewMemory(), nil
	case "redis":
		return revocation.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	default:
		return nil, fmt.Errorf("unsupported revocation backend %q", cfg.RevocationBackend)
	}
}
