// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Command server runs the ReelRank HTTP API.
//
// It loads configuration from defaults, an optional YAML file, and
// environment variables, eagerly loads the catalog artifact so a broken
// deployment fails fast, and serves until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/reelrank/reelrank/internal/api"
	"github.com/reelrank/reelrank/internal/catalog"
	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Configuration load failed")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	store := catalog.NewStore(cfg.Artifact.Path)
	svc := service.New(store, cfg.Recommend.Threshold)

	if err := svc.Load(); err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Artifact.Path).Msg("Catalog artifact load failed")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.NewRouter(svc, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Server stopped")
}
