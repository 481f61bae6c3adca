// Package main is the entry point for the financial assistant service. It
// answers natural-language market questions by fetching real provider data
// first and only then, optionally, asking a language model to reformat it.
//
// Startup sequence:
// 1. Load configuration from environment variables
// 2. Initialize structured logging
// 3. Wire all dependencies via the DI container (cache, clients, pipeline)
// 4. Start the cache janitor and HTTP server
// 5. Wait for shutdown signal and drain gracefully
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smail-Lamrani/finassist/internal/config"
	"github.com/smail-Lamrani/finassist/internal/di"
	"github.com/smail-Lamrani/finassist/internal/server"
	"github.com/smail-Lamrani/finassist/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting financial assistant")

	// Wire all dependencies. The container decides the cache backend here:
	// Redis when reachable, in-memory for the rest of the process otherwise.
	container := di.New(cfg, log)
	defer container.Close()

	// The janitor only matters for the in-memory backend; Redis expires
	// keys natively.
	container.Janitor.Start()

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Str("cache_backend", container.Cache.BackendName()).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
