// Package main is the entry point for the dawn patrol API server.
//
// It loads configuration, connects the Postgres pool, builds the upstream
// station and forecast clients, and serves the HTTP API with graceful
// shutdown on SIGINT/SIGTERM.
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

	"dawnpatrol/internal/api"
	"dawnpatrol/internal/config"
	"dawnpatrol/internal/db"
	"dawnpatrol/internal/engine"
	"dawnpatrol/internal/service"
	"dawnpatrol/internal/upstream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("dawn patrol API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.NewPool(ctx, cfg.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	sites := db.NewSiteRepository(pool)
	samples := db.NewSampleRepository(pool)

	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	retry := upstream.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Upstream.MaxRetries
	stationBase := upstream.NewBaseClient(httpClient, "station", retry, cfg.Upstream.UserAgent)
	forecastBase := upstream.NewBaseClient(httpClient, "forecast", retry, cfg.Upstream.UserAgent)

	evaluator := &service.Evaluator{
		Sites:     sites,
		Samples:   samples,
		Telemetry: upstream.NewStationClient(stationBase, cfg.Upstream.StationBaseURL),
		Forecasts: upstream.NewForecastClient(forecastBase, cfg.Upstream.ForecastBaseURL),
		Policy: engine.DecisionPolicy{
			GoProbability:   cfg.Engine.GoProbability,
			GoConfidence:    cfg.Engine.GoConfidence,
			SkipProbability: cfg.Engine.SkipProbability,
		},
		Log: logger,
	}

	srv, err := api.NewServer(cfg, sites, evaluator, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.MountRoutes()

	return serveHTTP(srv, cfg, logger)
}

// serveHTTP runs the standard HTTP server with graceful shutdown.
func serveHTTP(srv *api.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
