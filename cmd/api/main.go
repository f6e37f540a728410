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

	"airdelta/internal/api"
	"airdelta/internal/app"
	"airdelta/internal/config"
	"airdelta/internal/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, logging.Options{
		Level:      level,
		Production: cfg.IsProduction(),
		Env:        cfg.Server.Env,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	src, closeSource, err := app.NewSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("feed source: %w", err)
	}
	defer closeSource()

	engine, err := app.NewEngine(cfg, src, logger)
	if err != nil {
		return err
	}

	router := api.NewRouter(cfg, engine, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server",
			"addr", srv.Addr,
			"feed", cfg.Feed.Kind,
			"window", cfg.Engine.Window,
			"locations", cfg.LocationNames())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
