// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/gigs/internal/api"
	"github.com/starford/gigs/internal/gigs"
	"github.com/starford/gigs/internal/sse"
	"github.com/starford/gigs/internal/watch"
)

// Run exports the gigs document once and, when watch or serve mode is
// enabled, keeps regenerating it until ctx is cancelled or a shutdown signal
// arrives. An initial export failure is always returned.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdout: os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(logger)
	}

	logger.Debug("Configuration loaded",
		slog.String("input_root", cfg.Gigs.InputRoot),
		slog.String("output_path", cfg.Gigs.OutputPath),
		slog.String("extension", cfg.Gigs.Extension),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.Bool("serve", cfg.Serve.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	snap := api.NewSnapshot()
	var broker *sse.Broker
	if cfg.Serve.Enabled {
		broker = sse.NewBroker(15 * time.Second)
		defer broker.Close()
	}

	export := func(ctx context.Context) error {
		res, err := gigs.Export(ctx, cfg.Gigs.Options(), logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "Exported %d gigs to %s\n", res.Count, res.OutputPath)
		if snap.Update(res) && broker != nil {
			broker.PublishUpdate(res.Count, res.Checksum)
		}
		return nil
	}

	if err := export(ctx); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if !cfg.Watch.Enabled && !cfg.Serve.Enabled {
		return nil
	}

	return runWatch(ctx, cfg, logger, snap, broker, export)
}

// runWatch keeps the export current and, in serve mode, runs the preview
// server alongside the watcher.
func runWatch(ctx context.Context, cfg *Config, logger *slog.Logger, snap *api.Snapshot, broker *sse.Broker, export watch.RebuildFunc) error {
	root, err := filepath.Abs(cfg.Gigs.InputRoot)
	if err != nil {
		return fmt.Errorf("resolve input root: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	stopCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		return watch.Run(stopCtx, root, cfg.Gigs.Extension, cfg.Watch.Debounce, logger, export)
	})

	var httpServer *http.Server
	if cfg.Serve.Enabled {
		httpServer = &http.Server{
			Addr:              cfg.Serve.HTTP.Address(),
			Handler:           api.NewRouter(snap, broker, cfg.Serve.AllowOrigin),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-stopCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		stop()

		if httpServer != nil {
			// Open event streams only end when their subscriber channel closes.
			broker.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped")
	return nil
}
