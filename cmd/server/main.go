package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/docedit/internal/api"
	"github.com/dgallion1/docedit/internal/chunker"
	"github.com/dgallion1/docedit/internal/config"
	"github.com/dgallion1/docedit/internal/tools"
	"github.com/dgallion1/docedit/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := tools.NewStats(cfg.StatsWindow)
	registry := tools.NewDefault(toolOptions(cfg), tools.Instrument(tools.LogObserver(log), stats))

	store := workspace.NewStore(cfg.SessionTTL)
	janitor := store.Start(ctx, cfg.CleanupInterval, func(removed int) {
		log.Info("expired documents removed", "count", removed)
	})

	srv := api.NewServer(store, registry, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		cancel()
		<-janitor
	}()

	log.Info("starting docedit", "port", cfg.Port, "tools", len(registry.Names()))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func toolOptions(cfg config.Config) tools.Options {
	return tools.Options{
		Limits: chunker.Limits{
			MaxChunkSize:    cfg.MaxChunkSize,
			MaxNodesPerRead: cfg.MaxNodesPerRead,
			MaxCharsPerRead: cfg.MaxCharsPerRead,
			ContextWindow:   cfg.ContextWindow,
		},
		SearchLimit:        cfg.SearchLimit,
		SearchContextChars: cfg.SearchContextChars,
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
