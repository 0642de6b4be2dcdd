package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/relcis/api"
	"github.com/use-agent/relcis/artifact"
	"github.com/use-agent/relcis/cache"
	"github.com/use-agent/relcis/config"
	"github.com/use-agent/relcis/orchestrator"
	"github.com/use-agent/relcis/session"
	"github.com/use-agent/relcis/stealth"
	"github.com/use-agent/relcis/summary"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("relcis starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxLeases", cfg.Browser.MaxLeases,
	)

	// ── 3. Initialise session manager (browser launches lazily) ────
	sessions := session.NewManager(cfg.Browser)
	defer sessions.Close()

	// ── 4. Initialise stealth profiles and orchestrator ─────────────
	profiles := stealth.NewGenerator(cfg.Stealth.CookieJarPath)
	orch := orchestrator.New(sessions, profiles, cfg.Search, cfg.Browser.BlockAds)

	// ── 5. Initialise artifact store ────────────────────────────────
	var store *artifact.Store
	if cfg.Artifact.Endpoint != "" {
		var err error
		store, err = artifact.NewStore(cfg.Artifact)
		if err != nil {
			slog.Error("failed to initialise artifact store", "error", err)
			os.Exit(1)
		}
		slog.Info("artifact store connected",
			"endpoint", cfg.Artifact.Endpoint,
			"bucket", cfg.Artifact.Bucket,
		)
	} else {
		slog.Warn("artifact storage not configured, screenshot endpoint disabled")
	}

	// ── 6. Summaries and cache ──────────────────────────────────────
	sum := summary.NewExtractor()
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge)

	// ── 7. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orch, store, sum, sessions, cc, cfg, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// sessions.Close() runs via defer — kills the shared Chrome process.
	slog.Info("relcis stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
