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

	"github.com/use-deal/dealbot/api"
	"github.com/use-deal/dealbot/cache"
	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/images"
	"github.com/use-deal/dealbot/parser"
	"github.com/use-deal/dealbot/pipeline"
	"github.com/use-deal/dealbot/ratelimit"
	"github.com/use-deal/dealbot/resolver"
	"github.com/use-deal/dealbot/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("dealbot starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxLinks", cfg.Pipeline.MaxLinks,
	)

	// ── 3. Build pipeline components ────────────────────────────────
	res := resolver.New(cfg.Fetch)
	sc := scraper.New(cfg.Fetch)
	ps := parser.New(cfg.Pipeline.Brands)
	img := images.New(sc, cfg.Images)
	productCache := cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	userLimiter := ratelimit.New(cfg.RateLimit)

	p := pipeline.New(cfg.Pipeline, res, sc, ps, img, productCache, userLimiter)

	// ── 4. Setup router ─────────────────────────────────────────────
	// The API-level limiter is separate from the per-user one: it guards
	// the HTTP surface by API key / client IP.
	apiLimiter := ratelimit.New(cfg.RateLimit)
	startTime := time.Now()
	router := api.NewRouter(p, productCache, apiLimiter, cfg, startTime)

	// ── 5. Start HTTP server ────────────────────────────────────────
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

	// ── 6. Graceful shutdown ────────────────────────────────────────
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

	slog.Info("dealbot stopped")
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
