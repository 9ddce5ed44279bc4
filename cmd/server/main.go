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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/amplifi/rate-engine/internal/config"
	"github.com/amplifi/rate-engine/internal/metrics"
	"github.com/amplifi/rate-engine/internal/provider"
	"github.com/amplifi/rate-engine/internal/recommend"
	"github.com/amplifi/rate-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration failed", "err", err)
		os.Exit(1)
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Market data providers ---
	// The calendar provider always runs; AI research and web search are
	// enabled by their API keys.
	var competitorProviders []provider.CompetitorProvider
	eventProviders := []provider.EventProvider{provider.NewCalendarProvider()}

	if cfg.AnthropicAPIKey != "" {
		research := provider.NewResearchProvider(cfg.AnthropicAPIKey, cfg.ClaudeModel, logger)
		competitorProviders = append(competitorProviders, research)
		eventProviders = append(eventProviders, research)
		slog.Info("Claude research provider enabled", "model", cfg.ClaudeModel)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, AI competitor research disabled")
	}

	if cfg.TavilyAPIKey != "" {
		eventProviders = append(eventProviders, provider.NewSearchProvider(cfg.TavilyAPIKey, logger))
		slog.Info("Tavily event search enabled")
	}

	aggregator := provider.NewAggregator(competitorProviders, eventProviders, cfg.ProviderTimeout, logger)

	// Snapshot cache: acquisition is the expensive step, so cache whole
	// market snapshots per city/date when Redis is available.
	var fetcher store.SnapshotFetcher = aggregator
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		fetcher = store.NewCachedSnapshots(aggregator, rdb, cfg.SnapshotCacheTTL, logger)
		slog.Info("snapshot cache enabled", "ttl", cfg.SnapshotCacheTTL)
	}

	// --- WebSocket hub ---
	wsHub := recommend.NewWSHub()
	go wsHub.Run()

	// --- Pricing service ---
	svc := recommend.NewService(st, fetcher, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for dashboard cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"rate-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/api/v1", svc.Routes())

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("rate-engine listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down rate-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("rate-engine stopped")
}
