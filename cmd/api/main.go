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

	"github.com/fitstack/fitlog/internal/cache"
	"github.com/fitstack/fitlog/internal/config"
	"github.com/fitstack/fitlog/internal/db"
	httpx "github.com/fitstack/fitlog/internal/http"
	"github.com/fitstack/fitlog/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is optional; without an endpoint spans are simply not exported
	if cfg.OTELEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "fitlog", cfg.OTELEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	// storage: postgres when configured, otherwise an in-process store
	var pool *pgxpool.Pool
	if cfg.DBURL != "" {
		var err error
		pool, err = db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(pool); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	} else {
		log.Warn("no database configured, using in-memory store")
	}

	// cache: redis when configured, in-process TTL cache otherwise
	var store cache.Store
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory cache", "err", err)
			store = cache.NewMemory(cfg.CacheTTL)
		} else {
			defer rc.Close()
			store = rc
		}
	} else {
		store = cache.NewMemory(cfg.CacheTTL)
	}

	router := httpx.NewRouter(httpx.Deps{
		Log:     log,
		Pool:    pool,
		Prom:    prom,
		Metrics: metrics,
		Cache:   store,
		Cfg:     cfg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
