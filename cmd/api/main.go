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

	"github.com/bkbadhon/elearning/internal/cache"
	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/db"
	httpx "github.com/bkbadhon/elearning/internal/http"
	"github.com/bkbadhon/elearning/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is opt-in via OTEL_EXPORTER_OTLP_ENDPOINT
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "elearning-api", cfg.OTELEndpoint)

		if err != nil {
			log.Error("init tracer", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("connect to postgres", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	migrateCtx, cancelMigrate := config.WithTimeout(10 * time.Second)
	defer cancelMigrate()

	if err := db.Migrate(migrateCtx, pool); err != nil {
		log.Error("apply schema", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureSeedCourses(migrateCtx, pool, cfg); err != nil {
		log.Error("seed courses", "err", err)
		os.Exit(1)
	}

	// redis is optional; the catalog cache degrades to a read-through miss
	redisClient := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer func() { _ = redisClient.Close() }()

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

	if err := redisClient.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, course cache disabled", "addr", cfg.RedisAddr, "err", err)
	}
	cancelPing()

	courseCache := cache.NewCoursesCache(redisClient, cfg.CourseCacheTTL)

	promRegistry := prometheus.NewRegistry()
	prom := observability.NewProm(promRegistry)

	router := httpx.NewRouter(log, pool, cfg, prom, promRegistry, courseCache)

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

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
