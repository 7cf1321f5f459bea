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

	"github.com/bkbadhon/elearning/internal/config"
	"github.com/bkbadhon/elearning/internal/db"
	"github.com/bkbadhon/elearning/internal/notifications"
	"github.com/bkbadhon/elearning/internal/observability"
	"github.com/bkbadhon/elearning/internal/queue/worker"
	"github.com/bkbadhon/elearning/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

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

	promRegistry := prometheus.NewRegistry()
	prom := observability.NewProm(promRegistry)

	jobsRepo := postgres.NewJobsRepo(pool, prom)

	// the provider wrapped in a breaker so a dead provider fails fast
	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	hostname, _ := os.Hostname()
	workerID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	w := worker.New(worker.Config{
		PollInterval: cfg.WorkerPollInterval,
		WorkerID:     workerID,
		Concurrency:  cfg.WorkerConcurrency,
	}, jobsRepo, notifier, log, prom)

	// health + metrics sidecar server
	healthMux := http.NewServeMux()
	healthMux.Handle("/", w.HealthHandler())
	healthMux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("worker health server starting", "port", cfg.WorkerHealthPort)

		err := healthSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("worker starting", "worker_id", workerID, "concurrency", cfg.WorkerConcurrency)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker exited")
}
