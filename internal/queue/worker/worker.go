package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bkbadhon/elearning/internal/domain/job"
	"github.com/bkbadhon/elearning/internal/jobs"
	"github.com/bkbadhon/elearning/internal/notifications"
	"github.com/bkbadhon/elearning/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	ShutdownGrace time.Duration
	LockTTL       time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

// Run polls until ctx is cancelled, then waits up to ShutdownGrace for
// in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			w.pollLoop(ctx)
		}()
	}

	// janitor: put back jobs whose worker died mid-processing
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.janitorLoop(ctx)
	}()

	<-ctx.Done()
	w.log.Info("worker received shutdown signal")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.log.Info("worker shutdown complete")
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Error("worker shutdown grace period exceeded")
	}

	return nil
}

func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// drain everything runnable before sleeping again
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.Error("process job", "err", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) janitorLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)

			if err != nil {
				w.log.Error("requeue stale jobs", "err", err)
				continue
			}

			if n > 0 {
				w.log.Info("requeued stale jobs", "count", n)
			}
		}
	}
}

// execute dispatches a claimed job to its handler.
func (w *Worker) execute(ctx context.Context, j job.Job) error {
	t := jobs.JobType(j.Type)

	payload, err := jobs.DecodePayload(t, j.Payload)

	if err != nil {
		return err
	}

	if err := jobs.ValidatePayload(t, payload); err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.EnrollmentConfirmationPayload:
		return w.notifier.SendEnrollmentConfirmation(ctx, notifications.SendEnrollmentConfirmationInput{
			Email:        p.Email,
			UserName:     p.UserName,
			CourseID:     p.CourseID,
			CourseTitle:  p.CourseTitle,
			EnrollmentID: p.EnrollmentID,
		})
	default:
		return jobs.ErrInvalidJobType
	}
}

func (w *Worker) setReady(ready bool) {
	w.readyMu.Lock()
	w.ready = ready
	w.readyMu.Unlock()
}
