package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bkbadhon/elearning/internal/domain/job"
)

// ProcessOne claims and runs a single job. Returns false when no job was
// available.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	start := time.Now()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
	}

	err = w.execute(ctx, j)

	if w.prom != nil {
		w.prom.JobsInFlight.Dec()
	}

	if err != nil {
		w.handleFailure(ctx, j, err)
		w.observeJob(j.Type, resultFor(j, err), time.Since(start))
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observeJob(j.Type, "failed", time.Since(start))
		return true, err
	}

	w.observeJob(j.Type, "done", time.Since(start))
	return true, nil
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) {
	// attempts counts completed tries; this one is in flight
	if j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark job failed", "job_id", j.ID, "err", err)
		}

		w.log.Error("job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "err", execErr)
		return
	}

	delay := ExponentialBackoff(j.Attempts)

	if err := w.repo.Reschedule(ctx, j.ID, time.Now().UTC().Add(delay), execErr.Error()); err != nil {
		w.log.Error("reschedule job", "job_id", j.ID, "err", err)
		return
	}

	w.log.Warn("job rescheduled", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts+1, "delay", delay.String(), "err", execErr)
}

func resultFor(j job.Job, err error) string {
	if err == nil {
		return "done"
	}
	if j.Attempts+1 >= j.MaxAttempts {
		return "failed"
	}
	return "retry"
}

func (w *Worker) observeJob(jobType, result string, took time.Duration) {
	if w.prom == nil {
		return
	}
	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(took.Seconds())
}
