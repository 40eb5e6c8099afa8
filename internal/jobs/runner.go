// Package jobs runs report generation in the background and tracks it in
// the job store.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/internal/pipeline"
	"github.com/articflow/agentlink/internal/store"
)

// Reporter builds the reports a job can produce. *pipeline.Pipeline
// implements it.
type Reporter interface {
	RunAgents(ctx context.Context, req model.ReportRequest, status pipeline.StatusFunc) (*model.AgentsReport, error)
	RunAgencies(ctx context.Context, req model.ReportRequest, status pipeline.StatusFunc) (*model.AgencyReport, error)
}

// Options tunes a Runner.
type Options struct {
	// MaxConcurrent caps jobs running at once. Default 4.
	MaxConcurrent int
	// Timeout bounds a single job. Default 5 minutes.
	Timeout time.Duration
}

// Runner executes submitted jobs in goroutines, bounded by a semaphore.
type Runner struct {
	store    store.Store
	reporter Reporter
	sem      *semaphore.Weighted
	timeout  time.Duration

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu orders wg.Add in Submit against Close.
	mu     sync.Mutex
	closed bool
}

// NewRunner creates a Runner.
func NewRunner(st store.Store, rep Reporter, opts Options) *Runner {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	base, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:    st,
		reporter: rep,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		timeout:  opts.Timeout,
		base:     base,
		cancel:   cancel,
	}
}

// Submit records a new job and starts it. The returned job is in the
// processing state; the work outlives ctx.
func (r *Runner) Submit(ctx context.Context, kind model.JobKind, req model.ReportRequest) (*model.Job, error) {
	if kind != model.JobKindAgents && kind != model.JobKindAgencies {
		return nil, eris.Errorf("jobs: unknown kind %q", kind)
	}
	req = pipeline.Normalize(req)
	if req.Suburb == "" {
		return nil, eris.New("jobs: suburb is required")
	}
	if r.isClosed() {
		return nil, eris.New("jobs: runner closed")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: marshal request")
	}
	job, err := r.store.CreateJob(ctx, kind, req.Suburb, payload)
	if err != nil {
		return nil, eris.Wrap(err, "jobs: create job")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.fail(job.ID, "runner closed before start", zap.L().With(zap.String("job_id", job.ID)))
		return nil, eris.New("jobs: runner closed")
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.run(job.ID, kind, req)
	}()
	return job, nil
}

func (r *Runner) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Runner) run(id string, kind model.JobKind, req model.ReportRequest) {
	log := zap.L().With(zap.String("job_id", id), zap.String("kind", string(kind)), zap.String("suburb", req.Suburb))

	if err := r.sem.Acquire(r.base, 1); err != nil {
		r.fail(id, "job cancelled before start", log)
		return
	}
	defer r.sem.Release(1)

	ctx, cancel := context.WithTimeout(r.base, r.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			log.Error("jobs: job panicked", zap.Any("panic", p), zap.Stack("stack"))
			r.fail(id, fmt.Sprintf("internal error: %v", p), log)
		}
	}()

	start := time.Now()
	log.Info("jobs: job started")

	status := func(ctx context.Context, s model.JobStatus) {
		if err := r.store.UpdateJobStatus(ctx, id, s); err != nil {
			log.Warn("jobs: failed to update status", zap.String("status", string(s)), zap.Error(err))
		}
	}

	var report any
	var err error
	switch kind {
	case model.JobKindAgencies:
		report, err = r.reporter.RunAgencies(ctx, req, status)
	default:
		report, err = r.reporter.RunAgents(ctx, req, status)
	}
	if err != nil {
		log.Error("jobs: job failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		r.fail(id, err.Error(), log)
		return
	}

	result, err := json.Marshal(report)
	if err != nil {
		r.fail(id, eris.Wrap(err, "jobs: marshal result").Error(), log)
		return
	}
	if err := r.store.CompleteJob(r.finishCtx(), id, result); err != nil {
		log.Error("jobs: failed to store result", zap.Error(err))
		return
	}
	log.Info("jobs: job completed", zap.Duration("elapsed", time.Since(start)))
}

func (r *Runner) fail(id, reason string, log *zap.Logger) {
	if err := r.store.FailJob(r.finishCtx(), id, reason); err != nil {
		log.Error("jobs: failed to record failure", zap.Error(err))
	}
}

// finishCtx is used for terminal writes so a cancelled job is still
// recorded.
func (r *Runner) finishCtx() context.Context {
	return context.WithoutCancel(r.base)
}

// Close stops accepting jobs, cancels running ones and waits for them to
// record their outcome or for ctx to end.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "jobs: close")
	}
}

// Wait blocks until every submitted job has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
