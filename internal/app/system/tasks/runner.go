// Package tasks runs the background maintenance jobs on fixed intervals.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named task executed periodically.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives registered jobs, each on its own goroutine. Jobs run once
// on Start and then on every interval tick until Stop.
type Runner struct {
	logger *zap.Logger
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates a Runner with no jobs registered.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Register adds a job. Must be called before Start.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches every registered job.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go func(job Job) {
			defer r.wg.Done()
			r.loop(ctx, job)
		}(job)
	}

	r.logger.Info("background task runner started",
		zap.Int("job_count", len(r.jobs)))
}

// Stop cancels all jobs and waits for in-flight runs to finish. If ctx
// expires first, the names of the jobs still running are logged and
// ctx.Err() is returned.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("jobs_still_running", r.inFlightNames()))
		return ctx.Err()
	}
}

// RunOnce executes the named job immediately, outside its schedule.
// Unknown names are a no-op.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return nil
}

func (r *Runner) loop(ctx context.Context, job Job) {
	// First run happens right away, not after the first interval.
	r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	r.track(job.Name, true)
	defer r.track(job.Name, false)

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		if ctx.Err() != nil {
			// Cancelled mid-run during shutdown; not a failure.
			return
		}
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}

	r.logger.Debug("job completed",
		zap.String("job", job.Name),
		zap.Duration("duration", time.Since(start)))
}

func (r *Runner) track(name string, running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if running {
		r.inFlight[name] = struct{}{}
	} else {
		delete(r.inFlight, name)
	}
}

func (r *Runner) inFlightNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.inFlight))
	for name := range r.inFlight {
		names = append(names, name)
	}
	return names
}
