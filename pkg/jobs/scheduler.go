package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultJobTimeout = 5 * time.Minute

// Job represents a background job.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

// Func adapts a named function to Job.
type Func struct {
	JobName string
	Run     func(ctx context.Context) error
}

// Name returns the job name.
func (f Func) Name() string { return f.JobName }

// Execute runs the wrapped function.
func (f Func) Execute(ctx context.Context) error { return f.Run(ctx) }

// Scheduler runs each registered job on its own ticker.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]scheduledJob
	logger  *slog.Logger
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// NewScheduler creates a new job scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		jobs:   make(map[string]scheduledJob),
		logger: logger,
	}
}

// AddJob registers a job. Jobs added after Start are not scheduled until the next Start.
func (s *Scheduler) AddJob(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name()] = scheduledJob{job: job, interval: interval}
}

// Start launches every registered job. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.loop(runCtx, sj)
	}

	s.logger.Info("job scheduler started", slog.Int("jobs", len(s.jobs)))
}

func (s *Scheduler) loop(ctx context.Context, sj scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.execute(ctx, sj.job)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panic", slog.String("name", job.Name()), slog.Any("panic", r))
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, defaultJobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Execute(jobCtx); err != nil {
		s.logger.Error("job execution failed",
			slog.String("name", job.Name()),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}
	s.logger.Debug("job completed", slog.String("name", job.Name()), slog.Duration("duration", time.Since(start)))
}

// Stop cancels all jobs and waits for in-flight executions to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("job scheduler stopped")
}

// RunOnce executes a registered job immediately.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	jobCtx, cancel := context.WithTimeout(ctx, defaultJobTimeout)
	defer cancel()
	return sj.job.Execute(jobCtx)
}
