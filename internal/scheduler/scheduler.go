// Package scheduler runs the engine's periodic jobs (turn ticks, NPC cycles,
// war expiry) at fixed intervals under a named exclusive lock.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/observability"
)

// Job is one named periodic unit of work.
type Job struct {
	Name     string
	Interval time.Duration
	// Run performs one invocation. logger is tagged with the job name and
	// a fresh run id.
	Run func(ctx context.Context, logger *zap.Logger) error
}

// Locker grants named locks that are exclusive across every process sharing
// the same backing store.
type Locker interface {
	// TryLock acquires name without blocking. ok is false when another
	// holder owns it. release must be called exactly once when ok is true.
	TryLock(ctx context.Context, name string) (release func(), ok bool, err error)
}

// Outcome classifies one invocation.
type Outcome string

const (
	OutcomeRan     Outcome = "ran"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Runner fires each registered job every Interval. Invocations of one job
// never overlap within a process; the Locker extends that across processes,
// so a tick that finds the lock held is skipped rather than queued.
//
// Invariant: a job's Run is never executed without its lock held.
type Runner struct {
	locker Locker
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]Job

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRunner creates a Runner.
//
// Precondition: locker and logger must be non-nil.
func NewRunner(locker Locker, logger *zap.Logger) *Runner {
	if locker == nil {
		panic("scheduler.NewRunner: locker must not be nil")
	}
	return &Runner{
		locker: locker,
		logger: logger,
		jobs:   make(map[string]Job),
	}
}

// Register adds job, replacing any job with the same name.
//
// Precondition: job.Name must be non-empty, job.Interval > 0, job.Run non-nil.
func (r *Runner) Register(job Job) {
	if job.Name == "" || job.Interval <= 0 || job.Run == nil {
		panic(fmt.Sprintf("scheduler.Register: invalid job %q (interval %s)", job.Name, job.Interval))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.Name] = job
}

// Jobs returns the registered job names in sorted order.
func (r *Runner) Jobs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.jobs))
	for n := range r.jobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LockName is the lock key guarding the job called name.
func LockName(name string) string {
	return "dominion:job:" + name
}

// RunOnce executes the named job once if its lock can be taken.
//
// Postcondition: Returns OutcomeSkipped with a nil error when another holder
// owns the lock, and OutcomeFailed with the job's error (or recovered panic)
// otherwise.
func (r *Runner) RunOnce(ctx context.Context, name string) (Outcome, error) {
	r.mu.Lock()
	job, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return OutcomeFailed, fmt.Errorf("unknown job %q", name)
	}

	logger := observability.JobLogger(r.logger, job.Name, uuid.NewString())
	release, ok, err := r.locker.TryLock(ctx, LockName(job.Name))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("locking job %s: %w", job.Name, err)
	}
	if !ok {
		logger.Info("job already running elsewhere, skipping")
		return OutcomeSkipped, nil
	}
	defer release()

	start := time.Now()
	if err := invoke(ctx, job, logger); err != nil {
		logger.Error("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return OutcomeFailed, err
	}
	logger.Info("job finished", zap.Duration("elapsed", time.Since(start)))
	return OutcomeRan, nil
}

func invoke(ctx context.Context, job Job, logger *zap.Logger) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, p)
		}
	}()
	return job.Run(ctx, logger)
}

// Start runs every registered job on its own ticker and blocks until ctx is
// cancelled or Stop is called.
//
// Postcondition: every registered job is attempted once per interval.
func (r *Runner) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	jobs := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	r.mu.Unlock()

	for _, j := range jobs {
		r.wg.Add(1)
		go r.loop(ctx, j)
	}
	r.logger.Info("scheduler started", zap.Int("jobs", len(jobs)))
	<-ctx.Done()
	r.wg.Wait()
	return nil
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors are logged by RunOnce; the next tick retries.
			_, _ = r.RunOnce(ctx, job.Name)
		}
	}
}

// Stop cancels the tick loops and waits for in-flight invocations, or for
// ctx to expire.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

// LocalLocker is an in-process Locker for single-instance runs and tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

// TryLock implements Locker.
func (l *LocalLocker) TryLock(_ context.Context, name string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, true, nil
}
