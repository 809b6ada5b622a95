package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"moddingway/logging"
	"moddingway/metrics"
)

var (
	// ErrJobRunning is returned when a job is triggered while its previous run is still in progress.
	ErrJobRunning = errors.New("job is already running")
	ErrUnknownJob = errors.New("unknown job")
	ErrStopped    = errors.New("scheduler is stopped")
)

// Job is a named periodic task.
type Job struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// JobStatus is a point-in-time view of a registered job.
type JobStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Running   bool          `json:"running"`
	LastRunAt *time.Time    `json:"last_run_at,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

type scheduledJob struct {
	Job
	mu      sync.Mutex
	running atomic.Bool

	statusMu  sync.Mutex
	lastRunAt time.Time
	lastErr   error
}

// Scheduler runs every registered job on its own ticker. A job never overlaps with itself.
type Scheduler struct {
	jobs    map[string]*scheduledJob
	metrics *metrics.MetricsRegistry

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	wg       sync.WaitGroup
	wgMu     sync.Mutex // orders wg.Add in Trigger against Stop
	started  atomic.Bool
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler.
func NewScheduler(m *metrics.MetricsRegistry) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:    make(map[string]*scheduledJob),
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("invalid job %q", job.Name)
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", job.Name, job.Interval)
	}
	if s.started.Load() {
		return fmt.Errorf("job %s: scheduler already started", job.Name)
	}
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("job %s already registered", job.Name)
	}
	s.jobs[job.Name] = &scheduledJob{Job: job}
	return nil
}

// Start begins all scheduled jobs.
func (s *Scheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
	logging.Info("Scheduler started", "jobs", len(s.jobs))
}

// Stop terminates all scheduled jobs and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		logging.Info("Stopping scheduler...")
		s.wgMu.Lock()
		s.cancel()
		s.wgMu.Unlock()
		close(s.done)
		s.wg.Wait()
		logging.Info("Scheduler stopped.")
	})
}

// RunNow runs a job synchronously and returns its error.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !j.mu.TryLock() {
		s.skipped(j)
		return ErrJobRunning
	}
	defer j.mu.Unlock()
	return s.execute(ctx, j)
}

// Trigger starts a job in the background. It fails fast with ErrJobRunning when a run is in progress.
func (s *Scheduler) Trigger(name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	s.wgMu.Lock()
	defer s.wgMu.Unlock()
	if s.ctx.Err() != nil {
		return ErrStopped
	}
	if !j.mu.TryLock() {
		s.skipped(j)
		return ErrJobRunning
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer j.mu.Unlock()
		_ = s.execute(s.ctx, j)
	}()
	return nil
}

// Status returns the state of every job sorted by name.
func (s *Scheduler) Status() []JobStatus {
	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		st := JobStatus{Name: j.Name, Interval: j.Interval, Running: j.running.Load()}
		j.statusMu.Lock()
		if !j.lastRunAt.IsZero() {
			at := j.lastRunAt
			st.LastRunAt = &at
		}
		if j.lastErr != nil {
			st.LastError = j.lastErr.Error()
		}
		j.statusMu.Unlock()
		out = append(out, st)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (s *Scheduler) loop(j *scheduledJob) {
	defer s.wg.Done()

	if j.RunOnStart {
		s.tick(j)
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(j)
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) tick(j *scheduledJob) {
	if !j.mu.TryLock() {
		s.skipped(j)
		return
	}
	defer j.mu.Unlock()
	_ = s.execute(s.ctx, j)
}

// execute must be called with j.mu held.
func (s *Scheduler) execute(ctx context.Context, j *scheduledJob) (err error) {
	j.running.Store(true)
	defer j.running.Store(false)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.Name, r)
		}

		status := "success"
		if err != nil {
			status = "error"
			logging.Error("Scheduled job failed", "job", j.Name, "error", err)
		} else {
			logging.Debug("Scheduled job finished", "job", j.Name, "duration", time.Since(start))
		}
		s.metrics.JobRunsTotal.WithLabelValues(j.Name, status).Inc()
		s.metrics.JobDuration.WithLabelValues(j.Name).Observe(time.Since(start).Seconds())

		j.statusMu.Lock()
		j.lastRunAt = start
		j.lastErr = err
		j.statusMu.Unlock()
	}()

	return j.Run(ctx)
}

func (s *Scheduler) skipped(j *scheduledJob) {
	s.metrics.JobSkipsTotal.WithLabelValues(j.Name).Inc()
	logging.Warn("Skipping job, previous run still in progress", "job", j.Name)
}
