package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/voltmesh/gridadmin/internal/clock"
	"github.com/voltmesh/gridadmin/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidName = errors.New("invalid_job_name")
	ErrInvalidSpec = errors.New("invalid_cron_spec")
)

// Task is one unit of scheduled work. The context carries the per-run
// timeout.
type Task func(ctx context.Context) error

// Options tune a single job.
type Options struct {
	// Timezone overrides the scheduler default for this job's cron spec.
	Timezone string
	// Timeout bounds one run. Zero means the scheduler default.
	Timeout time.Duration
	// OnError is called after a run fails or panics. The job stays
	// registered either way.
	OnError func(err error, name string)
}

type job struct {
	name    string
	spec    string
	runner  *cron.Cron
	entry   cron.EntryID
	started bool

	lastRun time.Time
	running bool
}

// JobInfo is a read-only snapshot of one registered job.
type JobInfo struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	Running bool      `json:"running"`
	LastRun time.Time `json:"lastRun"`
	NextRun time.Time `json:"nextRun"`
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Metrics *metrics.Metrics
	Clock   clock.Clock
	Config  Config `optional:"true"`
}

// Scheduler owns a registry of named cron jobs. All registry state lives
// behind the mutex; jobs added or removed while others run never race.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*job
	started bool

	log     *zap.Logger
	metrics *metrics.Metrics
	clock   clock.Clock
	cfg     Config
}

func New(p Params) *Scheduler {
	return &Scheduler{
		jobs:    make(map[string]*job),
		log:     p.Log.Named("scheduler"),
		metrics: p.Metrics,
		clock:   p.Clock,
		cfg:     p.Config.withDefaults(),
	}
}

// AddJob registers a job under a unique name. Registering a name that already
// exists stops and replaces the old job; the replacement keeps running state
// consistent with the scheduler (started schedulers start the new job
// immediately, unless the config disables it).
func (s *Scheduler) AddJob(name, spec string, task Task, opts Options) error {
	if name == "" {
		return ErrInvalidName
	}
	if task == nil {
		return fmt.Errorf("%w: job %q has no task", ErrInvalidSpec, name)
	}

	location, err := s.location(opts.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	j := &job{name: name, spec: spec}
	j.runner = cron.New(cron.WithLocation(location))
	entry, err := j.runner.AddFunc(spec, s.wrap(j, task, opts))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	j.entry = entry

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.jobs[name]; exists {
		old.runner.Stop()
		s.log.Info("replacing scheduled job", zap.String("job", name))
	}
	s.jobs[name] = j

	if s.started {
		if s.cfg.disabled(name) {
			s.log.Info("job disabled by config", zap.String("job", name))
		} else {
			j.runner.Start()
			j.started = true
		}
	}

	s.log.Info("job registered",
		zap.String("job", name),
		zap.String("spec", spec),
	)
	return nil
}

// RemoveJob stops and deletes a job. Removing an unknown name is a no-op.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[name]
	if !exists {
		return
	}
	j.runner.Stop()
	delete(s.jobs, name)
	s.log.Info("job removed", zap.String("job", name))
}

// StartAll starts every registered job. A job that fails to start is logged
// and skipped; the rest still start.
func (s *Scheduler) StartAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = true
	for name, j := range s.jobs {
		if j.started {
			continue
		}
		if s.cfg.disabled(name) {
			s.log.Info("job disabled by config", zap.String("job", name))
			continue
		}
		j.runner.Start()
		j.started = true
		s.log.Info("job started",
			zap.String("job", name),
			zap.Time("next_run", j.runner.Entry(j.entry).Next),
		)
	}
}

// StopAll stops every job and waits for in-flight runs to finish.
func (s *Scheduler) StopAll(ctx context.Context) {
	s.mu.Lock()
	stops := make([]context.Context, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.started {
			stops = append(stops, j.runner.Stop())
			j.started = false
		}
	}
	s.started = false
	s.mu.Unlock()

	for _, done := range stops {
		select {
		case <-done.Done():
		case <-ctx.Done():
			return
		}
	}
}

// Jobs returns a snapshot of the registry.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		infos = append(infos, JobInfo{
			Name:    j.name,
			Spec:    j.spec,
			Running: j.running,
			LastRun: j.lastRun,
			NextRun: j.runner.Entry(j.entry).Next,
		})
	}
	return infos
}

// HasJob reports whether a name is registered.
func (s *Scheduler) HasJob(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.jobs[name]
	return exists
}

// wrap turns a Task into the cron callback: per-run timeout, panic recovery,
// metrics and error routing. A failing or panicking run leaves the job
// registered and eligible for its next tick.
func (s *Scheduler) wrap(j *job, task Task, opts Options) func() {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.cfg.JobTimeout
	}

	return func() {
		start := s.clock.Now()
		s.mu.Lock()
		j.running = true
		j.lastRun = start
		s.mu.Unlock()

		s.metrics.IncJobRun(j.name)
		log := s.log.With(zap.String("job", j.name))

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := runRecovered(ctx, task)
		cancel()

		elapsed := s.clock.Now().Sub(start)
		s.metrics.ObserveJobDuration(j.name, elapsed)

		s.mu.Lock()
		j.running = false
		s.mu.Unlock()

		if err != nil {
			s.metrics.IncJobError(j.name)
			log.Error("job run failed",
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
			if opts.OnError != nil {
				opts.OnError(err, j.name)
			}
			return
		}

		log.Info("job run completed", zap.Duration("elapsed", elapsed))
	}
}

func (s *Scheduler) location(timezone string) (*time.Location, error) {
	if timezone == "" {
		timezone = s.cfg.Timezone
	}
	if timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}
