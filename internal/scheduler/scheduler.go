package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Job is one schedulable unit of work.
type Job func(ctx context.Context) error

const (
	defaultTick = time.Second
	errorPause  = 2 * time.Second
)

type entry struct {
	name     string
	interval time.Duration
	fn       Job
	lastRun  time.Time
	nextDue  time.Time
}

// JobStatus is a read-only snapshot of one registered job.
type JobStatus struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval"`
	LastRun  time.Time     `json:"last_run"`
	NextDue  time.Time     `json:"next_due"`
}

// Scheduler runs registered jobs on fixed intervals inside a
// once-per-second tick loop. Due jobs run synchronously in
// registration order, and a run reschedules as nextDue = now +
// interval: a tick that overruns its own interval skips the missed
// occurrences rather than queueing them.
type Scheduler struct {
	tracer trace.Tracer
	tick   time.Duration

	// seams for tests
	now   func() time.Time
	sleep func(d time.Duration)

	mu      sync.Mutex
	jobs    []*entry
	stopped bool
}

func New(tracer trace.Tracer) *Scheduler {
	return &Scheduler{
		tracer: tracer,
		tick:   defaultTick,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Register adds a job. Registration order is execution order within a
// tick. Register before starting the loop.
func (s *Scheduler) Register(name string, interval time.Duration, fn Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &entry{name: name, interval: interval, fn: fn})
}

// RunOnce executes every registered job once, in registration order,
// regardless of due times. Used for the startup warm run. Returns false
// if any job failed.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	_, span := s.tracer.Start(ctx, "scheduler.run-once")
	defer span.End()

	ok := true
	for _, e := range s.snapshot() {
		if err := s.invoke(ctx, e); err != nil {
			log.Printf("scheduler: warm run %s: %v", e.name, err)
			ok = false
		}
	}
	return ok
}

// RunForever drives the tick loop until Stop is called or ctx is
// cancelled. No job is due before its first interval elapses; run
// RunOnce first if a warm pass is wanted.
func (s *Scheduler) RunForever(ctx context.Context) {
	start := s.now()
	s.mu.Lock()
	for _, e := range s.jobs {
		if e.nextDue.IsZero() {
			e.nextDue = start.Add(e.interval)
		}
	}
	s.mu.Unlock()

	log.Printf("scheduler: loop started with %d jobs", len(s.snapshot()))
	for {
		if s.isStopped() || ctx.Err() != nil {
			log.Println("scheduler: loop stopped")
			return
		}
		s.sleep(s.tick)
		s.Tick(ctx)
	}
}

// Tick runs every job whose due time has arrived. A stop request is
// honoured before any job starts; once a tick is underway it drains.
func (s *Scheduler) Tick(ctx context.Context) {
	if s.isStopped() {
		return
	}
	now := s.now()
	s.mu.Lock()
	due := make([]*entry, 0, len(s.jobs))
	for _, e := range s.jobs {
		if !e.nextDue.After(now) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		if err := s.invoke(ctx, e); err != nil {
			log.Printf("scheduler: %v", err)
			s.sleep(errorPause)
		}
		s.mu.Lock()
		e.nextDue = s.now().Add(e.interval)
		s.mu.Unlock()
	}
}

// Stop prevents any further tick from starting. The tick in flight, if
// any, completes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Status reports every job's timing state for the HTTP surface.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, e := range s.jobs {
		out = append(out, JobStatus{
			Name:     e.name,
			Interval: e.interval,
			LastRun:  e.lastRun,
			NextDue:  e.nextDue,
		})
	}
	return out
}

// invoke runs one job with panic containment: nothing a job does may
// take the loop down.
func (s *Scheduler) invoke(ctx context.Context, e *entry) (err error) {
	_, span := s.tracer.Start(ctx, "scheduler.job."+e.name)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", e.name, r)
		}
	}()

	started := s.now()
	s.mu.Lock()
	e.lastRun = started
	s.mu.Unlock()

	if err := e.fn(ctx); err != nil {
		return fmt.Errorf("job %s: %w", e.name, err)
	}
	return nil
}

func (s *Scheduler) snapshot() []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entry, len(s.jobs))
	copy(out, s.jobs)
	return out
}

func (s *Scheduler) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
