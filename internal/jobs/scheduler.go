package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finaudy/internal/logger"
)

// ScheduleTime is a time of day the scheduler runs at.
type ScheduleTime struct {
	Hour   int
	Minute int
}

// String returns the time in HH:MM format.
func (st ScheduleTime) String() string {
	return fmt.Sprintf("%02d:%02d", st.Hour, st.Minute)
}

// ParseScheduleTime parses a time string in HH:MM format.
func ParseScheduleTime(s string) (ScheduleTime, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return ScheduleTime{}, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	if hour < 0 || hour > 23 {
		return ScheduleTime{}, fmt.Errorf("invalid hour: %d (must be 0-23)", hour)
	}
	if minute < 0 || minute > 59 {
		return ScheduleTime{}, fmt.Errorf("invalid minute: %d (must be 0-59)", minute)
	}
	return ScheduleTime{Hour: hour, Minute: minute}, nil
}

// JobProvider lists the jobs of one run.
type JobProvider func(ctx context.Context) ([]Job, error)

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	ScheduleTimes []string
	Location      *time.Location
	WorkerCount   int
	QueueSize     int
	RunOnStartup  bool
	JobProvider   JobProvider
}

// Scheduler submits the provider's jobs to a worker pool at fixed times of
// day in the application timezone.
type Scheduler struct {
	pool          *WorkerPool
	scheduleTimes []ScheduleTime
	loc           *time.Location
	runOnStartup  bool
	provider      JobProvider

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun string
}

// NewScheduler validates config and builds a scheduler.
func NewScheduler(config SchedulerConfig) (*Scheduler, error) {
	times := make([]ScheduleTime, 0, len(config.ScheduleTimes))
	for _, raw := range config.ScheduleTimes {
		st, err := ParseScheduleTime(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule time %q: %w", raw, err)
		}
		times = append(times, st)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("at least one schedule time is required")
	}
	if config.JobProvider == nil {
		return nil, fmt.Errorf("a job provider is required")
	}

	loc := config.Location
	if loc == nil {
		loc = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		pool:          NewWorkerPool(config.WorkerCount, config.QueueSize),
		scheduleTimes: times,
		loc:           loc,
		runOnStartup:  config.RunOnStartup,
		provider:      config.JobProvider,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start launches the worker pool and the scheduling loop.
func (s *Scheduler) Start() {
	logger.Named("scheduler").Infow("starting scheduler", "times", s.scheduleTimes, "timezone", s.loc.String())

	s.pool.Start()

	if s.runOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run()
		}()
	}

	s.wg.Add(1)
	go s.loop()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.run()
			}
		}
	}
}

// shouldRun reports whether now matches a schedule time that has not fired
// yet this minute.
func (s *Scheduler) shouldRun(now time.Time) bool {
	local := now.In(s.loc)
	key := local.Format("2006-01-02 15:04")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRun == key {
		return false
	}
	for _, st := range s.scheduleTimes {
		if local.Hour() == st.Hour && local.Minute() == st.Minute {
			s.lastRun = key
			return true
		}
	}
	return false
}

// run fetches a batch of jobs and hands them to the pool.
func (s *Scheduler) run() int {
	log := logger.Named("scheduler")

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	jobs, err := s.provider(ctx)
	if err != nil {
		log.Errorw("failed to fetch jobs", "error", err)
		return 0
	}
	if len(jobs) == 0 {
		log.Info("no jobs to process")
		return 0
	}
	return s.pool.SubmitBatch(jobs)
}

// TriggerNow runs a batch immediately and returns how many jobs were queued.
func (s *Scheduler) TriggerNow() int {
	logger.Named("scheduler").Info("manual trigger")
	return s.run()
}

// NextRun returns the next scheduled run after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	var next time.Time
	for _, st := range s.scheduleTimes {
		candidate := time.Date(local.Year(), local.Month(), local.Day(), st.Hour, st.Minute, 0, 0, s.loc)
		if !candidate.After(local) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

// Shutdown stops the loop, then drains the worker pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	log := logger.Named("scheduler")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn("timeout waiting for scheduler loop to stop")
	}

	s.pool.ShutdownWithTimeout(timeout)
	log.Info("scheduler stopped")
}
