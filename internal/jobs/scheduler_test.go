package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ScheduleTime
		wantErr bool
	}{
		{"08:00", ScheduleTime{8, 0}, false},
		{"19:50", ScheduleTime{19, 50}, false},
		{"7:5", ScheduleTime{7, 5}, false},
		{"24:00", ScheduleTime{}, true},
		{"12:60", ScheduleTime{}, true},
		{"noon", ScheduleTime{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScheduleTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScheduleTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func noJobs(context.Context) ([]Job, error) { return nil, nil }

func TestNewSchedulerValidation(t *testing.T) {
	if _, err := NewScheduler(SchedulerConfig{JobProvider: noJobs}); err == nil {
		t.Error("expected an error without schedule times")
	}
	if _, err := NewScheduler(SchedulerConfig{ScheduleTimes: []string{"08:00"}}); err == nil {
		t.Error("expected an error without a job provider")
	}
	if _, err := NewScheduler(SchedulerConfig{ScheduleTimes: []string{"8h"}, JobProvider: noJobs}); err == nil {
		t.Error("expected an error for a bad time")
	}
}

func TestShouldRun(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	s, err := NewScheduler(SchedulerConfig{ScheduleTimes: []string{"08:00"}, Location: loc, JobProvider: noJobs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	at := time.Date(2024, 3, 10, 11, 0, 10, 0, time.UTC) // 08:00 local
	if !s.shouldRun(at) {
		t.Error("expected a run at the local schedule time")
	}
	if s.shouldRun(at.Add(30 * time.Second)) {
		t.Error("expected no second run in the same minute")
	}
	if s.shouldRun(at.Add(time.Minute)) {
		t.Error("expected no run outside the schedule")
	}
	if !s.shouldRun(at.AddDate(0, 0, 1)) {
		t.Error("expected a run the next day")
	}
}

func TestNextRun(t *testing.T) {
	s, err := NewScheduler(SchedulerConfig{ScheduleTimes: []string{"19:50", "08:00"}, Location: time.UTC, JobProvider: noJobs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 19, 50, 0, 0, time.UTC)},
		{time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := s.NextRun(tt.now); !got.Equal(tt.want) {
			t.Errorf("NextRun(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

type countingJob struct {
	count *atomic.Int32
	fail  bool
}

func (j *countingJob) Execute(context.Context) error {
	j.count.Add(1)
	if j.fail {
		return errors.New("boom")
	}
	return nil
}

func (j *countingJob) AccountID() string { return "acct" }

func (j *countingJob) Description() string { return "counting" }

func TestWorkerPool(t *testing.T) {
	t.Run("runs_every_job", func(t *testing.T) {
		var count atomic.Int32
		pool := NewWorkerPool(3, 10)
		pool.Start()

		jobs := []Job{&countingJob{count: &count}, &countingJob{count: &count, fail: true}, &countingJob{count: &count}}
		if n := pool.SubmitBatch(jobs); n != 3 {
			t.Fatalf("expected 3 submitted, got %d", n)
		}
		pool.ShutdownWithTimeout(5 * time.Second)

		if count.Load() != 3 {
			t.Errorf("expected 3 executions, got %d", count.Load())
		}
		if err := pool.Submit(&countingJob{count: &count}); err == nil {
			t.Error("expected submit after shutdown to fail")
		}
	})

	t.Run("full_queue_drops", func(t *testing.T) {
		var count atomic.Int32
		pool := NewWorkerPool(1, 1)

		if err := pool.Submit(&countingJob{count: &count}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := pool.Submit(&countingJob{count: &count}); err == nil {
			t.Error("expected the second job to be dropped")
		}
		pool.ShutdownWithTimeout(time.Second)
	})
}

func TestTriggerNow(t *testing.T) {
	var count atomic.Int32
	provider := func(context.Context) ([]Job, error) {
		return []Job{&countingJob{count: &count}, &countingJob{count: &count}}, nil
	}
	s, err := NewScheduler(SchedulerConfig{ScheduleTimes: []string{"03:00"}, WorkerCount: 2, QueueSize: 10, JobProvider: provider})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Start()

	if n := s.TriggerNow(); n != 2 {
		t.Errorf("expected 2 queued jobs, got %d", n)
	}
	s.Shutdown(5 * time.Second)

	if count.Load() != 2 {
		t.Errorf("expected 2 executions, got %d", count.Load())
	}
}
