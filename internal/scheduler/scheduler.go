package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a background task run at a fixed interval, outside the display
// cycle.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per-run deadline; defaults to 30s
	Run      func(ctx context.Context)
}

// Scheduler runs the periodic housekeeping jobs (connectivity probe, NTP
// resync).
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
}

// New creates a new Scheduler.
func New(jobs ...Job) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		jobs:      jobs,
	}
}

// Start schedules every job and starts the underlying scheduler. Jobs first
// run one interval after Start.
func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		log.Println("scheduler: no jobs configured; nothing to schedule")
		return nil
	}

	for _, job := range s.jobs {
		job := job
		if job.Interval <= 0 {
			return fmt.Errorf("scheduler: job %s has non-positive interval %s", job.Name, job.Interval)
		}
		timeout := job.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}

		_, err := s.scheduler.Every(job.Interval).SingletonMode().WaitForSchedule().Do(func() {
			log.Printf("DEBUG: scheduler: running %s job", job.Name)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			job.Run(ctx)
		})
		if err != nil {
			return fmt.Errorf("scheduler: schedule %s: %w", job.Name, err)
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
