// Package rollover runs the daily reset at local midnight for sessions that
// stay open across the day boundary.
package rollover

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/julianstephens/habitquest/internal/logger"
)

// Runs a few seconds after midnight so the wall clock has safely moved on.
const runAtSecond = 5

// Scheduler wraps a gocron scheduler holding the single rollover job.
type Scheduler struct {
	sched gocron.Scheduler
	job   gocron.Job
}

// Start schedules reset to run every day shortly after local midnight.
func Start(reset func() (bool, error)) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, runAtSecond))),
		gocron.NewTask(func() {
			changed, err := reset()
			if err != nil {
				logger.Error("Midnight rollover failed", "error", err)
				return
			}
			logger.Info("Midnight rollover", "reset", changed)
		}),
		gocron.WithName("daily-reset"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule rollover: %w", err)
	}

	sched.Start()
	return &Scheduler{sched: sched, job: job}, nil
}

// NextRun returns when the rollover fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

// RunNow triggers the rollover immediately, outside the schedule.
func (s *Scheduler) RunNow() error {
	return s.job.RunNow()
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
