// Package scheduler runs background maintenance jobs on cron schedules:
// WAL checkpoints, integrity checks, database backups. The cost basis
// ledger is never written from here; rebuilds happen synchronously on the
// trade write path.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one unit of database maintenance work. Jobs must be safe to run
// while the HTTP server is serving reads from the same databases.
type Job interface {
	Run() error
	Name() string
}

// Scheduler owns the cron runner for all maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New returns a scheduler with second-resolution cron parsing, matching
// the six-field schedules used in main.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins dispatching jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop halts dispatch and blocks until any in-flight job finishes, so a
// checkpoint or backup is never cut off mid-write during shutdown.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job under a six-field cron schedule ("0 30 3 * * *")
// or a descriptor ("@hourly", "@every 30s"). A failing run is logged and
// the schedule keeps firing.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		} else {
			s.log.Debug().Str("job", job.Name()).Msg("Job completed")
		}
	})

	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately, outside its schedule. Used for the
// startup integrity check before the server accepts traffic.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}
