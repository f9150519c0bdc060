// Package jobs holds the background work the worker binary schedules:
// the ledger audit, the pending-review digest and the analytics rollup.
package jobs

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Job is one schedulable unit of background work.
type Job interface {
	Name() string
	Schedule() gocron.JobDefinition
	Execute()
}

// Manager owns the scheduler and the registered jobs.
type Manager struct {
	scheduler gocron.Scheduler
	logger    zerolog.Logger
}

func NewManager(logger zerolog.Logger) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{scheduler: s, logger: logger}, nil
}

// Register adds a job; overlapping runs of the same job are rescheduled, not
// stacked.
func (m *Manager) Register(job Job) {
	_, err := m.scheduler.NewJob(
		job.Schedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		m.logger.Error().Err(err).Str("job", job.Name()).Msg("failed to register job")
		return
	}
	m.logger.Info().Str("job", job.Name()).Msg("job registered")
}

func (m *Manager) Start() {
	m.scheduler.Start()
}

func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Error().Err(err).Msg("failed to shutdown scheduler")
	}
}
