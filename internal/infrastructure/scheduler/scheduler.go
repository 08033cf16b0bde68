// Package scheduler triggers the overdue sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/lendingledger/ledger-service/internal/core/ports"
)

const (
	// DefaultSpec fires every day at local midnight.
	DefaultSpec    = "0 0 * * *"
	defaultTimeout = time.Minute
)

// Config controls when and how long sweeps run.
type Config struct {
	Spec       string
	Location   *time.Location
	RunOnStart bool
	Timeout    time.Duration
}

// Scheduler runs the sweeper independently of request traffic. The only state
// it shares with request handlers is the store.
type Scheduler struct {
	cfg      Config
	schedule cron.Schedule
	sweeper  ports.OverdueSweeper
	log      zerolog.Logger
}

// New validates cfg.Spec and returns a Scheduler.
func New(cfg Config, sweeper ports.OverdueSweeper, log zerolog.Logger) (*Scheduler, error) {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	schedule, err := cron.ParseStandard(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", cfg.Spec, err)
	}

	return &Scheduler{cfg: cfg, schedule: schedule, sweeper: sweeper, log: log}, nil
}

// Run blocks until ctx is cancelled, then waits for an in-flight sweep.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.cfg.Location),
		cron.WithLogger(cronLogger{log: s.log}),
		cron.WithChain(cron.Recover(cronLogger{log: s.log}), cron.SkipIfStillRunning(cronLogger{log: s.log})),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))

	if s.cfg.RunOnStart {
		s.runOnce(ctx)
	}

	c.Start()
	s.log.Info().
		Str("spec", s.cfg.Spec).
		Str("location", s.cfg.Location.String()).
		Time("next_run", s.schedule.Next(time.Now().In(s.cfg.Location))).
		Msg("sweep scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info().Msg("sweep scheduler stopped")
	return nil
}

// runOnce is fire-and-forget: a failed run waits for the next tick.
func (s *Scheduler) runOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.log.Warn().Err(err).Msg("sweep run failed, retrying on next tick")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
