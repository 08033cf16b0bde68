package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lendingledger/ledger-service/internal/core/ports"
	"github.com/lendingledger/ledger-service/internal/pkg/metrics"
)

const (
	sweepLockPrefix     = "sweep:overdue:"
	defaultSweepLockTTL = 10 * time.Minute
)

// OverdueSweeper promotes every past-due, non-completed loan to overDue. It is
// a trusted system actor and ignores ownership. Runs are idempotent.
type OverdueSweeper struct {
	loans   ports.LoanRepository
	lock    ports.SweepLock // optional
	lockTTL time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewOverdueSweeper builds a sweeper. lock may be nil, in which case every
// call sweeps.
func NewOverdueSweeper(loans ports.LoanRepository, lock ports.SweepLock, log zerolog.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		loans:   loans,
		lock:    lock,
		lockTTL: defaultSweepLockTTL,
		log:     log,
		now:     time.Now,
	}
}

// Sweep runs one overdue pass using the current time as the cut-off.
func (s *OverdueSweeper) Sweep(ctx context.Context) (ports.SweepResult, error) {
	res := ports.SweepResult{RunID: uuid.NewString(), Started: s.now()}
	log := s.log.With().Str("run_id", res.RunID).Logger()
	failed := false

	// Replicas firing on the same tick share one key; the first one wins.
	if s.lock != nil {
		key := fmt.Sprintf("%s%d", sweepLockPrefix, res.Started.Truncate(time.Minute).Unix())
		release, acquired, err := s.lock.Acquire(ctx, key, s.lockTTL)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("sweep lock unavailable, sweeping anyway")
		case !acquired:
			res.Skipped = true
			metrics.SweepRunsTotal.WithLabelValues("skipped").Inc()
			log.Debug().Str("lock_key", key).Msg("sweep already running elsewhere")
			return res, nil
		default:
			// The lock is kept after a successful run so late replicas skip,
			// and freed after a failure so another one may retry.
			defer func() {
				if !failed {
					return
				}
				if err := release(context.Background()); err != nil {
					log.Warn().Err(err).Msg("failed to release sweep lock")
				}
			}()
		}
	}

	marked, err := s.loans.MarkOverdue(ctx, res.Started)
	res.Duration = s.now().Sub(res.Started)
	metrics.SweepDuration.Observe(res.Duration.Seconds())
	if err != nil {
		failed = true
		metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("overdue sweep failed")
		return res, fmt.Errorf("overdue sweep: %w", err)
	}

	res.Marked = marked
	metrics.SweepRunsTotal.WithLabelValues("ok").Inc()
	metrics.SweepLoansMarkedTotal.Add(float64(marked))
	log.Info().
		Int64("marked", marked).
		Dur("duration", res.Duration).
		Msg("overdue sweep finished")
	return res, nil
}
