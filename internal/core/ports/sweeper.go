package ports

import (
	"context"
	"time"
)

// SweepResult summarises one overdue sweep run.
type SweepResult struct {
	RunID    string
	Marked   int64
	Skipped  bool // another replica holds the lock for this run
	Started  time.Time
	Duration time.Duration
}

// OverdueSweeper promotes past-due loans to overDue.
type OverdueSweeper interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

// SweepLock guarantees at most one replica sweeps per lock key.
type SweepLock interface {
	// Acquire tries to take key for ttl. When acquired, release frees it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}
