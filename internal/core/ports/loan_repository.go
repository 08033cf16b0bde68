package ports

import (
	"context"
	"time"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// LoanRepository persists loans.
type LoanRepository interface {
	Create(ctx context.Context, l *domain.Loan) (string, error)
	// UpdateStatus sets the status of the loan matching both id and ownerID in
	// a single conditional write and returns how many loans matched.
	UpdateStatus(ctx context.Context, id, ownerID string, status domain.LoanStatus, now time.Time) (int64, error)
	// ListByOwner returns the loans created by ownerID. A nil status matches
	// every status.
	ListByOwner(ctx context.Context, ownerID string, status *domain.LoanStatus) ([]*domain.Loan, error)
	// MarkOverdue promotes every sweepable loan whose due date is before now to
	// overDue and returns the number of loans changed.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
