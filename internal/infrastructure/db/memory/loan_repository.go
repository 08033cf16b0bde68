package memory

import (
	"context"
	"time"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

type LoanRepository struct {
	s *Store
}

func cloneLoan(l *domain.Loan) *domain.Loan {
	out := *l
	return &out
}

func (r *LoanRepository) Create(_ context.Context, l *domain.Loan) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := cloneLoan(l)
	stored.ID = domain.NewID()
	r.s.loans[stored.ID] = stored
	r.s.loanOrder = append(r.s.loanOrder, stored.ID)
	return stored.ID, nil
}

func (r *LoanRepository) UpdateStatus(_ context.Context, id, ownerID string, status domain.LoanStatus, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.loans[id]
	if !ok || l.CreatedBy != ownerID {
		return 0, nil
	}
	l.Status = status
	l.UpdatedAt = now
	return 1, nil
}

// ListByOwner returns loans in creation order.
func (r *LoanRepository) ListByOwner(_ context.Context, ownerID string, status *domain.LoanStatus) ([]*domain.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Loan, 0)
	for _, id := range r.s.loanOrder {
		l := r.s.loans[id]
		if l.CreatedBy != ownerID {
			continue
		}
		if status != nil && l.Status != *status {
			continue
		}
		out = append(out, cloneLoan(l))
	}
	return out, nil
}

func (r *LoanRepository) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, l := range r.s.loans {
		if l.IsOverdueAt(now) {
			l.Status = domain.LoanOverdue
			l.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// Get returns a copy of the loan with id, for inspection.
func (r *LoanRepository) Get(id string) (*domain.Loan, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.loans[id]
	if !ok {
		return nil, false
	}
	return cloneLoan(l), true
}
