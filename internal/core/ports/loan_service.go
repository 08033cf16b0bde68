package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// CreateLoanInput is the DTO passed from the transport layer to LoanService.
// Nil and zero values count as missing for required fields.
type CreateLoanInput struct {
	OwnerID         string
	CustomerID      string
	ItemDescription string
	LoanAmount      *decimal.Decimal
	IssueDate       string
	DueDate         string
	Frequency       string
	InterestPercent *decimal.Decimal // optional, defaults to 0
	GraceDays       *int             // optional, defaults to 0
}

// LoanService is the loan ledger.
type LoanService interface {
	Create(ctx context.Context, in CreateLoanInput) (string, error)
	UpdateStatus(ctx context.Context, loanID, status, ownerID string) error
	// List returns ownerID's loans matching filter (a status or "all").
	// Returns domain.ErrNoLoansFound when nothing matches.
	List(ctx context.Context, ownerID, filter string) ([]*domain.Loan, error)
}
