package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanCompleted LoanStatus = "completed"
	LoanOverdue   LoanStatus = "overDue"
)

// StatusAll is the list filter that matches every status.
const StatusAll = "all"

// ParseLoanStatus converts s into a LoanStatus, rejecting anything outside the
// closed set.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case LoanPending, LoanCompleted, LoanOverdue:
		return LoanStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// UnmarshalText validates the status when decoding.
func (s *LoanStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseLoanStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ManuallySettable reports whether an owner may set s directly. overDue is
// reserved for the sweeper.
func (s LoanStatus) ManuallySettable() bool {
	return s == LoanPending || s == LoanCompleted
}

// Sweepable reports whether a loan in status s is promoted to overDue once
// its due date has passed. Completed loans are frozen.
func (s LoanStatus) Sweepable() bool {
	return s != LoanCompleted && s != LoanOverdue
}

// Loan is a single lending record against a customer.
type Loan struct {
	ID              string
	CustomerID      string
	ItemDescription string
	LoanAmount      decimal.Decimal
	IssueDate       time.Time
	DueDate         time.Time
	Frequency       string
	InterestPercent decimal.Decimal
	GraceDays       int
	Status          LoanStatus
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOverdueAt reports whether the sweep would promote l at instant now.
func (l *Loan) IsOverdueAt(now time.Time) bool {
	return l.DueDate.Before(now) && l.Status.Sweepable()
}

// IsStorableAmount reports whether d fits a 128-bit decimal, the widest
// number the ledger persists: at most 34 significant digits and an exponent
// in [-6176, 6111].
func IsStorableAmount(d decimal.Decimal) bool {
	_, err := primitive.ParseDecimal128(d.String())
	return err == nil
}
