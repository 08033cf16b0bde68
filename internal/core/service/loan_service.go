package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lendingledger/ledger-service/internal/core/domain"
	"github.com/lendingledger/ledger-service/internal/core/ports"
	"github.com/lendingledger/ledger-service/internal/pkg/metrics"
)

// dateLayouts are tried in order when parsing issue and due dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// LoanService is the loan ledger.
type LoanService struct {
	loans     ports.LoanRepository
	customers ports.CustomerRepository
	log       zerolog.Logger
	now       func() time.Time
}

func NewLoanService(loans ports.LoanRepository, customers ports.CustomerRepository, log zerolog.Logger) *LoanService {
	return &LoanService{loans: loans, customers: customers, log: log, now: time.Now}
}

// Create records a loan against a customer owned by in.OwnerID.
func (s *LoanService) Create(ctx context.Context, in ports.CreateLoanInput) (string, error) {
	if !domain.IsValidID(in.CustomerID) {
		return "", domain.ErrInvalidCustomerID
	}

	customer, err := s.customers.FindByID(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return "", domain.ErrUnknownCustomer
		}
		return "", err
	}
	if customer.CreatedBy != in.OwnerID {
		metrics.AuthFailuresTotal.WithLabelValues("not_owner").Inc()
		return "", domain.ErrForbidden
	}

	if strings.TrimSpace(in.ItemDescription) == "" || in.LoanAmount == nil || in.LoanAmount.IsZero() ||
		in.IssueDate == "" || in.DueDate == "" || in.Frequency == "" {
		return "", domain.ErrMissingLoanFields
	}
	if in.LoanAmount.IsNegative() {
		return "", domain.Invalid("loanAmount", "must not be negative")
	}
	if !domain.IsStorableAmount(*in.LoanAmount) {
		return "", domain.Invalid("loanAmount", "is out of range")
	}
	if in.InterestPercent != nil && !domain.IsStorableAmount(*in.InterestPercent) {
		return "", domain.Invalid("interestPercent", "is out of range")
	}

	issueDate, err := parseDate(in.IssueDate)
	if err != nil {
		return "", domain.Invalid("issueDate", "must be a valid date")
	}
	dueDate, err := parseDate(in.DueDate)
	if err != nil {
		return "", domain.Invalid("dueDate", "must be a valid date")
	}

	interest := decimal.Zero
	if in.InterestPercent != nil {
		interest = *in.InterestPercent
	}
	graceDays := 0
	if in.GraceDays != nil {
		graceDays = *in.GraceDays
	}

	now := s.now().UTC()
	loan := &domain.Loan{
		CustomerID:      in.CustomerID,
		ItemDescription: in.ItemDescription,
		LoanAmount:      *in.LoanAmount,
		IssueDate:       issueDate,
		DueDate:         dueDate,
		Frequency:       in.Frequency,
		InterestPercent: interest,
		GraceDays:       graceDays,
		Status:          domain.LoanPending,
		CreatedBy:       in.OwnerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := s.loans.Create(ctx, loan)
	if err != nil {
		return "", err
	}

	metrics.LoansCreatedTotal.Inc()
	s.log.Info().
		Str("loan_id", id).
		Str("customer_id", in.CustomerID).
		Str("owner_id", in.OwnerID).
		Msg("loan created")
	return id, nil
}

// UpdateStatus sets a loan to pending or completed. The write only matches a
// loan with this id that ownerID created; a miss does not reveal which part
// failed.
func (s *LoanService) UpdateStatus(ctx context.Context, loanID, status, ownerID string) error {
	if !domain.IsValidID(loanID) {
		return domain.ErrInvalidLoanID
	}
	target, err := domain.ParseLoanStatus(status)
	if err != nil || !target.ManuallySettable() {
		return domain.ErrInvalidStatus
	}

	matched, err := s.loans.UpdateStatus(ctx, loanID, ownerID, target, s.now().UTC())
	if err != nil {
		return err
	}
	if matched == 0 {
		metrics.LoanStatusUpdatesTotal.WithLabelValues(string(target), "rejected").Inc()
		return domain.ErrLoanUpdateRejected
	}

	metrics.LoanStatusUpdatesTotal.WithLabelValues(string(target), "ok").Inc()
	s.log.Info().Str("loan_id", loanID).Str("status", string(target)).Msg("loan status updated")
	return nil
}

// List returns ownerID's loans for filter, which is a loan status or "all".
func (s *LoanService) List(ctx context.Context, ownerID, filter string) ([]*domain.Loan, error) {
	var status *domain.LoanStatus
	if filter != domain.StatusAll {
		st, err := domain.ParseLoanStatus(filter)
		if err != nil {
			return nil, domain.ErrInvalidFilter
		}
		status = &st
	}

	loans, err := s.loans.ListByOwner(ctx, ownerID, status)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, domain.ErrNoLoansFound
	}
	return loans, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
