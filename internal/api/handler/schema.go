package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

// registerRequest holds the fields of a registration payload that are
// validated. Any other keys are kept as profile data.
type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	YourID  string `json:"yourId"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	JWTToken string `json:"jwtToken"`
	UserID   string `json:"userId"`
}

type userDataResponse struct {
	Username string `json:"username"`
	ID       string `json:"_id"`
}

// --- Customers ---

type customerCreatedResponse struct {
	YourID  string `json:"yourId"`
	Message string `json:"message"`
}

type customerDataResponse struct {
	Result map[string]any `json:"result" swaggertype:"object"`
}

func customerDocument(c *domain.Customer) map[string]any {
	out := make(map[string]any, len(c.Profile)+6)
	for k, v := range c.Profile {
		out[k] = v
	}
	out["_id"] = c.ID
	out["phone"] = c.Phone
	out["trustScore"] = c.TrustScore
	out["createdBy"] = c.CreatedBy
	out["createdAt"] = c.CreatedAt.UTC().Format(time.RFC3339Nano)
	out["updatedAt"] = c.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return out
}

// --- Loans ---

type createLoanRequest struct {
	CustomerID      string           `json:"customerId"`
	ItemDescription string           `json:"itemDescription"`
	LoanAmount      *decimal.Decimal `json:"loanAmount"      swaggertype:"number"`
	IssueDate       string           `json:"issueDate"`
	DueDate         string           `json:"dueDate"`
	Frequency       string           `json:"frequency"`
	InterestPercent *decimal.Decimal `json:"interestPercent" swaggertype:"number"`
	GraceDays       *int             `json:"graceDays"       validate:"omitempty,gte=0"`
}

type createLoanResponse struct {
	Message string `json:"message"`
	LoanID  string `json:"loanId"`
}

type updateLoanRequest struct {
	Status domain.LoanStatus `json:"status"`
}

// listLoansRequest.Status is nil when the field is omitted, which lists
// every loan. An explicit value, empty included, must be a valid filter.
type listLoansRequest struct {
	Status *string `json:"status"`
}

type loanResponse struct {
	ID              string      `json:"_id"`
	CustomerID      string      `json:"customerId"`
	ItemDescription string      `json:"itemDescription"`
	LoanAmount      json.Number `json:"loanAmount"      swaggertype:"number"`
	IssueDate       string      `json:"issueDate"`
	DueDate         string      `json:"dueDate"`
	Frequency       string      `json:"frequency"`
	InterestPercent json.Number `json:"interestPercent" swaggertype:"number"`
	GraceDays       int         `json:"graceDays"`
	Status          string      `json:"status"`
	CreatedBy       string      `json:"createdBy"`
	CreatedAt       string      `json:"createdAt"`
	UpdatedAt       string      `json:"updatedAt"`
}

func toLoanResponse(l *domain.Loan) loanResponse {
	return loanResponse{
		ID:              l.ID,
		CustomerID:      l.CustomerID,
		ItemDescription: l.ItemDescription,
		LoanAmount:      json.Number(l.LoanAmount.String()),
		IssueDate:       l.IssueDate.UTC().Format(time.RFC3339Nano),
		DueDate:         l.DueDate.UTC().Format(time.RFC3339Nano),
		Frequency:       l.Frequency,
		InterestPercent: json.Number(l.InterestPercent.String()),
		GraceDays:       l.GraceDays,
		Status:          string(l.Status),
		CreatedBy:       l.CreatedBy,
		CreatedAt:       l.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       l.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
