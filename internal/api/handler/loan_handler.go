package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lendingledger/ledger-service/internal/core/domain"
	"github.com/lendingledger/ledger-service/internal/core/ports"
)

// LoanHandler serves the loan ledger.
type LoanHandler struct {
	service ports.LoanService
}

func NewLoanHandler(service ports.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// Create records a loan against one of the caller's customers. New loans are
// always pending.
//
// @Summary      Create a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createLoanRequest  true  "Loan details"
// @Success      201   {object}  createLoanResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /create-loan [post]
func (h *LoanHandler) Create(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	var req createLoanRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return errInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id, err := h.service.Create(c.Request().Context(), ports.CreateLoanInput{
		OwnerID:         subject,
		CustomerID:      req.CustomerID,
		ItemDescription: req.ItemDescription,
		LoanAmount:      req.LoanAmount,
		IssueDate:       req.IssueDate,
		DueDate:         req.DueDate,
		Frequency:       req.Frequency,
		InterestPercent: req.InterestPercent,
		GraceDays:       req.GraceDays,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createLoanResponse{Message: "Loan created successfully", LoanID: id})
}

// UpdateStatus sets a loan to pending or completed.
//
// @Summary      Update loan status
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Loan id"
// @Param        body  body      updateLoanRequest  true  "pending or completed"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /update-loan/{id} [put]
func (h *LoanHandler) UpdateStatus(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	var req updateLoanRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return bindError(err)
	}

	if err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), string(req.Status), subject); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Loan updated successfully"})
}

// List returns the caller's loans with the requested status. An omitted
// status lists every loan.
//
// @Summary      List loans
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      listLoansRequest  false  "pending, completed, overDue or all"
// @Success      200   {array}   loanResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse  "no matching loans"
// @Router       /loans [post]
func (h *LoanHandler) List(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	var req listLoansRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return errInvalidPayload
	}
	filter := domain.StatusAll
	if req.Status != nil {
		filter = *req.Status
	}

	loans, err := h.service.List(c.Request().Context(), subject, filter)
	if err != nil {
		return err
	}

	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return c.JSON(http.StatusOK, out)
}
