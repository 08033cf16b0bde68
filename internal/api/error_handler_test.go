package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrInvalidCustomerID, http.StatusBadRequest, "invalid customer id format"},
		{domain.Invalid("phone", "must be exactly 10 digits"), http.StatusBadRequest, "phone must be exactly 10 digits"},
		{domain.ErrForbidden, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("%w: expired", domain.ErrInvalidToken), http.StatusUnauthorized, "invalid jwt token"},
		{domain.ErrCustomerNotFound, http.StatusNotFound, "customer not found"},
		{domain.ErrNoLoansFound, http.StatusNotFound, "resource not found"},
		{domain.ErrPhoneTaken, http.StatusUnauthorized, "customer with this phone number already exists"},
		{domain.ErrUserExists, http.StatusUnauthorized, "user with this email id already exists"},
		{echo.NewHTTPError(http.StatusUnauthorized, "invalid jwt token"), http.StatusUnauthorized, "invalid jwt token"},
		{echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{errors.New("connection reset by peer"), http.StatusInternalServerError, "internal server error"},
	}

	e := echo.New()
	handle := NewHTTPErrorHandler(zerolog.Nop())

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

		handle(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body.Error != tc.msg {
			t.Fatalf("%v: expected message %q, got %q", tc.err, tc.msg, body.Error)
		}
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was modified")
	}
}
