package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lendingledger/ledger-service/internal/api/handler"
	"github.com/lendingledger/ledger-service/internal/api/middleware"
	"github.com/lendingledger/ledger-service/internal/core/service"
	"github.com/lendingledger/ledger-service/internal/infrastructure/db/memory"
)

type testServer struct {
	t       *testing.T
	e       *echo.Echo
	sweeper *service.OverdueSweeper
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()
	tokens := service.NewTokenManager("test-secret", service.TokenTTL)

	e := NewRouter(Deps{
		Auth:           service.NewAuthService(store.Users(), tokens, log),
		Tokens:         tokens,
		Customers:      service.NewCustomerService(store.Customers(), log),
		CustomerFinder: store.Customers(),
		Loans:          service.NewLoanService(store.Loans(), store.Customers(), log),
		Checks:         map[string]handler.Check{},
		Log:            log,
	})

	return &testServer{t: t, e: e, sweeper: service.NewOverdueSweeper(store.Loans(), nil, log)}
}

func (s *testServer) do(method, path, token string, body any) (int, []byte) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func (s *testServer) object(method, path, token string, body any, wantCode int) map[string]any {
	s.t.Helper()
	code, raw := s.do(method, path, token, body)
	require.Equal(s.t, wantCode, code, string(raw))
	var out map[string]any
	require.NoError(s.t, json.Unmarshal(raw, &out))
	return out
}

// login registers email and returns its user id and token.
func (s *testServer) login(email, password string) (string, string) {
	s.t.Helper()
	s.object(http.MethodPost, "/register", "", map[string]any{"email": email, "password": password}, http.StatusOK)
	res := s.object(http.MethodPost, "/login", "", map[string]any{"email": email, "password": password}, http.StatusOK)
	return res["userId"].(string), res["jwtToken"].(string)
}

func TestLedgerScenario(t *testing.T) {
	s := newTestServer(t)

	userA, tokenA := s.login("a@x.com", "pw1")

	profile := s.object(http.MethodPost, "/getUserData/"+userA, tokenA, nil, http.StatusOK)
	require.Equal(t, "a@x.com", profile["username"])
	require.Equal(t, userA, profile["_id"])

	created := s.object(http.MethodPost, "/add-customer", tokenA, map[string]any{
		"phone": "1234567890", "trustScore": 5, "name": "Ravi",
	}, http.StatusOK)
	customerID := created["yourId"].(string)

	past := time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339)
	loan := s.object(http.MethodPost, "/create-loan", tokenA, map[string]any{
		"customerId":      customerID,
		"itemDescription": "rice",
		"loanAmount":      1200,
		"issueDate":       time.Now().AddDate(0, -1, 0).UTC().Format(time.RFC3339),
		"dueDate":         past,
		"frequency":       "monthly",
	}, http.StatusCreated)
	loanID := loan["loanId"].(string)

	// Pending before the sweep.
	code, raw := s.do(http.MethodPost, "/loans", tokenA, map[string]any{"status": "overDue"})
	require.Equal(t, http.StatusNotFound, code, string(raw))

	res, err := s.sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Marked)

	code, raw = s.do(http.MethodPost, "/loans", tokenA, map[string]any{"status": "overDue"})
	require.Equal(t, http.StatusOK, code, string(raw))
	var overdue []map[string]any
	require.NoError(t, json.Unmarshal(raw, &overdue))
	require.Len(t, overdue, 1)
	require.Equal(t, loanID, overdue[0]["_id"])
	require.Equal(t, "overDue", overdue[0]["status"])

	s.object(http.MethodPut, "/update-loan/"+loanID, tokenA, map[string]any{"status": "completed"}, http.StatusOK)

	res, err = s.sweeper.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, res.Marked)

	code, raw = s.do(http.MethodPost, "/loans", tokenA, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, code, string(raw))
	var completed []map[string]any
	require.NoError(t, json.Unmarshal(raw, &completed))
	require.Len(t, completed, 1)
	require.Equal(t, loanID, completed[0]["_id"])
}

func TestCrossTenantAccess(t *testing.T) {
	s := newTestServer(t)

	_, tokenA := s.login("a@x.com", "pw1")
	userB, tokenB := s.login("b@x.com", "pw2")

	created := s.object(http.MethodPost, "/add-customer", tokenA, map[string]any{
		"phone": "1234567890", "trustScore": 5,
	}, http.StatusOK)
	customerID := created["yourId"].(string)

	// B cannot read, change, or delete A's customer.
	s.object(http.MethodPost, "/getCustomerData/"+customerID, tokenB, nil, http.StatusUnauthorized)
	s.object(http.MethodPut, "/update-customer/"+customerID, tokenB, map[string]any{"trustScore": 1}, http.StatusUnauthorized)
	s.object(http.MethodDelete, "/delete-customer/"+customerID, tokenB, nil, http.StatusUnauthorized)

	// Nor record loans against it.
	s.object(http.MethodPost, "/create-loan", tokenB, map[string]any{
		"customerId": customerID, "itemDescription": "x", "loanAmount": 1,
		"issueDate": "2024-01-01", "dueDate": "2024-02-01", "frequency": "weekly",
	}, http.StatusUnauthorized)

	// Profiles are private too.
	s.object(http.MethodPost, "/getUserData/"+userB, tokenA, nil, http.StatusUnauthorized)

	// A still sees the untouched customer.
	got := s.object(http.MethodPost, "/getCustomerData/"+customerID, tokenA, nil, http.StatusOK)
	result := got["result"].(map[string]any)
	require.EqualValues(t, 5, result["trustScore"])
}

func TestCustomerRoutes(t *testing.T) {
	s := newTestServer(t)
	_, tokenA := s.login("a@x.com", "pw1")
	_, tokenB := s.login("b@x.com", "pw2")

	created := s.object(http.MethodPost, "/add-customer", tokenA, map[string]any{
		"phone": "1234567890", "trustScore": 5,
	}, http.StatusOK)
	customerID := created["yourId"].(string)

	// Duplicate phone across tenants keeps the 401 convention.
	dup := s.object(http.MethodPost, "/add-customer", tokenB, map[string]any{
		"phone": "1234567890", "trustScore": 3,
	}, http.StatusUnauthorized)
	require.Contains(t, dup["error"], "phone")

	s.object(http.MethodPost, "/add-customer", tokenA, map[string]any{"phone": "12345", "trustScore": 3}, http.StatusBadRequest)
	s.object(http.MethodPost, "/add-customer", tokenA, map[string]any{"phone": "5555555555", "trustScore": 11}, http.StatusBadRequest)

	s.object(http.MethodPut, "/update-customer/"+customerID, tokenA, map[string]any{"phone": "9999999999", "trustScore": 9}, http.StatusOK)
	got := s.object(http.MethodPost, "/getCustomerData/"+customerID, tokenA, nil, http.StatusOK)["result"].(map[string]any)
	require.Equal(t, "1234567890", got["phone"])
	require.EqualValues(t, 9, got["trustScore"])

	s.object(http.MethodPost, "/getCustomerData/not-an-id", tokenA, nil, http.StatusBadRequest)
	s.object(http.MethodPost, "/getCustomerData/65f0c0ffee0000000000ffff", tokenA, nil, http.StatusNotFound)

	s.object(http.MethodDelete, "/delete-customer/"+customerID, tokenA, nil, http.StatusOK)
	s.object(http.MethodPost, "/getCustomerData/"+customerID, tokenA, nil, http.StatusNotFound)
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	s.login("a@x.com", "pw1")

	s.object(http.MethodPost, "/register", "", map[string]any{"email": "a@x.com", "password": "again"}, http.StatusUnauthorized)
	s.object(http.MethodPost, "/login", "", map[string]any{"email": "a@x.com", "password": "wrong"}, http.StatusUnauthorized)
	s.object(http.MethodPost, "/login", "", map[string]any{"email": "ghost@x.com", "password": "pw"}, http.StatusNotFound)

	s.object(http.MethodPost, "/loans", "", nil, http.StatusUnauthorized)
	s.object(http.MethodPost, "/loans", "garbage", nil, http.StatusUnauthorized)
}

func TestLoanRoutes_Validation(t *testing.T) {
	s := newTestServer(t)
	_, tokenA := s.login("a@x.com", "pw1")
	_, tokenB := s.login("b@x.com", "pw2")

	customerID := s.object(http.MethodPost, "/add-customer", tokenA, map[string]any{
		"phone": "1234567890", "trustScore": 5,
	}, http.StatusOK)["yourId"].(string)

	// Missing fields.
	s.object(http.MethodPost, "/create-loan", tokenA, map[string]any{"customerId": customerID}, http.StatusBadRequest)
	// Unknown but well-formed customer.
	s.object(http.MethodPost, "/create-loan", tokenA, map[string]any{
		"customerId": "65f0c0ffee0000000000ffff", "itemDescription": "x", "loanAmount": 1,
		"issueDate": "2024-01-01", "dueDate": "2024-02-01", "frequency": "weekly",
	}, http.StatusBadRequest)

	// Amounts that cannot be persisted are rejected before any write.
	res := s.object(http.MethodPost, "/create-loan", tokenA, map[string]any{
		"customerId": customerID, "itemDescription": "x", "loanAmount": "1e7000",
		"issueDate": "2024-01-01", "dueDate": "2099-02-01", "frequency": "weekly",
	}, http.StatusBadRequest)
	require.Equal(t, "loanAmount is out of range", res["error"])

	loanID := s.object(http.MethodPost, "/create-loan", tokenA, map[string]any{
		"customerId": customerID, "itemDescription": "x", "loanAmount": "250.50",
		"issueDate": "2024-01-01", "dueDate": "2099-02-01", "frequency": "weekly",
	}, http.StatusCreated)["loanId"].(string)

	s.object(http.MethodPut, "/update-loan/"+loanID, tokenA, map[string]any{"status": "overDue"}, http.StatusBadRequest)
	res = s.object(http.MethodPut, "/update-loan/"+loanID, tokenA, map[string]any{"status": "done"}, http.StatusBadRequest)
	require.Equal(t, "enter valid inputs pending/completed", res["error"])
	s.object(http.MethodPut, "/update-loan/bad-id", tokenA, map[string]any{"status": "completed"}, http.StatusBadRequest)

	other := s.object(http.MethodPut, "/update-loan/"+loanID, tokenB, map[string]any{"status": "completed"}, http.StatusBadRequest)
	missing := s.object(http.MethodPut, "/update-loan/65f0c0ffee0000000000ffff", tokenA, map[string]any{"status": "completed"}, http.StatusBadRequest)
	require.Equal(t, other, missing)

	s.object(http.MethodPost, "/loans", tokenA, map[string]any{"status": "late"}, http.StatusBadRequest)
	s.object(http.MethodPost, "/loans", tokenA, map[string]any{"status": ""}, http.StatusBadRequest)
	s.object(http.MethodPost, "/loans", tokenB, map[string]any{"status": "all"}, http.StatusNotFound)

	code, raw := s.do(http.MethodPost, "/loans", tokenA, nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	var loans []map[string]any
	require.NoError(t, json.Unmarshal(raw, &loans))
	require.Len(t, loans, 1)
	require.EqualValues(t, 250.5, loans[0]["loanAmount"])
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	s.object(http.MethodGet, "/health", "", nil, http.StatusOK)
	ready := s.object(http.MethodGet, "/health/ready", "", nil, http.StatusOK)
	require.Equal(t, "ok", ready["status"])
}

func TestRequestLogger_RecordsSubject(t *testing.T) {
	var buf bytes.Buffer
	tokens := service.NewTokenManager("test-secret", service.TokenTTL)
	token, err := tokens.Issue("65f0c0ffee0000000000abcd")
	require.NoError(t, err)

	e := echo.New()
	e.Use(requestLogger(zerolog.New(&buf)))
	e.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, middleware.Auth(tokens))
	e.GET("/open", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	e.ServeHTTP(httptest.NewRecorder(), req)
	require.Contains(t, buf.String(), `"user_id":"65f0c0ffee0000000000abcd"`)

	buf.Reset()
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/open", nil))
	require.True(t, strings.Contains(buf.String(), `"uri":"/open"`), buf.String())
	require.NotContains(t, buf.String(), "user_id")
}
