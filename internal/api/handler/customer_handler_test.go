package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lendingledger/ledger-service/internal/api/middleware"
	"github.com/lendingledger/ledger-service/internal/core/domain"
)

type stubCustomerService struct {
	createFn func(ctx context.Context, ownerID string, fields map[string]any) (string, error)
	updateFn func(ctx context.Context, id, ownerID string, fields map[string]any) error
	deleteFn func(ctx context.Context, id, ownerID string) error
	getFn    func(ctx context.Context, id, ownerID string) (*domain.Customer, error)
}

func (s *stubCustomerService) Create(ctx context.Context, ownerID string, fields map[string]any) (string, error) {
	return s.createFn(ctx, ownerID, fields)
}

func (s *stubCustomerService) Update(ctx context.Context, id, ownerID string, fields map[string]any) error {
	return s.updateFn(ctx, id, ownerID, fields)
}

func (s *stubCustomerService) Delete(ctx context.Context, id, ownerID string) error {
	return s.deleteFn(ctx, id, ownerID)
}

func (s *stubCustomerService) Get(ctx context.Context, id, ownerID string) (*domain.Customer, error) {
	return s.getFn(ctx, id, ownerID)
}

const (
	subjectA   = "65f0c0ffee0000000000aaaa"
	customerID = "65f0c0ffee0000000000c001"
)

func TestCustomerHandler_Create(t *testing.T) {
	e := newTestEcho()
	h := NewCustomerHandler(&stubCustomerService{
		createFn: func(_ context.Context, ownerID string, fields map[string]any) (string, error) {
			if ownerID != subjectA {
				t.Fatalf("owner must be the token subject, got %s", ownerID)
			}
			if fields["phone"] != "1234567890" || fields["trustScore"] != float64(5) || fields["name"] != "Ravi" {
				t.Fatalf("unexpected fields: %+v", fields)
			}
			return customerID, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/add-customer", `{"phone":"1234567890","trustScore":5,"name":"Ravi"}`), rec)
	c.Set(middleware.SubjectKey, subjectA)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["yourId"] != customerID {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestCustomerHandler_Create_RequiresSubject(t *testing.T) {
	e := newTestEcho()
	h := NewCustomerHandler(&stubCustomerService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/add-customer", `{}`), httptest.NewRecorder())
	if err := h.Create(c); err == nil {
		t.Fatalf("expected error without subject")
	}
}

func TestCustomerHandler_Update_IgnoresPathParamsInBody(t *testing.T) {
	e := newTestEcho()
	h := NewCustomerHandler(&stubCustomerService{
		updateFn: func(_ context.Context, id, ownerID string, fields map[string]any) error {
			if id != customerID || ownerID != subjectA {
				t.Fatalf("unexpected id/owner: %s %s", id, ownerID)
			}
			if _, ok := fields["id"]; ok {
				t.Fatalf("path parameter leaked into the patch: %+v", fields)
			}
			return nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/update-customer/"+customerID, `{"trustScore":7}`), rec)
	c.SetParamNames("id")
	c.SetParamValues(customerID)
	c.Set(middleware.SubjectKey, subjectA)

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeBody(t, rec); resp["message"] != "Customer updated successfully" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestCustomerHandler_Get_UsesOwnedCustomer(t *testing.T) {
	e := newTestEcho()
	h := NewCustomerHandler(&stubCustomerService{
		getFn: func(context.Context, string, string) (*domain.Customer, error) {
			t.Fatalf("service must not be called when the guard loaded the customer")
			return nil, nil
		},
	})

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	c.Set(middleware.SubjectKey, subjectA)
	c.Set(middleware.CustomerKey, &domain.Customer{
		ID:         customerID,
		Phone:      "1234567890",
		TrustScore: 5,
		CreatedBy:  subjectA,
		Profile:    map[string]any{"name": "Ravi"},
		CreatedAt:  created,
		UpdatedAt:  created,
	})

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	result, ok := decodeBody(t, rec)["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result object")
	}
	if result["_id"] != customerID || result["phone"] != "1234567890" || result["name"] != "Ravi" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result["trustScore"] != float64(5) || result["createdBy"] != subjectA {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result["createdAt"] != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected createdAt: %v", result["createdAt"])
	}
}

func TestCustomerHandler_Delete_PassesErrors(t *testing.T) {
	e := newTestEcho()
	h := NewCustomerHandler(&stubCustomerService{
		deleteFn: func(context.Context, string, string) error {
			return domain.ErrCustomerNotFound
		},
	})

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(customerID)
	c.Set(middleware.SubjectKey, subjectA)

	if err := h.Delete(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
