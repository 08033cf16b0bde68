package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

const (
	ownerID    = "65f0c0ffee0000000000aaaa"
	intruderID = "65f0c0ffee0000000000bbbb"
	customerID = "65f0c0ffee0000000000c001"
)

type stubCustomerFinder struct {
	customers map[string]*domain.Customer
	err       error
	calls     int
}

func (f *stubCustomerFinder) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return c, nil
}

func newOwnershipContext(subject, id string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/getCustomerData/"+id, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(id)
	if subject != "" {
		c.Set(SubjectKey, subject)
	}
	return c
}

func finderWithCustomer() *stubCustomerFinder {
	return &stubCustomerFinder{customers: map[string]*domain.Customer{
		customerID: {ID: customerID, Phone: "1234567890", TrustScore: 5, CreatedBy: ownerID},
	}}
}

func TestCustomerOwnership_Allows(t *testing.T) {
	finder := finderWithCustomer()
	c := newOwnershipContext(ownerID, customerID)

	called := false
	err := CustomerOwnership(finder, "id")(func(c echo.Context) error {
		called = true
		customer, ok := OwnedCustomer(c)
		if !ok || customer.ID != customerID {
			t.Fatalf("expected loaded customer in context")
		}
		return nil
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestCustomerOwnership_OtherOwnerIsUnauthorized(t *testing.T) {
	c := newOwnershipContext(intruderID, customerID)

	err := CustomerOwnership(finderWithCustomer(), "id")(shouldNotRun(t))(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ownership failure must not look like not found")
	}
}

func TestCustomerOwnership_MissingIsNotFound(t *testing.T) {
	c := newOwnershipContext(intruderID, "65f0c0ffee0000000000ffff")

	err := CustomerOwnership(finderWithCustomer(), "id")(shouldNotRun(t))(c)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCustomerOwnership_MalformedIDIsBadRequest(t *testing.T) {
	finder := finderWithCustomer()
	c := newOwnershipContext(ownerID, "not-an-id")

	err := CustomerOwnership(finder, "id")(shouldNotRun(t))(c)
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if finder.calls != 0 {
		t.Fatalf("store must not be queried for malformed ids")
	}
}

func TestCustomerOwnership_RequiresSubject(t *testing.T) {
	c := newOwnershipContext("", customerID)

	err := CustomerOwnership(finderWithCustomer(), "id")(shouldNotRun(t))(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestCustomerOwnership_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("store down")
	c := newOwnershipContext(ownerID, customerID)

	err := CustomerOwnership(&stubCustomerFinder{err: boom}, "id")(shouldNotRun(t))(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
