package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lendingledger/ledger-service/internal/core/domain"
	"github.com/lendingledger/ledger-service/internal/pkg/metrics"
)

// CustomerKey is the echo.Context key holding the customer loaded by
// CustomerOwnership.
const CustomerKey = "customer"

// CustomerFinder loads a customer by id.
type CustomerFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
}

// CustomerOwnership admits the request only when the customer named by the
// path parameter exists and was created by the authenticated subject. The
// existence check always runs before the ownership check. Must be mounted
// after Auth.
func CustomerOwnership(customers CustomerFinder, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, ok := Subject(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid jwt token")
			}

			id := c.Param(param)
			if !domain.IsValidID(id) {
				return domain.ErrInvalidCustomerID
			}

			customer, err := customers.FindByID(c.Request().Context(), id)
			if err != nil {
				return err
			}

			if customer.CreatedBy != subject {
				metrics.AuthFailuresTotal.WithLabelValues("not_owner").Inc()
				return domain.ErrForbidden
			}

			c.Set(CustomerKey, customer)
			return next(c)
		}
	}
}

// OwnedCustomer returns the customer loaded by CustomerOwnership, if any.
func OwnedCustomer(c echo.Context) (*domain.Customer, bool) {
	customer, ok := c.Get(CustomerKey).(*domain.Customer)
	return customer, ok && customer != nil
}
