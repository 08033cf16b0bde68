package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lendingledger/ledger-service/internal/api/middleware"
	"github.com/lendingledger/ledger-service/internal/core/ports"
)

// CustomerHandler serves the customer registry. Id-scoped routes are mounted
// behind middleware.CustomerOwnership.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Create registers a customer owned by the caller.
//
// @Summary      Add a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      object  true  "phone (10 digits), trustScore (1-10) and any profile fields"
// @Success      200   {object}  customerCreatedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse  "invalid token or phone already registered"
// @Failure      500   {object}  errorResponse
// @Router       /add-customer [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}
	fields, err := bindFields(c)
	if err != nil {
		return err
	}

	id, err := h.service.Create(c.Request().Context(), subject, fields)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, customerCreatedResponse{YourID: id, Message: "Customer Added successfully"})
}

// Update merges the payload into the customer. phone is ignored.
//
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Customer id"
// @Param        body  body      object  true  "Fields to merge"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /update-customer/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}
	fields, err := bindFields(c)
	if err != nil {
		return err
	}

	if err := h.service.Update(c.Request().Context(), c.Param("id"), subject, fields); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Customer updated successfully"})
}

// Get returns the full customer document.
//
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  customerDataResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /getCustomerData/{id} [post]
func (h *CustomerHandler) Get(c echo.Context) error {
	customer, ok := middleware.OwnedCustomer(c)
	if !ok {
		subject, err := subjectID(c)
		if err != nil {
			return err
		}
		customer, err = h.service.Get(c.Request().Context(), c.Param("id"), subject)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, customerDataResponse{Result: customerDocument(customer)})
}

// Delete removes the customer. Its loans are left in place.
//
// @Summary      Delete a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /delete-customer/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), subject); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Customer deleted successfully"})
}
