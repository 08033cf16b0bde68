package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every sentinel below wraps exactly one of these so the
// transport layer can map a failure to a status code with errors.Is.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// kindError ties a client-facing message to an error kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrInvalidUserID     = newKindError(ErrBadRequest, "invalid user id format")
	ErrInvalidCustomerID = newKindError(ErrBadRequest, "invalid customer id format")
	ErrInvalidLoanID     = newKindError(ErrBadRequest, "invalid loan id format")
	ErrUnknownCustomer   = newKindError(ErrBadRequest, "customer id invalid")
	ErrMissingLoanFields = newKindError(ErrBadRequest, "required fields missing")
	ErrInvalidStatus     = newKindError(ErrBadRequest, "enter valid inputs pending/completed")
	ErrInvalidFilter     = newKindError(ErrBadRequest, "invalid input, enter only pending/completed/overDue/all")
	// ErrLoanUpdateRejected deliberately does not say whether the loan is
	// missing or owned by someone else.
	ErrLoanUpdateRejected = newKindError(ErrBadRequest, "invalid loan id / unauthorized")

	ErrInvalidCredentials = newKindError(ErrUnauthorized, "incorrect password")
	ErrForbidden          = newKindError(ErrUnauthorized, "unauthorized")

	ErrUserNotFound     = newKindError(ErrNotFound, "user with this email id doesn't exist")
	ErrCustomerNotFound = newKindError(ErrNotFound, "customer not found")
	ErrNoLoansFound     = newKindError(ErrNotFound, "resource not found")

	ErrUserExists = newKindError(ErrConflict, "user with this email id already exists")
	ErrPhoneTaken = newKindError(ErrConflict, "customer with this phone number already exists")
)

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrBadRequest }

// Invalid builds a ValidationError for field.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
