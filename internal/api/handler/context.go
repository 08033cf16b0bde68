package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lendingledger/ledger-service/internal/api/middleware"
	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// subjectID returns the user id the Auth middleware verified. Its absence
// means the route was mounted without Auth, which is treated as an invalid
// token rather than a server fault.
func subjectID(c echo.Context) (string, error) {
	subject, ok := middleware.Subject(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid jwt token")
	}
	return subject, nil
}

// bindFields decodes a free-form JSON object from the request body only.
// c.Bind would also copy path parameters into the map.
func bindFields(c echo.Context) (map[string]any, error) {
	fields := map[string]any{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &fields); err != nil {
		return nil, errInvalidPayload
	}
	return fields, nil
}

// bindError maps a body decoding failure to a client error. A domain
// validation error raised by a field's decoder is returned as is.
func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && errors.Is(he.Internal, domain.ErrBadRequest) {
		return he.Internal
	}
	return errInvalidPayload
}

var errInvalidPayload = invalidInput("invalid payload")
