package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lendingledger/ledger-service/internal/core/ports"
	"github.com/lendingledger/ledger-service/internal/pkg/metrics"
)

// SubjectKey is the echo.Context key holding the verified user id.
const SubjectKey = "subject"

type subjectCtxKey struct{}

// Auth validates the bearer token and exposes its subject to the rest of the
// request. The subject is stored on the per-request echo.Context and request
// context only; nothing is shared between requests.
func Auth(tokens ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return reject("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return reject("invalid authorization header")
			}

			subject, err := tokens.Verify(parts[1])
			if err != nil {
				return reject(err.Error())
			}

			c.Set(SubjectKey, subject)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), subjectCtxKey{}, subject)))

			return next(c)
		}
	}
}

func reject(reason string) error {
	metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, "invalid jwt token").
		SetInternal(echo.NewHTTPError(http.StatusUnauthorized, reason))
}

// Subject returns the verified user id for this request.
func Subject(c echo.Context) (string, bool) {
	s, ok := c.Get(SubjectKey).(string)
	return s, ok && s != ""
}

// SubjectFromContext returns the verified user id carried by ctx.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectCtxKey{}).(string)
	return s, ok && s != ""
}
