package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lendingledger/ledger-service/docs"
	"github.com/lendingledger/ledger-service/internal/api/handler"
	"github.com/lendingledger/ledger-service/internal/api/middleware"
	"github.com/lendingledger/ledger-service/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth      ports.AuthService
	Tokens    ports.TokenVerifier
	Customers ports.CustomerService
	// CustomerFinder backs the ownership guard on customer routes.
	CustomerFinder middleware.CustomerFinder
	Loans          ports.LoanService
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger

	// Registerer and Gatherer enable HTTP metrics and /metrics. Leave both nil
	// to run without them.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "ledger_http",
			Registerer: d.Registerer,
		}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	customerHandler := handler.NewCustomerHandler(d.Customers)
	loanHandler := handler.NewLoanHandler(d.Loans)
	authMiddleware := middleware.Auth(d.Tokens)
	ownsCustomer := middleware.CustomerOwnership(d.CustomerFinder, "id")

	// --- Identity ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/getUserData/:userId", authHandler.UserData, authMiddleware)

	// --- Customers ---
	e.POST("/add-customer", customerHandler.Create, authMiddleware)
	e.PUT("/update-customer/:id", customerHandler.Update, authMiddleware, ownsCustomer)
	e.POST("/getCustomerData/:id", customerHandler.Get, authMiddleware, ownsCustomer)
	e.DELETE("/delete-customer/:id", customerHandler.Delete, authMiddleware, ownsCustomer)

	// --- Loans ---
	e.POST("/create-loan", loanHandler.Create, authMiddleware)
	e.PUT("/update-loan/:id", loanHandler.UpdateStatus, authMiddleware)
	e.POST("/loans", loanHandler.List, authMiddleware)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)

	// --- Ops ---
	if d.Gatherer != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			if subject, ok := middleware.SubjectFromContext(c.Request().Context()); ok {
				ev = ev.Str("user_id", subject)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
