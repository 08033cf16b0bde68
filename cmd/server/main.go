// Command server runs the lending ledger HTTP API and the overdue sweep
// scheduler in one process.
//
// @title                       Lending Ledger API
// @version                     1.0
// @description                 Multi-tenant customer and loan ledger with scheduled overdue detection.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/lendingledger/ledger-service/internal/api"
	"github.com/lendingledger/ledger-service/internal/api/handler"
	"github.com/lendingledger/ledger-service/internal/core/ports"
	"github.com/lendingledger/ledger-service/internal/core/service"
	"github.com/lendingledger/ledger-service/internal/infrastructure/db/memory"
	mongostore "github.com/lendingledger/ledger-service/internal/infrastructure/db/mongo"
	redisstore "github.com/lendingledger/ledger-service/internal/infrastructure/db/redis"
	"github.com/lendingledger/ledger-service/internal/infrastructure/scheduler"
	"github.com/lendingledger/ledger-service/internal/pkg/config"
	"github.com/lendingledger/ledger-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ledger-service: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the repositories the services are built from.
type stores struct {
	users     ports.UserRepository
	customers ports.CustomerRepository
	loans     ports.LoanRepository
	checks    map[string]handler.Check
	close     func(context.Context) error
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "ledger-service",
	})

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing stores")
		}
	}()

	lock, closeLock := openSweepLock(ctx, cfg, st.checks)
	defer func() {
		if err := closeLock(); err != nil {
			log.Warn().Err(err).Msg("closing redis")
		}
	}()

	tokens := service.NewTokenManager(cfg.JWTSecret, service.TokenTTL)
	authSvc := service.NewAuthService(st.users, tokens, logger.Component(log, "auth"))
	customerSvc := service.NewCustomerService(st.customers, logger.Component(log, "customers"))
	loanSvc := service.NewLoanService(st.loans, st.customers, logger.Component(log, "loans"))
	sweeper := service.NewOverdueSweeper(st.loans, lock, logger.Component(log, "sweeper"))

	loc, err := cfg.Sweep.Location()
	if err != nil {
		return fmt.Errorf("sweep timezone: %w", err)
	}
	sched, err := scheduler.New(scheduler.Config{
		Spec:       cfg.Sweep.Schedule,
		Location:   loc,
		RunOnStart: cfg.Sweep.RunOnStart,
		Timeout:    cfg.Sweep.Timeout,
	}, sweeper, logger.Component(log, "scheduler"))
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Auth:           authSvc,
		Tokens:         tokens,
		Customers:      customerSvc,
		CustomerFinder: st.customers,
		Loans:          loanSvc,
		Checks:         st.checks,
		Log:            logger.Component(log, "http"),
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sched.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	log := logger.Get()
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		mem := memory.NewStore()
		return &stores{
			users:     mem.Users(),
			customers: mem.Customers(),
			loans:     mem.Loans(),
			checks:    map[string]handler.Check{},
			close:     func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}

	users := mongostore.NewUserRepository(db, cfg.Mongo.UsersCollection)
	customers := mongostore.NewCustomerRepository(db, cfg.Mongo.CustomersCollection)
	loans := mongostore.NewLoanRepository(db, cfg.Mongo.LoansCollection)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := mongostore.EnsureIndexes(indexCtx, users, customers, loans); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	return &stores{
		users:     users,
		customers: customers,
		loans:     loans,
		checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
		},
		close: client.Disconnect,
	}, nil
}

// openSweepLock connects to Redis when configured. An unreachable Redis only
// disables the lock; the sweep itself is idempotent. The returned func closes
// the client.
func openSweepLock(ctx context.Context, cfg *config.Config, checks map[string]handler.Check) (ports.SweepLock, func() error) {
	log := logger.Get()
	noop := func() error { return nil }

	if cfg.Redis.Addr == "" {
		log.Info().Msg("REDIS_ADDR not set, sweeping without a lock")
		return nil, noop
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, sweeping without a lock")
		return nil, noop
	}

	checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	return redisstore.NewSweepLock(rdb), rdb.Close
}
