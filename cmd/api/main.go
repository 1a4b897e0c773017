package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/cafeteria-ledger/api"
	"github.com/josh-kwaku/cafeteria-ledger/internal/audit"
	"github.com/josh-kwaku/cafeteria-ledger/internal/authz"
	"github.com/josh-kwaku/cafeteria-ledger/internal/commission"
	"github.com/josh-kwaku/cafeteria-ledger/internal/config"
	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
	"github.com/josh-kwaku/cafeteria-ledger/internal/handler"
	"github.com/josh-kwaku/cafeteria-ledger/internal/ledger"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
	"github.com/josh-kwaku/cafeteria-ledger/internal/middleware"
	"github.com/josh-kwaku/cafeteria-ledger/internal/notify"
	"github.com/josh-kwaku/cafeteria-ledger/internal/repository"
	"github.com/josh-kwaku/cafeteria-ledger/internal/sale"
)

const idempotencySweepInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("cafeteria-ledger", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		ApplicationName:  "cafeteria-ledger",
		IdleInTxTimeout:  cfg.DBIdleInTxTimeout,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"database": db.PingContext}
	tokens, closeTokens := tokenStore(ctx, cfg, checks)
	defer closeTokens()

	ledgerDB := repository.NewDB(db, cfg.LockTimeout)
	cardRepo := repository.NewCardRepository(db)
	authRepo := repository.NewAuthorizationRepository(db)
	rechargeRepo := repository.NewRechargeRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	auditLog := audit.NewLog(auditRepo)
	authzSvc := authz.NewService(cardRepo, employeeRepo, tokens, ledgerDB, authz.Policy{
		MinRoleTier:     domain.RoleTier(cfg.AuthMinRoleTier),
		ReasonMinLength: cfg.AuthReasonMinLength,
		TokenTTL:        cfg.AuthTokenTTL,
	})
	ledgerSvc := ledger.NewService(cardRepo, authRepo, rechargeRepo, auditLog, authzSvc, notify.NewOutbox(outboxRepo), ledgerDB)
	calculator := commission.NewCalculator(commissionRepo)
	saleSvc := sale.NewService(saleRepo, commissionRepo, ledgerSvc, calculator, ledgerDB)

	if cfg.AMQPURL != "" {
		pub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.NotifyQueue)
		if err != nil {
			slog.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		go notify.NewRelay(outboxRepo, pub, db, logger, cfg.OutboxPollInterval).Start(ctx)
	} else {
		slog.Warn("AMQP_URL not set, notifications stay in the outbox")
	}

	go sweepIdempotency(ctx, idempotencyRepo)

	healthHandler := handler.NewHealthHandler(checks)
	authHandler := handler.NewAuthHandler(employeeRepo, cfg.JWTSecret, cfg.JWTExpiry)
	cardHandler := handler.NewCardHandler(cardRepo, authRepo, auditLog)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)
	authzHandler := handler.NewAuthorizationHandler(authzSvc, employeeRepo)
	saleHandler := handler.NewSaleHandler(saleSvc)
	commissionHandler := handler.NewCommissionHandler(calculator)

	r := chi.NewRouter()
	r.Use(middleware.Recovery, middleware.Tracing)

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/docs", handler.ServeDocs("/docs/openapi.yaml"))
	r.Get("/docs/openapi.yaml", handler.ServeSpec(api.Spec))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.Logging).Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret), middleware.Logging, middleware.Idempotency(idempotencyRepo))

			r.Get("/cards/{id}", cardHandler.Get)
			r.Get("/cards/{id}/authorizations", cardHandler.ListAuthorizations)
			r.Get("/cards/{id}/audit", cardHandler.Audit)
			r.Post("/cards/{id}/authorization-checks", authzHandler.Check)
			r.Post("/cards/{id}/authorizations", authzHandler.Authorize)
			r.Post("/cards/{id}/debits", ledgerHandler.Debit)
			r.Post("/cards/{id}/recharges", ledgerHandler.Recharge)
			r.Post("/sales", saleHandler.Checkout)
			r.Get("/instruments/{id}/commission", commissionHandler.Quote)
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(r, "cafeteria-ledger"),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// tokenStore picks Redis when configured so grants survive a restart and are
// shared between replicas. The in-memory store is for single-node setups.
func tokenStore(ctx context.Context, cfg *config.Config, checks map[string]handler.Pinger) (authz.TokenStore, func()) {
	if cfg.RedisAddr == "" {
		slog.Warn("REDIS_ADDR not set, authorization grants are held in memory")
		return authz.NewMemoryTokenStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return authz.NewRedisTokenStore(client), func() { client.Close() }
}

type expiredCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

func sweepIdempotency(ctx context.Context, repo expiredCleaner) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.CleanExpired(ctx)
			if err != nil {
				slog.Error("idempotency sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("idempotency sweep", "removed", n)
			}
		}
	}
}
