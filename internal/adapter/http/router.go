package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/trustledger/internal/adapter/http/handler"
	"github.com/iho/trustledger/internal/adapter/http/middleware"
	"github.com/iho/trustledger/internal/infrastructure/metrics"
	"github.com/iho/trustledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TrustAccountHandler   *handler.TrustAccountHandler
	ClientLedgerHandler   *handler.ClientLedgerHandler
	TransactionHandler    *handler.TransactionHandler
	StatementHandler      *handler.StatementHandler
	ReconciliationHandler *handler.ReconciliationHandler
	AuditHandler          *handler.AuditHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	Metrics               *metrics.Metrics
	Logger                zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Every API call carries a firm identity
		r.Use(middleware.Identity)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Trust accounts
		r.Route("/trust-accounts", func(r chi.Router) {
			r.Post("/", cfg.TrustAccountHandler.Create)
			r.Get("/", cfg.TrustAccountHandler.List)
			r.Get("/{id}", cfg.TrustAccountHandler.Get)
			r.Post("/{id}/close", cfg.TrustAccountHandler.Close)
			r.Post("/{id}/freeze", cfg.TrustAccountHandler.Freeze)
			r.Post("/{id}/unfreeze", cfg.TrustAccountHandler.Unfreeze)
			r.Get("/{id}/balance", cfg.TrustAccountHandler.GetBalance)
			r.Get("/{id}/ledgers", cfg.ClientLedgerHandler.ListByTrustAccount)
			r.Get("/{id}/statements", cfg.StatementHandler.ListByTrustAccount)
			r.Post("/{id}/reconciliations", cfg.ReconciliationHandler.Run)
			r.Get("/{id}/reconciliations", cfg.ReconciliationHandler.History)
		})

		// Client ledgers
		r.Route("/ledgers", func(r chi.Router) {
			r.Post("/", cfg.ClientLedgerHandler.Create)
			r.Get("/{id}", cfg.ClientLedgerHandler.Get)
			r.Post("/{id}/close", cfg.ClientLedgerHandler.Close)
			r.Get("/{id}/balance", cfg.ClientLedgerHandler.GetBalance)
			r.Post("/{id}/verify", cfg.ClientLedgerHandler.Verify)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByLedger)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Post)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Post("/{id}/void", cfg.TransactionHandler.Void)
		})

		// Bank statements
		r.Route("/statements", func(r chi.Router) {
			r.Post("/", cfg.StatementHandler.Import)
			r.Get("/{id}", cfg.StatementHandler.Get)
		})

		// Reconciliations
		r.Get("/reconciliations/{id}", cfg.ReconciliationHandler.Get)

		// Audit trail
		r.Get("/audit/{resource}/{id}", cfg.AuditHandler.ListByResource)
	})

	return r
}
