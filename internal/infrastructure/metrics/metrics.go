package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsPosted prometheus.Counter
	TransactionsVoided prometheus.Counter
	TransactionErrors  *prometheus.CounterVec
	PostingDuration    prometheus.Histogram
	PostingAmount      prometheus.Histogram

	// Trust account metrics
	TrustAccountsCreated prometheus.Counter
	ClientLedgersCreated prometheus.Counter
	LedgerOperations     *prometheus.CounterVec

	// Statement metrics
	StatementsImported   prometheus.Counter
	StatementItemsTotal  prometheus.Counter
	StatementImportFails prometheus.Counter

	// Reconciliation metrics
	ReconciliationsRun    *prometheus.CounterVec
	ReconciliationDelta   prometheus.Histogram
	OutstandingItemsCount prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished     prometheus.Counter
	OutboxPublishErrors prometheus.Counter

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transaction metrics
		TransactionsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_transactions_posted_total",
			Help: "Total number of transactions posted",
		}),
		TransactionsVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_transactions_voided_total",
			Help: "Total number of transactions voided",
		}),
		TransactionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_transaction_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustledger_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		PostingAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustledger_posting_amount",
			Help:    "Posted transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Trust account metrics
		TrustAccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_trust_accounts_created_total",
			Help: "Total number of trust accounts created",
		}),
		ClientLedgersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_client_ledgers_created_total",
			Help: "Total number of client ledgers created",
		}),
		LedgerOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_ledger_operations_total",
				Help: "Total ledger operations by type",
			},
			[]string{"operation"},
		),

		// Statement metrics
		StatementsImported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_statements_imported_total",
			Help: "Total number of bank statements imported",
		}),
		StatementItemsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_statement_items_total",
			Help: "Total number of cleared items imported",
		}),
		StatementImportFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_statement_import_failures_total",
			Help: "Total number of rejected statement imports",
		}),

		// Reconciliation metrics
		ReconciliationsRun: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_reconciliations_total",
				Help: "Total reconciliation runs by outcome",
			},
			[]string{"status"},
		),
		ReconciliationDelta: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustledger_reconciliation_delta",
			Help:    "Absolute delta between book and adjusted bank balance",
			Buckets: []float64{0.01, 0.1, 1, 10, 100, 1000, 10000},
		}),
		OutstandingItemsCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustledger_outstanding_items",
			Help:    "Number of unreconciled items per run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "trustledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustledger_outbox_publish_errors_total",
			Help: "Total outbox publish failures",
		}),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
