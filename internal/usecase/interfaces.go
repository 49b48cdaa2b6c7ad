package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
)

// TrustAccountRepository defines data access for trust accounts.
type TrustAccountRepository interface {
	Create(ctx context.Context, account *domain.TrustAccount) error
	GetByID(ctx context.Context, id string) (*domain.TrustAccount, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.TrustAccount, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TrustAccountStatus, updatedAt time.Time) error
	ListByFirm(ctx context.Context, firmID string, limit, offset int) ([]*domain.TrustAccount, error)
}

// ClientLedgerRepository defines data access for client ledgers.
type ClientLedgerRepository interface {
	Create(ctx context.Context, ledger *domain.ClientLedger) error
	GetByID(ctx context.Context, id string) (*domain.ClientLedger, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ClientLedger, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.ClientLedgerStatus, updatedAt time.Time) error
	ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.ClientLedger, error)
	// SumActiveBalances returns the sum of CurrentBalance over active
	// ledgers under the trust account. This is the trust account balance;
	// it is never stored.
	SumActiveBalances(ctx context.Context, trustAccountID string) (decimal.Decimal, error)
	// SumActiveBalancesForUpdate is SumActiveBalances inside the given
	// transaction with the ledger rows locked, so a posting in flight
	// commits before the sum is taken.
	SumActiveBalancesForUpdate(ctx context.Context, tx Transaction, trustAccountID string) (decimal.Decimal, error)
}

// TransactionRepository defines data access for ledger transactions.
// Transactions are insert-only; MarkVoided annotates status and nothing
// else.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	MarkVoided(ctx context.Context, tx Transaction, id string) error
	ListByLedger(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.Transaction, error)
	// ListByTrustAccountAsOf returns every transaction under the trust
	// account with timestamp at or before asOf, voided rows included. A
	// voided original and its offsetting row net to zero.
	ListByTrustAccountAsOf(ctx context.Context, trustAccountID string, asOf time.Time) ([]*domain.Transaction, error)
	// SumAmounts independently sums every transaction row for a ledger,
	// bypassing the cached balance. Void pairs cancel out.
	SumAmounts(ctx context.Context, ledgerID string) (decimal.Decimal, error)
	// GetLedgerBalanceAsOf returns the latest BalanceAfter at or before the
	// given time, or zero when the ledger had no transactions yet.
	GetLedgerBalanceAsOf(ctx context.Context, ledgerID string, at time.Time) (decimal.Decimal, error)
	// GetBookBalanceAsOf returns the sum of per-ledger as-of balances for
	// every ledger under the trust account.
	GetBookBalanceAsOf(ctx context.Context, trustAccountID string, at time.Time) (decimal.Decimal, error)
}

// BankStatementRepository defines data access for imported statements.
// The statement header and its cleared items are written as one snapshot.
type BankStatementRepository interface {
	Create(ctx context.Context, tx Transaction, statement *domain.BankStatement) error
	GetByID(ctx context.Context, id string) (*domain.BankStatement, error)
	// GetLatestDate returns the statement date of the most recent statement
	// for the account, or nil when none exist.
	GetLatestDate(ctx context.Context, trustAccountID string) (*time.Time, error)
	ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.BankStatement, error)
}

// ReconciliationRepository defines data access for reconciliation records.
// Records are insert-only; attempts are never overwritten.
type ReconciliationRepository interface {
	Create(ctx context.Context, tx Transaction, reconciliation *domain.Reconciliation) error
	GetByID(ctx context.Context, id string) (*domain.Reconciliation, error)
	ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.Reconciliation, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries a unit of work on transient store conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
