package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. Prevents long-running transactions from holding row
	// locks.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// StatementCacheTTL is how long imported statements stay in the read
	// cache. Statements are immutable, so staleness is not a concern.
	StatementCacheTTL = 1 * time.Hour
)
