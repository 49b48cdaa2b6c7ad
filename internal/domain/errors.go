package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Referential errors: referenced account/ledger missing or mismatched
	// ownership. Caller errors, never retried.
	ErrTrustAccountNotFound   = errors.New("trust account not found")
	ErrLedgerNotFound         = errors.New("client ledger not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrStatementNotFound      = errors.New("bank statement not found")
	ErrReconciliationNotFound = errors.New("reconciliation not found")
	ErrLedgerAccountMismatch  = errors.New("client ledger does not belong to trust account")
	ErrFirmMismatch           = errors.New("resource does not belong to acting firm")

	// Business-rule rejections.
	ErrInsufficientTrustFunds  = errors.New("debit would drive client ledger negative")
	ErrTrustAccountNotActive   = errors.New("trust account is not active")
	ErrLedgerNotActive         = errors.New("client ledger is not active")
	ErrLedgerNotEmpty          = errors.New("client ledger balance must be zero")
	ErrAccountNotEmpty         = errors.New("trust account still holds client funds")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidTransactionType  = errors.New("invalid transaction type")
	ErrTransactionAlreadyVoid  = errors.New("transaction is already voided")
	ErrInvalidAmount           = errors.New("amount must be positive")

	// ErrCacheMiss is returned by cache lookups when the key is absent.
	ErrCacheMiss = errors.New("cache miss")

	// ErrStatementOutOfSequence is returned when a bank statement is
	// imported out of chronological order. The caller must resubmit in
	// order.
	ErrStatementOutOfSequence = errors.New("bank statement dated before latest imported statement")
)

// BalanceMismatchError is a data-integrity alarm: the recomputed balance
// of a client ledger disagrees with the cached balance. It is surfaced to
// operators and never silently healed.
type BalanceMismatchError struct {
	LedgerID string
	Cached   decimal.Decimal
	Computed decimal.Decimal
}

func (e *BalanceMismatchError) Error() string {
	return fmt.Sprintf(
		"balance mismatch on ledger %s: cached=%s computed=%s",
		e.LedgerID, e.Cached.String(), e.Computed.String(),
	)
}
