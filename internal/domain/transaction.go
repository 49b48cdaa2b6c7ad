package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a posting against a client ledger.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// TransactionStatus is an annotation on the immutable transaction row.
// Voiding never alters Amount or BalanceAfter.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusVoided    TransactionStatus = "voided"
)

// Transaction is an immutable, append-only ledger record. Amount is signed:
// deposits are positive, withdrawals and transfers out are negative.
// BalanceAfter captures the client-ledger balance immediately following
// this transaction, at write time. Corrections are offsetting rows
// referencing the original via VoidsTransactionID.
type Transaction struct {
	ID                 string
	TrustAccountID     string
	ClientLedgerID     string
	Type               TransactionType
	Amount             decimal.Decimal
	Description        string
	Reference          string
	Status             TransactionStatus
	BalanceAfter       decimal.Decimal
	VoidsTransactionID *string
	CreatedBy          string
	CreatedAt          time.Time
}

// IsDebit reports whether the transaction removes funds from the ledger.
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// IsVoided reports whether the transaction has been annotated voided.
func (t *Transaction) IsVoided() bool {
	return t.Status == TransactionStatusVoided
}

// SignedAmount applies the sign convention for a transaction type to a
// positive input amount.
func SignedAmount(txType TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	switch txType {
	case TransactionTypeDeposit:
		return amount, nil
	case TransactionTypeWithdrawal, TransactionTypeTransfer:
		return amount.Neg(), nil
	default:
		return decimal.Zero, ErrInvalidTransactionType
	}
}

// OffsettingType returns the transaction type that reverses txType.
func OffsettingType(txType TransactionType) TransactionType {
	if txType == TransactionTypeDeposit {
		return TransactionTypeWithdrawal
	}
	return TransactionTypeDeposit
}
