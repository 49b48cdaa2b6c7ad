package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientLedgerStatus represents the lifecycle state of a client ledger.
type ClientLedgerStatus string

const (
	ClientLedgerStatusActive ClientLedgerStatus = "active"
	ClientLedgerStatusClosed ClientLedgerStatus = "closed"
)

// ClientLedger is one sub-ledger per (trust account, client, matter)
// triple. CurrentBalance is a cache of the transaction-derived balance,
// kept consistent in the same atomic unit as each transaction write.
// Invariant: CurrentBalance >= 0 at all times.
type ClientLedger struct {
	ID                string
	TrustAccountID    string
	ClientID          string
	MatterID          string
	ClientName        string
	MatterDescription string
	Status            ClientLedgerStatus
	CurrentBalance    decimal.Decimal
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanTransact checks whether the ledger accepts postings.
func (l *ClientLedger) CanTransact() error {
	if l.Status != ClientLedgerStatusActive {
		return ErrLedgerNotActive
	}
	return nil
}

// ValidateDebit checks that a debit of amount would not drive the ledger
// negative. Client funds never go negative per client.
func (l *ClientLedger) ValidateDebit(amount decimal.Decimal) error {
	if l.CurrentBalance.Sub(amount).IsNegative() {
		return ErrInsufficientTrustFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (l *ClientLedger) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return l.CurrentBalance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (l *ClientLedger) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return l.CurrentBalance.Add(amount)
}

// CanClose checks that the ledger holds no funds.
func (l *ClientLedger) CanClose() error {
	if l.Status == ClientLedgerStatusClosed {
		return ErrLedgerNotActive
	}
	if !l.CurrentBalance.IsZero() {
		return ErrLedgerNotEmpty
	}
	return nil
}
