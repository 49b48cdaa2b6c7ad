package domain

import (
	"time"
)

// TrustAccountStatus represents the lifecycle state of a trust account.
type TrustAccountStatus string

const (
	TrustAccountStatusActive TrustAccountStatus = "active"
	TrustAccountStatusClosed TrustAccountStatus = "closed"
	TrustAccountStatusFrozen TrustAccountStatus = "frozen"
)

// TrustAccountTypeTrust is the regulated account category. Only pooled
// trust accounts exist in this ledger.
const TrustAccountTypeTrust = "trust"

// TrustAccount is the single regulated bank account holding pooled client
// funds for a firm. Its balance is never stored: it is always the sum of
// its client ledgers.
type TrustAccount struct {
	ID            string
	FirmID        string
	BankName      string
	AccountNumber string
	RoutingNumber string
	AccountType   string
	Status        TrustAccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanTransact checks whether the account accepts postings.
func (a *TrustAccount) CanTransact() error {
	if a.Status != TrustAccountStatusActive {
		return ErrTrustAccountNotActive
	}
	return nil
}

// ValidateOwnership checks that the account belongs to the acting firm.
func (a *TrustAccount) ValidateOwnership(firmID string) error {
	if a.FirmID != firmID {
		return ErrFirmMismatch
	}
	return nil
}

// CanTransitionTo validates a status change. Closed is terminal; frozen
// may return to active by authorized override.
func (a *TrustAccount) CanTransitionTo(next TrustAccountStatus) error {
	switch a.Status {
	case TrustAccountStatusActive:
		if next == TrustAccountStatusClosed || next == TrustAccountStatusFrozen {
			return nil
		}
	case TrustAccountStatusFrozen:
		if next == TrustAccountStatusActive || next == TrustAccountStatusClosed {
			return nil
		}
	case TrustAccountStatusClosed:
		// no transitions out of closed
	}
	return ErrInvalidStatusTransition
}
