package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the terminal state of a reconciliation attempt.
// pending -> completed | discrepancy; no other transitions exist. A
// discrepancy is a valid terminal state requiring human review, not an
// error, and is resolved by a new attempt against a corrected statement.
type ReconciliationStatus string

const (
	ReconciliationStatusPending     ReconciliationStatus = "pending"
	ReconciliationStatusCompleted   ReconciliationStatus = "completed"
	ReconciliationStatusDiscrepancy ReconciliationStatus = "discrepancy"
)

// ReconciliationItemSide tells which side of the books an unreconciled
// item came from.
type ReconciliationItemSide string

const (
	// ItemSideBook marks a book transaction the bank has not cleared yet
	// (an outstanding item).
	ItemSideBook ReconciliationItemSide = "book"
	// ItemSideBank marks a cleared bank item with no matching book
	// transaction.
	ItemSideBank ReconciliationItemSide = "bank"
)

// Reconciliation is a point-in-time certification that book and bank
// balances agree, accounting for timing differences. Attempts are never
// overwritten or deleted.
type Reconciliation struct {
	ID                  string
	TrustAccountID      string
	BankStatementID     string
	ReconciliationDate  time.Time
	BookBalance         decimal.Decimal
	BankBalance         decimal.Decimal
	AdjustedBankBalance decimal.Decimal
	Delta               decimal.Decimal
	Status              ReconciliationStatus
	Items               []ReconciliationItem
	PerformedBy         string
	CreatedAt           time.Time
}

// ReconciliationItem is one unreconciled item recorded with the attempt:
// either an outstanding book transaction or an unmatched bank item.
type ReconciliationItem struct {
	ID               string
	ReconciliationID string
	Side             ReconciliationItemSide
	TransactionID    string
	Amount           decimal.Decimal
	Reference        string
	Date             time.Time
}

// OutstandingItems returns the book-side items (transactions the bank has
// not cleared).
func (r *Reconciliation) OutstandingItems() []ReconciliationItem {
	return r.itemsBySide(ItemSideBook)
}

// UnmatchedBankItems returns the bank-side items with no book match.
func (r *Reconciliation) UnmatchedBankItems() []ReconciliationItem {
	return r.itemsBySide(ItemSideBank)
}

func (r *Reconciliation) itemsBySide(side ReconciliationItemSide) []ReconciliationItem {
	var items []ReconciliationItem
	for _, item := range r.Items {
		if item.Side == side {
			items = append(items, item)
		}
	}
	return items
}

// MatchKind tags the outcome of matching one cleared bank item against
// the book. An explicit tag keeps "no match found" distinct from "not yet
// processed".
type MatchKind int

const (
	MatchKindMatched MatchKind = iota + 1
	MatchKindUnmatched
)

// ClearedItemMatch is the tagged outcome of matching one cleared item.
// TransactionID is set only when Kind == MatchKindMatched.
type ClearedItemMatch struct {
	Item          ClearedItem
	Kind          MatchKind
	TransactionID string
}
