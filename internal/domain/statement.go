package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatement is an immutable snapshot supplied by the bank. Once
// imported its numeric fields are never edited; corrections require
// importing a new statement.
type BankStatement struct {
	ID               string
	TrustAccountID   string
	StatementDate    time.Time
	BeginningBalance decimal.Decimal
	EndingBalance    decimal.Decimal
	Items            []ClearedItem
	ImportedBy       string
	CreatedAt        time.Time
}

// ClearedItem is a single item the bank reports as cleared. Amount is
// signed with the same convention as Transaction.Amount.
type ClearedItem struct {
	ID          string
	StatementID string
	Amount      decimal.Decimal
	Date        time.Time
	Reference   string
}
