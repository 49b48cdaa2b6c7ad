package domain

import "time"

// Event types
const (
	EventTypeTransactionPosted      = "transaction.posted"
	EventTypeTransactionVoided      = "transaction.voided"
	EventTypeStatementImported      = "statement.imported"
	EventTypeReconciliationFinished = "reconciliation.finished"
	EventTypeTrustAccountCreated    = "trust_account.created"
	EventTypeClientLedgerCreated    = "client_ledger.created"
)

// Aggregate types
const (
	AggregateTypeTransaction    = "transaction"
	AggregateTypeStatement      = "bank_statement"
	AggregateTypeReconciliation = "reconciliation"
	AggregateTypeTrustAccount   = "trust_account"
	AggregateTypeClientLedger   = "client_ledger"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionPostedEvent payload
type TransactionPostedEvent struct {
	TransactionID  string `json:"transaction_id"`
	TrustAccountID string `json:"trust_account_id"`
	ClientLedgerID string `json:"client_ledger_id"`
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	BalanceAfter   string `json:"balance_after"`
}

// TransactionVoidedEvent payload
type TransactionVoidedEvent struct {
	OriginalTransactionID   string `json:"original_transaction_id"`
	OffsettingTransactionID string `json:"offsetting_transaction_id"`
	Amount                  string `json:"amount"`
}

// ReconciliationFinishedEvent payload
type ReconciliationFinishedEvent struct {
	ReconciliationID string `json:"reconciliation_id"`
	TrustAccountID   string `json:"trust_account_id"`
	BankStatementID  string `json:"bank_statement_id"`
	Status           string `json:"status"`
	Delta            string `json:"delta"`
}
