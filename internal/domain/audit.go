package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	FirmID       string // Owning firm
	ActorID      string // Who performed the action
	Action       string // What action (transaction.post, statement.import, etc.)
	ResourceType string // Type of resource (transaction, ledger, statement)
	ResourceID   string // ID of the resource
	RequestID    string // Request ID for tracing
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure, error
	ErrorMessage string // If status=error, the error message
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountCreate   AuditAction = "trust_account.create"
	AuditActionAccountClose    AuditAction = "trust_account.close"
	AuditActionAccountFreeze   AuditAction = "trust_account.freeze"
	AuditActionAccountUnfreeze AuditAction = "trust_account.unfreeze"

	AuditActionLedgerCreate AuditAction = "client_ledger.create"
	AuditActionLedgerClose  AuditAction = "client_ledger.close"

	AuditActionTransactionPost AuditAction = "transaction.post"
	AuditActionTransactionVoid AuditAction = "transaction.void"

	AuditActionStatementImport AuditAction = "statement.import"
	AuditActionReconcile       AuditAction = "reconciliation.run"

	// AuditActionBalanceMismatch records a detected divergence between the
	// cached ledger balance and the recomputed one. Required before any
	// operator correction.
	AuditActionBalanceMismatch AuditAction = "balance.mismatch_detected"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// Resource types recorded in audit logs.
const (
	ResourceTypeTrustAccount   = "trust_account"
	ResourceTypeClientLedger   = "client_ledger"
	ResourceTypeTransaction    = "transaction"
	ResourceTypeBankStatement  = "bank_statement"
	ResourceTypeReconciliation = "reconciliation"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
