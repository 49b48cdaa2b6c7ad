package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// CreateTrustAccountRequest represents a request to open a trust account.
type CreateTrustAccountRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
}

// ToUseCaseInput converts to use case input. FirmID comes from the
// request identity, not the body.
func (r *CreateTrustAccountRequest) ToUseCaseInput(firmID string) usecase.CreateTrustAccountInput {
	return usecase.CreateTrustAccountInput{
		FirmID:        firmID,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
		RoutingNumber: r.RoutingNumber,
	}
}

// CreateClientLedgerRequest represents a request to open a client ledger.
type CreateClientLedgerRequest struct {
	TrustAccountID    string `json:"trust_account_id"`
	ClientID          string `json:"client_id"`
	MatterID          string `json:"matter_id"`
	ClientName        string `json:"client_name"`
	MatterDescription string `json:"matter_description"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateClientLedgerRequest) ToUseCaseInput() usecase.CreateClientLedgerInput {
	return usecase.CreateClientLedgerInput{
		TrustAccountID:    r.TrustAccountID,
		ClientID:          r.ClientID,
		MatterID:          r.MatterID,
		ClientName:        r.ClientName,
		MatterDescription: r.MatterDescription,
	}
}

// PostTransactionRequest represents a request to post a transaction.
// Amount is always positive; type determines the sign.
type PostTransactionRequest struct {
	TrustAccountID string          `json:"trust_account_id"`
	ClientLedgerID string          `json:"client_ledger_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostTransactionRequest) ToUseCaseInput() usecase.PostTransactionInput {
	return usecase.PostTransactionInput{
		TrustAccountID: r.TrustAccountID,
		ClientLedgerID: r.ClientLedgerID,
		Type:           domain.TransactionType(r.Type),
		Amount:         r.Amount,
		Description:    r.Description,
		Reference:      r.Reference,
	}
}

// VoidTransactionRequest represents a request to void a transaction.
type VoidTransactionRequest struct {
	Description string `json:"description"`
}

// ImportStatementRequest represents a request to import a bank statement.
type ImportStatementRequest struct {
	TrustAccountID   string                 `json:"trust_account_id"`
	StatementDate    time.Time              `json:"statement_date"`
	BeginningBalance decimal.Decimal        `json:"beginning_balance"`
	EndingBalance    decimal.Decimal        `json:"ending_balance"`
	Items            []ImportStatementEntry `json:"items"`
}

// ImportStatementEntry is one cleared item in an import request. Amount
// is signed: credits positive, debits negative.
type ImportStatementEntry struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ImportStatementRequest) ToUseCaseInput() usecase.ImportStatementInput {
	items := make([]usecase.ImportClearedItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = usecase.ImportClearedItem{
			Amount:    item.Amount,
			Date:      item.Date,
			Reference: item.Reference,
		}
	}
	return usecase.ImportStatementInput{
		TrustAccountID:   r.TrustAccountID,
		StatementDate:    r.StatementDate,
		BeginningBalance: r.BeginningBalance,
		EndingBalance:    r.EndingBalance,
		Items:            items,
	}
}

// ReconcileRequest represents a request to run a reconciliation.
type ReconcileRequest struct {
	BankStatementID string `json:"bank_statement_id"`
}

// ToUseCaseInput converts to use case input.
func (r *ReconcileRequest) ToUseCaseInput(trustAccountID string) usecase.ReconcileInput {
	return usecase.ReconcileInput{
		TrustAccountID:  trustAccountID,
		BankStatementID: r.BankStatementID,
	}
}
