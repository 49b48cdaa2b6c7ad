package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
)

// TrustAccountResponse represents a trust account in API responses.
type TrustAccountResponse struct {
	ID            string    `json:"id"`
	FirmID        string    `json:"firm_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	RoutingNumber string    `json:"routing_number"`
	AccountType   string    `json:"account_type"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TrustAccountFromDomain converts a domain trust account to a response.
func TrustAccountFromDomain(a *domain.TrustAccount) *TrustAccountResponse {
	return &TrustAccountResponse{
		ID:            a.ID,
		FirmID:        a.FirmID,
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		RoutingNumber: a.RoutingNumber,
		AccountType:   a.AccountType,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// TrustAccountsFromDomain converts domain trust accounts to responses.
func TrustAccountsFromDomain(accounts []*domain.TrustAccount) []*TrustAccountResponse {
	result := make([]*TrustAccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = TrustAccountFromDomain(a)
	}
	return result
}

// ListTrustAccountsResponse wraps a page of trust accounts.
type ListTrustAccountsResponse struct {
	TrustAccounts []*TrustAccountResponse `json:"trust_accounts"`
	Total         int64                   `json:"total"`
}

// ClientLedgerResponse represents a client ledger in API responses.
type ClientLedgerResponse struct {
	ID                string          `json:"id"`
	TrustAccountID    string          `json:"trust_account_id"`
	ClientID          string          `json:"client_id"`
	MatterID          string          `json:"matter_id"`
	ClientName        string          `json:"client_name"`
	MatterDescription string          `json:"matter_description,omitempty"`
	Status            string          `json:"status"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ClientLedgerFromDomain converts a domain client ledger to a response.
func ClientLedgerFromDomain(l *domain.ClientLedger) *ClientLedgerResponse {
	return &ClientLedgerResponse{
		ID:                l.ID,
		TrustAccountID:    l.TrustAccountID,
		ClientID:          l.ClientID,
		MatterID:          l.MatterID,
		ClientName:        l.ClientName,
		MatterDescription: l.MatterDescription,
		Status:            string(l.Status),
		CurrentBalance:    l.CurrentBalance,
		Version:           l.Version,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// ClientLedgersFromDomain converts domain client ledgers to responses.
func ClientLedgersFromDomain(ledgers []*domain.ClientLedger) []*ClientLedgerResponse {
	result := make([]*ClientLedgerResponse, len(ledgers))
	for i, l := range ledgers {
		result[i] = ClientLedgerFromDomain(l)
	}
	return result
}

// ListClientLedgersResponse wraps a page of client ledgers.
type ListClientLedgersResponse struct {
	ClientLedgers []*ClientLedgerResponse `json:"client_ledgers"`
	Total         int64                   `json:"total"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                 string          `json:"id"`
	TrustAccountID     string          `json:"trust_account_id"`
	ClientLedgerID     string          `json:"client_ledger_id"`
	Type               string          `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
	Reference          string          `json:"reference,omitempty"`
	Status             string          `json:"status"`
	BalanceAfter       decimal.Decimal `json:"balance_after"`
	VoidsTransactionID *string         `json:"voids_transaction_id,omitempty"`
	CreatedBy          string          `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                 t.ID,
		TrustAccountID:     t.TrustAccountID,
		ClientLedgerID:     t.ClientLedgerID,
		Type:               string(t.Type),
		Amount:             t.Amount,
		Description:        t.Description,
		Reference:          t.Reference,
		Status:             string(t.Status),
		BalanceAfter:       t.BalanceAfter,
		VoidsTransactionID: t.VoidsTransactionID,
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// BankStatementResponse represents a bank statement in API responses.
type BankStatementResponse struct {
	ID               string                `json:"id"`
	TrustAccountID   string                `json:"trust_account_id"`
	StatementDate    string                `json:"statement_date"`
	BeginningBalance decimal.Decimal       `json:"beginning_balance"`
	EndingBalance    decimal.Decimal       `json:"ending_balance"`
	Items            []ClearedItemResponse `json:"items,omitempty"`
	ImportedBy       string                `json:"imported_by"`
	CreatedAt        time.Time             `json:"created_at"`
}

// ClearedItemResponse represents one cleared statement item.
type ClearedItemResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// BankStatementFromDomain converts a domain statement to a response.
func BankStatementFromDomain(s *domain.BankStatement) *BankStatementResponse {
	items := make([]ClearedItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = ClearedItemResponse{
			ID:        item.ID,
			Amount:    item.Amount,
			Date:      item.Date.Format(time.DateOnly),
			Reference: item.Reference,
		}
	}
	return &BankStatementResponse{
		ID:               s.ID,
		TrustAccountID:   s.TrustAccountID,
		StatementDate:    s.StatementDate.Format(time.DateOnly),
		BeginningBalance: s.BeginningBalance,
		EndingBalance:    s.EndingBalance,
		Items:            items,
		ImportedBy:       s.ImportedBy,
		CreatedAt:        s.CreatedAt,
	}
}

// BankStatementsFromDomain converts domain statements to responses.
func BankStatementsFromDomain(statements []*domain.BankStatement) []*BankStatementResponse {
	result := make([]*BankStatementResponse, len(statements))
	for i, s := range statements {
		result[i] = BankStatementFromDomain(s)
	}
	return result
}

// ListBankStatementsResponse wraps a page of statements.
type ListBankStatementsResponse struct {
	Statements []*BankStatementResponse `json:"statements"`
	Total      int64                    `json:"total"`
}

// ReconciliationResponse represents a reconciliation in API responses.
type ReconciliationResponse struct {
	ID                  string                       `json:"id"`
	TrustAccountID      string                       `json:"trust_account_id"`
	BankStatementID     string                       `json:"bank_statement_id"`
	ReconciliationDate  string                       `json:"reconciliation_date"`
	BookBalance         decimal.Decimal              `json:"book_balance"`
	BankBalance         decimal.Decimal              `json:"bank_balance"`
	AdjustedBankBalance decimal.Decimal              `json:"adjusted_bank_balance"`
	Delta               decimal.Decimal              `json:"delta"`
	Status              string                       `json:"status"`
	Items               []ReconciliationItemResponse `json:"items,omitempty"`
	PerformedBy         string                       `json:"performed_by"`
	CreatedAt           time.Time                    `json:"created_at"`
}

// ReconciliationItemResponse represents one unreconciled item.
type ReconciliationItemResponse struct {
	ID            string          `json:"id"`
	Side          string          `json:"side"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference,omitempty"`
	Date          string          `json:"date"`
}

// ReconciliationFromDomain converts a domain reconciliation to a response.
func ReconciliationFromDomain(r *domain.Reconciliation) *ReconciliationResponse {
	items := make([]ReconciliationItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ReconciliationItemResponse{
			ID:            item.ID,
			Side:          string(item.Side),
			TransactionID: item.TransactionID,
			Amount:        item.Amount,
			Reference:     item.Reference,
			Date:          item.Date.Format(time.DateOnly),
		}
	}
	return &ReconciliationResponse{
		ID:                  r.ID,
		TrustAccountID:      r.TrustAccountID,
		BankStatementID:     r.BankStatementID,
		ReconciliationDate:  r.ReconciliationDate.Format(time.DateOnly),
		BookBalance:         r.BookBalance,
		BankBalance:         r.BankBalance,
		AdjustedBankBalance: r.AdjustedBankBalance,
		Delta:               r.Delta,
		Status:              string(r.Status),
		Items:               items,
		PerformedBy:         r.PerformedBy,
		CreatedAt:           r.CreatedAt,
	}
}

// ReconciliationsFromDomain converts domain reconciliations to responses.
func ReconciliationsFromDomain(reconciliations []*domain.Reconciliation) []*ReconciliationResponse {
	result := make([]*ReconciliationResponse, len(reconciliations))
	for i, r := range reconciliations {
		result[i] = ReconciliationFromDomain(r)
	}
	return result
}

// ListReconciliationsResponse wraps a page of reconciliation attempts.
type ListReconciliationsResponse struct {
	Reconciliations []*ReconciliationResponse `json:"reconciliations"`
	Total           int64                     `json:"total"`
}

// BalanceResponse represents a balance lookup result.
type BalanceResponse struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
	AsOf    *time.Time      `json:"as_of,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
