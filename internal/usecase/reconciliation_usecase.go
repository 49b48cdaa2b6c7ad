package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase runs three-way reconciliation: book transactions
// as of the statement date against the statement's cleared items and
// ending balance. Each run is persisted whatever the outcome; a
// discrepancy record is evidence, not a failure.
type ReconciliationUseCase struct {
	txManager  TransactionManager
	statements BankStatementRepository
	txnRepo    TransactionRepository
	reconRepo  ReconciliationRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	statements BankStatementRepository,
	txnRepo TransactionRepository,
	reconRepo ReconciliationRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:  txManager,
		statements: statements,
		txnRepo:    txnRepo,
		reconRepo:  reconRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// ReconcileInput represents input for running a reconciliation.
type ReconcileInput struct {
	TrustAccountID  string
	BankStatementID string
}

// Reconcile matches the statement's cleared items against book
// transactions dated at or before the statement date, classifies the
// leftovers on both sides, and certifies the adjusted bank balance
// against the book balance. The attempt is recorded even when a
// discrepancy remains.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, input ReconcileInput) (*domain.Reconciliation, error) {
	recon, err := uc.reconcile(ctx, input)
	if err != nil {
		uc.auditRun(ctx, input.BankStatementID, nil, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationsRun.WithLabelValues(string(recon.Status)).Inc()
	}
	uc.auditRun(ctx, recon.ID, domain.JSON{
		"status":       string(recon.Status),
		"delta":        recon.Delta.String(),
		"book_balance": recon.BookBalance.String(),
		"bank_balance": recon.BankBalance.String(),
		"item_count":   len(recon.Items),
		"statement_id": recon.BankStatementID,
	}, nil)

	return recon, nil
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, input ReconcileInput) (*domain.Reconciliation, error) {
	statement, err := uc.statements.GetByID(ctx, input.BankStatementID)
	if err != nil {
		return nil, err
	}

	if statement.TrustAccountID != input.TrustAccountID {
		return nil, domain.ErrLedgerAccountMismatch
	}

	asOf := endOfDay(statement.StatementDate)

	transactions, err := uc.txnRepo.ListByTrustAccountAsOf(ctx, input.TrustAccountID, asOf)
	if err != nil {
		return nil, err
	}

	bookBalance, err := uc.txnRepo.GetBookBalanceAsOf(ctx, input.TrustAccountID, asOf)
	if err != nil {
		return nil, err
	}

	matches, outstanding := matchClearedItems(statement.Items, transactions, statement.StatementDate)

	reconID := uc.idGen.Generate()
	items := make([]domain.ReconciliationItem, 0, len(outstanding))

	// Outstanding book transactions: posted but not yet cleared by the
	// bank. Deposits in transit and uncleared withdrawals both land here.
	for _, txn := range outstanding {
		items = append(items, domain.ReconciliationItem{
			ID:               uc.idGen.Generate(),
			ReconciliationID: reconID,
			Side:             domain.ItemSideBook,
			TransactionID:    txn.ID,
			Amount:           txn.Amount,
			Reference:        txn.Reference,
			Date:             txn.CreatedAt,
		})
	}

	// Unmatched bank items: cleared by the bank with no book counterpart,
	// typically fees or bank errors. Always a discrepancy signal.
	for _, m := range matches {
		if m.Kind != domain.MatchKindUnmatched {
			continue
		}
		items = append(items, domain.ReconciliationItem{
			ID:               uc.idGen.Generate(),
			ReconciliationID: reconID,
			Side:             domain.ItemSideBank,
			Amount:           m.Item.Amount,
			Reference:        m.Item.Reference,
			Date:             m.Item.Date,
		})
	}

	// Adjusted bank balance = ending balance + outstanding deposits
	// - outstanding withdrawals. Amounts are signed, so a plain sum works.
	adjustment := decimal.Zero
	for _, txn := range outstanding {
		adjustment = adjustment.Add(txn.Amount)
	}
	adjustedBank := statement.EndingBalance.Add(adjustment)

	delta := bookBalance.Sub(adjustedBank)

	status := domain.ReconciliationStatusCompleted
	if !delta.IsZero() || hasUnmatchedBankItems(items) {
		status = domain.ReconciliationStatusDiscrepancy
	}

	now := time.Now().UTC()

	recon := &domain.Reconciliation{
		ID:                  reconID,
		TrustAccountID:      input.TrustAccountID,
		BankStatementID:     statement.ID,
		ReconciliationDate:  statement.StatementDate,
		BookBalance:         bookBalance,
		BankBalance:         statement.EndingBalance,
		AdjustedBankBalance: adjustedBank,
		Delta:               delta,
		Status:              status,
		Items:               items,
		PerformedBy:         actorFromContext(ctx),
		CreatedAt:           now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.reconRepo.Create(txCtx, tx, recon); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   recon.ID,
		AggregateType: domain.AggregateTypeReconciliation,
		EventType:     domain.EventTypeReconciliationFinished,
		Payload: map[string]any{
			"reconciliation_id": recon.ID,
			"trust_account_id":  recon.TrustAccountID,
			"bank_statement_id": recon.BankStatementID,
			"status":            string(recon.Status),
			"delta":             recon.Delta.String(),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return recon, nil
}

// GetReconciliation retrieves a reconciliation by ID.
func (uc *ReconciliationUseCase) GetReconciliation(ctx context.Context, id string) (*domain.Reconciliation, error) {
	return uc.reconRepo.GetByID(ctx, id)
}

// GetReconciliationHistoryInput represents input for listing past runs.
type GetReconciliationHistoryInput struct {
	TrustAccountID string
	Limit          int
	Offset         int
}

// GetReconciliationHistory lists past reconciliation attempts for a trust
// account, newest first.
func (uc *ReconciliationUseCase) GetReconciliationHistory(ctx context.Context, input GetReconciliationHistoryInput) ([]*domain.Reconciliation, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.reconRepo.ListByTrustAccount(ctx, input.TrustAccountID, limit, offset)
}

// matchClearedItems pairs each cleared bank item with at most one book
// transaction. A candidate matches on exact amount plus, when the cleared
// item carries a reference, reference equality; without a reference the
// transaction date must fall at or before the statement date. Ties go to
// the earliest-dated candidate. Returns the tagged match outcomes and the
// book transactions left unmatched.
func matchClearedItems(cleared []domain.ClearedItem, transactions []*domain.Transaction, statementDate time.Time) ([]domain.ClearedItemMatch, []*domain.Transaction) {
	candidates := make([]*domain.Transaction, len(transactions))
	copy(candidates, transactions)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	matched := make(map[string]bool, len(candidates))
	matches := make([]domain.ClearedItemMatch, 0, len(cleared))
	cutoff := endOfDay(statementDate)

	for _, item := range cleared {
		var found *domain.Transaction
		for _, txn := range candidates {
			if matched[txn.ID] {
				continue
			}
			if !txn.Amount.Equal(item.Amount) {
				continue
			}
			if item.Reference != "" {
				if txn.Reference != item.Reference {
					continue
				}
			} else if txn.CreatedAt.After(cutoff) {
				continue
			}
			found = txn
			break
		}

		if found == nil {
			matches = append(matches, domain.ClearedItemMatch{
				Item: item,
				Kind: domain.MatchKindUnmatched,
			})
			continue
		}

		matched[found.ID] = true
		matches = append(matches, domain.ClearedItemMatch{
			Item:          item,
			Kind:          domain.MatchKindMatched,
			TransactionID: found.ID,
		})
	}

	var outstanding []*domain.Transaction
	for _, txn := range transactions {
		if !matched[txn.ID] {
			outstanding = append(outstanding, txn)
		}
	}

	return matches, outstanding
}

func hasUnmatchedBankItems(items []domain.ReconciliationItem) bool {
	for _, item := range items {
		if item.Side == domain.ItemSideBank {
			return true
		}
	}
	return false
}

// endOfDay returns the last representable instant of the given date in UTC.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

func (uc *ReconciliationUseCase) auditRun(ctx context.Context, resourceID string, after domain.JSON, opErr error) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		FirmID:       firmFromContext(ctx),
		ActorID:      actorFromContext(ctx),
		Action:       string(domain.AuditActionReconcile),
		ResourceType: domain.ResourceTypeReconciliation,
		ResourceID:   resourceID,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if opErr != nil {
		log.Status = string(domain.AuditStatusFailure)
		log.ErrorMessage = opErr.Error()
	}

	_ = uc.auditRepo.Create(ctx, log)
}
