package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/infrastructure/metrics"
)

// TransactionUseCase is the transaction engine: it validates and applies a
// single posting against one client ledger and its parent trust account,
// enforcing non-negativity and writing the immutable transaction row and
// the cached balance in one atomic unit.
type TransactionUseCase struct {
	txManager       TransactionManager
	trustAccountRep TrustAccountRepository
	ledgerRepo      ClientLedgerRepository
	txnRepo         TransactionRepository
	outboxRepo      OutboxRepository
	auditRepo       AuditRepository
	idGen           IDGenerator
	retrier         Retrier
	metrics         *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	trustAccountRepo TrustAccountRepository,
	ledgerRepo ClientLedgerRepository,
	txnRepo TransactionRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		trustAccountRep: trustAccountRepo,
		ledgerRepo:      ledgerRepo,
		txnRepo:         txnRepo,
		outboxRepo:      outboxRepo,
		auditRepo:       auditRepo,
		idGen:           idGen,
		retrier:         retrier,
		metrics:         metrics,
	}
}

// PostTransactionInput represents input for posting a transaction.
// Amount is always positive; Type determines the applied sign.
type PostTransactionInput struct {
	TrustAccountID string
	ClientLedgerID string
	Type           domain.TransactionType
	Amount         decimal.Decimal
	Description    string
	Reference      string
}

// PostTransaction validates and applies a single posting. On success the
// immutable transaction row (with BalanceAfter) and the updated cached
// balance commit together; on any failure nothing is committed.
func (uc *TransactionUseCase) PostTransaction(ctx context.Context, input PostTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	signedAmount, err := domain.SignedAmount(input.Type, input.Amount)
	if err != nil {
		return nil, err
	}

	var txn *domain.Transaction

	// Serialization conflicts on the ledger row are the only retried
	// failures; business-rule rejections are permanent.
	err = uc.retry(ctx, func() error {
		var postErr error
		txn, postErr = uc.post(ctx, input, signedAmount)
		return postErr
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransactionErrors.WithLabelValues(errorLabel(err)).Inc()
		}
		uc.audit(ctx, domain.AuditActionTransactionPost, domain.ResourceTypeTransaction, input.ClientLedgerID, nil, err)

		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsPosted.Inc()
	}
	uc.audit(ctx, domain.AuditActionTransactionPost, domain.ResourceTypeTransaction, txn.ID, domain.MarshalState(txn), nil)

	return txn, nil
}

func (uc *TransactionUseCase) post(ctx context.Context, input PostTransactionInput, signedAmount decimal.Decimal) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	_, ledger, err := uc.loadAndCheck(txCtx, tx, input.TrustAccountID, input.ClientLedgerID)
	if err != nil {
		return nil, err
	}

	newBalance := ledger.CurrentBalance.Add(signedAmount)
	if signedAmount.IsNegative() && newBalance.IsNegative() {
		return nil, domain.ErrInsufficientTrustFunds
	}

	now := time.Now().UTC()
	actorID := actorFromContext(ctx)

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		TrustAccountID: input.TrustAccountID,
		ClientLedgerID: input.ClientLedgerID,
		Type:           input.Type,
		Amount:         signedAmount,
		Description:    input.Description,
		Reference:      input.Reference,
		Status:         domain.TransactionStatusCompleted,
		BalanceAfter:   newBalance,
		CreatedBy:      actorID,
		CreatedAt:      now,
	}

	if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.UpdateBalance(txCtx, tx, ledger.ID, newBalance, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionPosted,
		Payload: map[string]any{
			"transaction_id":   txn.ID,
			"trust_account_id": txn.TrustAccountID,
			"client_ledger_id": txn.ClientLedgerID,
			"type":             string(txn.Type),
			"amount":           txn.Amount.String(),
			"balance_after":    txn.BalanceAfter.String(),
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

	return txn, nil
}

// VoidTransactionInput represents input for voiding a transaction.
type VoidTransactionInput struct {
	TransactionID string
	Description   string
}

// VoidTransaction posts an offsetting transaction referencing the original
// and flags the original voided. The original's Amount and BalanceAfter
// are never altered. The offsetting posting is subject to the same
// non-negativity check as any other debit.
func (uc *TransactionUseCase) VoidTransaction(ctx context.Context, input VoidTransactionInput) (*domain.Transaction, error) {
	var offsetting *domain.Transaction

	err := uc.retry(ctx, func() error {
		var voidErr error
		offsetting, voidErr = uc.void(ctx, input)
		return voidErr
	})
	if err != nil {
		uc.audit(ctx, domain.AuditActionTransactionVoid, domain.ResourceTypeTransaction, input.TransactionID, nil, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsVoided.Inc()
	}
	uc.audit(ctx, domain.AuditActionTransactionVoid, domain.ResourceTypeTransaction, input.TransactionID, domain.MarshalState(offsetting), nil)

	return offsetting, nil
}

func (uc *TransactionUseCase) void(ctx context.Context, input VoidTransactionInput) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	original, err := uc.txnRepo.GetByIDForUpdate(txCtx, tx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	if original.IsVoided() {
		return nil, domain.ErrTransactionAlreadyVoid
	}

	if original.VoidsTransactionID != nil {
		// Offsetting rows are corrections; voiding a correction is not a
		// supported operation.
		return nil, domain.ErrInvalidStatusTransition
	}

	ledger, err := uc.ledgerRepo.GetByIDForUpdate(txCtx, tx, original.ClientLedgerID)
	if err != nil {
		return nil, err
	}

	if err := ledger.CanTransact(); err != nil {
		return nil, err
	}

	offsetAmount := original.Amount.Neg()
	newBalance := ledger.CurrentBalance.Add(offsetAmount)
	if offsetAmount.IsNegative() && newBalance.IsNegative() {
		return nil, domain.ErrInsufficientTrustFunds
	}

	now := time.Now().UTC()
	actorID := actorFromContext(ctx)

	description := input.Description
	if description == "" {
		description = "void of " + original.ID
	}

	offsetting := &domain.Transaction{
		ID:                 uc.idGen.Generate(),
		TrustAccountID:     original.TrustAccountID,
		ClientLedgerID:     original.ClientLedgerID,
		Type:               domain.OffsettingType(original.Type),
		Amount:             offsetAmount,
		Description:        description,
		Reference:          original.Reference,
		Status:             domain.TransactionStatusCompleted,
		BalanceAfter:       newBalance,
		VoidsTransactionID: &original.ID,
		CreatedBy:          actorID,
		CreatedAt:          now,
	}

	if err := uc.txnRepo.Create(txCtx, tx, offsetting); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.MarkVoided(txCtx, tx, original.ID); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.UpdateBalance(txCtx, tx, ledger.ID, newBalance, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   original.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionVoided,
		Payload: map[string]any{
			"original_transaction_id":   original.ID,
			"offsetting_transaction_id": offsetting.ID,
			"amount":                    offsetAmount.String(),
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

	return offsetting, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListTransactionsInput represents input for listing ledger transactions.
type ListTransactionsInput struct {
	ClientLedgerID string
	Limit          int
	Offset         int
}

// ListTransactions lists transactions for a client ledger.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.txnRepo.ListByLedger(ctx, input.ClientLedgerID, limit, offset)
}

// loadAndCheck locks the ledger row and enforces the referential
// preconditions. The account status is read after the lock is held, so a
// close that committed while this posting waited on the ledger row is
// seen. There is no account-level lock: postings against different
// ledgers proceed in parallel.
func (uc *TransactionUseCase) loadAndCheck(ctx context.Context, tx Transaction, trustAccountID, ledgerID string) (*domain.TrustAccount, *domain.ClientLedger, error) {
	ledger, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, ledgerID)
	if err != nil {
		return nil, nil, err
	}

	if ledger.TrustAccountID != trustAccountID {
		return nil, nil, domain.ErrLedgerAccountMismatch
	}

	if err := ledger.CanTransact(); err != nil {
		return nil, nil, err
	}

	account, err := uc.trustAccountRep.GetByID(ctx, trustAccountID)
	if err != nil {
		return nil, nil, err
	}

	if err := account.CanTransact(); err != nil {
		return nil, nil, err
	}

	if actor, ok := domain.ActorFromContext(ctx); ok {
		if err := account.ValidateOwnership(actor.FirmID); err != nil {
			return nil, nil, err
		}
	}

	return account, ledger, nil
}

func (uc *TransactionUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *TransactionUseCase) audit(ctx context.Context, action domain.AuditAction, resourceType, resourceID string, after domain.JSON, opErr error) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		ActorID:      actorFromContext(ctx),
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if actor, ok := domain.ActorFromContext(ctx); ok {
		log.FirmID = actor.FirmID
	}

	if opErr != nil {
		log.Status = string(domain.AuditStatusFailure)
		log.ErrorMessage = opErr.Error()
	}

	_ = uc.auditRepo.Create(ctx, log)
}

func actorFromContext(ctx context.Context) string {
	if actor, ok := domain.ActorFromContext(ctx); ok {
		return actor.UserID
	}
	return "system"
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientTrustFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrLedgerAccountMismatch), errors.Is(err, domain.ErrFirmMismatch):
		return "referential"
	case errors.Is(err, domain.ErrTrustAccountNotFound), errors.Is(err, domain.ErrLedgerNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrTrustAccountNotActive), errors.Is(err, domain.ErrLedgerNotActive):
		return "inactive"
	default:
		return "other"
	}
}
