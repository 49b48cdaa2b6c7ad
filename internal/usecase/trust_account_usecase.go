package usecase

import (
	"context"
	"time"

	"github.com/iho/trustledger/internal/domain"
)

// TrustAccountUseCase handles trust account lifecycle.
type TrustAccountUseCase struct {
	txManager   TransactionManager
	accountRepo TrustAccountRepository
	ledgerRepo  ClientLedgerRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewTrustAccountUseCase creates a new TrustAccountUseCase.
func NewTrustAccountUseCase(
	txManager TransactionManager,
	accountRepo TrustAccountRepository,
	ledgerRepo ClientLedgerRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *TrustAccountUseCase {
	return &TrustAccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateTrustAccountInput represents input for creating a trust account.
type CreateTrustAccountInput struct {
	FirmID        string
	BankName      string
	AccountNumber string
	RoutingNumber string
}

// CreateTrustAccount creates a new trust account for a firm.
func (uc *TrustAccountUseCase) CreateTrustAccount(ctx context.Context, input CreateTrustAccountInput) (*domain.TrustAccount, error) {
	if err := domain.ValidateBankName(input.BankName); err != nil {
		return nil, err
	}
	if err := domain.ValidateAccountNumber(input.AccountNumber); err != nil {
		return nil, err
	}
	if err := domain.ValidateRoutingNumber(input.RoutingNumber); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.TrustAccount{
		ID:            uc.idGen.Generate(),
		FirmID:        input.FirmID,
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		RoutingNumber: input.RoutingNumber,
		AccountType:   domain.TrustAccountTypeTrust,
		Status:        domain.TrustAccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.auditStatus(ctx, domain.AuditActionAccountCreate, account.ID, nil)

	return account, nil
}

// GetTrustAccount retrieves a trust account by ID.
func (uc *TrustAccountUseCase) GetTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListTrustAccountsInput represents input for listing trust accounts.
type ListTrustAccountsInput struct {
	FirmID string
	Limit  int
	Offset int
}

// ListTrustAccounts lists a firm's trust accounts.
func (uc *TrustAccountUseCase) ListTrustAccounts(ctx context.Context, input ListTrustAccountsInput) ([]*domain.TrustAccount, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.ListByFirm(ctx, input.FirmID, limit, offset)
}

// CloseTrustAccount closes a trust account. Forbidden while any client
// funds remain; accounts with transaction history are never deleted, only
// marked closed.
func (uc *TrustAccountUseCase) CloseTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error) {
	return uc.transition(ctx, id, domain.TrustAccountStatusClosed, domain.AuditActionAccountClose)
}

// FreezeTrustAccount freezes an active trust account.
func (uc *TrustAccountUseCase) FreezeTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error) {
	return uc.transition(ctx, id, domain.TrustAccountStatusFrozen, domain.AuditActionAccountFreeze)
}

// UnfreezeTrustAccount returns a frozen account to active. This is the
// authorized override; the acting user is recorded in the audit trail.
func (uc *TrustAccountUseCase) UnfreezeTrustAccount(ctx context.Context, id string) (*domain.TrustAccount, error) {
	return uc.transition(ctx, id, domain.TrustAccountStatusActive, domain.AuditActionAccountUnfreeze)
}

func (uc *TrustAccountUseCase) transition(ctx context.Context, id string, next domain.TrustAccountStatus, action domain.AuditAction) (*domain.TrustAccount, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	if actor, ok := domain.ActorFromContext(ctx); ok {
		if err := account.ValidateOwnership(actor.FirmID); err != nil {
			return nil, err
		}
	}

	if err := account.CanTransitionTo(next); err != nil {
		return nil, err
	}

	if next == domain.TrustAccountStatusClosed {
		// The sum runs inside the tx with the ledger rows locked; a
		// deposit committing mid-close is counted before the account
		// closes.
		total, err := uc.ledgerRepo.SumActiveBalancesForUpdate(txCtx, tx, id)
		if err != nil {
			return nil, err
		}
		if !total.IsZero() {
			return nil, domain.ErrAccountNotEmpty
		}
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.UpdateStatus(txCtx, tx, id, next, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	before := account.Status
	account.Status = next
	account.UpdatedAt = now

	uc.auditStatus(ctx, action, account.ID, domain.JSON{"from": string(before), "to": string(next)})

	return account, nil
}

func (uc *TrustAccountUseCase) auditStatus(ctx context.Context, action domain.AuditAction, accountID string, state domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		FirmID:       firmFromContext(ctx),
		ActorID:      actorFromContext(ctx),
		Action:       string(action),
		ResourceType: domain.ResourceTypeTrustAccount,
		ResourceID:   accountID,
		AfterState:   state,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
