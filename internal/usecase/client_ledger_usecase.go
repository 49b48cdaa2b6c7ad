package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
)

// ClientLedgerUseCase handles client ledger lifecycle.
type ClientLedgerUseCase struct {
	txManager   TransactionManager
	accountRepo TrustAccountRepository
	ledgerRepo  ClientLedgerRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewClientLedgerUseCase creates a new ClientLedgerUseCase.
func NewClientLedgerUseCase(
	txManager TransactionManager,
	accountRepo TrustAccountRepository,
	ledgerRepo ClientLedgerRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *ClientLedgerUseCase {
	return &ClientLedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateClientLedgerInput represents input for creating a client ledger.
type CreateClientLedgerInput struct {
	TrustAccountID    string
	ClientID          string
	MatterID          string
	ClientName        string
	MatterDescription string
}

// CreateClientLedger creates a sub-ledger under an active trust account.
func (uc *ClientLedgerUseCase) CreateClientLedger(ctx context.Context, input CreateClientLedgerInput) (*domain.ClientLedger, error) {
	if input.ClientID == "" {
		return nil, domain.ErrInvalidClientID
	}
	if input.MatterID == "" {
		return nil, domain.ErrInvalidMatterID
	}

	account, err := uc.accountRepo.GetByID(ctx, input.TrustAccountID)
	if err != nil {
		return nil, err
	}

	if err := account.CanTransact(); err != nil {
		return nil, err
	}

	if actor, ok := domain.ActorFromContext(ctx); ok {
		if err := account.ValidateOwnership(actor.FirmID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	ledger := &domain.ClientLedger{
		ID:                uc.idGen.Generate(),
		TrustAccountID:    input.TrustAccountID,
		ClientID:          input.ClientID,
		MatterID:          input.MatterID,
		ClientName:        input.ClientName,
		MatterDescription: input.MatterDescription,
		Status:            domain.ClientLedgerStatusActive,
		CurrentBalance:    decimal.Zero,
		Version:           0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.ledgerRepo.Create(ctx, ledger); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			FirmID:       firmFromContext(ctx),
			ActorID:      actorFromContext(ctx),
			Action:       string(domain.AuditActionLedgerCreate),
			ResourceType: domain.ResourceTypeClientLedger,
			ResourceID:   ledger.ID,
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		})
	}

	return ledger, nil
}

// GetClientLedger retrieves a client ledger by ID.
func (uc *ClientLedgerUseCase) GetClientLedger(ctx context.Context, id string) (*domain.ClientLedger, error) {
	return uc.ledgerRepo.GetByID(ctx, id)
}

// ListClientLedgersInput represents input for listing client ledgers.
type ListClientLedgersInput struct {
	TrustAccountID string
	Limit          int
	Offset         int
}

// ListClientLedgers lists ledgers under a trust account.
func (uc *ClientLedgerUseCase) ListClientLedgers(ctx context.Context, input ListClientLedgersInput) ([]*domain.ClientLedger, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.ledgerRepo.ListByTrustAccount(ctx, input.TrustAccountID, limit, offset)
}

// CloseClientLedger closes a ledger. Only allowed when the balance is
// exactly zero.
func (uc *ClientLedgerUseCase) CloseClientLedger(ctx context.Context, id string) (*domain.ClientLedger, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	ledger, err := uc.ledgerRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := ledger.CanClose(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.ledgerRepo.UpdateStatus(txCtx, tx, id, domain.ClientLedgerStatusClosed, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	ledger.Status = domain.ClientLedgerStatusClosed
	ledger.UpdatedAt = now

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			FirmID:       firmFromContext(ctx),
			ActorID:      actorFromContext(ctx),
			Action:       string(domain.AuditActionLedgerClose),
			ResourceType: domain.ResourceTypeClientLedger,
			ResourceID:   id,
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		})
	}

	return ledger, nil
}
