package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
)

// BalanceUseCase is the balance query service. The cached CurrentBalance
// is authoritative for reads; RecomputeBalance cross-checks it against the
// transaction log and raises a data-integrity alarm on divergence.
type BalanceUseCase struct {
	ledgerRepo ClientLedgerRepository
	txnRepo    TransactionRepository
	auditRepo  AuditRepository
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	ledgerRepo ClientLedgerRepository,
	txnRepo TransactionRepository,
	auditRepo AuditRepository,
) *BalanceUseCase {
	return &BalanceUseCase{
		ledgerRepo: ledgerRepo,
		txnRepo:    txnRepo,
		auditRepo:  auditRepo,
	}
}

// GetClientLedgerBalance returns the cached balance of a client ledger.
func (uc *BalanceUseCase) GetClientLedgerBalance(ctx context.Context, ledgerID string) (decimal.Decimal, error) {
	ledger, err := uc.ledgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}

	return ledger.CurrentBalance, nil
}

// GetTrustAccountBalance returns the sum of all active client ledgers'
// cached balances under the trust account. The trust account balance is
// never stored: this derivation is the no-commingling invariant made
// concrete.
func (uc *BalanceUseCase) GetTrustAccountBalance(ctx context.Context, trustAccountID string) (decimal.Decimal, error) {
	return uc.ledgerRepo.SumActiveBalances(ctx, trustAccountID)
}

// RecomputeBalance independently sums the ledger's full transaction log.
// Voided originals and their offsetting rows cancel, so the sum must land
// exactly on the cached balance. Divergence is returned as a
// BalanceMismatchError and recorded in the audit trail; the cached value
// is never silently corrected.
func (uc *BalanceUseCase) RecomputeBalance(ctx context.Context, ledgerID string) (decimal.Decimal, error) {
	ledger, err := uc.ledgerRepo.GetByID(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}

	computed, err := uc.txnRepo.SumAmounts(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}

	if !computed.Equal(ledger.CurrentBalance) {
		mismatch := &domain.BalanceMismatchError{
			LedgerID: ledgerID,
			Cached:   ledger.CurrentBalance,
			Computed: computed,
		}

		if uc.auditRepo != nil {
			_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
				FirmID:       firmFromContext(ctx),
				ActorID:      actorFromContext(ctx),
				Action:       string(domain.AuditActionBalanceMismatch),
				ResourceType: domain.ResourceTypeClientLedger,
				ResourceID:   ledgerID,
				BeforeState: domain.JSON{
					"cached_balance":   ledger.CurrentBalance.String(),
					"computed_balance": computed.String(),
				},
				Status:       string(domain.AuditStatusError),
				ErrorMessage: mismatch.Error(),
				CreatedAt:    time.Now().UTC(),
			})
		}

		return computed, mismatch
	}

	return computed, nil
}

// GetBalanceAsOf returns the client-ledger balance at a point in time,
// derived from the transaction history.
func (uc *BalanceUseCase) GetBalanceAsOf(ctx context.Context, ledgerID string, at time.Time) (decimal.Decimal, error) {
	if _, err := uc.ledgerRepo.GetByID(ctx, ledgerID); err != nil {
		return decimal.Zero, err
	}

	return uc.txnRepo.GetLedgerBalanceAsOf(ctx, ledgerID, at)
}

func firmFromContext(ctx context.Context) string {
	if actor, ok := domain.ActorFromContext(ctx); ok {
		return actor.FirmID
	}
	return ""
}
