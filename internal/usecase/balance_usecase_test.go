package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
	"github.com/iho/trustledger/internal/usecase/gomocks"
	"github.com/iho/trustledger/internal/usecase/mocks"
)

func TestBalanceUseCase_GetClientLedgerBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledgerRepo := gomocks.NewMockClientLedgerRepository(ctrl)
	ledgerRepo.EXPECT().GetByID(gomock.Any(), "cl-1").Return(&domain.ClientLedger{
		ID:             "cl-1",
		CurrentBalance: decimal.NewFromInt(750),
	}, nil)

	uc := usecase.NewBalanceUseCase(ledgerRepo, nil, nil)

	balance, err := uc.GetClientLedgerBalance(context.Background(), "cl-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(750)) {
		t.Errorf("expected balance 750, got %s", balance)
	}
}

func TestBalanceUseCase_GetTrustAccountBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledgerRepo := gomocks.NewMockClientLedgerRepository(ctrl)
	ledgerRepo.EXPECT().SumActiveBalances(gomock.Any(), "ta-1").Return(decimal.NewFromInt(1500), nil)

	uc := usecase.NewBalanceUseCase(ledgerRepo, nil, nil)

	balance, err := uc.GetTrustAccountBalance(context.Background(), "ta-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected balance 1500, got %s", balance)
	}
}

func TestBalanceUseCase_RecomputeBalance(t *testing.T) {
	t.Run("cached balance agrees with the log", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledgerRepo := gomocks.NewMockClientLedgerRepository(ctrl)
		txnRepo := gomocks.NewMockTransactionRepository(ctrl)

		ledgerRepo.EXPECT().GetByID(gomock.Any(), "cl-1").Return(&domain.ClientLedger{
			ID:             "cl-1",
			CurrentBalance: decimal.NewFromInt(700),
		}, nil)
		txnRepo.EXPECT().SumAmounts(gomock.Any(), "cl-1").Return(decimal.NewFromInt(700), nil)

		uc := usecase.NewBalanceUseCase(ledgerRepo, txnRepo, nil)

		computed, err := uc.RecomputeBalance(context.Background(), "cl-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !computed.Equal(decimal.NewFromInt(700)) {
			t.Errorf("expected 700, got %s", computed)
		}
	})

	t.Run("divergence raises a mismatch and an audit entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledgerRepo := gomocks.NewMockClientLedgerRepository(ctrl)
		txnRepo := gomocks.NewMockTransactionRepository(ctrl)
		auditRepo := mocks.NewMockAuditRepository()

		ledgerRepo.EXPECT().GetByID(gomock.Any(), "cl-1").Return(&domain.ClientLedger{
			ID:             "cl-1",
			CurrentBalance: decimal.NewFromInt(700),
		}, nil)
		txnRepo.EXPECT().SumAmounts(gomock.Any(), "cl-1").Return(decimal.NewFromInt(650), nil)

		uc := usecase.NewBalanceUseCase(ledgerRepo, txnRepo, auditRepo)

		computed, err := uc.RecomputeBalance(context.Background(), "cl-1")

		var mismatch *domain.BalanceMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected BalanceMismatchError, got %v", err)
		}
		if !mismatch.Cached.Equal(decimal.NewFromInt(700)) || !mismatch.Computed.Equal(decimal.NewFromInt(650)) {
			t.Errorf("mismatch should carry both values, got cached=%s computed=%s", mismatch.Cached, mismatch.Computed)
		}
		if !computed.Equal(decimal.NewFromInt(650)) {
			t.Errorf("expected computed 650, got %s", computed)
		}

		logs := auditRepo.Logs()
		if len(logs) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(logs))
		}
		if logs[0].Action != string(domain.AuditActionBalanceMismatch) {
			t.Errorf("expected mismatch audit action, got %s", logs[0].Action)
		}
	})

	t.Run("unknown ledger", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		ledgerRepo := gomocks.NewMockClientLedgerRepository(ctrl)
		ledgerRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, domain.ErrLedgerNotFound)

		uc := usecase.NewBalanceUseCase(ledgerRepo, nil, nil)

		_, err := uc.RecomputeBalance(context.Background(), "missing")
		if !errors.Is(err, domain.ErrLedgerNotFound) {
			t.Errorf("expected ErrLedgerNotFound, got %v", err)
		}
	})
}

func TestBalanceUseCase_GetBalanceAsOf(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	at := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)

	ledgerRepo := gomocks.NewMockClientLedgerRepository(ctrl)
	txnRepo := gomocks.NewMockTransactionRepository(ctrl)

	ledgerRepo.EXPECT().GetByID(gomock.Any(), "cl-1").Return(&domain.ClientLedger{ID: "cl-1"}, nil)
	txnRepo.EXPECT().GetLedgerBalanceAsOf(gomock.Any(), "cl-1", at).Return(decimal.NewFromInt(420), nil)

	uc := usecase.NewBalanceUseCase(ledgerRepo, txnRepo, nil)

	balance, err := uc.GetBalanceAsOf(context.Background(), "cl-1", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(420)) {
		t.Errorf("expected 420, got %s", balance)
	}
}
