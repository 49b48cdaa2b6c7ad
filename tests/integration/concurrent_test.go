package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/adapter/repository/postgres"
	"github.com/iho/trustledger/internal/usecase"
	"github.com/iho/trustledger/tests/testutil"
)

func TestConcurrentPostings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier()
	accountRepo := postgres.NewTrustAccountRepository(pool)
	ledgerRepo := postgres.NewClientLedgerRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()

	transactionUC := usecase.NewTransactionUseCase(txManager, accountRepo, ledgerRepo, txnRepo, outboxRepo, nil, idGen, retrier, nil)
	balanceUC := usecase.NewBalanceUseCase(ledgerRepo, txnRepo, nil)

	t.Run("concurrent deposits all land", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestTrustAccount(ctx, testFirmID)
		ledger := testDB.CreateTestLedger(ctx, account.ID, "client-1", "matter-1", "Concurrent Client")

		numDeposits := 50
		amount := decimal.NewFromInt(10)

		var wg sync.WaitGroup
		wg.Add(numDeposits)

		for range numDeposits {
			go func() {
				defer wg.Done()

				_, err := transactionUC.PostTransaction(ctx, usecase.PostTransactionInput{
					TrustAccountID: account.ID,
					ClientLedgerID: ledger.ID,
					Type:           "deposit",
					Amount:         amount,
					Description:    "concurrent deposit",
				})
				if err != nil {
					t.Errorf("deposit failed: %v", err)
				}
			}()
		}

		wg.Wait()

		got, err := ledgerRepo.GetByID(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("failed to load ledger: %v", err)
		}
		want := decimal.NewFromInt(500)
		if !got.CurrentBalance.Equal(want) {
			t.Errorf("expected balance %s, got %s", want, got.CurrentBalance)
		}

		recomputed, err := balanceUC.RecomputeBalance(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("recompute failed: %v", err)
		}
		if !recomputed.Equal(want) {
			t.Errorf("expected recomputed balance %s, got %s", want, recomputed)
		}
	})

	t.Run("concurrent withdrawals never overdraw", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestTrustAccount(ctx, testFirmID)
		// Funds for exactly 50 withdrawals of 10
		ledger := testDB.CreateTestLedgerWithBalance(ctx, account.ID, "client-2", "matter-2", "Funded Client", decimal.NewFromInt(500))

		numAttempts := 100
		amount := decimal.NewFromInt(10)

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			rejectCount  atomic.Int32
		)

		wg.Add(numAttempts)

		for range numAttempts {
			go func() {
				defer wg.Done()

				_, err := transactionUC.PostTransaction(ctx, usecase.PostTransactionInput{
					TrustAccountID: account.ID,
					ClientLedgerID: ledger.ID,
					Type:           "withdrawal",
					Amount:         amount,
					Description:    "concurrent withdrawal",
				})
				if err != nil {
					rejectCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if successCount.Load() != 50 {
			t.Errorf("expected 50 successful withdrawals, got %d (rejected: %d)", successCount.Load(), rejectCount.Load())
		}

		got, err := ledgerRepo.GetByID(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("failed to load ledger: %v", err)
		}
		if !got.CurrentBalance.IsZero() {
			t.Errorf("expected zero balance, got %s", got.CurrentBalance)
		}
		if got.CurrentBalance.IsNegative() {
			t.Errorf("ledger overdrawn: %s", got.CurrentBalance)
		}

		recomputed, err := balanceUC.RecomputeBalance(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("recompute failed: %v", err)
		}
		if !recomputed.IsZero() {
			t.Errorf("expected recomputed balance 0, got %s", recomputed)
		}
	})
}
