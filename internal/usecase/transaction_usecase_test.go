package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
	"github.com/iho/trustledger/internal/usecase/mocks"
)

func newTransactionUseCase(
	accountRepo *mocks.MockTrustAccountRepository,
	ledgerRepo *mocks.MockClientLedgerRepository,
	txnRepo *mocks.MockTransactionRepository,
) *usecase.TransactionUseCase {
	return usecase.NewTransactionUseCase(
		mocks.NewMockTransactionManager(),
		accountRepo,
		ledgerRepo,
		txnRepo,
		mocks.NewMockOutboxRepository(),
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
		nil,
	)
}

func activeAccount(id string) *domain.TrustAccount {
	return &domain.TrustAccount{
		ID:            id,
		FirmID:        "firm-1",
		BankName:      "First National",
		AccountNumber: "12345678",
		RoutingNumber: "021000021",
		AccountType:   domain.TrustAccountTypeTrust,
		Status:        domain.TrustAccountStatusActive,
	}
}

func activeLedger(id, accountID string, balance decimal.Decimal) *domain.ClientLedger {
	return &domain.ClientLedger{
		ID:             id,
		TrustAccountID: accountID,
		ClientID:       "client-1",
		MatterID:       "matter-1",
		Status:         domain.ClientLedgerStatusActive,
		CurrentBalance: balance,
	}
}

func TestTransactionUseCase_PostTransaction(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.PostTransactionInput
		account     *domain.TrustAccount
		ledger      *domain.ClientLedger
		expectError bool
		errorType   error
		wantBalance string
	}{
		{
			name: "successful deposit",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.NewFromInt(1000),
				Description:    "retainer deposit",
			},
			account:     activeAccount("ta-1"),
			ledger:      activeLedger("cl-1", "ta-1", decimal.Zero),
			wantBalance: "1000",
		},
		{
			name: "successful withdrawal within balance",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeWithdrawal,
				Amount:         decimal.NewFromInt(300),
				Description:    "invoice payment",
			},
			account:     activeAccount("ta-1"),
			ledger:      activeLedger("cl-1", "ta-1", decimal.NewFromInt(1000)),
			wantBalance: "700",
		},
		{
			name: "withdrawal to exactly zero",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeWithdrawal,
				Amount:         decimal.NewFromInt(1000),
				Description:    "final disbursement",
			},
			account:     activeAccount("ta-1"),
			ledger:      activeLedger("cl-1", "ta-1", decimal.NewFromInt(1000)),
			wantBalance: "0",
		},
		{
			name: "reject overdraft",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeWithdrawal,
				Amount:         decimal.NewFromInt(500),
				Description:    "invoice payment",
			},
			account:     activeAccount("ta-1"),
			ledger:      activeLedger("cl-1", "ta-1", decimal.NewFromInt(100)),
			expectError: true,
			errorType:   domain.ErrInsufficientTrustFunds,
		},
		{
			name: "reject ledger under a different account",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.NewFromInt(100),
				Description:    "deposit",
			},
			account:     activeAccount("ta-1"),
			ledger:      activeLedger("cl-1", "ta-other", decimal.Zero),
			expectError: true,
			errorType:   domain.ErrLedgerAccountMismatch,
		},
		{
			name: "reject frozen account",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.NewFromInt(100),
				Description:    "deposit",
			},
			account: &domain.TrustAccount{
				ID:     "ta-1",
				FirmID: "firm-1",
				Status: domain.TrustAccountStatusFrozen,
			},
			ledger:      activeLedger("cl-1", "ta-1", decimal.Zero),
			expectError: true,
			errorType:   domain.ErrTrustAccountNotActive,
		},
		{
			name: "reject closed ledger",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.NewFromInt(100),
				Description:    "deposit",
			},
			account: activeAccount("ta-1"),
			ledger: &domain.ClientLedger{
				ID:             "cl-1",
				TrustAccountID: "ta-1",
				Status:         domain.ClientLedgerStatusClosed,
			},
			expectError: true,
			errorType:   domain.ErrLedgerNotActive,
		},
		{
			name: "reject zero amount",
			input: usecase.PostTransactionInput{
				TrustAccountID: "ta-1",
				ClientLedgerID: "cl-1",
				Type:           domain.TransactionTypeDeposit,
				Amount:         decimal.Zero,
				Description:    "deposit",
			},
			account:     activeAccount("ta-1"),
			ledger:      activeLedger("cl-1", "ta-1", decimal.Zero),
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := mocks.NewMockTrustAccountRepository()
			ledgerRepo := mocks.NewMockClientLedgerRepository()
			txnRepo := mocks.NewMockTransactionRepository()

			accountRepo.Create(context.Background(), tt.account)
			ledgerRepo.Create(context.Background(), tt.ledger)

			uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)
			txn, err := uc.PostTransaction(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if txn == nil {
				t.Fatal("expected transaction, got nil")
			}
			if txn.Status != domain.TransactionStatusCompleted {
				t.Errorf("expected status completed, got %s", txn.Status)
			}
			if txn.BalanceAfter.String() != tt.wantBalance {
				t.Errorf("expected balance after %s, got %s", tt.wantBalance, txn.BalanceAfter)
			}

			ledger, _ := ledgerRepo.GetByID(context.Background(), tt.ledger.ID)
			if ledger.CurrentBalance.String() != tt.wantBalance {
				t.Errorf("expected cached balance %s, got %s", tt.wantBalance, ledger.CurrentBalance)
			}
		})
	}
}

func TestTransactionUseCase_PostTransaction_SignConvention(t *testing.T) {
	accountRepo := mocks.NewMockTrustAccountRepository()
	ledgerRepo := mocks.NewMockClientLedgerRepository()
	txnRepo := mocks.NewMockTransactionRepository()

	accountRepo.Create(context.Background(), activeAccount("ta-1"))
	ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.NewFromInt(500)))

	uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

	deposit, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
		TrustAccountID: "ta-1",
		ClientLedgerID: "cl-1",
		Type:           domain.TransactionTypeDeposit,
		Amount:         decimal.NewFromInt(100),
		Description:    "deposit",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deposit.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("deposit should be stored positive, got %s", deposit.Amount)
	}

	withdrawal, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
		TrustAccountID: "ta-1",
		ClientLedgerID: "cl-1",
		Type:           domain.TransactionTypeWithdrawal,
		Amount:         decimal.NewFromInt(100),
		Description:    "withdrawal",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !withdrawal.Amount.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("withdrawal should be stored negative, got %s", withdrawal.Amount)
	}
}

func TestTransactionUseCase_VoidTransaction(t *testing.T) {
	t.Run("void a deposit", func(t *testing.T) {
		accountRepo := mocks.NewMockTrustAccountRepository()
		ledgerRepo := mocks.NewMockClientLedgerRepository()
		txnRepo := mocks.NewMockTransactionRepository()

		accountRepo.Create(context.Background(), activeAccount("ta-1"))
		ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

		uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

		original, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
			TrustAccountID: "ta-1",
			ClientLedgerID: "cl-1",
			Type:           domain.TransactionTypeDeposit,
			Amount:         decimal.NewFromInt(250),
			Description:    "deposit",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		offsetting, err := uc.VoidTransaction(context.Background(), usecase.VoidTransactionInput{
			TransactionID: original.ID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !offsetting.Amount.Equal(decimal.NewFromInt(-250)) {
			t.Errorf("expected offsetting amount -250, got %s", offsetting.Amount)
		}
		if offsetting.VoidsTransactionID == nil || *offsetting.VoidsTransactionID != original.ID {
			t.Error("offsetting transaction should reference the original")
		}

		// The original row keeps its amount and balance snapshot; only the
		// status changes.
		reloaded, _ := txnRepo.GetByID(context.Background(), original.ID)
		if reloaded.Status != domain.TransactionStatusVoided {
			t.Errorf("expected original status voided, got %s", reloaded.Status)
		}
		if !reloaded.Amount.Equal(decimal.NewFromInt(250)) {
			t.Errorf("original amount must be unchanged, got %s", reloaded.Amount)
		}

		ledger, _ := ledgerRepo.GetByID(context.Background(), "cl-1")
		if !ledger.CurrentBalance.IsZero() {
			t.Errorf("expected balance back to zero, got %s", ledger.CurrentBalance)
		}
	})

	t.Run("reject double void", func(t *testing.T) {
		accountRepo := mocks.NewMockTrustAccountRepository()
		ledgerRepo := mocks.NewMockClientLedgerRepository()
		txnRepo := mocks.NewMockTransactionRepository()

		accountRepo.Create(context.Background(), activeAccount("ta-1"))
		ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

		uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

		original, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
			TrustAccountID: "ta-1",
			ClientLedgerID: "cl-1",
			Type:           domain.TransactionTypeDeposit,
			Amount:         decimal.NewFromInt(100),
			Description:    "deposit",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := uc.VoidTransaction(context.Background(), usecase.VoidTransactionInput{TransactionID: original.ID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = uc.VoidTransaction(context.Background(), usecase.VoidTransactionInput{TransactionID: original.ID})
		if !errors.Is(err, domain.ErrTransactionAlreadyVoid) {
			t.Errorf("expected ErrTransactionAlreadyVoid, got %v", err)
		}
	})

	t.Run("reject voiding a deposit already spent", func(t *testing.T) {
		accountRepo := mocks.NewMockTrustAccountRepository()
		ledgerRepo := mocks.NewMockClientLedgerRepository()
		txnRepo := mocks.NewMockTransactionRepository()

		accountRepo.Create(context.Background(), activeAccount("ta-1"))
		ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

		uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

		deposit, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
			TrustAccountID: "ta-1",
			ClientLedgerID: "cl-1",
			Type:           domain.TransactionTypeDeposit,
			Amount:         decimal.NewFromInt(100),
			Description:    "deposit",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
			TrustAccountID: "ta-1",
			ClientLedgerID: "cl-1",
			Type:           domain.TransactionTypeWithdrawal,
			Amount:         decimal.NewFromInt(80),
			Description:    "disbursement",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Reversing the 100 deposit would leave the ledger at -80.
		_, err = uc.VoidTransaction(context.Background(), usecase.VoidTransactionInput{TransactionID: deposit.ID})
		if !errors.Is(err, domain.ErrInsufficientTrustFunds) {
			t.Errorf("expected ErrInsufficientTrustFunds, got %v", err)
		}
	})

	t.Run("reject voiding an offsetting transaction", func(t *testing.T) {
		accountRepo := mocks.NewMockTrustAccountRepository()
		ledgerRepo := mocks.NewMockClientLedgerRepository()
		txnRepo := mocks.NewMockTransactionRepository()

		accountRepo.Create(context.Background(), activeAccount("ta-1"))
		ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

		uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

		original, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
			TrustAccountID: "ta-1",
			ClientLedgerID: "cl-1",
			Type:           domain.TransactionTypeDeposit,
			Amount:         decimal.NewFromInt(100),
			Description:    "deposit",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		offsetting, err := uc.VoidTransaction(context.Background(), usecase.VoidTransactionInput{TransactionID: original.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = uc.VoidTransaction(context.Background(), usecase.VoidTransactionInput{TransactionID: offsetting.ID})
		if !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Errorf("expected ErrInvalidStatusTransition, got %v", err)
		}
	})
}

func TestTransactionUseCase_PostTransaction_FirmOwnership(t *testing.T) {
	accountRepo := mocks.NewMockTrustAccountRepository()
	ledgerRepo := mocks.NewMockClientLedgerRepository()
	txnRepo := mocks.NewMockTransactionRepository()

	accountRepo.Create(context.Background(), activeAccount("ta-1"))
	ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

	uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

	ctx := domain.WithActor(context.Background(), domain.Actor{FirmID: "firm-2", UserID: "user-9"})

	_, err := uc.PostTransaction(ctx, usecase.PostTransactionInput{
		TrustAccountID: "ta-1",
		ClientLedgerID: "cl-1",
		Type:           domain.TransactionTypeDeposit,
		Amount:         decimal.NewFromInt(100),
		Description:    "deposit",
	})
	if !errors.Is(err, domain.ErrFirmMismatch) {
		t.Errorf("expected ErrFirmMismatch, got %v", err)
	}
}

func TestTransactionUseCase_PostTransaction_RecordsCreator(t *testing.T) {
	accountRepo := mocks.NewMockTrustAccountRepository()
	ledgerRepo := mocks.NewMockClientLedgerRepository()
	txnRepo := mocks.NewMockTransactionRepository()

	accountRepo.Create(context.Background(), activeAccount("ta-1"))
	ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

	uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

	ctx := domain.WithActor(context.Background(), domain.Actor{FirmID: "firm-1", UserID: "user-42"})

	txn, err := uc.PostTransaction(ctx, usecase.PostTransactionInput{
		TrustAccountID: "ta-1",
		ClientLedgerID: "cl-1",
		Type:           domain.TransactionTypeDeposit,
		Amount:         decimal.NewFromInt(100),
		Description:    "deposit",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.CreatedBy != "user-42" {
		t.Errorf("expected creator user-42, got %s", txn.CreatedBy)
	}
	if txn.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if time.Since(txn.CreatedAt) > time.Minute {
		t.Error("CreatedAt should be recent")
	}
}

func TestTransactionUseCase_PostTransaction_AccountClosedWhileWaiting(t *testing.T) {
	accountRepo := mocks.NewMockTrustAccountRepository()
	ledgerRepo := mocks.NewMockClientLedgerRepository()
	txnRepo := mocks.NewMockTransactionRepository()

	accountRepo.Create(context.Background(), activeAccount("ta-1"))
	ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

	// The ledger lock is taken before the account status is read, so a
	// close that committed while this posting waited on the row must be
	// seen and the posting rejected.
	ledgerRepo.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.ClientLedger, error) {
		if err := accountRepo.UpdateStatus(ctx, tx, "ta-1", domain.TrustAccountStatusClosed, time.Now().UTC()); err != nil {
			return nil, err
		}
		return ledgerRepo.GetByID(ctx, id)
	}

	uc := newTransactionUseCase(accountRepo, ledgerRepo, txnRepo)

	_, err := uc.PostTransaction(context.Background(), usecase.PostTransactionInput{
		TrustAccountID: "ta-1",
		ClientLedgerID: "cl-1",
		Type:           domain.TransactionTypeDeposit,
		Amount:         decimal.NewFromInt(100),
		Description:    "late deposit",
	})
	if !errors.Is(err, domain.ErrTrustAccountNotActive) {
		t.Errorf("expected ErrTrustAccountNotActive, got %v", err)
	}
}
