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

type reconFixture struct {
	accountRepo   *mocks.MockTrustAccountRepository
	ledgerRepo    *mocks.MockClientLedgerRepository
	txnRepo       *mocks.MockTransactionRepository
	statementRepo *mocks.MockBankStatementRepository
	reconRepo     *mocks.MockReconciliationRepository
	txnUC         *usecase.TransactionUseCase
	statementUC   *usecase.StatementUseCase
	reconUC       *usecase.ReconciliationUseCase
}

func newReconFixture() *reconFixture {
	f := &reconFixture{
		accountRepo:   mocks.NewMockTrustAccountRepository(),
		ledgerRepo:    mocks.NewMockClientLedgerRepository(),
		txnRepo:       mocks.NewMockTransactionRepository(),
		statementRepo: mocks.NewMockBankStatementRepository(),
		reconRepo:     mocks.NewMockReconciliationRepository(),
	}

	txMgr := mocks.NewMockTransactionManager()
	outboxRepo := mocks.NewMockOutboxRepository()
	auditRepo := mocks.NewMockAuditRepository()
	idGen := mocks.NewMockIDGenerator()

	f.txnUC = usecase.NewTransactionUseCase(
		txMgr, f.accountRepo, f.ledgerRepo, f.txnRepo, outboxRepo, auditRepo, idGen, mocks.NewMockRetrier(), nil,
	)
	f.statementUC = usecase.NewStatementUseCase(
		txMgr, f.accountRepo, f.statementRepo, outboxRepo, auditRepo, idGen, nil, nil,
	)
	f.reconUC = usecase.NewReconciliationUseCase(
		txMgr, f.statementRepo, f.txnRepo, f.reconRepo, outboxRepo, auditRepo, idGen, nil,
	)

	f.accountRepo.Create(context.Background(), activeAccount("ta-1"))
	f.ledgerRepo.Create(context.Background(), activeLedger("cl-1", "ta-1", decimal.Zero))

	return f
}

func (f *reconFixture) post(t *testing.T, txType domain.TransactionType, amount int64, reference string) *domain.Transaction {
	t.Helper()
	txn, err := f.txnUC.PostTransaction(context.Background(), usecase.PostTransactionInput{
		TrustAccountID: "ta-1",
		ClientLedgerID: "cl-1",
		Type:           txType,
		Amount:         decimal.NewFromInt(amount),
		Description:    string(txType),
		Reference:      reference,
	})
	if err != nil {
		t.Fatalf("posting failed: %v", err)
	}
	return txn
}

func (f *reconFixture) importStatement(t *testing.T, date time.Time, ending int64, items []usecase.ImportClearedItem) *domain.BankStatement {
	t.Helper()
	statement, err := f.statementUC.ImportStatement(context.Background(), usecase.ImportStatementInput{
		TrustAccountID:   "ta-1",
		StatementDate:    date,
		BeginningBalance: decimal.Zero,
		EndingBalance:    decimal.NewFromInt(ending),
		Items:            items,
	})
	if err != nil {
		t.Fatalf("statement import failed: %v", err)
	}
	return statement
}

func TestReconciliationUseCase_Reconcile_AllCleared(t *testing.T) {
	f := newReconFixture()

	// Book: +1000 deposit, -300 withdrawal, balance 700. The bank cleared
	// both, ending at 700.
	f.post(t, domain.TransactionTypeDeposit, 1000, "dep-001")
	f.post(t, domain.TransactionTypeWithdrawal, 300, "chk-101")

	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 700, []usecase.ImportClearedItem{
		{Amount: decimal.NewFromInt(1000), Date: statementDate, Reference: "dep-001"},
		{Amount: decimal.NewFromInt(-300), Date: statementDate, Reference: "chk-101"},
	})

	recon, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recon.Status != domain.ReconciliationStatusCompleted {
		t.Errorf("expected status completed, got %s", recon.Status)
	}
	if !recon.Delta.IsZero() {
		t.Errorf("expected zero delta, got %s", recon.Delta)
	}
	if !recon.BookBalance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected book balance 700, got %s", recon.BookBalance)
	}
	if !recon.AdjustedBankBalance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected adjusted bank balance 700, got %s", recon.AdjustedBankBalance)
	}
	if len(recon.Items) != 0 {
		t.Errorf("expected no unreconciled items, got %d", len(recon.Items))
	}
}

func TestReconciliationUseCase_Reconcile_OutstandingWithdrawal(t *testing.T) {
	f := newReconFixture()

	// The -300 check has not cleared. Bank shows 1000; adjusted bank
	// balance is 1000 - 300 = 700 = book. Timing difference, not a
	// discrepancy.
	f.post(t, domain.TransactionTypeDeposit, 1000, "dep-001")
	outstanding := f.post(t, domain.TransactionTypeWithdrawal, 300, "chk-101")

	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 1000, []usecase.ImportClearedItem{
		{Amount: decimal.NewFromInt(1000), Date: statementDate, Reference: "dep-001"},
	})

	recon, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recon.Status != domain.ReconciliationStatusCompleted {
		t.Errorf("expected status completed, got %s", recon.Status)
	}
	if !recon.Delta.IsZero() {
		t.Errorf("expected zero delta, got %s", recon.Delta)
	}

	items := recon.OutstandingItems()
	if len(items) != 1 {
		t.Fatalf("expected 1 outstanding item, got %d", len(items))
	}
	if items[0].TransactionID != outstanding.ID {
		t.Errorf("expected outstanding item for %s, got %s", outstanding.ID, items[0].TransactionID)
	}
	if !items[0].Amount.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected outstanding amount -300, got %s", items[0].Amount)
	}
}

func TestReconciliationUseCase_Reconcile_UnmatchedBankItem(t *testing.T) {
	f := newReconFixture()

	// Book balance 700. Bank cleared both book items plus a -50 fee the
	// books never recorded, ending at 650. Delta of 50 plus the unmatched
	// bank item make this a discrepancy.
	f.post(t, domain.TransactionTypeDeposit, 1000, "dep-001")
	f.post(t, domain.TransactionTypeWithdrawal, 300, "chk-101")

	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 650, []usecase.ImportClearedItem{
		{Amount: decimal.NewFromInt(1000), Date: statementDate, Reference: "dep-001"},
		{Amount: decimal.NewFromInt(-300), Date: statementDate, Reference: "chk-101"},
		{Amount: decimal.NewFromInt(-50), Date: statementDate, Reference: "fee-900"},
	})

	recon, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recon.Status != domain.ReconciliationStatusDiscrepancy {
		t.Errorf("expected status discrepancy, got %s", recon.Status)
	}
	if !recon.Delta.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected delta 50, got %s", recon.Delta)
	}

	bankItems := recon.UnmatchedBankItems()
	if len(bankItems) != 1 {
		t.Fatalf("expected 1 unmatched bank item, got %d", len(bankItems))
	}
	if !bankItems[0].Amount.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("expected unmatched amount -50, got %s", bankItems[0].Amount)
	}
	if bankItems[0].Reference != "fee-900" {
		t.Errorf("expected reference fee-900, got %s", bankItems[0].Reference)
	}
}

func TestReconciliationUseCase_Reconcile_VoidPairNetsToZero(t *testing.T) {
	f := newReconFixture()

	f.post(t, domain.TransactionTypeDeposit, 1000, "dep-001")
	voided := f.post(t, domain.TransactionTypeWithdrawal, 300, "chk-101")

	if _, err := f.txnUC.VoidTransaction(context.Background(), usecase.VoidTransactionInput{
		TransactionID: voided.ID,
	}); err != nil {
		t.Fatalf("void failed: %v", err)
	}

	// Book balance after the void is back to 1000; the bank only saw the
	// deposit. The voided withdrawal and its offsetting row both stay
	// outstanding and cancel in the adjustment.
	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 1000, []usecase.ImportClearedItem{
		{Amount: decimal.NewFromInt(1000), Date: statementDate, Reference: "dep-001"},
	})

	recon, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recon.Status != domain.ReconciliationStatusCompleted {
		t.Errorf("expected status completed, got %s (delta %s)", recon.Status, recon.Delta)
	}
	if !recon.BookBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected book balance 1000, got %s", recon.BookBalance)
	}
	if len(recon.OutstandingItems()) != 2 {
		t.Errorf("expected the void pair outstanding, got %d items", len(recon.OutstandingItems()))
	}
}

func TestReconciliationUseCase_Reconcile_StatementAccountMismatch(t *testing.T) {
	f := newReconFixture()

	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 0, nil)

	_, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-other",
		BankStatementID: statement.ID,
	})
	if !errors.Is(err, domain.ErrLedgerAccountMismatch) {
		t.Errorf("expected mismatch error, got %v", err)
	}
}

func TestReconciliationUseCase_Reconcile_RecordsBothAttempts(t *testing.T) {
	f := newReconFixture()

	f.post(t, domain.TransactionTypeDeposit, 1000, "dep-001")

	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 900, []usecase.ImportClearedItem{
		{Amount: decimal.NewFromInt(1000), Date: statementDate, Reference: "dep-001"},
	})

	// First run leaves a discrepancy record; a later run is a new record,
	// never an overwrite.
	first, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != domain.ReconciliationStatusDiscrepancy {
		t.Fatalf("expected discrepancy, got %s", first.Status)
	}

	second, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Error("each attempt should get its own record")
	}

	history, err := f.reconUC.GetReconciliationHistory(context.Background(), usecase.GetReconciliationHistoryInput{
		TrustAccountID: "ta-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected 2 history records, got %d", len(history))
	}
}

func TestReconciliationUseCase_Reconcile_MatchWithoutReference(t *testing.T) {
	f := newReconFixture()

	f.post(t, domain.TransactionTypeDeposit, 500, "")

	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 500, []usecase.ImportClearedItem{
		{Amount: decimal.NewFromInt(500), Date: statementDate},
	})

	recon, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recon.Status != domain.ReconciliationStatusCompleted {
		t.Errorf("expected status completed, got %s", recon.Status)
	}
	if len(recon.Items) != 0 {
		t.Errorf("expected no unreconciled items, got %d", len(recon.Items))
	}
}

func TestReconciliationUseCase_Reconcile_ReferenceMustAgree(t *testing.T) {
	f := newReconFixture()

	// Same amount, different reference. The cleared item must not match
	// and both sides surface as unreconciled.
	f.post(t, domain.TransactionTypeDeposit, 500, "dep-aaa")

	statementDate := time.Now().UTC().Add(24 * time.Hour)
	statement := f.importStatement(t, statementDate, 500, []usecase.ImportClearedItem{
		{Amount: decimal.NewFromInt(500), Date: statementDate, Reference: "dep-zzz"},
	})

	recon, err := f.reconUC.Reconcile(context.Background(), usecase.ReconcileInput{
		TrustAccountID:  "ta-1",
		BankStatementID: statement.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recon.Status != domain.ReconciliationStatusDiscrepancy {
		t.Errorf("expected status discrepancy, got %s", recon.Status)
	}
	if len(recon.OutstandingItems()) != 1 {
		t.Errorf("expected 1 outstanding book item, got %d", len(recon.OutstandingItems()))
	}
	if len(recon.UnmatchedBankItems()) != 1 {
		t.Errorf("expected 1 unmatched bank item, got %d", len(recon.UnmatchedBankItems()))
	}
}
