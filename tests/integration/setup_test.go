package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/iho/trustledger/internal/adapter/http"
	"github.com/iho/trustledger/internal/adapter/http/dto"
	"github.com/iho/trustledger/internal/adapter/http/handler"
	postgresrepo "github.com/iho/trustledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/trustledger/internal/adapter/repository/redis"
	infraredis "github.com/iho/trustledger/internal/infrastructure/redis"
	"github.com/iho/trustledger/internal/usecase"
	"github.com/iho/trustledger/tests/testutil"
)

const (
	testFirmID  = "firm-integration"
	testActorID = "user-integration"
)

// newTestRouter wires the full HTTP stack against the test database and a
// real Redis. Metrics are left out: promauto registration is global and
// would collide across test runs.
func newTestRouter(t *testing.T, testDB *testutil.TestDB) http.Handler {
	t.Helper()

	ctx := context.Background()
	pool := testDB.Pool

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	txManager := postgresrepo.NewTxManager(pool)
	retrier := postgresrepo.NewRetrier()
	accountRepo := postgresrepo.NewTrustAccountRepository(pool)
	ledgerRepo := postgresrepo.NewClientLedgerRepository(pool)
	transactionRepo := postgresrepo.NewTransactionRepository(pool)
	statementRepo := postgresrepo.NewBankStatementRepository(pool)
	reconciliationRepo := postgresrepo.NewReconciliationRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	auditRepo := postgresrepo.NewAuditRepository(pool)
	cache := redisrepo.NewCache(redisClient)
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)
	idGen := postgresrepo.NewULIDGenerator()

	accountUC := usecase.NewTrustAccountUseCase(txManager, accountRepo, ledgerRepo, auditRepo, idGen)
	ledgerUC := usecase.NewClientLedgerUseCase(txManager, accountRepo, ledgerRepo, auditRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(txManager, accountRepo, ledgerRepo, transactionRepo, outboxRepo, auditRepo, idGen, retrier, nil)
	balanceUC := usecase.NewBalanceUseCase(ledgerRepo, transactionRepo, auditRepo)
	statementUC := usecase.NewStatementUseCase(txManager, accountRepo, statementRepo, outboxRepo, auditRepo, idGen, cache, nil)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, statementRepo, transactionRepo, reconciliationRepo, outboxRepo, auditRepo, idGen, nil)

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		TrustAccountHandler:   handler.NewTrustAccountHandler(accountUC, balanceUC),
		ClientLedgerHandler:   handler.NewClientLedgerHandler(ledgerUC, balanceUC),
		TransactionHandler:    handler.NewTransactionHandler(transactionUC),
		StatementHandler:      handler.NewStatementHandler(statementUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		AuditHandler:          handler.NewAuditHandler(auditRepo),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		Logger:                zerolog.Nop(),
	})
}

// doJSON sends a request through the router with the test firm identity.
func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Firm-ID", testFirmID)
	r.Header.Set("X-Actor-ID", testActorID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, r)

	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
}

func createAccount(t *testing.T, router http.Handler) *dto.TrustAccountResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/trust-accounts", dto.CreateTrustAccountRequest{
		BankName:      "First National",
		AccountNumber: "998877665",
		RoutingNumber: "021000021",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d creating account, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp dto.TrustAccountResponse
	decodeResponse(t, w, &resp)

	return &resp
}

func createLedger(t *testing.T, router http.Handler, trustAccountID string) *dto.ClientLedgerResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/ledgers", dto.CreateClientLedgerRequest{
		TrustAccountID: trustAccountID,
		ClientID:       "client-" + testutil.GenerateID(),
		MatterID:       "matter-" + testutil.GenerateID(),
		ClientName:     "Test Client",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d creating ledger, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp dto.ClientLedgerResponse
	decodeResponse(t, w, &resp)

	return &resp
}

func postTransaction(t *testing.T, router http.Handler, trustAccountID, ledgerID, txType string, amount decimal.Decimal, reference string) *dto.TransactionResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/transactions", dto.PostTransactionRequest{
		TrustAccountID: trustAccountID,
		ClientLedgerID: ledgerID,
		Type:           txType,
		Amount:         amount,
		Description:    "integration posting",
		Reference:      reference,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d posting transaction, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp dto.TransactionResponse
	decodeResponse(t, w, &resp)

	return &resp
}
