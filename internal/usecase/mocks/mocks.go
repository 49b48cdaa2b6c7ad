package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// MockTrustAccountRepository is a mock implementation of TrustAccountRepository.
type MockTrustAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.TrustAccount

	CreateFunc           func(ctx context.Context, account *domain.TrustAccount) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.TrustAccount, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.TrustAccount, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.TrustAccountStatus, updatedAt time.Time) error
	ListByFirmFunc       func(ctx context.Context, firmID string, limit, offset int) ([]*domain.TrustAccount, error)
}

func NewMockTrustAccountRepository() *MockTrustAccountRepository {
	return &MockTrustAccountRepository{
		accounts: make(map[string]*domain.TrustAccount),
	}
}

func (m *MockTrustAccountRepository) Create(ctx context.Context, account *domain.TrustAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockTrustAccountRepository) GetByID(ctx context.Context, id string) (*domain.TrustAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrTrustAccountNotFound
}

func (m *MockTrustAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.TrustAccount, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTrustAccountRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TrustAccountStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Status = status
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockTrustAccountRepository) ListByFirm(ctx context.Context, firmID string, limit, offset int) ([]*domain.TrustAccount, error) {
	if m.ListByFirmFunc != nil {
		return m.ListByFirmFunc(ctx, firmID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.TrustAccount
	for _, acc := range m.accounts {
		if acc.FirmID == firmID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

// MockClientLedgerRepository is a mock implementation of ClientLedgerRepository.
type MockClientLedgerRepository struct {
	mu      sync.RWMutex
	ledgers map[string]*domain.ClientLedger

	CreateFunc            func(ctx context.Context, ledger *domain.ClientLedger) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.ClientLedger, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.ClientLedger, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	UpdateStatusFunc      func(ctx context.Context, tx usecase.Transaction, id string, status domain.ClientLedgerStatus, updatedAt time.Time) error
	ListByTrustAccFunc    func(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.ClientLedger, error)
	SumActiveBalancesFunc func(ctx context.Context, trustAccountID string) (decimal.Decimal, error)

	SumActiveBalancesForUpdateFunc func(ctx context.Context, tx usecase.Transaction, trustAccountID string) (decimal.Decimal, error)
}

func NewMockClientLedgerRepository() *MockClientLedgerRepository {
	return &MockClientLedgerRepository{
		ledgers: make(map[string]*domain.ClientLedger),
	}
}

func (m *MockClientLedgerRepository) Create(ctx context.Context, ledger *domain.ClientLedger) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ledger)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[ledger.ID] = ledger
	return nil
}

func (m *MockClientLedgerRepository) GetByID(ctx context.Context, id string) (*domain.ClientLedger, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.ledgers[id]; ok {
		return l, nil
	}
	return nil, domain.ErrLedgerNotFound
}

func (m *MockClientLedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ClientLedger, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockClientLedgerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.ledgers[id]; ok {
		l.CurrentBalance = balance
		l.Version++
		l.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockClientLedgerRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ClientLedgerStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.ledgers[id]; ok {
		l.Status = status
		l.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockClientLedgerRepository) ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.ClientLedger, error) {
	if m.ListByTrustAccFunc != nil {
		return m.ListByTrustAccFunc(ctx, trustAccountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ledgers []*domain.ClientLedger
	for _, l := range m.ledgers {
		if l.TrustAccountID == trustAccountID {
			ledgers = append(ledgers, l)
		}
	}
	return ledgers, nil
}

func (m *MockClientLedgerRepository) SumActiveBalances(ctx context.Context, trustAccountID string) (decimal.Decimal, error) {
	if m.SumActiveBalancesFunc != nil {
		return m.SumActiveBalancesFunc(ctx, trustAccountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, l := range m.ledgers {
		if l.TrustAccountID == trustAccountID && l.Status == domain.ClientLedgerStatusActive {
			total = total.Add(l.CurrentBalance)
		}
	}
	return total, nil
}

func (m *MockClientLedgerRepository) SumActiveBalancesForUpdate(ctx context.Context, tx usecase.Transaction, trustAccountID string) (decimal.Decimal, error) {
	if m.SumActiveBalancesForUpdateFunc != nil {
		return m.SumActiveBalancesForUpdateFunc(ctx, tx, trustAccountID)
	}
	return m.SumActiveBalances(ctx, trustAccountID)
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc                 func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc                func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc       func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	MarkVoidedFunc             func(ctx context.Context, tx usecase.Transaction, id string) error
	ListByLedgerFunc           func(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.Transaction, error)
	ListByTrustAccountAsOfFunc func(ctx context.Context, trustAccountID string, asOf time.Time) ([]*domain.Transaction, error)
	SumAmountsFunc             func(ctx context.Context, ledgerID string) (decimal.Decimal, error)
	GetLedgerBalanceAsOfFunc   func(ctx context.Context, ledgerID string, at time.Time) (decimal.Decimal, error)
	GetBookBalanceAsOfFunc     func(ctx context.Context, trustAccountID string, at time.Time) (decimal.Decimal, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) MarkVoided(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.MarkVoidedFunc != nil {
		return m.MarkVoidedFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transactions[id]; ok {
		t.Status = domain.TransactionStatusVoided
	}
	return nil
}

func (m *MockTransactionRepository) ListByLedger(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByLedgerFunc != nil {
		return m.ListByLedgerFunc(ctx, ledgerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, t := range m.transactions {
		if t.ClientLedgerID == ledgerID {
			txns = append(txns, t)
		}
	}
	return txns, nil
}

func (m *MockTransactionRepository) ListByTrustAccountAsOf(ctx context.Context, trustAccountID string, asOf time.Time) ([]*domain.Transaction, error) {
	if m.ListByTrustAccountAsOfFunc != nil {
		return m.ListByTrustAccountAsOfFunc(ctx, trustAccountID, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, t := range m.transactions {
		if t.TrustAccountID == trustAccountID && !t.CreatedAt.After(asOf) {
			txns = append(txns, t)
		}
	}
	return txns, nil
}

func (m *MockTransactionRepository) SumAmounts(ctx context.Context, ledgerID string) (decimal.Decimal, error) {
	if m.SumAmountsFunc != nil {
		return m.SumAmountsFunc(ctx, ledgerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, t := range m.transactions {
		if t.ClientLedgerID == ledgerID {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (m *MockTransactionRepository) GetLedgerBalanceAsOf(ctx context.Context, ledgerID string, at time.Time) (decimal.Decimal, error) {
	if m.GetLedgerBalanceAsOfFunc != nil {
		return m.GetLedgerBalanceAsOfFunc(ctx, ledgerID, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Transaction
	for _, t := range m.transactions {
		if t.ClientLedgerID != ledgerID || t.CreatedAt.After(at) {
			continue
		}
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.BalanceAfter, nil
}

func (m *MockTransactionRepository) GetBookBalanceAsOf(ctx context.Context, trustAccountID string, at time.Time) (decimal.Decimal, error) {
	if m.GetBookBalanceAsOfFunc != nil {
		return m.GetBookBalanceAsOfFunc(ctx, trustAccountID, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, t := range m.transactions {
		if t.TrustAccountID == trustAccountID && !t.CreatedAt.After(at) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

// MockBankStatementRepository is a mock implementation of BankStatementRepository.
type MockBankStatementRepository struct {
	mu         sync.RWMutex
	statements map[string]*domain.BankStatement

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.BankStatement, error)
	GetLatestDateFunc      func(ctx context.Context, trustAccountID string) (*time.Time, error)
	ListByTrustAccountFunc func(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.BankStatement, error)
}

func NewMockBankStatementRepository() *MockBankStatementRepository {
	return &MockBankStatementRepository{
		statements: make(map[string]*domain.BankStatement),
	}
}

func (m *MockBankStatementRepository) Create(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, statement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements[statement.ID] = statement
	return nil
}

func (m *MockBankStatementRepository) GetByID(ctx context.Context, id string) (*domain.BankStatement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.statements[id]; ok {
		return s, nil
	}
	return nil, domain.ErrStatementNotFound
}

func (m *MockBankStatementRepository) GetLatestDate(ctx context.Context, trustAccountID string) (*time.Time, error) {
	if m.GetLatestDateFunc != nil {
		return m.GetLatestDateFunc(ctx, trustAccountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *time.Time
	for _, s := range m.statements {
		if s.TrustAccountID != trustAccountID {
			continue
		}
		if latest == nil || s.StatementDate.After(*latest) {
			d := s.StatementDate
			latest = &d
		}
	}
	return latest, nil
}

func (m *MockBankStatementRepository) ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.BankStatement, error) {
	if m.ListByTrustAccountFunc != nil {
		return m.ListByTrustAccountFunc(ctx, trustAccountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var statements []*domain.BankStatement
	for _, s := range m.statements {
		if s.TrustAccountID == trustAccountID {
			statements = append(statements, s)
		}
	}
	return statements, nil
}

// MockReconciliationRepository is a mock implementation of ReconciliationRepository.
type MockReconciliationRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.Reconciliation

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, reconciliation *domain.Reconciliation) error
	GetByIDFunc            func(ctx context.Context, id string) (*domain.Reconciliation, error)
	ListByTrustAccountFunc func(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.Reconciliation, error)
}

func NewMockReconciliationRepository() *MockReconciliationRepository {
	return &MockReconciliationRepository{
		records: make(map[string]*domain.Reconciliation),
	}
}

func (m *MockReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, reconciliation *domain.Reconciliation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, reconciliation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[reconciliation.ID] = reconciliation
	return nil
}

func (m *MockReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.Reconciliation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, domain.ErrReconciliationNotFound
}

func (m *MockReconciliationRepository) ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.Reconciliation, error) {
	if m.ListByTrustAccountFunc != nil {
		return m.ListByTrustAccountFunc(ctx, trustAccountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.Reconciliation
	for _, r := range m.records {
		if r.TrustAccountID == trustAccountID {
			records = append(records, r)
		}
	}
	return records, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.OutboxEvent

	CreateFunc         func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{
		events: make(map[string]*domain.OutboxEvent),
	}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = event
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok {
		e.Published = true
		e.PublishedAt = &publishedAt
	}
	return nil
}

// Events returns all captured outbox events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		events = append(events, e)
	}
	return events
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc          func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc        func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	GetByResourceIDFunc func(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	if m.GetByResourceIDFunc != nil {
		return m.GetByResourceIDFunc(ctx, resourceType, resourceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// Logs returns all captured audit logs.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]*domain.AuditLog, len(m.logs))
	copy(logs, m.logs)
	return logs
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier is a mock implementation of Retrier that runs the operation
// once without retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
