package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/infrastructure/metrics"
)

// StatementUseCase imports and serves immutable bank statement snapshots.
type StatementUseCase struct {
	txManager     TransactionManager
	accountRepo   TrustAccountRepository
	statementRepo BankStatementRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
	cache         Cache
	metrics       *metrics.Metrics
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(
	txManager TransactionManager,
	accountRepo TrustAccountRepository,
	statementRepo BankStatementRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *StatementUseCase {
	return &StatementUseCase{
		txManager:     txManager,
		accountRepo:   accountRepo,
		statementRepo: statementRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
		cache:         cache,
		metrics:       metrics,
	}
}

// ImportClearedItem is one cleared item from the bank feed. Amount is
// signed: credits positive, debits negative.
type ImportClearedItem struct {
	Amount    decimal.Decimal
	Date      time.Time
	Reference string
}

// ImportStatementInput represents input for importing a bank statement.
type ImportStatementInput struct {
	TrustAccountID   string
	StatementDate    time.Time
	BeginningBalance decimal.Decimal
	EndingBalance    decimal.Decimal
	Items            []ImportClearedItem
}

// ImportStatement records a statement snapshot. Statements must arrive in
// date order per account; a statement dated the same day as the latest
// import is accepted, since a corrected statement replaces a bad one by
// re-import. The header and all cleared items commit as one unit.
func (uc *StatementUseCase) ImportStatement(ctx context.Context, input ImportStatementInput) (*domain.BankStatement, error) {
	statement, err := uc.importStatement(ctx, input)
	if err != nil {
		uc.auditImport(ctx, input.TrustAccountID, nil, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.StatementsImported.Inc()
	}
	uc.auditImport(ctx, statement.ID, domain.JSON{
		"statement_date": statement.StatementDate.Format(time.DateOnly),
		"ending_balance": statement.EndingBalance.String(),
		"cleared_items":  len(statement.Items),
	}, nil)

	return statement, nil
}

func (uc *StatementUseCase) importStatement(ctx context.Context, input ImportStatementInput) (*domain.BankStatement, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.TrustAccountID)
	if err != nil {
		return nil, err
	}

	if actor, ok := domain.ActorFromContext(ctx); ok {
		if err := account.ValidateOwnership(actor.FirmID); err != nil {
			return nil, err
		}
	}

	// Statements are dated by calendar day; the time component carries no
	// meaning and must not defeat the sequencing check.
	statementDate := toUTCDate(input.StatementDate)

	latest, err := uc.statementRepo.GetLatestDate(ctx, input.TrustAccountID)
	if err != nil {
		return nil, err
	}
	if latest != nil && statementDate.Before(*latest) {
		return nil, domain.ErrStatementOutOfSequence
	}

	now := time.Now().UTC()
	statementID := uc.idGen.Generate()

	items := make([]domain.ClearedItem, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, domain.ClearedItem{
			ID:          uc.idGen.Generate(),
			StatementID: statementID,
			Amount:      in.Amount,
			Date:        in.Date,
			Reference:   in.Reference,
		})
	}

	statement := &domain.BankStatement{
		ID:               statementID,
		TrustAccountID:   input.TrustAccountID,
		StatementDate:    statementDate,
		BeginningBalance: input.BeginningBalance,
		EndingBalance:    input.EndingBalance,
		Items:            items,
		ImportedBy:       actorFromContext(ctx),
		CreatedAt:        now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.statementRepo.Create(txCtx, tx, statement); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   statement.ID,
		AggregateType: domain.AggregateTypeStatement,
		EventType:     domain.EventTypeStatementImported,
		Payload: map[string]any{
			"statement_id":     statement.ID,
			"trust_account_id": statement.TrustAccountID,
			"statement_date":   statement.StatementDate.Format(time.DateOnly),
			"ending_balance":   statement.EndingBalance.String(),
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

	return statement, nil
}

// GetStatement retrieves a statement by ID. Statements are immutable, so
// cache hits never serve stale data.
func (uc *StatementUseCase) GetStatement(ctx context.Context, id string) (*domain.BankStatement, error) {
	cacheKey := "statement:" + id

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var statement domain.BankStatement
			if err := json.Unmarshal(data, &statement); err == nil {
				return &statement, nil
			}
		}
	}

	statement, err := uc.statementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(statement); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, data, StatementCacheTTL)
		}
	}

	return statement, nil
}

// ListStatementsInput represents input for listing statements.
type ListStatementsInput struct {
	TrustAccountID string
	Limit          int
	Offset         int
}

// ListStatements lists imported statements for a trust account.
func (uc *StatementUseCase) ListStatements(ctx context.Context, input ListStatementsInput) ([]*domain.BankStatement, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.statementRepo.ListByTrustAccount(ctx, input.TrustAccountID, limit, offset)
}

// toUTCDate strips the time component, keeping the UTC calendar day.
func toUTCDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (uc *StatementUseCase) auditImport(ctx context.Context, resourceID string, after domain.JSON, opErr error) {
	if uc.auditRepo == nil {
		return
	}

	log := &domain.AuditLog{
		FirmID:       firmFromContext(ctx),
		ActorID:      actorFromContext(ctx),
		Action:       string(domain.AuditActionStatementImport),
		ResourceType: domain.ResourceTypeBankStatement,
		ResourceID:   resourceID,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if opErr != nil {
		log.Status = string(domain.AuditStatusFailure)
		log.ErrorMessage = opErr.Error()
	}

	_ = uc.auditRepo.Create(ctx, log)
}
