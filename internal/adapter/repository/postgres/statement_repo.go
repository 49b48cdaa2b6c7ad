package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// BankStatementRepository implements usecase.BankStatementRepository. The
// statement header and its cleared items are written in one database
// transaction so a statement is never visible half-imported.
type BankStatementRepository struct {
	pool *pgxpool.Pool
}

// NewBankStatementRepository creates a new BankStatementRepository.
func NewBankStatementRepository(pool *pgxpool.Pool) *BankStatementRepository {
	return &BankStatementRepository{pool: pool}
}

const bankStatementColumns = `
	id, trust_account_id, statement_date, beginning_balance,
	ending_balance, imported_by, created_at
`

// Create inserts the statement header and all cleared items.
func (r *BankStatementRepository) Create(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error {
	pgxTx := tx.(*Tx).PgxTx()

	headerQuery := `
		INSERT INTO bank_statements (` + bankStatementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := pgxTx.Exec(ctx, headerQuery,
		statement.ID,
		statement.TrustAccountID,
		timeToPgDate(statement.StatementDate),
		decimalToNumeric(statement.BeginningBalance),
		decimalToNumeric(statement.EndingBalance),
		statement.ImportedBy,
		timeToPgTimestamptz(statement.CreatedAt),
	)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO bank_statement_items (id, statement_id, amount, item_date, reference)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range statement.Items {
		_, err := pgxTx.Exec(ctx, itemQuery,
			item.ID,
			item.StatementID,
			decimalToNumeric(item.Amount),
			timeToPgDate(item.Date),
			item.Reference,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a statement with its cleared items.
func (r *BankStatementRepository) GetByID(ctx context.Context, id string) (*domain.BankStatement, error) {
	query := `SELECT ` + bankStatementColumns + ` FROM bank_statements WHERE id = $1`

	statement, err := scanBankStatement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	statement.Items = items

	return statement, nil
}

// GetLatestDate returns the statement date of the most recent statement
// for the account, or nil when none exist.
func (r *BankStatementRepository) GetLatestDate(ctx context.Context, trustAccountID string) (*time.Time, error) {
	query := `
		SELECT statement_date
		FROM bank_statements
		WHERE trust_account_id = $1
		ORDER BY statement_date DESC
		LIMIT 1
	`

	var date pgtype.Date
	err := r.pool.QueryRow(ctx, query, trustAccountID).Scan(&date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &date.Time, nil
}

// ListByTrustAccount lists statement headers, newest first. Items are not
// loaded; callers needing them fetch the statement by ID.
func (r *BankStatementRepository) ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.BankStatement, error) {
	query := `
		SELECT ` + bankStatementColumns + `
		FROM bank_statements
		WHERE trust_account_id = $1
		ORDER BY statement_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, trustAccountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statements []*domain.BankStatement
	for rows.Next() {
		statement, err := scanBankStatement(rows)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}

	return statements, rows.Err()
}

func (r *BankStatementRepository) loadItems(ctx context.Context, statementID string) ([]domain.ClearedItem, error) {
	query := `
		SELECT id, statement_id, amount, item_date, reference
		FROM bank_statement_items
		WHERE statement_id = $1
		ORDER BY item_date ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ClearedItem
	for rows.Next() {
		var item domain.ClearedItem
		var amount pgtype.Numeric
		var date pgtype.Date

		if err := rows.Scan(&item.ID, &item.StatementID, &amount, &date, &item.Reference); err != nil {
			return nil, err
		}

		item.Amount = numericToDecimal(amount)
		item.Date = date.Time
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanBankStatement(row pgx.Row) (*domain.BankStatement, error) {
	var statement domain.BankStatement
	var date pgtype.Date
	var beginning, ending pgtype.Numeric

	err := row.Scan(
		&statement.ID,
		&statement.TrustAccountID,
		&date,
		&beginning,
		&ending,
		&statement.ImportedBy,
		&statement.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}

		return nil, err
	}

	statement.StatementDate = date.Time
	statement.BeginningBalance = numericToDecimal(beginning)
	statement.EndingBalance = numericToDecimal(ending)

	return &statement, nil
}
