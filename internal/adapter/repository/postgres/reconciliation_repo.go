package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// ReconciliationRepository implements usecase.ReconciliationRepository.
// Attempts are insert-only; there is no update or delete path.
type ReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{pool: pool}
}

const reconciliationColumns = `
	id, trust_account_id, bank_statement_id, reconciliation_date,
	book_balance, bank_balance, adjusted_bank_balance, delta,
	status, performed_by, created_at
`

// Create inserts the reconciliation record and its unreconciled items.
func (r *ReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, reconciliation *domain.Reconciliation) error {
	pgxTx := tx.(*Tx).PgxTx()

	headerQuery := `
		INSERT INTO reconciliations (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := pgxTx.Exec(ctx, headerQuery,
		reconciliation.ID,
		reconciliation.TrustAccountID,
		reconciliation.BankStatementID,
		timeToPgDate(reconciliation.ReconciliationDate),
		decimalToNumeric(reconciliation.BookBalance),
		decimalToNumeric(reconciliation.BankBalance),
		decimalToNumeric(reconciliation.AdjustedBankBalance),
		decimalToNumeric(reconciliation.Delta),
		string(reconciliation.Status),
		reconciliation.PerformedBy,
		timeToPgTimestamptz(reconciliation.CreatedAt),
	)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO reconciliation_items (id, reconciliation_id, side, transaction_id, amount, reference, item_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range reconciliation.Items {
		_, err := pgxTx.Exec(ctx, itemQuery,
			item.ID,
			item.ReconciliationID,
			string(item.Side),
			item.TransactionID,
			decimalToNumeric(item.Amount),
			item.Reference,
			timeToPgDate(item.Date),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a reconciliation with its items.
func (r *ReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.Reconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliations WHERE id = $1`

	reconciliation, err := scanReconciliation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	reconciliation.Items = items

	return reconciliation, nil
}

// ListByTrustAccount lists reconciliation attempts, newest first. Items
// are not loaded.
func (r *ReconciliationRepository) ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.Reconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE trust_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, trustAccountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reconciliations []*domain.Reconciliation
	for rows.Next() {
		reconciliation, err := scanReconciliation(rows)
		if err != nil {
			return nil, err
		}
		reconciliations = append(reconciliations, reconciliation)
	}

	return reconciliations, rows.Err()
}

func (r *ReconciliationRepository) loadItems(ctx context.Context, reconciliationID string) ([]domain.ReconciliationItem, error) {
	query := `
		SELECT id, reconciliation_id, side, transaction_id, amount, reference, item_date
		FROM reconciliation_items
		WHERE reconciliation_id = $1
		ORDER BY item_date ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, reconciliationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ReconciliationItem
	for rows.Next() {
		var item domain.ReconciliationItem
		var side string
		var amount pgtype.Numeric
		var date pgtype.Date

		err := rows.Scan(
			&item.ID,
			&item.ReconciliationID,
			&side,
			&item.TransactionID,
			&amount,
			&item.Reference,
			&date,
		)
		if err != nil {
			return nil, err
		}

		item.Side = domain.ReconciliationItemSide(side)
		item.Amount = numericToDecimal(amount)
		item.Date = date.Time
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanReconciliation(row pgx.Row) (*domain.Reconciliation, error) {
	var reconciliation domain.Reconciliation
	var status string
	var date pgtype.Date
	var book, bank, adjusted, delta pgtype.Numeric

	err := row.Scan(
		&reconciliation.ID,
		&reconciliation.TrustAccountID,
		&reconciliation.BankStatementID,
		&date,
		&book,
		&bank,
		&adjusted,
		&delta,
		&status,
		&reconciliation.PerformedBy,
		&reconciliation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReconciliationNotFound
		}

		return nil, err
	}

	reconciliation.ReconciliationDate = date.Time
	reconciliation.BookBalance = numericToDecimal(book)
	reconciliation.BankBalance = numericToDecimal(bank)
	reconciliation.AdjustedBankBalance = numericToDecimal(adjusted)
	reconciliation.Delta = numericToDecimal(delta)
	reconciliation.Status = domain.ReconciliationStatus(status)

	return &reconciliation, nil
}
