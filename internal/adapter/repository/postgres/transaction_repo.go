package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. Rows are
// insert-only; the only UPDATE annotates status on void.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `
	id, trust_account_id, client_ledger_id, type, amount,
	description, reference, status, balance_after,
	voids_transaction_id, created_by, created_at
`

// Create inserts a transaction row within a database transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.TrustAccountID,
		txn.ClientLedgerID,
		string(txn.Type),
		decimalToNumeric(txn.Amount),
		txn.Description,
		txn.Reference,
		string(txn.Status),
		decimalToNumeric(txn.BalanceAfter),
		txn.VoidsTransactionID,
		txn.CreatedBy,
		timeToPgTimestamptz(txn.CreatedAt),
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a transaction by ID with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	return scanTransaction(pgxTx.QueryRow(ctx, query, id))
}

// MarkVoided annotates a transaction as voided. Amount and balance_after
// are never touched.
func (r *TransactionRepository) MarkVoided(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE transactions SET status = 'voided' WHERE id = $1`

	tag, err := pgxTx.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListByLedger lists transactions for a client ledger, newest first.
func (r *TransactionRepository) ListByLedger(ctx context.Context, ledgerID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE client_ledger_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, ledgerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByTrustAccountAsOf returns every transaction under the trust account
// created at or before asOf. Voided rows are included; a voided original
// and its offsetting row net to zero.
func (r *TransactionRepository) ListByTrustAccountAsOf(ctx context.Context, trustAccountID string, asOf time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE trust_account_id = $1 AND created_at <= $2
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, trustAccountID, timeToPgTimestamptz(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// SumAmounts sums every transaction row for a ledger, bypassing the cached
// balance. Void pairs cancel out.
func (r *TransactionRepository) SumAmounts(ctx context.Context, ledgerID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE client_ledger_id = $1
	`

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, ledgerID).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// GetLedgerBalanceAsOf returns the latest balance_after snapshot at or
// before the given time. Zero when the ledger had no transactions yet.
func (r *TransactionRepository) GetLedgerBalanceAsOf(ctx context.Context, ledgerID string, at time.Time) (decimal.Decimal, error) {
	query := `
		SELECT balance_after
		FROM transactions
		WHERE client_ledger_id = $1 AND created_at <= $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var balance pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, ledgerID, timeToPgTimestamptz(at)).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}

		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

// GetBookBalanceAsOf sums all transaction amounts under a trust account at
// or before the given time. Equivalent to summing per-ledger as-of
// balances since each balance_after is itself a running sum.
func (r *TransactionRepository) GetBookBalanceAsOf(ctx context.Context, trustAccountID string, at time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE trust_account_id = $1 AND created_at <= $2
	`

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, trustAccountID, timeToPgTimestamptz(at)).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var txType, status string
	var amount, balanceAfter pgtype.Numeric

	err := row.Scan(
		&txn.ID,
		&txn.TrustAccountID,
		&txn.ClientLedgerID,
		&txType,
		&amount,
		&txn.Description,
		&txn.Reference,
		&status,
		&balanceAfter,
		&txn.VoidsTransactionID,
		&txn.CreatedBy,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.Type = domain.TransactionType(txType)
	txn.Status = domain.TransactionStatus(status)
	txn.Amount = numericToDecimal(amount)
	txn.BalanceAfter = numericToDecimal(balanceAfter)

	return &txn, nil
}
