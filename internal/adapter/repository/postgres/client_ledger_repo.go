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

// ClientLedgerRepository implements usecase.ClientLedgerRepository.
type ClientLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewClientLedgerRepository creates a new ClientLedgerRepository.
func NewClientLedgerRepository(pool *pgxpool.Pool) *ClientLedgerRepository {
	return &ClientLedgerRepository{pool: pool}
}

const clientLedgerColumns = `
	id, trust_account_id, client_id, matter_id, client_name,
	matter_description, status, current_balance, version,
	created_at, updated_at
`

// Create creates a new client ledger.
func (r *ClientLedgerRepository) Create(ctx context.Context, ledger *domain.ClientLedger) error {
	query := `
		INSERT INTO client_ledgers (` + clientLedgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		ledger.ID,
		ledger.TrustAccountID,
		ledger.ClientID,
		ledger.MatterID,
		ledger.ClientName,
		ledger.MatterDescription,
		string(ledger.Status),
		decimalToNumeric(ledger.CurrentBalance),
		ledger.Version,
		timeToPgTimestamptz(ledger.CreatedAt),
		timeToPgTimestamptz(ledger.UpdatedAt),
	)

	return err
}

// GetByID retrieves a client ledger by ID.
func (r *ClientLedgerRepository) GetByID(ctx context.Context, id string) (*domain.ClientLedger, error) {
	query := `SELECT ` + clientLedgerColumns + ` FROM client_ledgers WHERE id = $1`

	return scanClientLedger(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a client ledger by ID with a FOR UPDATE lock.
// This is the only lock a posting takes; postings on different ledgers do
// not contend.
func (r *ClientLedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ClientLedger, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + clientLedgerColumns + ` FROM client_ledgers WHERE id = $1 FOR UPDATE`

	return scanClientLedger(pgxTx.QueryRow(ctx, query, id))
}

// UpdateBalance updates the cached balance of a client ledger.
func (r *ClientLedgerRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE client_ledgers
		SET current_balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLedgerNotFound
	}

	return nil
}

// UpdateStatus updates the status of a client ledger.
func (r *ClientLedgerRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.ClientLedgerStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE client_ledgers SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := pgxTx.Exec(ctx, query, id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLedgerNotFound
	}

	return nil
}

// ListByTrustAccount lists ledgers under a trust account with pagination.
func (r *ClientLedgerRepository) ListByTrustAccount(ctx context.Context, trustAccountID string, limit, offset int) ([]*domain.ClientLedger, error) {
	query := `
		SELECT ` + clientLedgerColumns + `
		FROM client_ledgers
		WHERE trust_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, trustAccountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledgers []*domain.ClientLedger
	for rows.Next() {
		ledger, err := scanClientLedger(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, ledger)
	}

	return ledgers, rows.Err()
}

// SumActiveBalances returns the trust account balance: the sum of cached
// balances over active ledgers.
func (r *ClientLedgerRepository) SumActiveBalances(ctx context.Context, trustAccountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(current_balance), 0)
		FROM client_ledgers
		WHERE trust_account_id = $1 AND status = 'active'
	`

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, trustAccountID).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// SumActiveBalancesForUpdate sums active ledger balances inside tx with
// every ledger row under the account locked. Closing an account takes this
// path: a posting holding a ledger lock commits before the sum is read.
func (r *ClientLedgerRepository) SumActiveBalancesForUpdate(ctx context.Context, tx usecase.Transaction, trustAccountID string) (decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT COALESCE(SUM(current_balance), 0)
		FROM (
			SELECT current_balance, status
			FROM client_ledgers
			WHERE trust_account_id = $1
			FOR UPDATE
		) locked
		WHERE status = 'active'
	`

	var total pgtype.Numeric
	if err := pgxTx.QueryRow(ctx, query, trustAccountID).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func scanClientLedger(row pgx.Row) (*domain.ClientLedger, error) {
	var ledger domain.ClientLedger
	var status string
	var balance pgtype.Numeric

	err := row.Scan(
		&ledger.ID,
		&ledger.TrustAccountID,
		&ledger.ClientID,
		&ledger.MatterID,
		&ledger.ClientName,
		&ledger.MatterDescription,
		&status,
		&balance,
		&ledger.Version,
		&ledger.CreatedAt,
		&ledger.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLedgerNotFound
		}

		return nil, err
	}

	ledger.Status = domain.ClientLedgerStatus(status)
	ledger.CurrentBalance = numericToDecimal(balance)

	return &ledger, nil
}
