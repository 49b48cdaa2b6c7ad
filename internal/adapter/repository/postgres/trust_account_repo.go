package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/trustledger/internal/domain"
	"github.com/iho/trustledger/internal/usecase"
)

// TrustAccountRepository implements usecase.TrustAccountRepository.
type TrustAccountRepository struct {
	pool *pgxpool.Pool
}

// NewTrustAccountRepository creates a new TrustAccountRepository.
func NewTrustAccountRepository(pool *pgxpool.Pool) *TrustAccountRepository {
	return &TrustAccountRepository{pool: pool}
}

const trustAccountColumns = `
	id, firm_id, bank_name, account_number, routing_number,
	account_type, status, created_at, updated_at
`

// Create creates a new trust account.
func (r *TrustAccountRepository) Create(ctx context.Context, account *domain.TrustAccount) error {
	query := `
		INSERT INTO trust_accounts (` + trustAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.FirmID,
		account.BankName,
		account.AccountNumber,
		account.RoutingNumber,
		account.AccountType,
		string(account.Status),
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves a trust account by ID.
func (r *TrustAccountRepository) GetByID(ctx context.Context, id string) (*domain.TrustAccount, error) {
	query := `SELECT ` + trustAccountColumns + ` FROM trust_accounts WHERE id = $1`

	return scanTrustAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a trust account by ID with a FOR UPDATE lock.
func (r *TrustAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.TrustAccount, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + trustAccountColumns + ` FROM trust_accounts WHERE id = $1 FOR UPDATE`

	return scanTrustAccount(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus updates the status of a trust account.
func (r *TrustAccountRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TrustAccountStatus, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE trust_accounts SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := pgxTx.Exec(ctx, query, id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTrustAccountNotFound
	}

	return nil
}

// ListByFirm lists a firm's trust accounts with pagination.
func (r *TrustAccountRepository) ListByFirm(ctx context.Context, firmID string, limit, offset int) ([]*domain.TrustAccount, error) {
	query := `
		SELECT ` + trustAccountColumns + `
		FROM trust_accounts
		WHERE firm_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, firmID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.TrustAccount
	for rows.Next() {
		account, err := scanTrustAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanTrustAccount(row pgx.Row) (*domain.TrustAccount, error) {
	var account domain.TrustAccount
	var status string

	err := row.Scan(
		&account.ID,
		&account.FirmID,
		&account.BankName,
		&account.AccountNumber,
		&account.RoutingNumber,
		&account.AccountType,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTrustAccountNotFound
		}

		return nil, err
	}

	account.Status = domain.TrustAccountStatus(status)

	return &account, nil
}
