package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/stay-service/internal/domain"
)

// AccountRepository encapsulates account and balance persistence.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// DeductIfSufficient subtracts amount only when the balance covers it.
	DeductIfSufficient(ctx context.Context, id string, amount decimal.Decimal) (bool, error)
	// AddToBalance adds delta (which may be negative) and returns the updated account.
	AddToBalance(ctx context.Context, id string, delta decimal.Decimal) (*domain.Account, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository instantiates repository.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `
        SELECT id, name, balance, role, created_at, updated_at
        FROM accounts WHERE id=$1`
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *accountRepository) DeductIfSufficient(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	const query = `
        UPDATE accounts SET balance = balance - $1, updated_at = NOW()
        WHERE id=$2 AND balance >= $1`
	db := conn(ctx, r.pool)
	cmd, err := db.Exec(ctx, query, amount, id)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, pgx.ErrNoRows
	}
	return false, nil
}

func (r *accountRepository) AddToBalance(ctx context.Context, id string, delta decimal.Decimal) (*domain.Account, error) {
	const query = `
        UPDATE accounts SET balance = balance + $1, updated_at = NOW()
        WHERE id=$2
        RETURNING id, name, balance, role, created_at, updated_at`
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx, query, delta, id))
}

func (r *accountRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	const query = `UPDATE accounts SET role=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query, role, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Balance,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
