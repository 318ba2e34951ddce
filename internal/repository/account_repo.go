package repository

import (
	"context"
	"errors"
	"fmt"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetByIDForUpdate locks the row (SELECT ... FOR UPDATE); call it only
	// on a Store bound to a transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByMerchantAndCurrency(ctx context.Context, merchantID uuid.UUID, currency string) (*domain.Account, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, account *domain.Account) error
}

type accountRepo struct {
	q Querier
}

func NewAccountRepo(q Querier) AccountRepository {
	return &accountRepo{q: q}
}

const accountColumns = `id, currency, balance, merchant_id`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Currency, &a.Balance, &a.MerchantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.q.QueryRow(ctx, query, id))
}

func (r *accountRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(r.q.QueryRow(ctx, query, id))
}

func (r *accountRepo) GetByMerchantAndCurrency(ctx context.Context, merchantID uuid.UUID, currency string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE merchant_id = $1 AND currency = $2`
	return scanAccount(r.q.QueryRow(ctx, query, merchantID, currency))
}

func (r *accountRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE merchant_id = $1`

	rows, err := r.q.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Currency, &a.Balance, &a.MerchantID); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func (r *accountRepo) UpdateBalance(ctx context.Context, account *domain.Account) error {
	query := `UPDATE accounts SET balance = $1 WHERE id = $2`

	cmdTag, err := r.q.Exec(ctx, query, account.Balance, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
