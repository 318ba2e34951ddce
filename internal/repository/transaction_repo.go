package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByIDAndType(ctx context.Context, id uuid.UUID, txType domain.Type) (*domain.Transaction, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Transaction, error)
	ListByAccountAndType(ctx context.Context, accountID uuid.UUID, txType domain.Type) ([]*domain.Transaction, error)
	ListByAccountTypeAndRange(ctx context.Context, accountID uuid.UUID, txType domain.Type, start, end time.Time, limit int, offset int64) ([]*domain.Transaction, error)
	// ClaimStatus writes the terminal status if and only if the row is still
	// IN_PROCESS. A false return means another cycle settled it first.
	ClaimStatus(ctx context.Context, id uuid.UUID, status domain.Status, updatedAt time.Time) (bool, error)
}

type transactionRepo struct {
	q Querier
}

func NewTransactionRepo(q Querier) TransactionRepository {
	return &transactionRepo{q: q}
}

const transactionColumns = `id, created_at, updated_at, currency, amount, notification_url, language, status, type, card_id, account_id`

func (r *transactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.Exec(ctx, query,
		txn.ID,
		txn.CreatedAt,
		txn.UpdatedAt,
		txn.Currency,
		txn.Amount,
		txn.NotificationURL,
		txn.Language,
		txn.Status,
		txn.Type,
		txn.CardID,
		txn.AccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Currency,
		&t.Amount,
		&t.NotificationURL,
		&t.Language,
		&t.Status,
		&t.Type,
		&t.CardID,
		&t.AccountID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &t, nil
}

func (r *transactionRepo) GetByIDAndType(ctx context.Context, id uuid.UUID, txType domain.Type) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND type = $2`
	return scanTransaction(r.q.QueryRow(ctx, query, id, txType))
}

func (r *transactionRepo) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE status = $1`
	return r.list(ctx, query, status)
}

func (r *transactionRepo) ListByAccountAndType(ctx context.Context, accountID uuid.UUID, txType domain.Type) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1 AND type = $2`
	return r.list(ctx, query, accountID, txType)
}

func (r *transactionRepo) ListByAccountTypeAndRange(ctx context.Context, accountID uuid.UUID, txType domain.Type, start, end time.Time, limit int, offset int64) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE created_at >= $1 AND created_at <= $2 AND account_id = $3 AND type = $4
		LIMIT $5 OFFSET $6
	`
	return r.list(ctx, query, start, end, accountID, txType, limit, offset)
}

func (r *transactionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.ID,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.Currency,
			&t.Amount,
			&t.NotificationURL,
			&t.Language,
			&t.Status,
			&t.Type,
			&t.CardID,
			&t.AccountID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

func (r *transactionRepo) ClaimStatus(ctx context.Context, id uuid.UUID, status domain.Status, updatedAt time.Time) (bool, error) {
	query := `
		UPDATE transactions SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	cmdTag, err := r.q.Exec(ctx, query, status, updatedAt, id, domain.StatusInProcess)
	if err != nil {
		return false, fmt.Errorf("failed to claim transaction status: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
