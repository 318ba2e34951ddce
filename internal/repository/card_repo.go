package repository

import (
	"context"
	"errors"
	"fmt"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CardRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetByNumberAndCurrency(ctx context.Context, cardNumber, currency string) (*domain.Card, error)
	GetByNumberAndCurrencyForUpdate(ctx context.Context, cardNumber, currency string) (*domain.Card, error)
	Create(ctx context.Context, card *domain.Card) error
	UpdateBalance(ctx context.Context, card *domain.Card) error
}

type cardRepo struct {
	q Querier
}

func NewCardRepo(q Querier) CardRepository {
	return &cardRepo{q: q}
}

const cardColumns = `id, card_number, exp_date, cvv, currency, balance, customer_id`

func scanCard(row pgx.Row) (*domain.Card, error) {
	var c domain.Card
	err := row.Scan(&c.ID, &c.CardNumber, &c.ExpDate, &c.CVV, &c.Currency, &c.Balance, &c.CustomerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	return &c, nil
}

func (r *cardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return scanCard(r.q.QueryRow(ctx, query, id))
}

func (r *cardRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return scanCard(r.q.QueryRow(ctx, query, id))
}

func (r *cardRepo) GetByNumberAndCurrency(ctx context.Context, cardNumber, currency string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_number = $1 AND currency = $2`
	return scanCard(r.q.QueryRow(ctx, query, cardNumber, currency))
}

func (r *cardRepo) GetByNumberAndCurrencyForUpdate(ctx context.Context, cardNumber, currency string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_number = $1 AND currency = $2 FOR UPDATE`
	return scanCard(r.q.QueryRow(ctx, query, cardNumber, currency))
}

func (r *cardRepo) Create(ctx context.Context, card *domain.Card) error {
	query := `
		INSERT INTO cards (id, card_number, exp_date, cvv, currency, balance, customer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		card.ID,
		card.CardNumber,
		card.ExpDate,
		card.CVV,
		card.Currency,
		card.Balance,
		card.CustomerID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

func (r *cardRepo) UpdateBalance(ctx context.Context, card *domain.Card) error {
	query := `UPDATE cards SET balance = $1 WHERE id = $2`

	cmdTag, err := r.q.Exec(ctx, query, card.Balance, card.ID)
	if err != nil {
		return fmt.Errorf("failed to update card balance: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
