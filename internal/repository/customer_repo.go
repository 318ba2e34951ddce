package repository

import (
	"context"
	"errors"
	"fmt"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByNameAndCountry(ctx context.Context, firstName, lastName, country string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
}

type customerRepo struct {
	q Querier
}

func NewCustomerRepo(q Querier) CustomerRepository {
	return &customerRepo{q: q}
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT id, first_name, last_name, country FROM customers WHERE id = $1`
	return scanCustomer(r.q.QueryRow(ctx, query, id))
}

func (r *customerRepo) GetByNameAndCountry(ctx context.Context, firstName, lastName, country string) (*domain.Customer, error) {
	query := `
		SELECT id, first_name, last_name, country FROM customers
		WHERE first_name = $1 AND last_name = $2 AND country = $3
	`
	return scanCustomer(r.q.QueryRow(ctx, query, firstName, lastName, country))
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	query := `INSERT INTO customers (id, first_name, last_name, country) VALUES ($1, $2, $3, $4)`

	_, err := r.q.Exec(ctx, query, customer.ID, customer.FirstName, customer.LastName, customer.Country)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

type MerchantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
}

type merchantRepo struct {
	q Querier
}

func NewMerchantRepo(q Querier) MerchantRepository {
	return &merchantRepo{q: q}
}

func (r *merchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT id, secret_key, created_at, company_name, country FROM merchants WHERE id = $1`

	var m domain.Merchant
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.SecretKey, &m.CreatedAt, &m.CompanyName, &m.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan merchant: %w", err)
	}
	return &m, nil
}
