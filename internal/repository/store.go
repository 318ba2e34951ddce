package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code runs inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the repositories with explicit unit-of-work acquisition.
// WithinTx begins a transaction, hands the callback a Store bound to it, and
// commits on success or rolls back on any exit path. Locked reads
// (...ForUpdate) are only meaningful on the Store passed to the callback.
type Store interface {
	Accounts() AccountRepository
	Cards() CardRepository
	Customers() CustomerRepository
	Merchants() MerchantRepository
	Transactions() TransactionRepository
	Webhooks() WebhookRepository

	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
	// WithinRepeatableRead is the stricter boundary used for the initiation
	// debit calculations.
	WithinRepeatableRead(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

type SQLStore struct {
	pool *pgxpool.Pool
	q    Querier

	accounts     AccountRepository
	cards        CardRepository
	customers    CustomerRepository
	merchants    MerchantRepository
	transactions TransactionRepository
	webhooks     WebhookRepository
}

func NewStore(pool *pgxpool.Pool) *SQLStore {
	s := &SQLStore{pool: pool, q: pool}
	s.bind()
	return s
}

func (s *SQLStore) bind() {
	s.accounts = NewAccountRepo(s.q)
	s.cards = NewCardRepo(s.q)
	s.customers = NewCustomerRepo(s.q)
	s.merchants = NewMerchantRepo(s.q)
	s.transactions = NewTransactionRepo(s.q)
	s.webhooks = NewWebhookRepo(s.q)
}

func (s *SQLStore) Accounts() AccountRepository         { return s.accounts }
func (s *SQLStore) Cards() CardRepository               { return s.cards }
func (s *SQLStore) Customers() CustomerRepository       { return s.customers }
func (s *SQLStore) Merchants() MerchantRepository       { return s.merchants }
func (s *SQLStore) Transactions() TransactionRepository { return s.transactions }
func (s *SQLStore) Webhooks() WebhookRepository         { return s.webhooks }

func (s *SQLStore) WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return s.withinTx(ctx, pgx.TxOptions{}, fn)
}

func (s *SQLStore) WithinRepeatableRead(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return s.withinTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, fn)
}

func (s *SQLStore) withinTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, s Store) error) error {
	if s.pool == nil {
		return errors.New("nested transactions are not supported")
	}

	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	txStore := &SQLStore{q: tx}
	txStore.bind()

	if err := fn(ctx, txStore); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}
