package usecase

import (
	"context"
	"sync"
	"time"

	"settlement-service/internal/domain"
	"settlement-service/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory Store for the usecase tests. WithinTx snapshots
// the state and restores it when the callback fails, mirroring a rollback.
type memStore struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]*domain.Account
	cards        map[uuid.UUID]*domain.Card
	customers    map[uuid.UUID]*domain.Customer
	merchants    map[uuid.UUID]*domain.Merchant
	transactions map[uuid.UUID]*domain.Transaction
	webhooks     []*domain.Webhook
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[uuid.UUID]*domain.Account),
		cards:        make(map[uuid.UUID]*domain.Card),
		customers:    make(map[uuid.UUID]*domain.Customer),
		merchants:    make(map[uuid.UUID]*domain.Merchant),
		transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

func (m *memStore) Accounts() repository.AccountRepository         { return memAccounts{m} }
func (m *memStore) Cards() repository.CardRepository               { return memCards{m} }
func (m *memStore) Customers() repository.CustomerRepository       { return memCustomers{m} }
func (m *memStore) Merchants() repository.MerchantRepository       { return memMerchants{m} }
func (m *memStore) Transactions() repository.TransactionRepository { return memTransactions{m} }
func (m *memStore) Webhooks() repository.WebhookRepository         { return memWebhooks{m} }

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, s repository.Store) error) error {
	snap := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) WithinRepeatableRead(ctx context.Context, fn func(ctx context.Context, s repository.Store) error) error {
	return m.WithinTx(ctx, fn)
}

type memSnapshot struct {
	accounts     map[uuid.UUID]*domain.Account
	cards        map[uuid.UUID]*domain.Card
	customers    map[uuid.UUID]*domain.Customer
	transactions map[uuid.UUID]*domain.Transaction
	webhooks     []*domain.Webhook
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := memSnapshot{
		accounts:     make(map[uuid.UUID]*domain.Account, len(m.accounts)),
		cards:        make(map[uuid.UUID]*domain.Card, len(m.cards)),
		customers:    make(map[uuid.UUID]*domain.Customer, len(m.customers)),
		transactions: make(map[uuid.UUID]*domain.Transaction, len(m.transactions)),
		webhooks:     append([]*domain.Webhook(nil), m.webhooks...),
	}
	for id, a := range m.accounts {
		cp := *a
		snap.accounts[id] = &cp
	}
	for id, c := range m.cards {
		cp := *c
		snap.cards[id] = &cp
	}
	for id, c := range m.customers {
		cp := *c
		snap.customers[id] = &cp
	}
	for id, t := range m.transactions {
		cp := *t
		snap.transactions[id] = &cp
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = snap.accounts
	m.cards = snap.cards
	m.customers = snap.customers
	m.transactions = snap.transactions
	m.webhooks = snap.webhooks
}

type memAccounts struct{ m *memStore }

func (r memAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAccounts) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

func (r memAccounts) GetByMerchantAndCurrency(_ context.Context, merchantID uuid.UUID, currency string) (*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.accounts {
		if a.MerchantID == merchantID && a.Currency == currency {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memAccounts) ListByMerchant(_ context.Context, merchantID uuid.UUID) ([]*domain.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var accounts []*domain.Account
	for _, a := range r.m.accounts {
		if a.MerchantID == merchantID {
			cp := *a
			accounts = append(accounts, &cp)
		}
	}
	return accounts, nil
}

func (r memAccounts) UpdateBalance(_ context.Context, account *domain.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.accounts[account.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Balance = account.Balance
	return nil
}

type memCards struct{ m *memStore }

func (r memCards) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cards[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCards) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return r.GetByID(ctx, id)
}

func (r memCards) GetByNumberAndCurrency(_ context.Context, cardNumber, currency string) (*domain.Card, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.cards {
		if c.CardNumber == cardNumber && c.Currency == currency {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCards) GetByNumberAndCurrencyForUpdate(ctx context.Context, cardNumber, currency string) (*domain.Card, error) {
	return r.GetByNumberAndCurrency(ctx, cardNumber, currency)
}

func (r memCards) Create(_ context.Context, card *domain.Card) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *card
	r.m.cards[card.ID] = &cp
	return nil
}

func (r memCards) UpdateBalance(_ context.Context, card *domain.Card) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.cards[card.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Balance = card.Balance
	return nil
}

type memCustomers struct{ m *memStore }

func (r memCustomers) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCustomers) GetByNameAndCountry(_ context.Context, firstName, lastName, country string) (*domain.Customer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.customers {
		if c.FirstName == firstName && c.LastName == lastName && c.Country == country {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCustomers) Create(_ context.Context, customer *domain.Customer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *customer
	r.m.customers[customer.ID] = &cp
	return nil
}

type memMerchants struct{ m *memStore }

func (r memMerchants) GetByID(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	merchant, ok := r.m.merchants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *merchant
	return &cp, nil
}

type memTransactions struct{ m *memStore }

func (r memTransactions) Create(_ context.Context, txn *domain.Transaction) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *txn
	r.m.transactions[txn.ID] = &cp
	return nil
}

func (r memTransactions) GetByIDAndType(_ context.Context, id uuid.UUID, txType domain.Type) (*domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.transactions[id]
	if !ok || t.Type != txType {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTransactions) ListByStatus(_ context.Context, status domain.Status) ([]*domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var txns []*domain.Transaction
	for _, t := range r.m.transactions {
		if t.Status == status {
			cp := *t
			txns = append(txns, &cp)
		}
	}
	return txns, nil
}

func (r memTransactions) ListByAccountAndType(_ context.Context, accountID uuid.UUID, txType domain.Type) ([]*domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var txns []*domain.Transaction
	for _, t := range r.m.transactions {
		if t.AccountID == accountID && t.Type == txType {
			cp := *t
			txns = append(txns, &cp)
		}
	}
	return txns, nil
}

func (r memTransactions) ListByAccountTypeAndRange(_ context.Context, accountID uuid.UUID, txType domain.Type, start, end time.Time, limit int, offset int64) ([]*domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var txns []*domain.Transaction
	for _, t := range r.m.transactions {
		if t.AccountID == accountID && t.Type == txType && !t.CreatedAt.Before(start) && !t.CreatedAt.After(end) {
			cp := *t
			txns = append(txns, &cp)
		}
	}
	if offset >= int64(len(txns)) {
		return nil, nil
	}
	txns = txns[offset:]
	if len(txns) > limit {
		txns = txns[:limit]
	}
	return txns, nil
}

func (r memTransactions) ClaimStatus(_ context.Context, id uuid.UUID, status domain.Status, updatedAt time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.transactions[id]
	if !ok || t.Status != domain.StatusInProcess {
		return false, nil
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	return true, nil
}

type memWebhooks struct{ m *memStore }

func (r memWebhooks) Create(_ context.Context, webhook *domain.Webhook) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *webhook
	r.m.webhooks = append(r.m.webhooks, &cp)
	return nil
}

func (r memWebhooks) MaxAttemptNumber(_ context.Context, transactionID uuid.UUID) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	maxAttempt := 0
	for _, w := range r.m.webhooks {
		if w.TransactionID == transactionID && w.AttemptAmount > maxAttempt {
			maxAttempt = w.AttemptAmount
		}
	}
	return maxAttempt, nil
}

func (r memWebhooks) ListByTransaction(_ context.Context, transactionID uuid.UUID) ([]*domain.Webhook, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var hooks []*domain.Webhook
	for _, w := range r.m.webhooks {
		if w.TransactionID == transactionID {
			cp := *w
			hooks = append(hooks, &cp)
		}
	}
	return hooks, nil
}
