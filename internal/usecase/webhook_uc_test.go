package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWebhookFixture(notificationURL string) (*memStore, *domain.Transaction) {
	store := newMemStore()

	customer := &domain.Customer{ID: uuid.New(), FirstName: "John", LastName: "Doe", Country: "BR"}
	store.customers[customer.ID] = customer

	card := &domain.Card{
		ID:         uuid.New(),
		CardNumber: "4200000000000001",
		Currency:   "USD",
		Balance:    decimal.NewFromInt(500),
		CustomerID: customer.ID,
	}
	store.cards[card.ID] = card

	now := time.Now()
	txn := &domain.Transaction{
		ID:              uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
		Currency:        "USD",
		Amount:          decimal.NewFromInt(100),
		NotificationURL: notificationURL,
		Language:        "en",
		Status:          domain.StatusApproved,
		Type:            domain.TypeTopUp,
		CardID:          card.ID,
		AccountID:       uuid.New(),
	}
	store.transactions[txn.ID] = txn
	return store, txn
}

func newTestWebhookUsecase(store *memStore) *WebhookUsecase {
	uc := NewWebhookUsecase(store, zap.NewNop())
	uc.baseBackoff = time.Millisecond
	return uc
}

func TestWebhookDeliverFirstAttemptSucceeds(t *testing.T) {
	var got domain.WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	store, txn := newWebhookFixture(srv.URL)
	uc := newTestWebhookUsecase(store)

	uc.Deliver(context.Background(), txn)

	hooks, err := store.Webhooks().ListByTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 1)

	assert.Equal(t, domain.WebhookSuccessful, hooks[0].ResponseStatus)
	assert.Equal(t, 1, hooks[0].AttemptAmount)
	assert.Equal(t, txn.ID, hooks[0].TransactionID)
	require.NotNil(t, hooks[0].ResponseBody)
	assert.Equal(t, "ok", *hooks[0].ResponseBody)

	assert.Equal(t, txn.ID, got.TransactionID)
	assert.Equal(t, "4200000000000001", got.CardData.CardNumber)
	assert.Equal(t, "John", got.Customer.FirstName)
	assert.Equal(t, domain.StatusApproved, got.Status)
}

func TestWebhookDeliverExhaustsRetryBudget(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "merchant down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store, txn := newWebhookFixture(srv.URL)
	uc := newTestWebhookUsecase(store)

	uc.Deliver(context.Background(), txn)

	// 1 try + 4 retries, no sixth call.
	assert.Equal(t, 5, calls)

	hooks, err := store.Webhooks().ListByTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 5)
	for i, hook := range hooks {
		assert.Equal(t, domain.WebhookFailed, hook.ResponseStatus)
		assert.Equal(t, i+1, hook.AttemptAmount)
	}
}

func TestWebhookDeliverRecoversOnFinalAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 5 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, txn := newWebhookFixture(srv.URL)
	uc := newTestWebhookUsecase(store)

	uc.Deliver(context.Background(), txn)

	hooks, err := store.Webhooks().ListByTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 5)
	for _, hook := range hooks[:4] {
		assert.Equal(t, domain.WebhookFailed, hook.ResponseStatus)
	}
	assert.Equal(t, domain.WebhookSuccessful, hooks[4].ResponseStatus)
}

func TestWebhookAttemptNumberingSurvivesRestart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, txn := newWebhookFixture(srv.URL)
	// History from a previous pipeline invocation.
	for i := 1; i <= 3; i++ {
		store.webhooks = append(store.webhooks, &domain.Webhook{
			ID:             uuid.New(),
			ResponseStatus: domain.WebhookFailed,
			Status:         txn.Status,
			AttemptAmount:  i,
			TransactionID:  txn.ID,
		})
	}

	uc := newTestWebhookUsecase(store)
	uc.Deliver(context.Background(), txn)

	hooks, err := store.Webhooks().ListByTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 4)
	assert.Equal(t, 4, hooks[3].AttemptAmount)
	assert.Equal(t, domain.WebhookSuccessful, hooks[3].ResponseStatus)
}

func TestWebhookDeliverStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store, txn := newWebhookFixture(srv.URL)
	uc := NewWebhookUsecase(store, zap.NewNop())
	uc.baseBackoff = time.Minute // cancellation must win the backoff wait

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		uc.Deliver(ctx, txn)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Deliver did not return after context cancellation")
	}
}
