package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"settlement-service/internal/domain"
	"settlement-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// 4 retries after the first try: 5 attempts per pipeline invocation.
	webhookMaxRetries     = 4
	defaultWebhookBackoff = 1 * time.Second
	webhookClientTimeout  = 5 * time.Second
)

// WebhookUsecase delivers the settlement notification to the merchant.
// Every attempt, success or failure, is persisted with a monotonically
// increasing attempt number derived from the stored history, so numbering
// survives restarts. Deliver absorbs all errors: the settlement outcome is
// already final and a dead merchant endpoint must not affect it.
type WebhookUsecase struct {
	store       repository.Store
	client      *http.Client
	baseBackoff time.Duration
	logger      *zap.Logger
}

func NewWebhookUsecase(store repository.Store, logger *zap.Logger) *WebhookUsecase {
	return &WebhookUsecase{
		store:       store,
		client:      &http.Client{Timeout: webhookClientTimeout},
		baseBackoff: defaultWebhookBackoff,
		logger:      logger,
	}
}

func (uc *WebhookUsecase) Deliver(ctx context.Context, txn *domain.Transaction) {
	card, err := uc.store.Cards().GetByID(ctx, txn.CardID)
	if err != nil {
		uc.logger.Error("failed to load card for webhook",
			zap.String("transaction_id", txn.ID.String()), zap.Error(err))
		return
	}
	customer, err := uc.store.Customers().GetByID(ctx, card.CustomerID)
	if err != nil {
		uc.logger.Error("failed to load customer for webhook",
			zap.String("transaction_id", txn.ID.String()), zap.Error(err))
		return
	}

	body, err := json.Marshal(domain.NewWebhookPayload(txn, card, customer))
	if err != nil {
		uc.logger.Error("failed to marshal webhook payload",
			zap.String("transaction_id", txn.ID.String()), zap.Error(err))
		return
	}

	lastAttempt, err := uc.store.Webhooks().MaxAttemptNumber(ctx, txn.ID)
	if err != nil {
		uc.logger.Error("failed to get webhook attempt number",
			zap.String("transaction_id", txn.ID.String()), zap.Error(err))
		return
	}

	backoff := uc.baseBackoff
	firstAttempt := lastAttempt + 1
	for attempt := firstAttempt; ; attempt++ {
		err := uc.attempt(ctx, txn, body, attempt)
		if err == nil {
			uc.logger.Info("webhook sent successfully",
				zap.String("transaction_id", txn.ID.String()),
				zap.Int("attempt", attempt))
			return
		}

		uc.logger.Warn("webhook sending failed",
			zap.String("transaction_id", txn.ID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt-firstAttempt >= webhookMaxRetries {
			uc.logger.Error("webhook delivery gave up",
				zap.String("transaction_id", txn.ID.String()),
				zap.Int("attempts", attempt-firstAttempt+1),
				zap.Error(domain.ErrDeliveryExhausted))
			return
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			uc.logger.Warn("webhook delivery cancelled",
				zap.String("transaction_id", txn.ID.String()),
				zap.Error(ctx.Err()))
			return
		}
		backoff *= 2
	}
}

// attempt performs one POST and persists its outcome. A nil return means the
// merchant acknowledged with a 2xx.
func (uc *WebhookUsecase) attempt(ctx context.Context, txn *domain.Transaction, body []byte, attemptNumber int) error {
	record := &domain.Webhook{
		ID:              uuid.New(),
		Status:          txn.Status,
		RequestBody:     string(body),
		NotificationURL: txn.NotificationURL,
		AttemptAmount:   attemptNumber,
		TransactionID:   txn.ID,
	}

	responseBody, err := uc.post(ctx, txn.NotificationURL, body)
	if err != nil {
		record.ResponseStatus = domain.WebhookFailed
		record.ResponseBody = responseBody
		uc.saveAttempt(ctx, record)
		return err
	}

	record.ResponseStatus = domain.WebhookSuccessful
	record.ResponseBody = responseBody
	uc.saveAttempt(ctx, record)
	return nil
}

func (uc *WebhookUsecase) saveAttempt(ctx context.Context, record *domain.Webhook) {
	if err := uc.store.Webhooks().Create(ctx, record); err != nil {
		uc.logger.Error("failed to persist webhook attempt",
			zap.String("transaction_id", record.TransactionID.String()),
			zap.Int("attempt", record.AttemptAmount),
			zap.Error(err))
	}
}

// post returns the response body when one could be read, regardless of the
// status code, so failure records can capture what the merchant said.
func (uc *WebhookUsecase) post(ctx context.Context, url string, body []byte) (*string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := uc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook transport error: %w", err)
	}
	defer resp.Body.Close()

	var responseBody *string
	if data, readErr := io.ReadAll(resp.Body); readErr == nil {
		s := string(data)
		responseBody = &s
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return responseBody, nil
	}
	return responseBody, fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
}
