package repository

import (
	"context"
	"fmt"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
)

type WebhookRepository interface {
	// Create appends one delivery attempt; attempt rows are never updated.
	Create(ctx context.Context, webhook *domain.Webhook) error
	// MaxAttemptNumber returns the highest persisted attempt number for the
	// transaction, or 0 when none exists.
	MaxAttemptNumber(ctx context.Context, transactionID uuid.UUID) (int, error)
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*domain.Webhook, error)
}

type webhookRepo struct {
	q Querier
}

func NewWebhookRepo(q Querier) WebhookRepository {
	return &webhookRepo{q: q}
}

func (r *webhookRepo) Create(ctx context.Context, webhook *domain.Webhook) error {
	query := `
		INSERT INTO webhooks (id, response_status, status, response_body, request_body, notification_url, attempt_amount, transaction_id)
		VALUES ($1, $2, $3, $4, CAST($5 AS JSONB), $6, $7, $8)
	`

	_, err := r.q.Exec(ctx, query,
		webhook.ID,
		webhook.ResponseStatus,
		webhook.Status,
		webhook.ResponseBody,
		webhook.RequestBody,
		webhook.NotificationURL,
		webhook.AttemptAmount,
		webhook.TransactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert webhook attempt: %w", err)
	}
	return nil
}

func (r *webhookRepo) MaxAttemptNumber(ctx context.Context, transactionID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(attempt_amount), 0) FROM webhooks WHERE transaction_id = $1`

	var maxAttempt int
	if err := r.q.QueryRow(ctx, query, transactionID).Scan(&maxAttempt); err != nil {
		return 0, fmt.Errorf("failed to get max attempt number: %w", err)
	}
	return maxAttempt, nil
}

func (r *webhookRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*domain.Webhook, error) {
	query := `
		SELECT id, response_status, status, response_body, request_body, notification_url, attempt_amount, transaction_id
		FROM webhooks
		WHERE transaction_id = $1
		ORDER BY attempt_amount
	`

	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhook attempts: %w", err)
	}
	defer rows.Close()

	var hooks []*domain.Webhook
	for rows.Next() {
		var w domain.Webhook
		err := rows.Scan(
			&w.ID,
			&w.ResponseStatus,
			&w.Status,
			&w.ResponseBody,
			&w.RequestBody,
			&w.NotificationURL,
			&w.AttemptAmount,
			&w.TransactionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook row: %w", err)
		}
		hooks = append(hooks, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook rows: %w", err)
	}
	return hooks, nil
}
