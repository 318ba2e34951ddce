package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WebhookResponseStatus string

const (
	WebhookSuccessful WebhookResponseStatus = "SUCCESSFUL"
	WebhookFailed     WebhookResponseStatus = "FAILED"
)

// Webhook is one durable delivery attempt. Rows are append-only; the next
// attempt number for a transaction is derived from the persisted maximum.
type Webhook struct {
	ID              uuid.UUID             `json:"id"`
	ResponseStatus  WebhookResponseStatus `json:"response_status"`
	Status          Status                `json:"status"`
	ResponseBody    *string               `json:"response_body"`
	RequestBody     string                `json:"request_body"`
	NotificationURL string                `json:"notification_url"`
	AttemptAmount   int                   `json:"attempt_amount"`
	TransactionID   uuid.UUID             `json:"transaction_id"`
}

const webhookTimeLayout = "2006-01-02T15:04:05.000Z"

// WebhookTime renders as ISO-8601 with millisecond precision and a literal
// "Z". Merchants parse this exact shape; do not change it.
type WebhookTime time.Time

func (t WebhookTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(webhookTimeLayout) + `"`), nil
}

func (t *WebhookTime) UnmarshalJSON(data []byte) error {
	parsed, err := time.Parse(`"`+webhookTimeLayout+`"`, string(data))
	if err != nil {
		return err
	}
	*t = WebhookTime(parsed)
	return nil
}

type CardData struct {
	CardNumber string `json:"card_number"`
}

type CustomerData struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// WebhookPayload is the notification body POSTed to the merchant.
type WebhookPayload struct {
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Type          string          `json:"type"`
	TransactionID uuid.UUID       `json:"transactionId"`
	CreatedAt     WebhookTime     `json:"created_at"`
	UpdatedAt     WebhookTime     `json:"updated_at"`
	CardData      CardData        `json:"card_data"`
	Language      string          `json:"language"`
	Customer      CustomerData    `json:"customer"`
	Status        Status          `json:"status"`
	Message       string          `json:"message"`
}

// NewWebhookPayload assembles the notification body for a settled
// transaction.
func NewWebhookPayload(txn *Transaction, card *Card, customer *Customer) *WebhookPayload {
	return &WebhookPayload{
		PaymentMethod: "Card",
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Type:          "Transaction",
		TransactionID: txn.ID,
		CreatedAt:     WebhookTime(txn.CreatedAt),
		UpdatedAt:     WebhookTime(txn.UpdatedAt),
		CardData:      CardData{CardNumber: card.CardNumber},
		Language:      txn.Language,
		Customer:      CustomerData{FirstName: customer.FirstName, LastName: customer.LastName},
		Status:        txn.Status,
		Message:       "OK",
	}
}
