package pub

import (
	"context"
	"encoding/json"
	"time"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventSettlementApproved = "settlement.approved"
	EventSettlementFailed   = "settlement.failed"
)

type SettlementEvent struct {
	EventType     string          `json:"event_type"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	Type          domain.Type     `json:"transaction_type"`
	Status        domain.Status   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Timestamp     time.Time       `json:"timestamp"`
}

// SettlementEventPublisher pushes settlement outcomes to Kafka for
// downstream consumers. Publishing is best-effort: a broker outage is logged
// and never fails a settlement. A nil publisher is a no-op.
type SettlementEventPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewSettlementEventPublisher(brokers []string, topic string, logger *zap.Logger) *SettlementEventPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &SettlementEventPublisher{writer: writer, logger: logger}
}

func (p *SettlementEventPublisher) PublishSettled(ctx context.Context, txn *domain.Transaction) {
	if p == nil || p.writer == nil {
		return
	}

	eventType := EventSettlementApproved
	if txn.Status == domain.StatusFailed {
		eventType = EventSettlementFailed
	}

	event := SettlementEvent{
		EventType:     eventType,
		TransactionID: txn.ID,
		Type:          txn.Type,
		Status:        txn.Status,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Timestamp:     time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal settlement event",
			zap.String("transaction_id", txn.ID.String()), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(txn.ID.String()),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish settlement event",
			zap.String("transaction_id", txn.ID.String()), zap.Error(err))
		return
	}

	p.logger.Info("settlement event published",
		zap.String("event_type", eventType),
		zap.String("transaction_id", txn.ID.String()))
}

func (p *SettlementEventPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
