package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusInProcess Status = "IN_PROCESS"
	StatusApproved  Status = "APPROVED"
	StatusFailed    Status = "FAILED"
)

// Terminal reports whether the status is a settlement outcome.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusFailed
}

type Type string

const (
	TypeTopUp  Type = "TOP_UP"
	TypePayOut Type = "PAY_OUT"
)

// Transaction is created IN_PROCESS by payment initiation and moved to a
// terminal status exactly once by the settlement job. Rows are never deleted.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
	NotificationURL string          `json:"notification_url"`
	Language        string          `json:"language"`
	Status          Status          `json:"status"`
	Type            Type            `json:"type"`
	CardID          uuid.UUID       `json:"card_id"`
	AccountID       uuid.UUID       `json:"account_id"`
}

// CreditTarget names the ledger entity that receives the settlement credit.
type CreditTarget string

const (
	CreditAccount CreditTarget = "ACCOUNT"
	CreditCard    CreditTarget = "CARD"
)

// SettlementCreditTarget decides which balance the settled amount moves to.
// The initiation debit already took the money from the counter-entity, so an
// approval pays the beneficiary and a failure refunds the payer:
//
//	APPROVED TOP_UP  -> account
//	FAILED   TOP_UP  -> card (refund)
//	APPROVED PAY_OUT -> card
//	FAILED   PAY_OUT -> account (refund)
//
// Any non-terminal status here is a programming error, not a business one.
func (t *Transaction) SettlementCreditTarget() (CreditTarget, error) {
	switch {
	case t.Status == StatusApproved && t.Type == TypeTopUp:
		return CreditAccount, nil
	case t.Status == StatusFailed && t.Type == TypeTopUp:
		return CreditCard, nil
	case t.Status == StatusApproved && t.Type == TypePayOut:
		return CreditCard, nil
	case t.Status == StatusFailed && t.Type == TypePayOut:
		return CreditAccount, nil
	}
	return "", ErrInvalidStatus
}
