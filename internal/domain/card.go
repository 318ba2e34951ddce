package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card is the customer-side ledger entity, symmetric to Account.
type Card struct {
	ID         uuid.UUID       `json:"id"`
	CardNumber string          `json:"card_number"`
	ExpDate    time.Time       `json:"exp_date"`
	CVV        string          `json:"-"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	CustomerID uuid.UUID       `json:"customer_id"`
}

// Credit increases the card balance by amount.
func (c *Card) Credit(amount decimal.Decimal) {
	c.Balance = c.Balance.Add(amount)
}

// Debit decreases the card balance by amount. The balance is left untouched
// when the debit would make it negative.
func (c *Card) Debit(amount decimal.Decimal) error {
	if c.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	c.Balance = c.Balance.Sub(amount)
	return nil
}
