package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a merchant's balance in a single currency. The balance is
// mutated only under a row lock and must never go negative.
type Account struct {
	ID         uuid.UUID       `json:"id"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	MerchantID uuid.UUID       `json:"merchant_id"`
}

// Credit increases the account balance by amount.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// Debit decreases the account balance by amount. The balance is left
// untouched when the debit would make it negative.
func (a *Account) Debit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}
