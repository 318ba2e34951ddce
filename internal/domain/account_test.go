package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountCreditAndDebit(t *testing.T) {
	account := &Account{Balance: decimal.NewFromInt(100)}

	account.Credit(decimal.NewFromInt(50))
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(150)))

	require.NoError(t, account.Debit(decimal.NewFromInt(150)))
	assert.True(t, account.Balance.IsZero())
}

func TestAccountDebitBelowZero(t *testing.T) {
	account := &Account{Balance: decimal.NewFromInt(100)}

	err := account.Debit(decimal.NewFromInt(101))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)), "failed debit must not move the balance")
}

func TestCardCreditAndDebit(t *testing.T) {
	card := &Card{Balance: decimal.NewFromFloat(10.50)}

	card.Credit(decimal.NewFromFloat(0.50))
	assert.True(t, card.Balance.Equal(decimal.NewFromInt(11)))

	require.NoError(t, card.Debit(decimal.NewFromInt(11)))
	assert.True(t, card.Balance.IsZero())
}

func TestCardDebitBelowZero(t *testing.T) {
	card := &Card{Balance: decimal.NewFromFloat(10.50)}

	err := card.Debit(decimal.NewFromFloat(10.51))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, card.Balance.Equal(decimal.NewFromFloat(10.50)))
}
