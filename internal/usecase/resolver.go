package usecase

import (
	"math/rand"

	"settlement-service/internal/domain"
)

// OutcomeResolver decides the terminal status of a pending transaction.
// A real payment-rail integration plugs in here; the shipped resolver is a
// stand-in that flips a coin.
type OutcomeResolver interface {
	Resolve(txn *domain.Transaction) domain.Status
}

type RandomResolver struct{}

func (RandomResolver) Resolve(txn *domain.Transaction) domain.Status {
	// Never re-resolve a transaction that already has an outcome.
	if txn.Status != domain.StatusInProcess {
		return txn.Status
	}
	if rand.Intn(2) == 0 {
		return domain.StatusApproved
	}
	return domain.StatusFailed
}
