package usecase

import (
	"context"
	"fmt"

	"settlement-service/internal/domain"
	"settlement-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerUsecase performs the read-modify-write on an account or card balance.
// Every operation takes the Store of an open unit of work and reads the row
// with an exclusive lock, so concurrent settlements of the same entity
// serialize instead of interleaving. No partial balance write is observable:
// the caller's transaction commits the lock release together with the write.
type LedgerUsecase struct {
	logger *zap.Logger
}

func NewLedgerUsecase(logger *zap.Logger) *LedgerUsecase {
	return &LedgerUsecase{logger: logger}
}

func (uc *LedgerUsecase) CreditAccount(ctx context.Context, s repository.Store, id uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.Accounts().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", id, err)
	}

	account.Credit(amount)
	if err := s.Accounts().UpdateBalance(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to credit account %s: %w", id, err)
	}

	uc.logger.Info("account balance was increased",
		zap.String("account_id", id.String()),
		zap.String("amount", amount.String()))
	return account, nil
}

func (uc *LedgerUsecase) DebitAccount(ctx context.Context, s repository.Store, id uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.Accounts().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", id, err)
	}

	if err := account.Debit(amount); err != nil {
		return nil, err
	}
	if err := s.Accounts().UpdateBalance(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to debit account %s: %w", id, err)
	}

	uc.logger.Info("account balance was reduced",
		zap.String("account_id", id.String()),
		zap.String("amount", amount.String()))
	return account, nil
}

func (uc *LedgerUsecase) CreditCard(ctx context.Context, s repository.Store, id uuid.UUID, amount decimal.Decimal) (*domain.Card, error) {
	card, err := s.Cards().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock card %s: %w", id, err)
	}

	card.Credit(amount)
	if err := s.Cards().UpdateBalance(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to credit card %s: %w", id, err)
	}

	uc.logger.Info("card balance was increased",
		zap.String("card_id", id.String()),
		zap.String("amount", amount.String()))
	return card, nil
}

func (uc *LedgerUsecase) DebitCard(ctx context.Context, s repository.Store, id uuid.UUID, amount decimal.Decimal) (*domain.Card, error) {
	card, err := s.Cards().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock card %s: %w", id, err)
	}

	if err := card.Debit(amount); err != nil {
		return nil, err
	}
	if err := s.Cards().UpdateBalance(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to debit card %s: %w", id, err)
	}

	uc.logger.Info("card balance was reduced",
		zap.String("card_id", id.String()),
		zap.String("amount", amount.String()))
	return card, nil
}
