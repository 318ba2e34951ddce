package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"settlement-service/internal/domain"
	"settlement-service/internal/pub"
	"settlement-service/internal/repository"

	"go.uber.org/zap"
)

const defaultSettlementWorkers = 8

// SettlementUsecase drives the pipeline for every pending transaction:
// resolve the terminal status, move the money, notify the merchant.
//
// The status claim and the balance mutation commit in one database
// transaction, so a transaction can never end up settled in status but not
// in money (or the other way round). Notification runs after the commit and
// holds no locks; a slow merchant endpoint cannot block other settlements.
type SettlementUsecase struct {
	store    repository.Store
	ledger   *LedgerUsecase
	resolver OutcomeResolver
	webhooks *WebhookUsecase

	statusCache *StatusCache
	events      *pub.SettlementEventPublisher

	workers int
	logger  *zap.Logger
}

func NewSettlementUsecase(
	store repository.Store,
	ledger *LedgerUsecase,
	resolver OutcomeResolver,
	webhooks *WebhookUsecase,
	statusCache *StatusCache,
	events *pub.SettlementEventPublisher,
	logger *zap.Logger,
) *SettlementUsecase {
	return &SettlementUsecase{
		store:       store,
		ledger:      ledger,
		resolver:    resolver,
		webhooks:    webhooks,
		statusCache: statusCache,
		events:      events,
		workers:     defaultSettlementWorkers,
		logger:      logger,
	}
}

// SetWorkers overrides the fan-out width. Values below one are ignored.
func (uc *SettlementUsecase) SetWorkers(n int) {
	if n > 0 {
		uc.workers = n
	}
}

// SettlePending runs one settlement cycle: fetch the pending set, fan out to
// a bounded worker pool, and join before returning. One transaction failing
// never halts the rest of the cycle.
func (uc *SettlementUsecase) SettlePending(ctx context.Context) {
	pending, err := uc.store.Transactions().ListByStatus(ctx, domain.StatusInProcess)
	if err != nil {
		uc.logger.Error("failed to fetch pending transactions", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	uc.logger.Info("settlement cycle started", zap.Int("pending", len(pending)))

	tasks := make(chan *domain.Transaction)
	var wg sync.WaitGroup
	for i := 0; i < uc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for txn := range tasks {
				uc.settleOne(ctx, txn)
			}
		}()
	}

	for _, txn := range pending {
		tasks <- txn
	}
	close(tasks)
	wg.Wait()
}

// settleOne runs the full pipeline for a single transaction. Errors are
// terminal for this cycle: they are logged with the transaction id and the
// row either stays pending (rolled back) or is already claimed elsewhere.
func (uc *SettlementUsecase) settleOne(ctx context.Context, txn *domain.Transaction) {
	uc.logger.Info("processing transaction",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("status", string(txn.Status)))

	status := uc.resolver.Resolve(txn)

	err := uc.store.WithinTx(ctx, func(ctx context.Context, s repository.Store) error {
		now := time.Now()
		claimed, err := s.Transactions().ClaimStatus(ctx, txn.ID, status, now)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrAlreadyClaimed
		}
		txn.Status = status
		txn.UpdatedAt = now

		target, err := txn.SettlementCreditTarget()
		if err != nil {
			return err
		}
		switch target {
		case domain.CreditAccount:
			_, err = uc.ledger.CreditAccount(ctx, s, txn.AccountID, txn.Amount)
		case domain.CreditCard:
			_, err = uc.ledger.CreditCard(ctx, s, txn.CardID, txn.Amount)
		}
		return err
	})

	switch {
	case errors.Is(err, domain.ErrAlreadyClaimed):
		uc.logger.Info("transaction claimed by another cycle, skipping",
			zap.String("transaction_id", txn.ID.String()))
		return
	case errors.Is(err, domain.ErrInvalidStatus):
		uc.logger.Error("transaction has an unexpected status, not retrying",
			zap.String("transaction_id", txn.ID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
		return
	case err != nil:
		uc.logger.Error("settlement failed",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
		return
	}

	uc.logger.Info("transaction successfully settled",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("status", string(txn.Status)))

	uc.statusCache.Put(ctx, txn.ID, txn.Status)
	uc.events.PublishSettled(ctx, txn)
	uc.webhooks.Deliver(ctx, txn)
}
