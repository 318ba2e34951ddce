package server

import (
	"context"
	"net/http"
	"time"

	"settlement-service/internal/config"
	"settlement-service/internal/handler/rest"
	"settlement-service/internal/pub"
	"settlement-service/internal/repository"
	"settlement-service/internal/router"
	"settlement-service/internal/usecase"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run wires the service together and serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	// --- DB connection ---
	dbpool, err := config.ConnectDB()
	if err != nil {
		return err
	}
	defer dbpool.Close()

	// --- Redis client ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	defer rdb.Close()

	// --- Store ---
	store := repository.NewStore(dbpool)

	// --- Event publisher ---
	events := pub.NewSettlementEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer events.Close()

	// --- Usecases ---
	ledgerUC := usecase.NewLedgerUsecase(logger)
	statusCache := usecase.NewStatusCache(rdb)
	webhookUC := usecase.NewWebhookUsecase(store, logger)
	settlementUC := usecase.NewSettlementUsecase(store, ledgerUC, usecase.RandomResolver{}, webhookUC, statusCache, events, logger)
	settlementUC.SetWorkers(cfg.SettlementWorkers)
	paymentUC := usecase.NewPaymentUsecase(store, ledgerUC, statusCache, logger)

	// --- Settlement scheduler ---
	scheduler := usecase.NewSettlementScheduler(settlementUC, cfg.SettleInterval, cfg.SettleInitialDelay, logger)
	scheduler.Start()
	defer scheduler.Stop()

	// --- HTTP server ---
	paymentHandler := rest.NewPaymentHandler(paymentUC, logger)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.SetupRoutes(paymentHandler, store.Merchants(), logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
