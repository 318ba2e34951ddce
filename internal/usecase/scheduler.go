package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SettlementScheduler fires the settlement job at a fixed period after an
// initial startup delay. Cycles are fired at the period, not after the
// previous cycle finishes, so a long cycle may overlap the next one; the
// claim step and the row locks make that safe.
type SettlementScheduler struct {
	settlements  *SettlementUsecase
	interval     time.Duration
	initialDelay time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

func NewSettlementScheduler(settlements *SettlementUsecase, interval, initialDelay time.Duration, logger *zap.Logger) *SettlementScheduler {
	return &SettlementScheduler{
		settlements:  settlements,
		interval:     interval,
		initialDelay: initialDelay,
		stopChan:     make(chan struct{}),
		logger:       logger,
	}
}

func (s *SettlementScheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("settlement scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("initial_delay", s.initialDelay))
}

// Stop prevents new cycles from firing. Cycles already in flight run to
// completion on their own goroutines.
func (s *SettlementScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *SettlementScheduler) run() {
	defer s.wg.Done()

	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()
	select {
	case <-delay.C:
	case <-s.stopChan:
		return
	}

	s.fire()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.fire()
		case <-s.stopChan:
			return
		}
	}
}

func (s *SettlementScheduler) fire() {
	go s.settlements.SettlePending(context.Background())
}
