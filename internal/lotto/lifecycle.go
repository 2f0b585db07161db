package lotto

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AutoSettler periodically settles pools whose close time has passed, so
// pools finalize even when no participant bothers to call settle.
type AutoSettler struct {
	ledger   *Ledger
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewAutoSettler creates a new auto-settler ticking at interval
func NewAutoSettler(ledger *Ledger, engine *Engine, interval time.Duration, logger *zap.Logger) *AutoSettler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoSettler{
		ledger:   ledger,
		engine:   engine,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the settlement goroutine
func (as *AutoSettler) Start(ctx context.Context) {
	as.wg.Add(1)
	go as.run(ctx)
}

// Stop stops the auto-settler
func (as *AutoSettler) Stop() {
	close(as.stopCh)
	as.wg.Wait()
}

// run is the main loop that checks for pools to settle
func (as *AutoSettler) run(ctx context.Context) {
	defer as.wg.Done()

	ticker := time.NewTicker(as.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-as.stopCh:
			return
		case <-ticker.C:
			as.checkAndSettle()
		}
	}
}

// checkAndSettle settles any open pools past their close time
func (as *AutoSettler) checkAndSettle() {
	now := as.ledger.now()

	for _, pool := range as.ledger.List() {
		if pool.Status != StatusOpen || now.Before(pool.CloseTime) {
			continue
		}
		if err := as.engine.Settle(pool.ID); err != nil {
			// Raced with a manual settle, or the strategy cannot cover the
			// principal yet. Both retryable states, not faults.
			if errors.Is(err, ErrAlreadySettled) {
				continue
			}
			as.logger.Warn("auto-settle failed", zap.Uint64("pool_id", pool.ID), zap.Error(err))
		} else {
			as.logger.Info("pool auto-settled", zap.Uint64("pool_id", pool.ID))
		}
	}
}
