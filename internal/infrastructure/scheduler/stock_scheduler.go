package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/application/stocksync"
)

// StockSchedulerConfig holds the timer settings for background stock
// synchronization
type StockSchedulerConfig struct {
	// ReconcileInterval is how often the full stock sweep runs
	ReconcileInterval time.Duration

	// InboundPollInterval is how often the warehouse is asked for
	// completed goods receipts
	InboundPollInterval time.Duration
}

// DefaultStockSchedulerConfig returns default configuration
func DefaultStockSchedulerConfig() StockSchedulerConfig {
	return StockSchedulerConfig{
		ReconcileInterval:   15 * time.Minute,
		InboundPollInterval: time.Minute,
	}
}

// StockSyncer is the slice of the stock sync service the scheduler
// drives
type StockSyncer interface {
	ReconcileAll(ctx context.Context, force bool) (*stocksync.ReconcileResult, error)
	PollInbound(ctx context.Context) (*stocksync.ReconcileResult, error)
}

// StockScheduler drives the periodic warehouse pulls: the full stock
// reconcile sweep and the inbound goods-receipt poll. Both loops run
// until the context is cancelled or Stop is called.
type StockScheduler struct {
	config StockSchedulerConfig
	stocks StockSyncer
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewStockScheduler creates a new stock scheduler
func NewStockScheduler(config StockSchedulerConfig, stocks StockSyncer, logger *zap.Logger) *StockScheduler {
	return &StockScheduler{
		config: config,
		stocks: stocks,
		logger: logger,
	}
}

// Start starts the background loops. Calling Start on a running
// scheduler is a no-op.
func (s *StockScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.reconcileLoop(ctx)
	go s.inboundLoop(ctx)

	s.logger.Info("Stock scheduler started",
		zap.Duration("reconcile_interval", s.config.ReconcileInterval),
		zap.Duration("inbound_poll_interval", s.config.InboundPollInterval),
	)
	return nil
}

// Stop stops the scheduler and waits for in-flight runs to finish
func (s *StockScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Stock scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StockScheduler) reconcileLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := s.stocks.ReconcileAll(ctx, false)
			if err != nil {
				s.logger.Error("Stock reconcile sweep failed", zap.Error(err))
				continue
			}
			s.logger.Info("Stock reconcile sweep finished",
				zap.Int("checked", result.Checked),
				zap.Int("changed", result.Changed),
				zap.Int("queued", result.Queued),
			)
		}
	}
}

func (s *StockScheduler) inboundLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.InboundPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := s.stocks.PollInbound(ctx)
			if err != nil {
				s.logger.Error("Inbound poll failed", zap.Error(err))
				continue
			}
			if result.Changed > 0 || result.Queued > 0 {
				s.logger.Info("Inbound poll reconciled stock",
					zap.Int("checked", result.Checked),
					zap.Int("changed", result.Changed),
					zap.Int("queued", result.Queued),
				)
			}
		}
	}
}
