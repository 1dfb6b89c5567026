package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	applog "expensetracker/internal/log"
)

// PendingProcessor mirrors one batch of unsynced entries. *SyncWorker implements it.
type PendingProcessor interface {
	ProcessPending(ctx context.Context) (int, error)
}

// SweeperConfig holds configuration for the sweeper
type SweeperConfig struct {
	// Interval between sweeps (default: 30s)
	Interval time.Duration

	// MaxBatchesPerTick drains a backlog faster by repeating full batches (default: 5)
	MaxBatchesPerTick int
}

// DefaultSweeperConfig returns sensible defaults
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:          30 * time.Second,
		MaxBatchesPerTick: 5,
	}
}

// Sweeper periodically mirrors ledger entries whose sync message was lost.
type Sweeper struct {
	processor PendingProcessor
	batchSize int
	config    SweeperConfig
	logger    *applog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSweeper creates a sweeper. batchSize is the processor's batch size and
// tells the sweeper when a batch came back full.
func NewSweeper(processor PendingProcessor, batchSize int, config SweeperConfig, logger *applog.Logger) *Sweeper {
	defaults := DefaultSweeperConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.MaxBatchesPerTick < 1 {
		config.MaxBatchesPerTick = defaults.MaxBatchesPerTick
	}
	return &Sweeper{
		processor: processor,
		batchSize: batchSize,
		config:    config,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// Start begins the sweep loop, running one sweep immediately. Returns an
// error if already running.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.logger.InfoContext(ctx, "Sweeper started",
		"interval", s.config.Interval,
		"batch_size", s.batchSize)
	return nil
}

// Stop signals the loop and waits for the current sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Sweeper stop timed out")
		return ctx.Err()
	}
}

// Done is closed once the loop has exited, either by Stop or by the Start context.
func (s *Sweeper) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doneCh
}

// IsRunning returns whether the sweeper is currently running
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep processes batches until one comes back short or the per-tick cap is hit.
func (s *Sweeper) sweep(ctx context.Context) {
	for i := 0; i < s.config.MaxBatchesPerTick; i++ {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		n, err := s.processor.ProcessPending(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
			return
		}
		if n < s.batchSize {
			return
		}
	}
}
