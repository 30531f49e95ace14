package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/syncjob"
)

// Handler executes one claimed job. Implementations must be idempotent:
// the dispatcher may hand them a job whose payload is stale relative to
// current entity state.
type Handler interface {
	Handle(ctx context.Context, job *syncjob.Job) error
}

// DispatcherConfig holds configuration for the job dispatcher
type DispatcherConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	WorkersPerQueue  int
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultDispatcherConfig returns default configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		BatchSize:        20,
		PollInterval:     2 * time.Second,
		WorkersPerQueue:  4,
		CleanupEnabled:   true,
		CleanupRetention: 72 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Dispatcher polls the durable job queues and runs claimed jobs through
// their registered handlers. Each queue gets its own poll loop so a
// backlog in one target never starves the others.
type Dispatcher struct {
	repo     syncjob.Repository
	handlers map[string]Handler
	config   DispatcherConfig
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with no registered queues
func NewDispatcher(repo syncjob.Repository, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		handlers: make(map[string]Handler),
		config:   config,
		logger:   logger,
	}
}

// Register binds a handler to a queue name. Must be called before Start.
func (d *Dispatcher) Register(queue string, handler Handler) {
	d.handlers[queue] = handler
}

// Start launches one poll loop per registered queue
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for queue := range d.handlers {
		d.wg.Add(1)
		go d.pollLoop(ctx, queue)
	}

	if d.config.CleanupEnabled {
		d.wg.Add(1)
		go d.cleanupLoop(ctx)
	}

	d.logger.Info("job dispatcher started",
		zap.Int("queues", len(d.handlers)),
		zap.Int("batch_size", d.config.BatchSize),
		zap.Duration("poll_interval", d.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the dispatcher, waiting for in-flight jobs
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("job dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) pollLoop(ctx context.Context, queue string) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.processBatch(ctx, queue)
		}
	}
}

// processBatch claims and executes one batch of runnable jobs
func (d *Dispatcher) processBatch(ctx context.Context, queue string) {
	runnable, err := d.repo.FindRunnable(ctx, queue, time.Now(), d.config.BatchSize)
	if err != nil {
		d.logger.Error("failed to find runnable jobs",
			zap.String("queue", queue),
			zap.Error(err),
		)
		return
	}
	if len(runnable) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(runnable))
	for i, j := range runnable {
		ids[i] = j.ID
	}

	// Atomic claim so concurrent dispatcher instances never run the
	// same job twice
	claimed, err := d.repo.MarkActive(ctx, ids)
	if err != nil {
		d.logger.Error("failed to claim jobs",
			zap.String("queue", queue),
			zap.Error(err),
		)
		return
	}

	sem := make(chan struct{}, d.config.WorkersPerQueue)
	var wg sync.WaitGroup
	for _, job := range claimed {
		wg.Add(1)
		sem <- struct{}{}
		go func(job *syncjob.Job) {
			defer wg.Done()
			defer func() { <-sem }()
			d.runJob(ctx, queue, job)
		}(job)
	}
	wg.Wait()
}

// runJob executes a single claimed job and records the outcome
func (d *Dispatcher) runJob(ctx context.Context, queue string, job *syncjob.Job) {
	handler := d.handlers[queue]

	err := handler.Handle(ctx, job)
	if err == nil {
		job.MarkCompleted()
		if updateErr := d.repo.Update(ctx, job); updateErr != nil {
			d.logger.Error("failed to mark job completed",
				zap.String("job_id", job.ID.String()),
				zap.Error(updateErr),
			)
		}
		return
	}

	if channel.IsTerminal(err) {
		// Retrying cannot succeed, dead-letter immediately
		job.MarkDead(err.Error())
	} else {
		job.MarkFailed(err.Error())
	}

	if job.IsDead() {
		d.logger.Warn("job moved to dead letter queue",
			zap.String("job_id", job.ID.String()),
			zap.String("queue", queue),
			zap.Int("retry_count", job.RetryCount),
			zap.String("last_error", job.LastError),
		)
	} else {
		d.logger.Error("job failed, will retry",
			zap.String("job_id", job.ID.String()),
			zap.String("queue", queue),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
	}

	if updateErr := d.repo.Update(ctx, job); updateErr != nil {
		d.logger.Error("failed to update job after failure",
			zap.String("job_id", job.ID.String()),
			zap.Error(updateErr),
		)
	}
}

func (d *Dispatcher) cleanupLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.cleanup(ctx)
		}
	}
}

// cleanup prunes completed jobs past the retention window
func (d *Dispatcher) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-d.config.CleanupRetention)
	deleted, err := d.repo.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		d.logger.Error("failed to cleanup completed jobs", zap.Error(err))
		return
	}

	if deleted > 0 {
		d.logger.Info("cleaned up completed jobs",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
