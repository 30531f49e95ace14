package syncjob

import (
	"time"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// Status represents the lifecycle of a queued job
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusDead      Status = "DEAD"
)

// Named queues, one per (entity, target) pair so that a backlog in one
// target never blocks unrelated propagation.
const (
	QueueOrderToFfn        = "order.ffn"
	QueueOrderToPlatform   = "order.platform"
	QueueStockToPlatform   = "stock.platform"
	QueueProductToPlatform = "product.platform"
)

// Default retry configuration
const (
	DefaultRetryLimit = 5
	DefaultRetryDelay = time.Second
)

var (
	ErrJobNotFound = shared.NewDomainError("JOB_NOT_FOUND", "Sync job not found")
	ErrNotDead     = shared.NewDomainError("JOB_NOT_DEAD", "Only dead-lettered jobs can be manually retried")
)

// Job is one queued unit of outbound work. Execution must be
// idempotent: the handler checks current entity state before acting.
type Job struct {
	ID          uuid.UUID
	Queue       string
	Payload     []byte
	// Priority orders dequeue within a queue; numerically lower runs first
	Priority    int
	RetryCount  int
	RetryLimit  int
	RetryDelay  time.Duration
	Status      Status
	LastError   string
	NextRetryAt *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Options tune a job at enqueue time
type Options struct {
	Priority   int
	RetryLimit int
	RetryDelay time.Duration
}

// NewJob creates a pending job for a queue
func NewJob(queue string, payload []byte, opts Options) (*Job, error) {
	if queue == "" {
		return nil, shared.NewDomainError("INVALID_QUEUE", "Queue name cannot be empty")
	}
	if len(payload) == 0 {
		return nil, shared.NewDomainError("INVALID_PAYLOAD", "Job payload cannot be empty")
	}
	if opts.RetryLimit <= 0 {
		opts.RetryLimit = DefaultRetryLimit
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	now := time.Now()
	return &Job{
		ID:         uuid.New(),
		Queue:      queue,
		Payload:    payload,
		Priority:   opts.Priority,
		RetryLimit: opts.RetryLimit,
		RetryDelay: opts.RetryDelay,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// MarkActive claims the job for execution
func (j *Job) MarkActive() error {
	if j.Status != StatusPending && j.Status != StatusFailed {
		return shared.ErrInvalidState
	}
	j.Status = StatusActive
	j.UpdatedAt = time.Now()
	return nil
}

// MarkCompleted records successful execution
func (j *Job) MarkCompleted() {
	now := time.Now()
	j.Status = StatusCompleted
	j.CompletedAt = &now
	j.LastError = ""
	j.NextRetryAt = nil
	j.UpdatedAt = now
}

// MarkFailed records a failed attempt and schedules the next retry with
// exponential backoff, or dead-letters the job when retries are spent.
func (j *Job) MarkFailed(errMsg string) {
	j.RetryCount++
	j.LastError = errMsg
	j.UpdatedAt = time.Now()

	if j.RetryCount >= j.RetryLimit {
		j.Status = StatusDead
		j.NextRetryAt = nil
		return
	}
	j.Status = StatusFailed
	backoff := j.RetryDelay * time.Duration(1<<uint(j.RetryCount-1))
	next := time.Now().Add(backoff)
	j.NextRetryAt = &next
}

// MarkDead dead-letters the job immediately, bypassing remaining
// retries. Used for terminal external errors.
func (j *Job) MarkDead(errMsg string) {
	j.Status = StatusDead
	j.LastError = errMsg
	j.NextRetryAt = nil
	j.UpdatedAt = time.Now()
}

// ResetForRetry re-queues a dead-lettered job
func (j *Job) ResetForRetry() error {
	if j.Status != StatusDead {
		return ErrNotDead
	}
	j.Status = StatusPending
	j.RetryCount = 0
	j.LastError = ""
	j.NextRetryAt = nil
	j.UpdatedAt = time.Now()
	return nil
}

// IsDead returns true if the job is dead-lettered
func (j *Job) IsDead() bool {
	return j.Status == StatusDead
}
