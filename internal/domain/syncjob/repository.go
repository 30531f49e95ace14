package syncjob

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists sync jobs
type Repository interface {
	Save(ctx context.Context, jobs ...*Job) error
	Update(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// FindRunnable returns pending jobs plus failed jobs whose retry is
	// due, for one queue, ordered by priority then creation time.
	FindRunnable(ctx context.Context, queue string, now time.Time, limit int) ([]*Job, error)

	// MarkActive atomically claims jobs so that concurrent workers
	// never execute the same job twice.
	MarkActive(ctx context.Context, ids []uuid.UUID) ([]*Job, error)

	// FindDead lists dead-lettered jobs with pagination
	FindDead(ctx context.Context, page, pageSize int) ([]*Job, int64, error)

	// CountByStatus returns job counts per status for one queue
	// (empty queue means all queues)
	CountByStatus(ctx context.Context, queue string) (map[Status]int64, error)

	// DeleteCompletedBefore prunes completed jobs older than the cutoff
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Queues returns the distinct queue names present in the store
	Queues(ctx context.Context) ([]string, error)
}
