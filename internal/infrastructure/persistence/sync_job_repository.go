package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormSyncJobRepository implements syncjob.Repository using GORM
type GormSyncJobRepository struct {
	db *gorm.DB
}

// NewGormSyncJobRepository creates a new GormSyncJobRepository
func NewGormSyncJobRepository(db *gorm.DB) *GormSyncJobRepository {
	return &GormSyncJobRepository{db: db}
}

var _ syncjob.Repository = (*GormSyncJobRepository)(nil)

// Save creates or updates one or more jobs
func (r *GormSyncJobRepository) Save(ctx context.Context, jobs ...*syncjob.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	jobModels := make([]*models.SyncJobModel, len(jobs))
	for i, j := range jobs {
		jobModels[i] = models.SyncJobModelFromDomain(j)
	}
	return r.db.WithContext(ctx).Save(jobModels).Error
}

// Update persists the state of a single job
func (r *GormSyncJobRepository) Update(ctx context.Context, job *syncjob.Job) error {
	model := models.SyncJobModelFromDomain(job)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a job by its ID
func (r *GormSyncJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncjob.Job, error) {
	var model models.SyncJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRunnable returns pending jobs plus failed jobs whose retry is due,
// for one queue, ordered by priority then creation time
func (r *GormSyncJobRepository) FindRunnable(ctx context.Context, queue string, now time.Time, limit int) ([]*syncjob.Job, error) {
	var jobModels []models.SyncJobModel
	query := r.db.WithContext(ctx).
		Where("queue = ?", queue).
		Where("status = ? OR (status = ? AND next_retry_at <= ?)",
			string(syncjob.StatusPending), string(syncjob.StatusFailed), now).
		Order("priority ASC, created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&jobModels).Error; err != nil {
		return nil, err
	}
	jobs := make([]*syncjob.Job, len(jobModels))
	for i := range jobModels {
		jobs[i] = jobModels[i].ToDomain()
	}
	return jobs, nil
}

// MarkActive atomically claims jobs. Each id is claimed with a
// conditional update so that two dispatchers polling the same queue
// never both run the same job; ids lost to a concurrent claim are
// silently skipped.
func (r *GormSyncJobRepository) MarkActive(ctx context.Context, ids []uuid.UUID) ([]*syncjob.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	runnable := []string{string(syncjob.StatusPending), string(syncjob.StatusFailed)}
	claimed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		result := r.db.WithContext(ctx).
			Model(&models.SyncJobModel{}).
			Where("id = ? AND status IN ?", id, runnable).
			Updates(map[string]any{
				"status":     string(syncjob.StatusActive),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			claimed = append(claimed, id)
		}
	}
	if len(claimed) == 0 {
		return nil, nil
	}

	var jobModels []models.SyncJobModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", claimed).
		Order("priority ASC, created_at ASC").
		Find(&jobModels).Error; err != nil {
		return nil, err
	}
	jobs := make([]*syncjob.Job, len(jobModels))
	for i := range jobModels {
		jobs[i] = jobModels[i].ToDomain()
	}
	return jobs, nil
}

// FindDead lists dead-lettered jobs with pagination, newest first
func (r *GormSyncJobRepository) FindDead(ctx context.Context, page, pageSize int) ([]*syncjob.Job, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SyncJobModel{}).
		Where("status = ?", string(syncjob.StatusDead))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var jobModels []models.SyncJobModel
	if err := query.Order("updated_at DESC").Find(&jobModels).Error; err != nil {
		return nil, 0, err
	}

	jobs := make([]*syncjob.Job, len(jobModels))
	for i := range jobModels {
		jobs[i] = jobModels[i].ToDomain()
	}
	return jobs, total, nil
}

// CountByStatus returns job counts per status, optionally scoped to one queue
func (r *GormSyncJobRepository) CountByStatus(ctx context.Context, queue string) (map[syncjob.Status]int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncJobModel{})
	if queue != "" {
		query = query.Where("queue = ?", queue)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := query.
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[syncjob.Status]int64, len(rows))
	for _, row := range rows {
		counts[syncjob.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// DeleteCompletedBefore prunes completed jobs older than the cutoff
func (r *GormSyncJobRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND completed_at < ?", string(syncjob.StatusCompleted), cutoff).
		Delete(&models.SyncJobModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Queues returns the distinct queue names present in the store
func (r *GormSyncJobRepository) Queues(ctx context.Context) ([]string, error) {
	var queues []string
	if err := r.db.WithContext(ctx).
		Model(&models.SyncJobModel{}).
		Distinct("queue").
		Order("queue ASC").
		Pluck("queue", &queues).Error; err != nil {
		return nil, err
	}
	return queues, nil
}
