package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/synclog"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements synclog.Repository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

var _ synclog.Repository = (*GormSyncLogRepository)(nil)

// Append writes a new audit entry. Entries are never updated.
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *synclog.Entry) error {
	model := &models.SyncLogModel{}
	if err := model.FromDomain(entry); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds an audit entry by its ID
func (r *GormSyncLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*synclog.Entry, error) {
	var model models.SyncLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll lists audit entries matching the filter, newest first
func (r *GormSyncLogRepository) FindAll(ctx context.Context, filter synclog.Filter) ([]*synclog.Entry, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SyncLogModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entryModels []models.SyncLogModel
	if err := query.Order("created_at DESC").Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*synclog.Entry, 0, len(entryModels))
	for i := range entryModels {
		entry, err := entryModels[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

// HasRecentLocalPush reports whether a successful outbound entry for the
// external id was written within the window
func (r *GormSyncLogRepository) HasRecentLocalPush(ctx context.Context, entityType synclog.EntityType, externalID string, window time.Duration) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SyncLogModel{}).
		Where("entity_type = ? AND external_id = ? AND direction = ? AND success = ? AND created_at > ?",
			string(entityType), externalID, string(synclog.DirectionOutbound), true,
			time.Now().Add(-window)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteOlderThan trims aged entries
func (r *GormSyncLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.SyncLogModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormSyncLogRepository) applyFilter(query *gorm.DB, filter synclog.Filter) *gorm.DB {
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", string(*filter.EntityType))
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ExternalID != "" {
		query = query.Where("external_id = ?", filter.ExternalID)
	}
	if filter.Target != "" {
		query = query.Where("target = ?", filter.Target)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", string(*filter.Direction))
	}
	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	return query
}
