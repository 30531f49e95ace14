package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormChannelRepository implements channel.Repository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

var _ channel.Repository = (*GormChannelRepository)(nil)

// Save creates or updates a sales channel
func (r *GormChannelRepository) Save(ctx context.Context, ch *channel.SalesChannel) error {
	model := &models.SalesChannelModel{}
	model.FromDomain(ch)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a sales channel by its ID
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.SalesChannel, error) {
	var model models.SalesChannelModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists all active sales channels
func (r *GormChannelRepository) FindActive(ctx context.Context) ([]channel.SalesChannel, error) {
	return r.findActive(ctx, r.db.WithContext(ctx).Where("is_active = ?", true))
}

// FindActiveWithStockSync lists active channels that receive stock pushes
func (r *GormChannelRepository) FindActiveWithStockSync(ctx context.Context) ([]channel.SalesChannel, error) {
	return r.findActive(ctx, r.db.WithContext(ctx).
		Where("is_active = ? AND stock_sync_enabled = ?", true, true))
}

// FindActiveWithProductSync lists active channels that receive product pushes
func (r *GormChannelRepository) FindActiveWithProductSync(ctx context.Context) ([]channel.SalesChannel, error) {
	return r.findActive(ctx, r.db.WithContext(ctx).
		Where("is_active = ? AND product_sync_enabled = ?", true, true))
}

func (r *GormChannelRepository) findActive(_ context.Context, query *gorm.DB) ([]channel.SalesChannel, error) {
	var channelModels []models.SalesChannelModel
	if err := query.Order("name ASC").Find(&channelModels).Error; err != nil {
		return nil, err
	}
	channels := make([]channel.SalesChannel, len(channelModels))
	for i, model := range channelModels {
		channels[i] = *model.ToDomain()
	}
	return channels, nil
}
