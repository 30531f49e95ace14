package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/stock"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormStockRepository implements stock.Repository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

var _ stock.Repository = (*GormStockRepository)(nil)

// Save creates or updates a cached stock level
func (r *GormStockRepository) Save(ctx context.Context, level *stock.StockLevel) error {
	model := &models.StockLevelModel{}
	model.FromDomain(level)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindBySKU finds the cached level for one SKU
func (r *GormStockRepository) FindBySKU(ctx context.Context, sku string) (*stock.StockLevel, error) {
	var model models.StockLevelModel
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKUs finds cached levels for a set of SKUs
func (r *GormStockRepository) FindBySKUs(ctx context.Context, skus []string) ([]stock.StockLevel, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var levelModels []models.StockLevelModel
	if err := r.db.WithContext(ctx).
		Where("sku IN ?", skus).
		Find(&levelModels).Error; err != nil {
		return nil, err
	}
	levels := make([]stock.StockLevel, len(levelModels))
	for i, model := range levelModels {
		levels[i] = *model.ToDomain()
	}
	return levels, nil
}

// AllSKUs returns every SKU with a cached level
func (r *GormStockRepository) AllSKUs(ctx context.Context) ([]string, error) {
	var skus []string
	if err := r.db.WithContext(ctx).
		Model(&models.StockLevelModel{}).
		Order("sku ASC").
		Pluck("sku", &skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}
