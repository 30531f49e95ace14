package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
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

// FindBySKUs finds products for a set of SKUs. Missing SKUs are simply
// absent from the result, not an error.
func (r *GormProductRepository) FindBySKUs(ctx context.Context, skus []string) ([]catalog.Product, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("sku IN ?", skus).
		Find(&productModels).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(productModels))
	for i, model := range productModels {
		products[i] = *model.ToDomain()
	}
	return products, nil
}

// GormProductChannelRepository implements catalog.ProductChannelRepository
// using GORM
type GormProductChannelRepository struct {
	db *gorm.DB
}

// NewGormProductChannelRepository creates a new GormProductChannelRepository
func NewGormProductChannelRepository(db *gorm.DB) *GormProductChannelRepository {
	return &GormProductChannelRepository{db: db}
}

var _ catalog.ProductChannelRepository = (*GormProductChannelRepository)(nil)

// Save creates or updates a product-to-channel link
func (r *GormProductChannelRepository) Save(ctx context.Context, pc *catalog.ProductChannel) error {
	model := &models.ProductChannelModel{}
	if err := model.FromDomain(pc); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a product-to-channel link by its ID
func (r *GormProductChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductChannel, error) {
	var model models.ProductChannelModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByProduct finds all channel links for one product
func (r *GormProductChannelRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductChannel, error) {
	var linkModels []models.ProductChannelModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	links := make([]catalog.ProductChannel, 0, len(linkModels))
	for i := range linkModels {
		link, err := linkModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}
	return links, nil
}

// FindByProductAndChannel finds the link for one (product, channel) pair
func (r *GormProductChannelRepository) FindByProductAndChannel(ctx context.Context, productID, channelID uuid.UUID) (*catalog.ProductChannel, error) {
	var model models.ProductChannelModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND channel_id = ?", productID, channelID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByExternalID finds the link for a channel's external product id
func (r *GormProductChannelRepository) FindByExternalID(ctx context.Context, channelID uuid.UUID, externalProductID string) (*catalog.ProductChannel, error) {
	var model models.ProductChannelModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND external_product_id = ?", channelID, externalProductID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// GormConflictRepository implements catalog.ConflictRepository using GORM
type GormConflictRepository struct {
	db *gorm.DB
}

// NewGormConflictRepository creates a new GormConflictRepository
func NewGormConflictRepository(db *gorm.DB) *GormConflictRepository {
	return &GormConflictRepository{db: db}
}

var _ catalog.ConflictRepository = (*GormConflictRepository)(nil)

// Save creates or updates a field conflict
func (r *GormConflictRepository) Save(ctx context.Context, c *catalog.FieldConflict) error {
	model := &models.FieldConflictModel{}
	model.FromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a field conflict by its ID
func (r *GormConflictRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.FieldConflict, error) {
	var model models.FieldConflictModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpen lists unresolved conflicts with pagination, oldest first
func (r *GormConflictRepository) FindOpen(ctx context.Context, page, pageSize int) ([]catalog.FieldConflict, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FieldConflictModel{}).
		Where("resolution = ?", string(catalog.ConflictOpen))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var conflictModels []models.FieldConflictModel
	if err := query.Order("created_at ASC").Find(&conflictModels).Error; err != nil {
		return nil, 0, err
	}

	conflicts := make([]catalog.FieldConflict, len(conflictModels))
	for i, model := range conflictModels {
		conflicts[i] = *model.ToDomain()
	}
	return conflicts, total, nil
}

// FindOpenForField finds the open conflict for one (product, channel,
// field) triple if one exists
func (r *GormConflictRepository) FindOpenForField(ctx context.Context, productID, channelID uuid.UUID, field string) (*catalog.FieldConflict, error) {
	var model models.FieldConflictModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND channel_id = ? AND field = ? AND resolution = ?",
			productID, channelID, field, string(catalog.ConflictOpen)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
