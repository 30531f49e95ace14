package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/shipping"
	"github.com/syncbridge/backend/internal/infrastructure/persistence/models"
)

// GormShippingMethodRepository implements shipping.MethodRepository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GormShippingMethodRepository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

var _ shipping.MethodRepository = (*GormShippingMethodRepository)(nil)

// Save creates or updates a shipping method
func (r *GormShippingMethodRepository) Save(ctx context.Context, m *shipping.Method) error {
	model := &models.ShippingMethodModel{}
	model.FromDomain(m)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a shipping method by its ID
func (r *GormShippingMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Method, error) {
	var model models.ShippingMethodModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a shipping method by its canonical code
func (r *GormShippingMethodRepository) FindByCode(ctx context.Context, code string) (*shipping.Method, error) {
	var model models.ShippingMethodModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists all active shipping methods
func (r *GormShippingMethodRepository) FindActive(ctx context.Context) ([]shipping.Method, error) {
	var methodModels []models.ShippingMethodModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&methodModels).Error; err != nil {
		return nil, err
	}
	methods := make([]shipping.Method, len(methodModels))
	for i, model := range methodModels {
		methods[i] = *model.ToDomain()
	}
	return methods, nil
}

// GormShippingMappingRepository implements shipping.MappingRepository
// using GORM
type GormShippingMappingRepository struct {
	db *gorm.DB
}

// NewGormShippingMappingRepository creates a new GormShippingMappingRepository
func NewGormShippingMappingRepository(db *gorm.DB) *GormShippingMappingRepository {
	return &GormShippingMappingRepository{db: db}
}

var _ shipping.MappingRepository = (*GormShippingMappingRepository)(nil)

// Save creates or updates a per-channel shipping code mapping
func (r *GormShippingMappingRepository) Save(ctx context.Context, m *shipping.Mapping) error {
	model := &models.ShippingMappingModel{}
	model.FromDomain(m)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByChannelCode finds the mapping for one (channel, code) pair
func (r *GormShippingMappingRepository) FindByChannelCode(ctx context.Context, channelID uuid.UUID, channelCode string) (*shipping.Mapping, error) {
	var model models.ShippingMappingModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND channel_code = ?", channelID, channelCode).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByChannelCode checks whether a mapping exists for the pair
func (r *GormShippingMappingRepository) ExistsByChannelCode(ctx context.Context, channelID uuid.UUID, channelCode string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShippingMappingModel{}).
		Where("channel_id = ? AND channel_code = ?", channelID, channelCode).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormShippingMismatchRepository implements shipping.MismatchRepository
// using GORM
type GormShippingMismatchRepository struct {
	db *gorm.DB
}

// NewGormShippingMismatchRepository creates a new GormShippingMismatchRepository
func NewGormShippingMismatchRepository(db *gorm.DB) *GormShippingMismatchRepository {
	return &GormShippingMismatchRepository{db: db}
}

var _ shipping.MismatchRepository = (*GormShippingMismatchRepository)(nil)

// Save creates or updates a mismatch record
func (r *GormShippingMismatchRepository) Save(ctx context.Context, record *shipping.MismatchRecord) error {
	model := &models.ShippingMismatchModel{}
	model.FromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a mismatch record by its ID
func (r *GormShippingMismatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.MismatchRecord, error) {
	var model models.ShippingMismatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnresolved lists open mismatch records with pagination, oldest first
func (r *GormShippingMismatchRepository) FindUnresolved(ctx context.Context, page, pageSize int) ([]shipping.MismatchRecord, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ShippingMismatchModel{}).
		Where("resolved = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var recordModels []models.ShippingMismatchModel
	if err := query.Order("created_at ASC").Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}

	records := make([]shipping.MismatchRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, total, nil
}

// MarkResolvedForCode resolves every open record for a channel code
func (r *GormShippingMismatchRepository) MarkResolvedForCode(ctx context.Context, channelID uuid.UUID, channelCode string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.ShippingMismatchModel{}).
		Where("channel_id = ? AND channel_code = ? AND resolved = ?", channelID, channelCode, false).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
