package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository persists canonical products
type ProductRepository interface {
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindBySKUs(ctx context.Context, skus []string) ([]Product, error)
}

// ProductChannelRepository persists product-to-channel links
type ProductChannelRepository interface {
	Save(ctx context.Context, pc *ProductChannel) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductChannel, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductChannel, error)
	FindByProductAndChannel(ctx context.Context, productID, channelID uuid.UUID) (*ProductChannel, error)
	FindByExternalID(ctx context.Context, channelID uuid.UUID, externalProductID string) (*ProductChannel, error)
}

// ConflictRepository persists field conflicts
type ConflictRepository interface {
	Save(ctx context.Context, c *FieldConflict) error
	FindByID(ctx context.Context, id uuid.UUID) (*FieldConflict, error)
	FindOpen(ctx context.Context, page, pageSize int) ([]FieldConflict, int64, error)
	// FindOpenForField returns the open conflict for one (product,
	// channel, field) triple, if any. Used to avoid piling up
	// duplicates when the same disagreement is reported repeatedly.
	FindOpenForField(ctx context.Context, productID, channelID uuid.UUID, field string) (*FieldConflict, error)
}
