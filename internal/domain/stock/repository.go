package stock

import "context"

// Repository persists cached stock levels
type Repository interface {
	Save(ctx context.Context, level *StockLevel) error
	FindBySKU(ctx context.Context, sku string) (*StockLevel, error)
	FindBySKUs(ctx context.Context, skus []string) ([]StockLevel, error)
	// AllSKUs returns every SKU with a cached level, for the periodic sweep
	AllSKUs(ctx context.Context) ([]string, error)
}
