package stock

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/syncbridge/backend/internal/domain/shared"
)

var (
	ErrStockNotFound = shared.NewDomainError("STOCK_NOT_FOUND", "Stock level not found")
)

// Quantities is the warehouse-reported triple for one SKU
type Quantities struct {
	Available decimal.Decimal
	Reserved  decimal.Decimal
	Announced decimal.Decimal
}

// Equal reports whether two quantity triples match exactly
func (q Quantities) Equal(other Quantities) bool {
	return q.Available.Equal(other.Available) &&
		q.Reserved.Equal(other.Reserved) &&
		q.Announced.Equal(other.Announced)
}

// StockLevel is the locally cached stock for one SKU. The fulfillment
// warehouse is the sole source of truth; this cache exists so that the
// diff step can suppress propagation when nothing changed.
type StockLevel struct {
	shared.BaseEntity
	SKU            string
	Quantities     Quantities
	LastReportedAt time.Time
}

// NewStockLevel creates a stock cache entry for a SKU
func NewStockLevel(sku string, q Quantities) (*StockLevel, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	return &StockLevel{
		BaseEntity:     shared.NewBaseEntity(),
		SKU:            sku,
		Quantities:     q,
		LastReportedAt: time.Now(),
	}, nil
}

// Apply overwrites the cached quantities with a warehouse report and
// returns the previous values.
func (s *StockLevel) Apply(q Quantities) Quantities {
	old := s.Quantities
	s.Quantities = q
	s.LastReportedAt = time.Now()
	s.UpdatedAt = s.LastReportedAt
	return old
}

// Differs reports whether a warehouse report changes the cached values
func (s *StockLevel) Differs(q Quantities) bool {
	return !s.Quantities.Equal(q)
}
