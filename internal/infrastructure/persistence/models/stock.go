package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/syncbridge/backend/internal/domain/stock"
)

// StockLevelModel is the persistence model for a cached stock level
type StockLevelModel struct {
	BaseModel
	SKU            string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Available      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reserved       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Announced      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastReportedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "stock_levels"
}

// ToDomain converts the persistence model to a domain StockLevel
func (m *StockLevelModel) ToDomain() *stock.StockLevel {
	return &stock.StockLevel{
		BaseEntity: m.BaseModel.ToDomain(),
		SKU:        m.SKU,
		Quantities: stock.Quantities{
			Available: m.Available,
			Reserved:  m.Reserved,
			Announced: m.Announced,
		},
		LastReportedAt: m.LastReportedAt,
	}
}

// FromDomain populates the persistence model from a domain StockLevel
func (m *StockLevelModel) FromDomain(s *stock.StockLevel) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.SKU = s.SKU
	m.Available = s.Quantities.Available
	m.Reserved = s.Quantities.Reserved
	m.Announced = s.Quantities.Announced
	m.LastReportedAt = s.LastReportedAt
}
