package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// ProductModel is the persistence model for the canonical Product
type ProductModel struct {
	BaseModel
	SKU         string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Weight      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Weight:      m.Weight,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SKU = p.SKU
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.Weight = p.Weight
	m.Active = p.Active
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductChannelModel is the persistence model for a product-to-channel
// link. FieldMeta is stored as JSONB keyed by field name.
type ProductChannelModel struct {
	BaseModel
	ProductID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_pc_product_channel,priority:1"`
	ChannelID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_pc_product_channel,priority:2"`
	ExternalProductID string     `gorm:"type:varchar(100);index:idx_pc_channel_external"`
	SyncEnabled       bool       `gorm:"not null;default:true"`
	SyncState         string     `gorm:"type:varchar(20);not null;index"`
	SyncError         string     `gorm:"type:text"`
	LastSyncAt        *time.Time
	FieldMeta         []byte `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ProductChannelModel) TableName() string {
	return "product_channels"
}

// ToDomain converts the persistence model to a domain ProductChannel
func (m *ProductChannelModel) ToDomain() (*catalog.ProductChannel, error) {
	meta := make(map[string]catalog.FieldWriter)
	if len(m.FieldMeta) > 0 {
		if err := json.Unmarshal(m.FieldMeta, &meta); err != nil {
			return nil, err
		}
	}
	return &catalog.ProductChannel{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProductID:         m.ProductID,
		ChannelID:         m.ChannelID,
		ExternalProductID: m.ExternalProductID,
		SyncEnabled:       m.SyncEnabled,
		SyncState:         catalog.SyncState(m.SyncState),
		SyncError:         m.SyncError,
		LastSyncAt:        m.LastSyncAt,
		FieldMeta:         meta,
	}, nil
}

// FromDomain populates the persistence model from a domain ProductChannel
func (m *ProductChannelModel) FromDomain(pc *catalog.ProductChannel) error {
	meta, err := json.Marshal(pc.FieldMeta)
	if err != nil {
		return err
	}
	m.FromDomainBaseEntity(pc.BaseEntity)
	m.ProductID = pc.ProductID
	m.ChannelID = pc.ChannelID
	m.ExternalProductID = pc.ExternalProductID
	m.SyncEnabled = pc.SyncEnabled
	m.SyncState = string(pc.SyncState)
	m.SyncError = pc.SyncError
	m.LastSyncAt = pc.LastSyncAt
	m.FieldMeta = meta
	return nil
}

// FieldConflictModel is the persistence model for a FieldConflict
type FieldConflictModel struct {
	BaseModel
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_conflict_product_channel,priority:1"`
	ChannelID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_conflict_product_channel,priority:2"`
	Field          string     `gorm:"type:varchar(50);not null"`
	LocalValue     string     `gorm:"type:text"`
	IncomingValue  string     `gorm:"type:text"`
	IncomingOrigin string     `gorm:"type:varchar(20);not null"`
	Resolution     string     `gorm:"type:varchar(20);not null;index"`
	ResolvedValue  string     `gorm:"type:text"`
	ResolvedBy     string     `gorm:"type:varchar(100)"`
	ResolvedAt     *time.Time
}

// TableName returns the table name for GORM
func (FieldConflictModel) TableName() string {
	return "field_conflicts"
}

// ToDomain converts the persistence model to a domain FieldConflict
func (m *FieldConflictModel) ToDomain() *catalog.FieldConflict {
	return &catalog.FieldConflict{
		BaseEntity:     m.BaseModel.ToDomain(),
		ProductID:      m.ProductID,
		ChannelID:      m.ChannelID,
		Field:          m.Field,
		LocalValue:     m.LocalValue,
		IncomingValue:  m.IncomingValue,
		IncomingOrigin: shared.Origin(m.IncomingOrigin),
		Resolution:     catalog.ConflictResolution(m.Resolution),
		ResolvedValue:  m.ResolvedValue,
		ResolvedBy:     m.ResolvedBy,
		ResolvedAt:     m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain FieldConflict
func (m *FieldConflictModel) FromDomain(c *catalog.FieldConflict) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ProductID = c.ProductID
	m.ChannelID = c.ChannelID
	m.Field = c.Field
	m.LocalValue = c.LocalValue
	m.IncomingValue = c.IncomingValue
	m.IncomingOrigin = string(c.IncomingOrigin)
	m.Resolution = string(c.Resolution)
	m.ResolvedValue = c.ResolvedValue
	m.ResolvedBy = c.ResolvedBy
	m.ResolvedAt = c.ResolvedAt
}
