package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/shipping"
)

// ShippingMethodModel is the persistence model for a canonical method
type ShippingMethodModel struct {
	BaseModel
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(100)"`
	Carrier  string `gorm:"type:varchar(50)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ShippingMethodModel) TableName() string {
	return "shipping_methods"
}

// ToDomain converts the persistence model to a domain Method
func (m *ShippingMethodModel) ToDomain() *shipping.Method {
	return &shipping.Method{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Carrier:    m.Carrier,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Method
func (m *ShippingMethodModel) FromDomain(method *shipping.Method) {
	m.FromDomainBaseEntity(method.BaseEntity)
	m.Code = method.Code
	m.Name = method.Name
	m.Carrier = method.Carrier
	m.IsActive = method.IsActive
}

// ShippingMappingModel is the persistence model for a per-channel
// shipping code mapping
type ShippingMappingModel struct {
	BaseModel
	ChannelID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mapping_channel_code,priority:1"`
	ChannelCode string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mapping_channel_code,priority:2"`
	MethodID    uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ShippingMappingModel) TableName() string {
	return "shipping_mappings"
}

// ToDomain converts the persistence model to a domain Mapping
func (m *ShippingMappingModel) ToDomain() *shipping.Mapping {
	return &shipping.Mapping{
		BaseEntity:  m.BaseModel.ToDomain(),
		ChannelID:   m.ChannelID,
		ChannelCode: m.ChannelCode,
		MethodID:    m.MethodID,
	}
}

// FromDomain populates the persistence model from a domain Mapping
func (m *ShippingMappingModel) FromDomain(mapping *shipping.Mapping) {
	m.FromDomainBaseEntity(mapping.BaseEntity)
	m.ChannelID = mapping.ChannelID
	m.ChannelCode = mapping.ChannelCode
	m.MethodID = mapping.MethodID
}

// ShippingMismatchModel is the persistence model for a mismatch record
type ShippingMismatchModel struct {
	BaseModel
	ChannelID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_mismatch_channel_code,priority:1"`
	ChannelCode  string     `gorm:"type:varchar(100);not null;index:idx_mismatch_channel_code,priority:2"`
	OrderNumber  string     `gorm:"type:varchar(100)"`
	UsedFallback bool       `gorm:"not null;default:false"`
	Resolved     bool       `gorm:"not null;default:false;index"`
	ResolvedAt   *time.Time
}

// TableName returns the table name for GORM
func (ShippingMismatchModel) TableName() string {
	return "shipping_mismatches"
}

// ToDomain converts the persistence model to a domain MismatchRecord
func (m *ShippingMismatchModel) ToDomain() *shipping.MismatchRecord {
	return &shipping.MismatchRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		ChannelID:    m.ChannelID,
		ChannelCode:  m.ChannelCode,
		OrderNumber:  m.OrderNumber,
		UsedFallback: m.UsedFallback,
		Resolved:     m.Resolved,
		ResolvedAt:   m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain MismatchRecord
func (m *ShippingMismatchModel) FromDomain(r *shipping.MismatchRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ChannelID = r.ChannelID
	m.ChannelCode = r.ChannelCode
	m.OrderNumber = r.OrderNumber
	m.UsedFallback = r.UsedFallback
	m.Resolved = r.Resolved
	m.ResolvedAt = r.ResolvedAt
}
