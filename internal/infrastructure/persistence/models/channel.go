package models

import (
	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/channel"
)

// SalesChannelModel is the persistence model for a SalesChannel
type SalesChannelModel struct {
	BaseModel
	Type                     string     `gorm:"type:varchar(20);not null;index"`
	Name                     string     `gorm:"type:varchar(100);not null"`
	IsActive                 bool       `gorm:"not null;default:true;index"`
	StockSyncEnabled         bool       `gorm:"not null;default:true"`
	ProductSyncEnabled       bool       `gorm:"not null;default:true"`
	OrderSyncEnabled         bool       `gorm:"not null;default:true"`
	WebhookSecretRef         string     `gorm:"type:varchar(200)"`
	FallbackShippingMethodID *uuid.UUID `gorm:"type:uuid"`
	HoldOnShippingMismatch   bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SalesChannelModel) TableName() string {
	return "sales_channels"
}

// ToDomain converts the persistence model to a domain SalesChannel
func (m *SalesChannelModel) ToDomain() *channel.SalesChannel {
	return &channel.SalesChannel{
		BaseEntity:               m.BaseModel.ToDomain(),
		Type:                     channel.ChannelType(m.Type),
		Name:                     m.Name,
		IsActive:                 m.IsActive,
		StockSyncEnabled:         m.StockSyncEnabled,
		ProductSyncEnabled:       m.ProductSyncEnabled,
		OrderSyncEnabled:         m.OrderSyncEnabled,
		WebhookSecretRef:         m.WebhookSecretRef,
		FallbackShippingMethodID: m.FallbackShippingMethodID,
		HoldOnShippingMismatch:   m.HoldOnShippingMismatch,
	}
}

// FromDomain populates the persistence model from a domain SalesChannel
func (m *SalesChannelModel) FromDomain(ch *channel.SalesChannel) {
	m.FromDomainBaseEntity(ch.BaseEntity)
	m.Type = string(ch.Type)
	m.Name = ch.Name
	m.IsActive = ch.IsActive
	m.StockSyncEnabled = ch.StockSyncEnabled
	m.ProductSyncEnabled = ch.ProductSyncEnabled
	m.OrderSyncEnabled = ch.OrderSyncEnabled
	m.WebhookSecretRef = ch.WebhookSecretRef
	m.FallbackShippingMethodID = ch.FallbackShippingMethodID
	m.HoldOnShippingMismatch = ch.HoldOnShippingMismatch
}
