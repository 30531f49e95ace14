package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncbridge/backend/internal/domain/order"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	BaseModel
	ChannelID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_channel_external,priority:1"`
	ExternalOrderID string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_channel_external,priority:2"`
	OrderNumber     string    `gorm:"type:varchar(100);not null;index"`
	Origin          string    `gorm:"type:varchar(20);not null"`

	CustomerName    string          `gorm:"type:varchar(200)"`
	CustomerEmail   string          `gorm:"type:varchar(200)"`
	ReceiverName    string          `gorm:"type:varchar(200)"`
	ReceiverStreet  string          `gorm:"type:varchar(200)"`
	ReceiverZip     string          `gorm:"type:varchar(20)"`
	ReceiverCity    string          `gorm:"type:varchar(100)"`
	ReceiverCountry string          `gorm:"type:varchar(2)"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency        string          `gorm:"type:varchar(3)"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null"`
	ShippingCode    string          `gorm:"type:varchar(100)"`

	State            string     `gorm:"type:varchar(30);not null;index"`
	ShippingMethodID *uuid.UUID `gorm:"type:uuid"`
	ShippingMismatch bool       `gorm:"not null;default:false"`
	Carrier          string     `gorm:"type:varchar(50)"`
	TrackingNumber   string     `gorm:"type:varchar(100)"`
	IsOnHold         bool       `gorm:"not null;default:false;index"`
	HoldReason       string     `gorm:"type:varchar(40)"`
	IsCancelled      bool       `gorm:"not null;default:false;index"`
	CancelOrigin     string     `gorm:"type:varchar(20)"`
	CancelReason     string     `gorm:"type:varchar(500)"`
	SyncedToFfn      bool       `gorm:"not null;default:false"`
	FfnOrderID       string     `gorm:"type:varchar(100);index"`

	SyncStatus string `gorm:"type:varchar(20);not null;index"`
	SyncError  string `gorm:"type:text"`

	LastCommercialSyncAt    *time.Time
	LastOperationalUpdateAt *time.Time
	LastOperationalUpdateBy string `gorm:"type:varchar(100)"`

	SplitFromOrderID *uuid.UUID `gorm:"type:uuid;index"`
	SplitCount       int        `gorm:"not null;default:0"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for an order line snapshot
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"type:varchar(100);not null;index"`
	Name      string          `gorm:"type:varchar(200)"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseEntity:      m.BaseModel.ToDomain(),
		ChannelID:       m.ChannelID,
		ExternalOrderID: m.ExternalOrderID,
		OrderNumber:     m.OrderNumber,
		Origin:          shared.Origin(m.Origin),
		Commercial: order.CommercialFields{
			CustomerName:    m.CustomerName,
			CustomerEmail:   m.CustomerEmail,
			ReceiverName:    m.ReceiverName,
			ReceiverStreet:  m.ReceiverStreet,
			ReceiverZip:     m.ReceiverZip,
			ReceiverCity:    m.ReceiverCity,
			ReceiverCountry: m.ReceiverCountry,
			TotalAmount:     m.TotalAmount,
			ShippingAmount:  m.ShippingAmount,
			Currency:        m.Currency,
			PaymentStatus:   order.PaymentStatus(m.PaymentStatus),
			ShippingCode:    m.ShippingCode,
		},
		State:                   order.FulfillmentState(m.State),
		ShippingMethodID:        m.ShippingMethodID,
		ShippingMismatch:        m.ShippingMismatch,
		Carrier:                 m.Carrier,
		TrackingNumber:          m.TrackingNumber,
		IsOnHold:                m.IsOnHold,
		HoldReason:              order.HoldReason(m.HoldReason),
		IsCancelled:             m.IsCancelled,
		CancelOrigin:            shared.Origin(m.CancelOrigin),
		CancelReason:            m.CancelReason,
		SyncedToFfn:             m.SyncedToFfn,
		FfnOrderID:              m.FfnOrderID,
		SyncStatus:              order.SyncStatus(m.SyncStatus),
		SyncError:               m.SyncError,
		LastCommercialSyncAt:    m.LastCommercialSyncAt,
		LastOperationalUpdateAt: m.LastOperationalUpdateAt,
		LastOperationalUpdateBy: m.LastOperationalUpdateBy,
		SplitFromOrderID:        m.SplitFromOrderID,
		SplitCount:              m.SplitCount,
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, order.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: item.CreatedAt,
		})
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.ChannelID = o.ChannelID
	m.ExternalOrderID = o.ExternalOrderID
	m.OrderNumber = o.OrderNumber
	m.Origin = string(o.Origin)

	m.CustomerName = o.Commercial.CustomerName
	m.CustomerEmail = o.Commercial.CustomerEmail
	m.ReceiverName = o.Commercial.ReceiverName
	m.ReceiverStreet = o.Commercial.ReceiverStreet
	m.ReceiverZip = o.Commercial.ReceiverZip
	m.ReceiverCity = o.Commercial.ReceiverCity
	m.ReceiverCountry = o.Commercial.ReceiverCountry
	m.TotalAmount = o.Commercial.TotalAmount
	m.ShippingAmount = o.Commercial.ShippingAmount
	m.Currency = o.Commercial.Currency
	m.PaymentStatus = string(o.Commercial.PaymentStatus)
	m.ShippingCode = o.Commercial.ShippingCode

	m.State = string(o.State)
	m.ShippingMethodID = o.ShippingMethodID
	m.ShippingMismatch = o.ShippingMismatch
	m.Carrier = o.Carrier
	m.TrackingNumber = o.TrackingNumber
	m.IsOnHold = o.IsOnHold
	m.HoldReason = string(o.HoldReason)
	m.IsCancelled = o.IsCancelled
	m.CancelOrigin = string(o.CancelOrigin)
	m.CancelReason = o.CancelReason
	m.SyncedToFfn = o.SyncedToFfn
	m.FfnOrderID = o.FfnOrderID
	m.SyncStatus = string(o.SyncStatus)
	m.SyncError = o.SyncError
	m.LastCommercialSyncAt = o.LastCommercialSyncAt
	m.LastOperationalUpdateAt = o.LastOperationalUpdateAt
	m.LastOperationalUpdateBy = o.LastOperationalUpdateBy
	m.SplitFromOrderID = o.SplitFromOrderID
	m.SplitCount = o.SplitCount

	m.Items = m.Items[:0]
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:        item.ID,
			OrderID:   item.OrderID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: item.CreatedAt,
		})
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
