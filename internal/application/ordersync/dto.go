package ordersync

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/syncbridge/backend/internal/domain/order"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// ItemRequest is one order line from a platform event
type ItemRequest struct {
	SKU       string          `json:"sku" binding:"required"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CommercialRequest carries the checkout-owned attributes of an order
type CommercialRequest struct {
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	ReceiverName    string          `json:"receiverName"`
	ReceiverStreet  string          `json:"receiverStreet"`
	ReceiverZip     string          `json:"receiverZip"`
	ReceiverCity    string          `json:"receiverCity"`
	ReceiverCountry string          `json:"receiverCountry"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAmount  decimal.Decimal `json:"shippingAmount"`
	Currency        string          `json:"currency"`
	PaymentStatus   string          `json:"paymentStatus"`
	ShippingCode    string          `json:"shippingCode"`
}

// CreateOrderRequest is a normalized platform order-created event
type CreateOrderRequest struct {
	ChannelID       uuid.UUID         `json:"channelId" binding:"required"`
	ExternalOrderID string            `json:"externalOrderId" binding:"required"`
	OrderNumber     string            `json:"orderNumber"`
	Commercial      CommercialRequest `json:"commercial"`
	Items           []ItemRequest     `json:"items" binding:"required,min=1"`
}

// UpdateCommercialRequest is a normalized platform order-updated event
type UpdateCommercialRequest struct {
	ChannelID       uuid.UUID         `json:"channelId" binding:"required"`
	ExternalOrderID string            `json:"externalOrderId" binding:"required"`
	Commercial      CommercialRequest `json:"commercial"`
}

// OperationalPatchRequest is a patch against the operational field set.
// Fields the origin does not own are dropped and reported back.
type OperationalPatchRequest struct {
	OrderID uuid.UUID      `json:"orderId"`
	Origin  shared.Origin  `json:"origin" binding:"required"`
	Actor   string         `json:"actor"`
	Fields  map[string]any `json:"fields" binding:"required"`
}

// CancelOrderRequest cancels an order on behalf of an origin
type CancelOrderRequest struct {
	OrderID uuid.UUID     `json:"orderId"`
	Origin  shared.Origin `json:"origin" binding:"required"`
	Reason  string        `json:"reason"`
}

// SplitOrderRequest moves the selected items into a new order
type SplitOrderRequest struct {
	OrderID uuid.UUID   `json:"orderId"`
	ItemIDs []uuid.UUID `json:"itemIds" binding:"required,min=1"`
}

// OrderItemResponse is one order line in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderResponse is the full order view
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	ChannelID        uuid.UUID           `json:"channelId"`
	ExternalOrderID  string              `json:"externalOrderId"`
	OrderNumber      string              `json:"orderNumber"`
	State            string              `json:"state"`
	IsOnHold         bool                `json:"isOnHold"`
	HoldReason       string              `json:"holdReason,omitempty"`
	IsCancelled      bool                `json:"isCancelled"`
	PaymentStatus    string              `json:"paymentStatus"`
	TotalAmount      decimal.Decimal     `json:"totalAmount"`
	Currency         string              `json:"currency"`
	ShippingCode     string              `json:"shippingCode"`
	ShippingMethodID *uuid.UUID          `json:"shippingMethodId,omitempty"`
	ShippingMismatch bool                `json:"shippingMismatch"`
	Carrier          string              `json:"carrier,omitempty"`
	TrackingNumber   string              `json:"trackingNumber,omitempty"`
	SyncedToFfn      bool                `json:"syncedToFfn"`
	FfnOrderID       string              `json:"ffnOrderId,omitempty"`
	SyncStatus       string              `json:"syncStatus"`
	SyncError        string              `json:"syncError,omitempty"`
	SplitFromOrderID *uuid.UUID          `json:"splitFromOrderId,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	RejectedFields   []string            `json:"rejectedFields,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// ListFilter narrows order listings
type ListFilter struct {
	ChannelID   *uuid.UUID `form:"channelId"`
	State       string     `form:"state"`
	OnHold      *bool      `form:"onHold"`
	IsCancelled *bool      `form:"cancelled"`
	Page        int        `form:"page"`
	PageSize    int        `form:"pageSize"`
}

// ToOrderResponse maps an order aggregate to its API view
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return OrderResponse{
		ID:               o.ID,
		ChannelID:        o.ChannelID,
		ExternalOrderID:  o.ExternalOrderID,
		OrderNumber:      o.OrderNumber,
		State:            o.State.String(),
		IsOnHold:         o.IsOnHold,
		HoldReason:       string(o.HoldReason),
		IsCancelled:      o.IsCancelled,
		PaymentStatus:    string(o.Commercial.PaymentStatus),
		TotalAmount:      o.Commercial.TotalAmount,
		Currency:         o.Commercial.Currency,
		ShippingCode:     o.Commercial.ShippingCode,
		ShippingMethodID: o.ShippingMethodID,
		ShippingMismatch: o.ShippingMismatch,
		Carrier:          o.Carrier,
		TrackingNumber:   o.TrackingNumber,
		SyncedToFfn:      o.SyncedToFfn,
		FfnOrderID:       o.FfnOrderID,
		SyncStatus:       string(o.SyncStatus),
		SyncError:        o.SyncError,
		SplitFromOrderID: o.SplitFromOrderID,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// toCommercial maps the request fields onto the domain value
func toCommercial(req CommercialRequest) order.CommercialFields {
	return order.CommercialFields{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		ReceiverName:    req.ReceiverName,
		ReceiverStreet:  req.ReceiverStreet,
		ReceiverZip:     req.ReceiverZip,
		ReceiverCity:    req.ReceiverCity,
		ReceiverCountry: req.ReceiverCountry,
		TotalAmount:     req.TotalAmount,
		ShippingAmount:  req.ShippingAmount,
		Currency:        req.Currency,
		PaymentStatus:   order.PaymentStatus(req.PaymentStatus),
		ShippingCode:    req.ShippingCode,
	}
}
