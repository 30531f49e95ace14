package channel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Client errors
// ---------------------------------------------------------------------------

// ClientError is a normalized error from an external system. Terminal
// errors must not be retried (the upstream state cannot change by
// retrying, e.g. "already cancelled there").
type ClientError struct {
	Code     string
	Message  string
	Terminal bool
}

// Error implements the error interface
func (e *ClientError) Error() string {
	return e.Message
}

// NewTransientClientError creates a retryable client error
func NewTransientClientError(code, message string) *ClientError {
	return &ClientError{Code: code, Message: message}
}

// NewTerminalClientError creates a non-retryable client error
func NewTerminalClientError(code, message string) *ClientError {
	return &ClientError{Code: code, Message: message, Terminal: true}
}

// IsTerminal reports whether err is a terminal external error
func IsTerminal(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Terminal
}

// ---------------------------------------------------------------------------
// Platform client port
// ---------------------------------------------------------------------------

// PlatformOrderUpdate carries the operational fields mirrored out to a
// storefront platform.
type PlatformOrderUpdate struct {
	ExternalOrderID  string
	FulfillmentState string
	Carrier          string
	TrackingNumber   string
}

// PlatformProduct is the normalized catalog payload pushed to a platform
type PlatformProduct struct {
	ExternalProductID string
	Name              string
	Description       string
	Price             decimal.Decimal
	Active            bool
}

// PlatformClient is the capability set every storefront platform adapter
// provides. Implementations translate these calls into vendor wire
// formats; the engine never sees those.
type PlatformClient interface {
	// ChannelType returns the platform kind this client talks to
	ChannelType() ChannelType

	UpdateOrder(ctx context.Context, channelID uuid.UUID, update PlatformOrderUpdate) error
	CancelOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, reason string) error
	FulfillOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, carrier, trackingNumber string) error

	CreateProduct(ctx context.Context, channelID uuid.UUID, product PlatformProduct) (externalID string, err error)
	UpdateProduct(ctx context.Context, channelID uuid.UUID, product PlatformProduct) error
	DeleteProduct(ctx context.Context, channelID uuid.UUID, externalProductID string) error

	SetStock(ctx context.Context, channelID uuid.UUID, externalProductID string, available decimal.Decimal) error
}

// PlatformClientRegistry resolves the adapter for a channel type
type PlatformClientRegistry interface {
	ClientFor(channelType ChannelType) (PlatformClient, error)
}

// ---------------------------------------------------------------------------
// Fulfillment client port
// ---------------------------------------------------------------------------

// FfnOrderItem is a line item sent to the fulfillment warehouse
type FfnOrderItem struct {
	SKU      string
	Quantity decimal.Decimal
}

// FfnOrder is the payload for creating an outbound order in the warehouse
type FfnOrder struct {
	LocalOrderID    uuid.UUID
	ExternalNumber  string
	ShippingMethod  string
	ReceiverName    string
	ReceiverStreet  string
	ReceiverZip     string
	ReceiverCity    string
	ReceiverCountry string
	Items           []FfnOrderItem
}

// SkuStock is the warehouse-reported quantity triple for one SKU
type SkuStock struct {
	SKU       string
	Available decimal.Decimal
	Reserved  decimal.Decimal
	Announced decimal.Decimal
}

// InboundUpdate describes a completed goods receipt in the warehouse
type InboundUpdate struct {
	InboundID   string
	SKUs        []string
	CompletedAt time.Time
}

// FulfillmentClient is the capability set of the fulfillment warehouse
type FulfillmentClient interface {
	SyncOrder(ctx context.Context, order FfnOrder) (ffnOrderID string, err error)
	CancelOrder(ctx context.Context, ffnOrderID string) error
	GetStockForSkus(ctx context.Context, skus []string) ([]SkuStock, error)
	// PollInboundUpdates returns goods receipts completed since the
	// given time. Used as the event-driven stock trigger.
	PollInboundUpdates(ctx context.Context, since time.Time) ([]InboundUpdate, error)
}

// ---------------------------------------------------------------------------
// Supporting ports
// ---------------------------------------------------------------------------

// Credentials are decrypted secrets for one channel
type Credentials struct {
	APIKey        string
	APISecret     string
	WebhookSecret string
}

// CredentialResolver returns decrypted credentials by channel id. The
// engine never touches raw secret storage.
type CredentialResolver interface {
	Resolve(ctx context.Context, channelID uuid.UUID) (*Credentials, error)
}

// MismatchEvent describes a mapping fallback or failure that needs a
// human to add the missing mapping
type MismatchEvent struct {
	ChannelID   uuid.UUID
	Kind        string
	Value       string
	OrderNumber string
	OccurredAt  time.Time
}

// Notifier delivers mismatch events. Fire-and-forget: failures must not
// fail the operation that raised the event.
type Notifier interface {
	Notify(ctx context.Context, event MismatchEvent) error
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// Repository persists sales channels
type Repository interface {
	Save(ctx context.Context, ch *SalesChannel) error
	FindByID(ctx context.Context, id uuid.UUID) (*SalesChannel, error)
	FindActive(ctx context.Context) ([]SalesChannel, error)
	FindActiveWithStockSync(ctx context.Context) ([]SalesChannel, error)
	FindActiveWithProductSync(ctx context.Context) ([]SalesChannel, error)
}
