package channel

import (
	"errors"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/shared"
)

var (
	ErrChannelNotFound   = errors.New("channel: sales channel not found")
	ErrChannelInactive   = errors.New("channel: sales channel is not active")
	ErrUnknownChannel    = errors.New("channel: unknown channel type")
	ErrMissingCredential = errors.New("channel: credentials not configured")
)

// ChannelType represents the kind of external storefront platform
type ChannelType string

const (
	ChannelTypeShopware ChannelType = "SHOPWARE"
	ChannelTypeShopify  ChannelType = "SHOPIFY"
)

// IsValid returns true if the channel type is valid
func (t ChannelType) IsValid() bool {
	switch t {
	case ChannelTypeShopware, ChannelTypeShopify:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChannelType
func (t ChannelType) String() string {
	return string(t)
}

// SalesChannel is a configured connection to one storefront platform.
// Propagation fan-out is always scoped to active channels with the
// relevant sync toggle enabled.
type SalesChannel struct {
	shared.BaseEntity
	Type               ChannelType
	Name               string
	IsActive           bool
	StockSyncEnabled   bool
	ProductSyncEnabled bool
	OrderSyncEnabled   bool
	// WebhookSecretRef names the secret used to verify inbound
	// signatures; resolution happens through CredentialResolver.
	WebhookSecretRef string
	// FallbackShippingMethodID is used when no shipping mapping matches
	FallbackShippingMethodID *uuid.UUID
	// HoldOnShippingMismatch puts new orders on hold when shipping
	// method resolution fails instead of using no method at all
	HoldOnShippingMismatch bool
}

// NewSalesChannel creates a new sales channel
func NewSalesChannel(channelType ChannelType, name string) (*SalesChannel, error) {
	if !channelType.IsValid() {
		return nil, ErrUnknownChannel
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL_NAME", "Channel name cannot be empty")
	}
	return &SalesChannel{
		BaseEntity:         shared.NewBaseEntity(),
		Type:               channelType,
		Name:               name,
		IsActive:           true,
		StockSyncEnabled:   true,
		ProductSyncEnabled: true,
		OrderSyncEnabled:   true,
	}, nil
}
