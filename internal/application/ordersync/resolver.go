package ordersync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/shipping"
)

// ShippingResolver turns a channel-native shipping code into a canonical
// warehouse method. Exact mapping wins; otherwise the channel fallback
// is used and the miss is recorded so an operator can add the mapping.
type ShippingResolver struct {
	mappings   shipping.MappingRepository
	mismatches shipping.MismatchRepository
	notifier   channel.Notifier
}

// NewShippingResolver creates a shipping resolver
func NewShippingResolver(mappings shipping.MappingRepository, mismatches shipping.MismatchRepository, notifier channel.Notifier) *ShippingResolver {
	return &ShippingResolver{
		mappings:   mappings,
		mismatches: mismatches,
		notifier:   notifier,
	}
}

// Resolve resolves one channel shipping code for one order. A miss never
// returns an error: the order proceeds (held or not is the caller's
// policy call) and the mismatch record carries the evidence.
func (r *ShippingResolver) Resolve(ctx context.Context, ch *channel.SalesChannel, channelCode, orderNumber string) (shipping.Resolution, error) {
	if channelCode != "" {
		mapping, err := r.mappings.FindByChannelCode(ctx, ch.ID, channelCode)
		if err == nil {
			methodID := mapping.MethodID
			return shipping.Resolution{MethodID: &methodID}, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return shipping.Resolution{}, err
		}
	}

	usedFallback := ch.FallbackShippingMethodID != nil
	r.recordMismatch(ctx, ch.ID, channelCode, orderNumber, usedFallback)

	if usedFallback {
		methodID := *ch.FallbackShippingMethodID
		return shipping.Resolution{MethodID: &methodID, UsedFallback: true, Mismatch: true}, nil
	}
	return shipping.Resolution{Mismatch: true}, nil
}

// recordMismatch persists the miss and notifies. Both are best-effort:
// a failure here must not fail order creation.
func (r *ShippingResolver) recordMismatch(ctx context.Context, channelID uuid.UUID, channelCode, orderNumber string, usedFallback bool) {
	record := shipping.NewMismatchRecord(channelID, channelCode, orderNumber, usedFallback)
	_ = r.mismatches.Save(ctx, record)

	if r.notifier != nil {
		_ = r.notifier.Notify(ctx, channel.MismatchEvent{
			ChannelID:   channelID,
			Kind:        "shipping_method",
			Value:       channelCode,
			OrderNumber: orderNumber,
			OccurredAt:  time.Now(),
		})
	}
}
