package ordersync

import (
	"context"
	"encoding/json"

	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/order"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/shipping"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// FfnPushHandler executes order.ffn jobs: pushing new orders into the
// fulfillment warehouse and cancelling them there. Handlers re-read the
// order so that a redelivered or stale job is a no-op.
type FfnPushHandler struct {
	orders  order.Repository
	methods shipping.MethodRepository
	ffn     channel.FulfillmentClient
	logs    synclog.Repository
}

// NewFfnPushHandler creates the warehouse-side job handler
func NewFfnPushHandler(orders order.Repository, methods shipping.MethodRepository, ffn channel.FulfillmentClient, logs synclog.Repository) *FfnPushHandler {
	return &FfnPushHandler{orders: orders, methods: methods, ffn: ffn, logs: logs}
}

// Handle executes one order.ffn job
func (h *FfnPushHandler) Handle(ctx context.Context, job *syncjob.Job) error {
	var payload OrderJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return channel.NewTerminalClientError("BAD_PAYLOAD", err.Error())
	}
	o, err := h.orders.FindByID(ctx, payload.OrderID)
	if err != nil {
		return err
	}

	switch payload.Action {
	case ActionCancel:
		return h.cancel(ctx, job, o)
	default:
		return h.push(ctx, job, o)
	}
}

func (h *FfnPushHandler) push(ctx context.Context, job *syncjob.Job, o *order.Order) error {
	// State may have moved since enqueue
	if o.SyncedToFfn || o.IsCancelled || o.IsOnHold {
		return nil
	}

	var methodCode string
	if o.ShippingMethodID != nil {
		method, err := h.methods.FindByID(ctx, *o.ShippingMethodID)
		if err != nil {
			return err
		}
		methodCode = method.Code
	}

	items := make([]channel.FfnOrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, channel.FfnOrderItem{SKU: item.SKU, Quantity: item.Quantity})
	}

	ffnOrderID, err := h.ffn.SyncOrder(ctx, channel.FfnOrder{
		LocalOrderID:    o.ID,
		ExternalNumber:  o.OrderNumber,
		ShippingMethod:  methodCode,
		ReceiverName:    o.Commercial.ReceiverName,
		ReceiverStreet:  o.Commercial.ReceiverStreet,
		ReceiverZip:     o.Commercial.ReceiverZip,
		ReceiverCity:    o.Commercial.ReceiverCity,
		ReceiverCountry: o.Commercial.ReceiverCountry,
		Items:           items,
	})
	if err != nil {
		o.MarkSyncError(err.Error())
		_ = h.orders.Save(ctx, o)
		h.log(ctx, job, o, "order.push", err)
		return err
	}

	o.MarkSyncedToFfn(ffnOrderID)
	if err := h.orders.Save(ctx, o); err != nil {
		return err
	}
	h.log(ctx, job, o, "order.push", nil)
	return nil
}

func (h *FfnPushHandler) cancel(ctx context.Context, job *syncjob.Job, o *order.Order) error {
	if !o.SyncedToFfn || o.FfnOrderID == "" {
		return nil
	}
	if err := h.ffn.CancelOrder(ctx, o.FfnOrderID); err != nil {
		h.log(ctx, job, o, "order.cancel", err)
		return err
	}
	h.log(ctx, job, o, "order.cancel", nil)
	return nil
}

func (h *FfnPushHandler) log(ctx context.Context, job *syncjob.Job, o *order.Order, action string, opErr error) {
	entry := synclog.NewEntry(synclog.EntityOrder, action, shared.OriginInternal, synclog.DirectionOutbound).
		WithEntity(o.ID).
		WithExternalID(o.ExternalOrderID).
		WithTarget("ffn").
		WithJob(job.ID)
	if opErr != nil {
		entry = entry.Failed(opErr.Error())
	}
	_ = h.logs.Append(ctx, entry)
}

// PlatformPushHandler executes order.platform jobs: mirroring
// operational progress and cancels back to the storefront platform.
// These outbound entries are what the echo filter looks up.
type PlatformPushHandler struct {
	orders   order.Repository
	channels channel.Repository
	registry channel.PlatformClientRegistry
	logs     synclog.Repository
}

// NewPlatformPushHandler creates the platform-side job handler
func NewPlatformPushHandler(orders order.Repository, channels channel.Repository, registry channel.PlatformClientRegistry, logs synclog.Repository) *PlatformPushHandler {
	return &PlatformPushHandler{orders: orders, channels: channels, registry: registry, logs: logs}
}

// Handle executes one order.platform job
func (h *PlatformPushHandler) Handle(ctx context.Context, job *syncjob.Job) error {
	var payload OrderJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return channel.NewTerminalClientError("BAD_PAYLOAD", err.Error())
	}
	o, err := h.orders.FindByID(ctx, payload.OrderID)
	if err != nil {
		return err
	}
	ch, err := h.channels.FindByID(ctx, o.ChannelID)
	if err != nil {
		return err
	}
	if !ch.IsActive || !ch.OrderSyncEnabled {
		return nil
	}
	client, err := h.registry.ClientFor(ch.Type)
	if err != nil {
		return err
	}

	switch payload.Action {
	case ActionCancel:
		err = client.CancelOrder(ctx, ch.ID, o.ExternalOrderID, payload.Reason)
		h.log(ctx, job, o, "order.cancel", err)
		return err
	default:
		if o.State == order.StateShipped && o.TrackingNumber != "" {
			err = client.FulfillOrder(ctx, ch.ID, o.ExternalOrderID, o.Carrier, o.TrackingNumber)
		} else {
			err = client.UpdateOrder(ctx, ch.ID, channel.PlatformOrderUpdate{
				ExternalOrderID:  o.ExternalOrderID,
				FulfillmentState: o.State.String(),
				Carrier:          o.Carrier,
				TrackingNumber:   o.TrackingNumber,
			})
		}
		h.log(ctx, job, o, "order.push", err)
		return err
	}
}

func (h *PlatformPushHandler) log(ctx context.Context, job *syncjob.Job, o *order.Order, action string, opErr error) {
	entry := synclog.NewEntry(synclog.EntityOrder, action, shared.OriginInternal, synclog.DirectionOutbound).
		WithEntity(o.ID).
		WithExternalID(o.ExternalOrderID).
		WithTarget("platform").
		WithJob(job.ID)
	if opErr != nil {
		entry = entry.Failed(opErr.Error())
	}
	_ = h.logs.Append(ctx, entry)
}
