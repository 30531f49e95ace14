package productsync

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// PushHandler executes product.platform jobs: publishing the canonical
// product to one channel, creating it there on first push.
type PushHandler struct {
	products catalog.ProductRepository
	links    catalog.ProductChannelRepository
	channels channel.Repository
	registry channel.PlatformClientRegistry
	logs     synclog.Repository
}

// NewPushHandler creates the product push handler
func NewPushHandler(products catalog.ProductRepository, links catalog.ProductChannelRepository, channels channel.Repository, registry channel.PlatformClientRegistry, logs synclog.Repository) *PushHandler {
	return &PushHandler{
		products: products,
		links:    links,
		channels: channels,
		registry: registry,
		logs:     logs,
	}
}

// Handle executes one product.platform job
func (h *PushHandler) Handle(ctx context.Context, job *syncjob.Job) error {
	var payload ProductJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return channel.NewTerminalClientError("BAD_PAYLOAD", err.Error())
	}

	product, err := h.products.FindByID(ctx, payload.ProductID)
	if err != nil {
		return err
	}
	ch, err := h.channels.FindByID(ctx, payload.ChannelID)
	if err != nil {
		return err
	}
	if !ch.IsActive || !ch.ProductSyncEnabled {
		return nil
	}

	link, err := h.links.FindByProductAndChannel(ctx, product.ID, ch.ID)
	if errors.Is(err, shared.ErrNotFound) {
		link, err = catalog.NewProductChannel(product.ID, ch.ID, "")
	}
	if err != nil {
		return err
	}
	if !link.SyncEnabled {
		return nil
	}
	if link.SyncState == catalog.SyncStateConflict {
		// Unresolved conflicts block the push so we never overwrite the
		// side an operator may still pick
		return nil
	}

	client, err := h.registry.ClientFor(ch.Type)
	if err != nil {
		return err
	}

	platformProduct := channel.PlatformProduct{
		ExternalProductID: link.ExternalProductID,
		Name:              product.Name,
		Description:       product.Description,
		Price:             product.Price,
		Active:            product.Active,
	}

	var pushErr error
	if link.ExternalProductID == "" {
		var externalID string
		externalID, pushErr = client.CreateProduct(ctx, ch.ID, platformProduct)
		if pushErr == nil {
			link.ExternalProductID = externalID
		}
	} else {
		pushErr = client.UpdateProduct(ctx, ch.ID, platformProduct)
	}

	if pushErr != nil {
		link.MarkSyncError(pushErr.Error())
	} else {
		link.MarkSynced()
	}
	if err := h.links.Save(ctx, link); err != nil {
		return err
	}

	entry := synclog.NewEntry(synclog.EntityProduct, "product.push", shared.OriginInternal, synclog.DirectionOutbound).
		WithEntity(product.ID).
		WithExternalID(link.ExternalProductID).
		WithTarget("platform").
		WithJob(job.ID)
	if pushErr != nil {
		entry = entry.Failed(pushErr.Error())
	}
	_ = h.logs.Append(ctx, entry)
	return pushErr
}
