package stocksync

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/stock"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// PushHandler executes stock.platform jobs. Quantities are re-read from
// the cache at execution time so coalesced or delayed jobs always push
// the newest value.
type PushHandler struct {
	levels   stock.Repository
	products catalog.ProductRepository
	links    catalog.ProductChannelRepository
	channels channel.Repository
	registry channel.PlatformClientRegistry
	logs     synclog.Repository
}

// NewPushHandler creates the stock push handler
func NewPushHandler(levels stock.Repository, products catalog.ProductRepository, links catalog.ProductChannelRepository, channels channel.Repository, registry channel.PlatformClientRegistry, logs synclog.Repository) *PushHandler {
	return &PushHandler{
		levels:   levels,
		products: products,
		links:    links,
		channels: channels,
		registry: registry,
		logs:     logs,
	}
}

// Handle executes one stock.platform job
func (h *PushHandler) Handle(ctx context.Context, job *syncjob.Job) error {
	var payload StockJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return channel.NewTerminalClientError("BAD_PAYLOAD", err.Error())
	}

	level, err := h.levels.FindBySKU(ctx, payload.SKU)
	if err != nil {
		return err
	}
	ch, err := h.channels.FindByID(ctx, payload.ChannelID)
	if err != nil {
		return err
	}
	if !ch.IsActive || !ch.StockSyncEnabled {
		return nil
	}

	product, err := h.products.FindBySKU(ctx, payload.SKU)
	if err != nil {
		// A SKU the channel never sold has nothing to update there
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	link, err := h.links.FindByProductAndChannel(ctx, product.ID, ch.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if !link.SyncEnabled || link.ExternalProductID == "" {
		return nil
	}

	client, err := h.registry.ClientFor(ch.Type)
	if err != nil {
		return err
	}

	pushErr := client.SetStock(ctx, ch.ID, link.ExternalProductID, level.Quantities.Available)
	entry := synclog.NewEntry(synclog.EntityStock, "stock.push", shared.OriginInternal, synclog.DirectionOutbound).
		WithExternalID(payload.SKU).
		WithTarget("platform").
		WithJob(job.ID)
	if pushErr != nil {
		entry = entry.Failed(pushErr.Error())
	}
	_ = h.logs.Append(ctx, entry)
	return pushErr
}
