package productsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// ProductJobPayload is the payload of product.platform jobs
type ProductJobPayload struct {
	ProductID uuid.UUID `json:"productId"`
	ChannelID uuid.UUID `json:"channelId"`
}

// InboundProductRequest is a normalized product change from a platform
type InboundProductRequest struct {
	ChannelID         uuid.UUID      `json:"channelId" binding:"required"`
	ExternalProductID string         `json:"externalProductId" binding:"required"`
	SKU               string         `json:"sku"`
	Fields            map[string]any `json:"fields" binding:"required"`
}

// InternalProductRequest is an operator edit of the canonical product
type InternalProductRequest struct {
	ProductID uuid.UUID      `json:"productId"`
	Actor     string         `json:"actor"`
	Fields    map[string]any `json:"fields" binding:"required"`
}

// ResolveConflictRequest closes one field conflict
type ResolveConflictRequest struct {
	ConflictID  uuid.UUID                  `json:"conflictId"`
	Resolution  catalog.ConflictResolution `json:"resolution" binding:"required"`
	CustomValue string                     `json:"customValue"`
	ResolvedBy  string                     `json:"resolvedBy"`
}

// ApplyResult reports what an inbound apply did per field
type ApplyResult struct {
	ProductID  uuid.UUID `json:"productId"`
	Applied    []string  `json:"applied,omitempty"`
	Unchanged  []string  `json:"unchanged,omitempty"`
	Conflicted []string  `json:"conflicted,omitempty"`
}

// Service synchronizes catalog data. Product fields have no fixed
// owner: the last origin to write a field stays authoritative for it,
// and a write from a different origin with a different value opens a
// conflict instead of being merged silently.
type Service struct {
	products  catalog.ProductRepository
	links     catalog.ProductChannelRepository
	conflicts catalog.ConflictRepository
	channels  channel.Repository
	jobs      syncjob.Repository
	logs      synclog.Repository
	jobOpts   syncjob.Options
}

// Option configures optional service behavior
type Option func(*Service)

// WithJobOptions sets the retry tuning stamped on every job the
// service enqueues
func WithJobOptions(opts syncjob.Options) Option {
	return func(s *Service) { s.jobOpts = opts }
}

// NewService creates a product sync service
func NewService(products catalog.ProductRepository, links catalog.ProductChannelRepository, conflicts catalog.ConflictRepository, channels channel.Repository, jobs syncjob.Repository, logs synclog.Repository, opts ...Option) *Service {
	s := &Service{
		products:  products,
		links:     links,
		conflicts: conflicts,
		channels:  channels,
		jobs:      jobs,
		logs:      logs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyInbound absorbs a product change reported by a platform. Per
// field: an identical value is a no-op, a field last written by the
// same platform (or never written) is applied, and anything else opens
// a conflict for an operator to decide.
func (s *Service) ApplyInbound(ctx context.Context, req InboundProductRequest) (*ApplyResult, error) {
	link, err := s.links.FindByExternalID(ctx, req.ChannelID, req.ExternalProductID)
	if errors.Is(err, shared.ErrNotFound) {
		link, err = s.adoptProduct(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, link.ProductID)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{ProductID: product.ID}
	now := time.Now()
	conflicted := false

	for field, value := range req.Fields {
		if !catalog.IsKnownField(field) {
			continue
		}
		current, err := product.FieldValue(field)
		if err != nil {
			return nil, err
		}
		if fmt.Sprint(current) == fmt.Sprint(value) {
			link.RecordWrite(field, shared.OriginPlatform, now)
			result.Unchanged = append(result.Unchanged, field)
			continue
		}
		if link.Conflicts(field, shared.OriginPlatform) {
			if err := s.openConflict(ctx, product, link, field, current, value); err != nil {
				return nil, err
			}
			result.Conflicted = append(result.Conflicted, field)
			conflicted = true
			continue
		}
		if err := product.SetFieldValue(field, value); err != nil {
			return nil, err
		}
		link.RecordWrite(field, shared.OriginPlatform, now)
		result.Applied = append(result.Applied, field)
	}

	if conflicted {
		link.MarkConflict()
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}
	s.logApply(ctx, product, req.ExternalProductID, shared.OriginPlatform, result)

	// Applied changes flow on to the other channels carrying the product
	if len(result.Applied) > 0 {
		if err := s.enqueueForOthers(ctx, product.ID, req.ChannelID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// adoptProduct links a platform product seen for the first time,
// creating the canonical record when the SKU is new
func (s *Service) adoptProduct(ctx context.Context, req InboundProductRequest) (*catalog.ProductChannel, error) {
	if req.SKU == "" {
		return nil, catalog.ErrInvalidSKU
	}
	product, err := s.products.FindBySKU(ctx, req.SKU)
	if errors.Is(err, shared.ErrNotFound) {
		name, _ := req.Fields[catalog.FieldName].(string)
		if name == "" {
			name = req.SKU
		}
		product, err = catalog.NewProduct(req.SKU, name, priceFrom(req.Fields[catalog.FieldPrice]))
		if err != nil {
			return nil, err
		}
		if err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	link, err := catalog.NewProductChannel(product.ID, req.ChannelID, req.ExternalProductID)
	if err != nil {
		return nil, err
	}
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// ApplyInternal applies an operator edit to the canonical product. The
// edit takes field ownership on every channel link and is pushed out to
// all channels that sync products.
func (s *Service) ApplyInternal(ctx context.Context, req InternalProductRequest) (*ApplyResult, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{ProductID: product.ID}
	for field, value := range req.Fields {
		if !catalog.IsKnownField(field) {
			continue
		}
		if err := product.SetFieldValue(field, value); err != nil {
			return nil, err
		}
		result.Applied = append(result.Applied, field)
	}
	if len(result.Applied) == 0 {
		return result, nil
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	now := time.Now()
	links, err := s.links.FindByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	for i := range links {
		for _, field := range result.Applied {
			links[i].RecordWrite(field, shared.OriginInternal, now)
		}
		if err := s.links.Save(ctx, &links[i]); err != nil {
			return nil, err
		}
	}

	s.logApply(ctx, product, "", shared.OriginInternal, result)
	return result, s.enqueueForOthers(ctx, product.ID, uuid.Nil)
}

// ResolveConflict closes a conflict and propagates the chosen value.
// Keeping the local value still pushes it to the disagreeing channel so
// both sides converge.
func (s *Service) ResolveConflict(ctx context.Context, req ResolveConflictRequest) error {
	conflict, err := s.conflicts.FindByID(ctx, req.ConflictID)
	if err != nil {
		return err
	}
	if err := conflict.Resolve(req.Resolution, req.CustomValue, req.ResolvedBy); err != nil {
		return err
	}

	product, err := s.products.FindByID(ctx, conflict.ProductID)
	if err != nil {
		return err
	}
	if req.Resolution != catalog.ConflictResolvedLocal {
		if err := product.SetFieldValue(conflict.Field, conflict.ResolvedValue); err != nil {
			return err
		}
		if err := s.products.Save(ctx, product); err != nil {
			return err
		}
	}

	link, err := s.links.FindByProductAndChannel(ctx, conflict.ProductID, conflict.ChannelID)
	if err != nil {
		return err
	}
	link.RecordWrite(conflict.Field, shared.OriginInternal, time.Now())
	if err := s.links.Save(ctx, link); err != nil {
		return err
	}
	if err := s.conflicts.Save(ctx, conflict); err != nil {
		return err
	}

	entry := synclog.NewEntry(synclog.EntityProduct, "product.conflict_resolved", shared.OriginInternal, synclog.DirectionInbound).
		WithEntity(product.ID).
		WithChangedFields(conflict.Field)
	_ = s.logs.Append(ctx, entry)

	return s.enqueueForOthers(ctx, product.ID, uuid.Nil)
}

// PushAll queues an outbound product push to every channel that syncs
// products, for the manual resync surface
func (s *Service) PushAll(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.enqueueForOthers(ctx, productID, uuid.Nil)
}

// enqueueForOthers queues one push job per active product-sync channel,
// excluding the channel the change came from
func (s *Service) enqueueForOthers(ctx context.Context, productID, exceptChannelID uuid.UUID) error {
	targets, err := s.channels.FindActiveWithProductSync(ctx)
	if err != nil {
		return err
	}
	for _, ch := range targets {
		if ch.ID == exceptChannelID {
			continue
		}
		data, err := json.Marshal(ProductJobPayload{ProductID: productID, ChannelID: ch.ID})
		if err != nil {
			return err
		}
		job, err := syncjob.NewJob(syncjob.QueueProductToPlatform, data, s.jobOpts)
		if err != nil {
			return err
		}
		if err := s.jobs.Save(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) openConflict(ctx context.Context, product *catalog.Product, link *catalog.ProductChannel, field string, current, incoming any) error {
	// One open conflict per field is enough, repeats carry no news
	existing, err := s.conflicts.FindOpenForField(ctx, product.ID, link.ChannelID, field)
	if err == nil && existing != nil {
		return nil
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	conflict := catalog.NewFieldConflict(product.ID, link.ChannelID, field, fmt.Sprint(current), fmt.Sprint(incoming), shared.OriginPlatform)
	return s.conflicts.Save(ctx, conflict)
}

func (s *Service) logApply(ctx context.Context, product *catalog.Product, externalID string, origin shared.Origin, result *ApplyResult) {
	entry := synclog.NewEntry(synclog.EntityProduct, "product.updated", origin, synclog.DirectionInbound).
		WithEntity(product.ID).
		WithExternalID(externalID).
		WithChangedFields(result.Applied...)
	if len(result.Conflicted) > 0 {
		entry = entry.Failed(fmt.Sprintf("conflicting fields: %v", result.Conflicted))
	}
	_ = s.logs.Append(ctx, entry)
}

func priceFrom(value any) decimal.Decimal {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}
