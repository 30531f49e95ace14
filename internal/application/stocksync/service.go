package stocksync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/stock"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// StockJobPayload is the payload of stock.platform jobs: one SKU pushed
// to one channel. Quantities are re-read at execution time.
type StockJobPayload struct {
	SKU       string    `json:"sku"`
	ChannelID uuid.UUID `json:"channelId"`
}

// ReconcileResult summarizes one reconciliation run
type ReconcileResult struct {
	Checked int `json:"checked"`
	Changed int `json:"changed"`
	Queued  int `json:"queued"`
}

// Service pulls stock truth from the fulfillment warehouse into the
// local cache and fans changed quantities out to the sales channels.
// The warehouse is the only source of truth; local values are never
// pushed back to it.
type Service struct {
	levels   stock.Repository
	channels channel.Repository
	ffn      channel.FulfillmentClient
	jobs     syncjob.Repository
	logs     synclog.Repository
	jobOpts  syncjob.Options

	mu       sync.Mutex
	lastPoll time.Time
}

// Option configures optional service behavior
type Option func(*Service)

// WithJobOptions sets the retry tuning stamped on every job the
// service enqueues
func WithJobOptions(opts syncjob.Options) Option {
	return func(s *Service) { s.jobOpts = opts }
}

// NewService creates a stock sync service
func NewService(levels stock.Repository, channels channel.Repository, ffn channel.FulfillmentClient, jobs syncjob.Repository, logs synclog.Repository, opts ...Option) *Service {
	s := &Service{
		levels:   levels,
		channels: channels,
		ffn:      ffn,
		jobs:     jobs,
		logs:     logs,
		lastPoll: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReconcileAll reconciles every SKU present in the local cache
func (s *Service) ReconcileAll(ctx context.Context, force bool) (*ReconcileResult, error) {
	skus, err := s.levels.AllSKUs(ctx)
	if err != nil {
		return nil, err
	}
	if len(skus) == 0 {
		return &ReconcileResult{}, nil
	}
	return s.ReconcileSkus(ctx, skus, force)
}

// ReconcileSkus pulls warehouse quantities for the given SKUs and
// propagates only the ones that actually changed. Force skips the diff
// and queues everything, for recovery after a known divergence.
func (s *Service) ReconcileSkus(ctx context.Context, skus []string, force bool) (*ReconcileResult, error) {
	reported, err := s.ffn.GetStockForSkus(ctx, skus)
	if err != nil {
		return nil, err
	}

	targets, err := s.channels.FindActiveWithStockSync(ctx)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{Checked: len(reported)}
	for _, r := range reported {
		q := stock.Quantities{Available: r.Available, Reserved: r.Reserved, Announced: r.Announced}

		var old stock.Quantities
		level, err := s.levels.FindBySKU(ctx, r.SKU)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			level, err = stock.NewStockLevel(r.SKU, q)
			if err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			if !level.Differs(q) && !force {
				continue
			}
			old = level.Apply(q)
		}

		if err := s.levels.Save(ctx, level); err != nil {
			return nil, err
		}
		result.Changed++
		s.logChange(ctx, r.SKU, old, q)

		for _, ch := range targets {
			if err := s.enqueue(ctx, r.SKU, ch.ID); err != nil {
				return nil, err
			}
			result.Queued++
		}
	}
	return result, nil
}

// PollInbound asks the warehouse for goods receipts completed since the
// last poll and reconciles the affected SKUs immediately, so stock
// arriving in the warehouse shows up on the channels without waiting
// for the periodic sweep.
func (s *Service) PollInbound(ctx context.Context) (*ReconcileResult, error) {
	s.mu.Lock()
	since := s.lastPoll
	s.mu.Unlock()

	updates, err := s.ffn.PollInboundUpdates(ctx, since)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastPoll = time.Now()
	s.mu.Unlock()

	seen := make(map[string]bool)
	var skus []string
	for _, u := range updates {
		for _, sku := range u.SKUs {
			if !seen[sku] {
				seen[sku] = true
				skus = append(skus, sku)
			}
		}
	}
	if len(skus) == 0 {
		return &ReconcileResult{}, nil
	}
	return s.ReconcileSkus(ctx, skus, false)
}

func (s *Service) enqueue(ctx context.Context, sku string, channelID uuid.UUID) error {
	data, err := json.Marshal(StockJobPayload{SKU: sku, ChannelID: channelID})
	if err != nil {
		return err
	}
	job, err := syncjob.NewJob(syncjob.QueueStockToPlatform, data, s.jobOpts)
	if err != nil {
		return err
	}
	return s.jobs.Save(ctx, job)
}

// quantitySnapshot is the audit view of one quantity triple
type quantitySnapshot struct {
	Available decimal.Decimal `json:"available"`
	Reserved  decimal.Decimal `json:"reserved"`
	Announced decimal.Decimal `json:"announced"`
}

// quantityChange is the details document of a stock.reconciled entry
type quantityChange struct {
	Old quantitySnapshot `json:"old"`
	New quantitySnapshot `json:"new"`
}

func snapshot(q stock.Quantities) quantitySnapshot {
	return quantitySnapshot{Available: q.Available, Reserved: q.Reserved, Announced: q.Announced}
}

func changedQuantityFields(old, q stock.Quantities) []string {
	var fields []string
	if !old.Available.Equal(q.Available) {
		fields = append(fields, "available")
	}
	if !old.Reserved.Equal(q.Reserved) {
		fields = append(fields, "reserved")
	}
	if !old.Announced.Equal(q.Announced) {
		fields = append(fields, "announced")
	}
	return fields
}

func (s *Service) logChange(ctx context.Context, sku string, old, q stock.Quantities) {
	details, _ := json.Marshal(quantityChange{Old: snapshot(old), New: snapshot(q)})
	entry := synclog.NewEntry(synclog.EntityStock, "stock.reconciled", shared.OriginFulfillment, synclog.DirectionInbound).
		WithExternalID(sku).
		WithChangedFields(changedQuantityFields(old, q)...).
		WithDetails(string(details))
	_ = s.logs.Append(ctx, entry)
}
