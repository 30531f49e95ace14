package ordersync

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/order"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// Service coordinates the order half of the sync engine: absorbing
// platform events, applying operational changes and queueing outbound
// propagation.
type Service struct {
	orders   order.Repository
	channels channel.Repository
	resolver *ShippingResolver
	jobs     syncjob.Repository
	logs     synclog.Repository
	jobOpts  syncjob.Options
}

// Option configures optional service behavior
type Option func(*Service)

// WithJobOptions sets the retry tuning stamped on every job the
// service enqueues; priority is still decided per job
func WithJobOptions(opts syncjob.Options) Option {
	return func(s *Service) { s.jobOpts = opts }
}

// NewService creates an order sync service
func NewService(orders order.Repository, channels channel.Repository, resolver *ShippingResolver, jobs syncjob.Repository, logs synclog.Repository, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		channels: channels,
		resolver: resolver,
		jobs:     jobs,
		logs:     logs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create absorbs a platform order-created event. Duplicate deliveries
// collapse into a commercial update of the existing order; creation is
// keyed on the (channel, external id) pair and happens at most once.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ch, err := s.channels.FindByID(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	existing, err := s.orders.FindByExternalID(ctx, req.ChannelID, req.ExternalOrderID)
	if err == nil {
		return s.applyCommercial(ctx, ch, existing, req.Commercial)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	items := make([]order.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.ItemInput{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	o, err := order.NewOrder(req.ChannelID, req.ExternalOrderID, req.OrderNumber, toCommercial(req.Commercial), items)
	if err != nil {
		return nil, err
	}

	res, err := s.resolver.Resolve(ctx, ch, o.Commercial.ShippingCode, o.OrderNumber)
	if err != nil {
		return nil, err
	}
	o.ShippingMethodID = res.MethodID
	o.ShippingMismatch = res.Mismatch

	// Hold decisions. Payment hold takes priority when both apply.
	if res.Mismatch && ch.HoldOnShippingMismatch {
		if err := o.PlaceOnHold(order.HoldReasonShippingMismatch); err != nil {
			return nil, err
		}
	}
	if !o.Commercial.PaymentStatus.IsConfirmed() {
		if err := o.PlaceOnHold(order.HoldReasonAwaitingPayment); err != nil {
			return nil, err
		}
	}

	if !ch.IsActive || !ch.OrderSyncEnabled {
		o.MarkSyncSkipped()
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logInbound(ctx, o, "order.created", shared.OriginPlatform, nil)

	if o.SyncStatus != order.SyncStatusSkipped && !o.IsOnHold {
		if err := s.enqueue(ctx, syncjob.QueueOrderToFfn, OrderJobPayload{OrderID: o.ID, Action: ActionPush}); err != nil {
			return nil, err
		}
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// UpdateCommercial absorbs a platform order-updated event
func (s *Service) UpdateCommercial(ctx context.Context, req UpdateCommercialRequest) (*OrderResponse, error) {
	ch, err := s.channels.FindByID(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByExternalID(ctx, req.ChannelID, req.ExternalOrderID)
	if err != nil {
		return nil, err
	}
	return s.applyCommercial(ctx, ch, o, req.Commercial)
}

// applyCommercial re-copies the commercial fields and reacts to the
// payment status change that may come with them: a refund forces a
// cancel, a confirmation releases a payment hold and triggers exactly
// one warehouse push.
func (s *Service) applyCommercial(ctx context.Context, ch *channel.SalesChannel, o *order.Order, req CommercialRequest) (*OrderResponse, error) {
	wasConfirmed := o.Commercial.PaymentStatus.IsConfirmed()
	o.ApplyCommercial(toCommercial(req))

	if o.Commercial.PaymentStatus == order.PaymentStatusRefunded && !o.IsCancelled {
		return s.cancelForced(ctx, o, shared.OriginPlatform, "payment refunded")
	}

	var enqueuePush bool
	if !wasConfirmed && o.Commercial.PaymentStatus.IsConfirmed() &&
		o.IsOnHold && o.HoldReason == order.HoldReasonAwaitingPayment {
		if err := o.ReleaseHold(); err != nil {
			return nil, err
		}
		// A shipping mismatch hold that was shadowed by the payment
		// hold re-asserts itself here.
		if o.ShippingMismatch && ch.HoldOnShippingMismatch {
			if err := o.PlaceOnHold(order.HoldReasonShippingMismatch); err != nil {
				return nil, err
			}
		} else if !o.SyncedToFfn {
			enqueuePush = true
		}
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logInbound(ctx, o, "order.updated", shared.OriginPlatform, nil)

	if enqueuePush && ch.IsActive && ch.OrderSyncEnabled {
		if err := s.enqueue(ctx, syncjob.QueueOrderToFfn, OrderJobPayload{OrderID: o.ID, Action: ActionPush}); err != nil {
			return nil, err
		}
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// ApplyOperationalPatch applies an operational field patch after
// filtering it through the ownership partition. Fields the origin does
// not own are dropped and reported, never applied.
func (s *Service) ApplyOperationalPatch(ctx context.Context, req OperationalPatchRequest) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	allowed, rejected := order.FilterWritable(req.Fields, req.Origin)

	// Fields apply in a fixed order so that interdependent ones, like
	// isOnHold and holdReason, resolve the same way on every patch
	var applied []string
	mirror := false
	for _, field := range order.OperationalApplyOrder() {
		value, ok := allowed[field]
		if !ok {
			continue
		}
		delete(allowed, field)
		if err := s.applyOperationalField(o, field, value); err != nil {
			return nil, err
		}
		applied = append(applied, field)
		switch field {
		case order.FieldFulfillmentState, order.FieldCarrier, order.FieldTrackingNumber:
			mirror = true
		}
	}
	if len(allowed) > 0 {
		leftover := make([]string, 0, len(allowed))
		for field := range allowed {
			leftover = append(leftover, field)
		}
		sort.Strings(leftover)
		// Writable for the origin but not an operational field; the
		// field switch rejects it deterministically
		if err := s.applyOperationalField(o, leftover[0], allowed[leftover[0]]); err != nil {
			return nil, err
		}
	}

	if len(applied) > 0 {
		actor := req.Actor
		if actor == "" {
			actor = req.Origin.String()
		}
		o.StampOperationalUpdate(actor)
		if err := s.orders.Save(ctx, o); err != nil {
			return nil, err
		}
	}
	s.logOperational(ctx, o, req.Origin, applied, rejected)

	// Operational changes made here or in the warehouse are mirrored
	// out to the platform; platform-origin patches never are.
	if mirror && req.Origin != shared.OriginPlatform {
		if err := s.enqueue(ctx, syncjob.QueueOrderToPlatform, OrderJobPayload{OrderID: o.ID, Action: ActionPush}); err != nil {
			return nil, err
		}
	}

	resp := ToOrderResponse(o)
	resp.RejectedFields = rejected
	return &resp, nil
}

func (s *Service) applyOperationalField(o *order.Order, field string, value any) error {
	switch field {
	case order.FieldFulfillmentState:
		str, ok := value.(string)
		if !ok {
			return shared.ErrInvalidInput
		}
		state := order.FulfillmentState(str)
		if !state.IsValid() {
			return shared.ErrInvalidInput
		}
		return o.TransitionFulfillment(state)
	case order.FieldCarrier:
		str, ok := value.(string)
		if !ok {
			return shared.ErrInvalidInput
		}
		o.Carrier = str
	case order.FieldTrackingNumber:
		str, ok := value.(string)
		if !ok {
			return shared.ErrInvalidInput
		}
		o.TrackingNumber = str
	case order.FieldIsOnHold:
		hold, ok := value.(bool)
		if !ok {
			return shared.ErrInvalidInput
		}
		if hold {
			return o.PlaceOnHold(order.HoldReasonManual)
		}
		return o.ReleaseHold()
	case order.FieldHoldReason:
		str, ok := value.(string)
		if !ok {
			return shared.ErrInvalidInput
		}
		if o.IsOnHold {
			o.HoldReason = order.HoldReason(str)
		}
	case order.FieldShippingMethodID:
		str, ok := value.(string)
		if !ok {
			return shared.ErrInvalidInput
		}
		id, err := uuid.Parse(str)
		if err != nil {
			return shared.ErrInvalidInput
		}
		o.ShippingMethodID = &id
		o.ShippingMismatch = false
	default:
		return shared.ErrFieldNotWritable
	}
	return nil
}

// Cancel cancels an order on behalf of an origin and propagates the
// cancel to the systems that do not know yet.
func (s *Service) Cancel(ctx context.Context, req CancelOrderRequest) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	return s.cancelInternal(ctx, o, req.Origin, req.Reason)
}

func (s *Service) cancelInternal(ctx context.Context, o *order.Order, origin shared.Origin, reason string) (*OrderResponse, error) {
	return s.doCancel(ctx, o, origin, reason, false)
}

// cancelForced is the refund path: cancellation applies even to a
// delivered order
func (s *Service) cancelForced(ctx context.Context, o *order.Order, origin shared.Origin, reason string) (*OrderResponse, error) {
	return s.doCancel(ctx, o, origin, reason, true)
}

func (s *Service) doCancel(ctx context.Context, o *order.Order, origin shared.Origin, reason string, force bool) (*OrderResponse, error) {
	alreadyCancelled := o.IsCancelled
	var err error
	if force {
		err = o.CancelForRefund(origin, reason)
	} else {
		err = o.Cancel(origin, reason)
	}
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logInbound(ctx, o, "order.cancelled", origin, nil)

	if !alreadyCancelled {
		if o.SyncedToFfn {
			if err := s.enqueue(ctx, syncjob.QueueOrderToFfn, OrderJobPayload{OrderID: o.ID, Action: ActionCancel, Reason: reason}); err != nil {
				return nil, err
			}
		}
		if origin != shared.OriginPlatform {
			if err := s.enqueue(ctx, syncjob.QueueOrderToPlatform, OrderJobPayload{OrderID: o.ID, Action: ActionCancel, Reason: reason}); err != nil {
				return nil, err
			}
		}
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// CancelByExternalID cancels an order identified the way a platform
// webhook identifies it
func (s *Service) CancelByExternalID(ctx context.Context, channelID uuid.UUID, externalOrderID string, origin shared.Origin, reason string) (*OrderResponse, error) {
	o, err := s.orders.FindByExternalID(ctx, channelID, externalOrderID)
	if err != nil {
		return nil, err
	}
	return s.cancelInternal(ctx, o, origin, reason)
}

// Split moves the selected items out into a new order and queues its
// own warehouse push. The original order keeps what remains.
func (s *Service) Split(ctx context.Context, req SplitOrderRequest) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	child, err := o.Split(req.ItemIDs)
	if err != nil {
		return nil, err
	}
	if !child.Commercial.PaymentStatus.IsConfirmed() {
		if err := child.PlaceOnHold(order.HoldReasonAwaitingPayment); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, child); err != nil {
		return nil, err
	}
	s.logInbound(ctx, child, "order.split", shared.OriginInternal, nil)

	if !child.IsOnHold {
		if err := s.enqueue(ctx, syncjob.QueueOrderToFfn, OrderJobPayload{OrderID: child.ID, Action: ActionPush}); err != nil {
			return nil, err
		}
	}

	resp := ToOrderResponse(child)
	return &resp, nil
}

// GetByID returns one order
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns orders matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := order.Filter{
		ChannelID:   filter.ChannelID,
		IsOnHold:    filter.OnHold,
		IsCancelled: filter.IsCancelled,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}
	if filter.State != "" {
		state := order.FulfillmentState(filter.State)
		if !state.IsValid() {
			return nil, 0, shared.ErrInvalidInput
		}
		domainFilter.State = &state
	}

	orders, total, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Service) enqueue(ctx context.Context, queue string, payload OrderJobPayload) error {
	job, err := newOrderJob(queue, payload, s.jobOpts)
	if err != nil {
		return err
	}
	return s.jobs.Save(ctx, job)
}

// logInbound writes an audit entry for an absorbed change. Best-effort:
// the audit trail never fails the operation it records.
func (s *Service) logInbound(ctx context.Context, o *order.Order, action string, origin shared.Origin, fields []string) {
	entry := synclog.NewEntry(synclog.EntityOrder, action, origin, synclog.DirectionInbound).
		WithEntity(o.ID).
		WithExternalID(o.ExternalOrderID).
		WithChangedFields(fields...)
	_ = s.logs.Append(ctx, entry)
}

// logOperational records an applied patch plus the fields that were
// dropped by the ownership filter
func (s *Service) logOperational(ctx context.Context, o *order.Order, origin shared.Origin, applied, rejected []string) {
	if len(applied) > 0 {
		s.logInbound(ctx, o, "order.operational_update", origin, applied)
	}
	if len(rejected) > 0 {
		entry := synclog.NewEntry(synclog.EntityOrder, "order.fields_rejected", origin, synclog.DirectionInbound).
			WithEntity(o.ID).
			WithExternalID(o.ExternalOrderID).
			WithChangedFields(rejected...).
			Failed("fields not writable by origin")
		_ = s.logs.Append(ctx, entry)
	}
}
