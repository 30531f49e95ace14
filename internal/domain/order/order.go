package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Status types
// ---------------------------------------------------------------------------

// FulfillmentState represents the operational lifecycle of an order
type FulfillmentState string

const (
	StatePending          FulfillmentState = "PENDING"
	StateOnHold           FulfillmentState = "ON_HOLD"
	StateAcknowledged     FulfillmentState = "ACKNOWLEDGED"
	StatePicking          FulfillmentState = "PICKING"
	StatePacked           FulfillmentState = "PACKED"
	StateShipped          FulfillmentState = "SHIPPED"
	StatePartiallyShipped FulfillmentState = "PARTIALLY_SHIPPED"
	StateDelivered        FulfillmentState = "DELIVERED"
	StateCancelled        FulfillmentState = "CANCELLED"
	StateSplit            FulfillmentState = "SPLIT"
)

// IsValid checks if the state is a valid FulfillmentState
func (s FulfillmentState) IsValid() bool {
	switch s {
	case StatePending, StateOnHold, StateAcknowledged, StatePicking, StatePacked,
		StateShipped, StatePartiallyShipped, StateDelivered, StateCancelled, StateSplit:
		return true
	}
	return false
}

// String returns the string representation of FulfillmentState
func (s FulfillmentState) String() string {
	return string(s)
}

// IsTerminal returns true for states that end the order lifecycle
func (s FulfillmentState) IsTerminal() bool {
	switch s {
	case StateDelivered, StateCancelled, StateSplit:
		return true
	}
	return false
}

// CanTransitionTo checks if the state can transition to the target state
func (s FulfillmentState) CanTransitionTo(target FulfillmentState) bool {
	if s == target {
		return false
	}
	// Cancel and split are reachable from every non-terminal state
	if (target == StateCancelled || target == StateSplit) && !s.IsTerminal() {
		return true
	}
	switch s {
	case StatePending:
		return target == StateOnHold || target == StateAcknowledged
	case StateOnHold:
		return target == StatePending || target == StateAcknowledged
	case StateAcknowledged:
		return target == StatePicking || target == StateShipped || target == StatePartiallyShipped
	case StatePicking:
		return target == StatePacked || target == StatePartiallyShipped
	case StatePacked:
		return target == StateShipped || target == StatePartiallyShipped
	case StatePartiallyShipped:
		return target == StateShipped || target == StateDelivered
	case StateShipped:
		return target == StateDelivered
	}
	return false
}

// HoldReason explains why an order is held back from fulfillment
type HoldReason string

const (
	HoldReasonNone             HoldReason = ""
	HoldReasonAwaitingPayment  HoldReason = "AWAITING_PAYMENT"
	HoldReasonShippingMismatch HoldReason = "SHIPPING_METHOD_MISMATCH"
	HoldReasonManual           HoldReason = "MANUAL"
)

// SyncStatus represents the outbound synchronization status of an order
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "PENDING"
	SyncStatusSynced  SyncStatus = "SYNCED"
	SyncStatusError   SyncStatus = "ERROR"
	SyncStatusSkipped SyncStatus = "SKIPPED"
)

// IsValid checks if the status is a valid SyncStatus
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSynced, SyncStatusError, SyncStatusSkipped:
		return true
	}
	return false
}

// PaymentStatus is the normalized payment status reported by a platform
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusPaid       PaymentStatus = "PAID"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// IsConfirmed returns true for statuses that allow fulfillment to start
func (p PaymentStatus) IsConfirmed() bool {
	return p == PaymentStatusPaid || p == PaymentStatusProcessing
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	ErrOrderNotFound      = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
	ErrDuplicateOrder     = shared.NewDomainError("DUPLICATE_ORDER", "An order with this external ID already exists for the channel")
	ErrNotOnHold          = shared.NewDomainError("NOT_ON_HOLD", "Order is not on hold")
	ErrOrderCancelled     = shared.NewDomainError("ORDER_CANCELLED", "Order is cancelled")
	ErrNoItemsSelected    = shared.NewDomainError("NO_ITEMS_SELECTED", "Split requires at least one item")
	ErrItemNotInOrder     = shared.NewDomainError("ITEM_NOT_IN_ORDER", "Selected item does not belong to the order")
	ErrSplitLeavesNothing = shared.NewDomainError("SPLIT_LEAVES_NOTHING", "Split must leave at least one item in the original order")
)

// InvalidTransitionError is returned for illegal fulfillment state moves
type InvalidTransitionError struct {
	From FulfillmentState
	To   FulfillmentState
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order: illegal fulfillment transition %s -> %s", e.From, e.To)
}

// ---------------------------------------------------------------------------
// OrderItem
// ---------------------------------------------------------------------------

// OrderItem is an immutable snapshot of a line at order creation time
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	SKU       string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// NewOrderItem creates a new order item snapshot
func NewOrderItem(orderID uuid.UUID, sku, name string, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		SKU:       sku,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: time.Now(),
	}, nil
}

// ---------------------------------------------------------------------------
// CommercialFields
// ---------------------------------------------------------------------------

// CommercialFields are the attributes whose truth originates at checkout
// on the selling platform. The engine copies them; it never authors them.
type CommercialFields struct {
	CustomerName    string
	CustomerEmail   string
	ReceiverName    string
	ReceiverStreet  string
	ReceiverZip     string
	ReceiverCity    string
	ReceiverCountry string
	TotalAmount     decimal.Decimal
	ShippingAmount  decimal.Decimal
	Currency        string
	PaymentStatus   PaymentStatus
	// ShippingCode is the channel-native shipping method code/title
	ShippingCode string
}

// ---------------------------------------------------------------------------
// Order aggregate
// ---------------------------------------------------------------------------

// Order is the commercial+operational hybrid entity at the center of the
// sync engine. Commercial fields belong to the originating platform,
// operational fields to this system; the two sets never overlap.
type Order struct {
	shared.BaseEntity
	ChannelID       uuid.UUID
	ExternalOrderID string
	OrderNumber     string
	// Origin is the system whose event created the order. Immutable.
	Origin shared.Origin

	Commercial CommercialFields
	Items      []OrderItem

	State            FulfillmentState
	ShippingMethodID *uuid.UUID
	ShippingMismatch bool
	Carrier          string
	TrackingNumber   string
	IsOnHold         bool
	HoldReason       HoldReason
	IsCancelled      bool
	CancelOrigin     shared.Origin
	CancelReason     string
	SyncedToFfn      bool
	FfnOrderID       string

	SyncStatus SyncStatus
	SyncError  string

	LastCommercialSyncAt    *time.Time
	LastOperationalUpdateAt *time.Time
	LastOperationalUpdateBy string

	SplitFromOrderID *uuid.UUID
	SplitCount       int
}

// ItemInput describes one line for order creation
type ItemInput struct {
	SKU       string
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// NewOrder creates a new order from a commerce-platform event. This is
// the only code path that may create an order; everything else merges
// into an existing one.
func NewOrder(channelID uuid.UUID, externalOrderID, orderNumber string, commercial CommercialFields, items []ItemInput) (*Order, error) {
	if channelID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Channel ID cannot be empty")
	}
	if externalOrderID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External order ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Order must have at least one item")
	}

	now := time.Now()
	o := &Order{
		BaseEntity:      shared.NewBaseEntity(),
		ChannelID:       channelID,
		ExternalOrderID: externalOrderID,
		OrderNumber:     orderNumber,
		Origin:          shared.OriginPlatform,
		Commercial:      commercial,
		State:           StatePending,
		SyncStatus:      SyncStatusPending,
	}
	o.LastCommercialSyncAt = &now

	for _, in := range items {
		item, err := NewOrderItem(o.ID, in.SKU, in.Name, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, *item)
	}
	return o, nil
}

// ApplyCommercial re-copies the commercial fields from a platform event.
// Callers decide what the new payment status implies (hold release,
// forced cancel); the aggregate only records the copy.
func (o *Order) ApplyCommercial(fields CommercialFields) {
	now := time.Now()
	o.Commercial = fields
	o.LastCommercialSyncAt = &now
	o.UpdatedAt = now
}

// transition moves the fulfillment state or fails with a typed error
func (o *Order) transition(target FulfillmentState) error {
	if !o.State.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.State, To: target}
	}
	o.State = target
	o.UpdatedAt = time.Now()
	return nil
}

// PlaceOnHold holds the order back from fulfillment
func (o *Order) PlaceOnHold(reason HoldReason) error {
	if o.IsCancelled {
		return ErrOrderCancelled
	}
	if o.IsOnHold {
		// Payment hold takes priority over other reasons
		if reason == HoldReasonAwaitingPayment {
			o.HoldReason = reason
		}
		return nil
	}
	if err := o.transition(StateOnHold); err != nil {
		return err
	}
	o.IsOnHold = true
	o.HoldReason = reason
	return nil
}

// ReleaseHold clears the hold and puts the order back in line for
// fulfillment propagation
func (o *Order) ReleaseHold() error {
	if !o.IsOnHold {
		return ErrNotOnHold
	}
	if err := o.transition(StatePending); err != nil {
		return err
	}
	o.IsOnHold = false
	o.HoldReason = HoldReasonNone
	return nil
}

// TransitionFulfillment applies an operational state change
func (o *Order) TransitionFulfillment(target FulfillmentState) error {
	if o.IsCancelled {
		return ErrOrderCancelled
	}
	return o.transition(target)
}

// Cancel marks the order cancelled. Idempotent: cancelling a cancelled
// order is a no-op so duplicate deliveries cannot double-cancel.
func (o *Order) Cancel(origin shared.Origin, reason string) error {
	return o.cancel(origin, reason, false)
}

// CancelForRefund cancels regardless of operational state. A refund
// reverses the order even after delivery, so the delivered guard and
// the transition table do not apply.
func (o *Order) CancelForRefund(origin shared.Origin, reason string) error {
	return o.cancel(origin, reason, true)
}

func (o *Order) cancel(origin shared.Origin, reason string, force bool) error {
	if o.IsCancelled {
		return nil
	}
	if force {
		o.State = StateCancelled
		o.UpdatedAt = time.Now()
	} else {
		if o.State == StateDelivered {
			return shared.ErrInvalidState
		}
		if err := o.transition(StateCancelled); err != nil {
			return err
		}
	}
	o.IsCancelled = true
	o.CancelOrigin = origin
	o.CancelReason = reason
	o.IsOnHold = false
	o.HoldReason = HoldReasonNone
	return nil
}

// Split carves the selected items out into a new order that references
// this one. The original keeps its remaining items; fulfillment for the
// new order is triggered separately, the original is never mutated on
// the fulfillment side.
func (o *Order) Split(itemIDs []uuid.UUID) (*Order, error) {
	if o.IsCancelled {
		return nil, ErrOrderCancelled
	}
	if o.State.IsTerminal() {
		return nil, shared.ErrInvalidState
	}
	if len(itemIDs) == 0 {
		return nil, ErrNoItemsSelected
	}

	selected := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		selected[id] = true
	}

	var moved, kept []OrderItem
	for _, item := range o.Items {
		if selected[item.ID] {
			moved = append(moved, item)
			delete(selected, item.ID)
		} else {
			kept = append(kept, item)
		}
	}
	if len(selected) > 0 {
		return nil, ErrItemNotInOrder
	}
	if len(kept) == 0 {
		return nil, ErrSplitLeavesNothing
	}

	o.SplitCount++
	now := time.Now()

	child := &Order{
		BaseEntity:      shared.NewBaseEntity(),
		ChannelID:       o.ChannelID,
		ExternalOrderID: fmt.Sprintf("%s-S%d", o.ExternalOrderID, o.SplitCount),
		OrderNumber:     fmt.Sprintf("%s-S%d", o.OrderNumber, o.SplitCount),
		Origin:          o.Origin,
		Commercial:      o.Commercial,
		State:           StatePending,
		SyncStatus:      SyncStatusPending,
		ShippingMethodID: o.ShippingMethodID,
		SplitFromOrderID: &o.ID,
	}
	child.LastCommercialSyncAt = &now
	for _, item := range moved {
		child.Items = append(child.Items, OrderItem{
			ID:        uuid.New(),
			OrderID:   child.ID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			CreatedAt: now,
		})
	}

	o.Items = kept
	o.UpdatedAt = now
	return child, nil
}

// StampOperationalUpdate records who performed an operational change
func (o *Order) StampOperationalUpdate(by string) {
	now := time.Now()
	o.LastOperationalUpdateAt = &now
	o.LastOperationalUpdateBy = by
	o.UpdatedAt = now
}

// MarkSyncedToFfn records successful propagation to the warehouse
func (o *Order) MarkSyncedToFfn(ffnOrderID string) {
	o.SyncedToFfn = true
	o.FfnOrderID = ffnOrderID
	o.SyncStatus = SyncStatusSynced
	o.SyncError = ""
	o.UpdatedAt = time.Now()
}

// MarkSyncError records a human-readable outbound sync failure
func (o *Order) MarkSyncError(msg string) {
	o.SyncStatus = SyncStatusError
	o.SyncError = msg
	o.UpdatedAt = time.Now()
}

// MarkSyncSkipped records that propagation was intentionally not done
func (o *Order) MarkSyncSkipped() {
	o.SyncStatus = SyncStatusSkipped
	o.UpdatedAt = time.Now()
}
