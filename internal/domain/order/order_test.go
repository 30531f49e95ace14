package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncbridge/backend/internal/domain/shared"
)

func testCommercial() CommercialFields {
	return CommercialFields{
		CustomerName:    "Jane Doe",
		ReceiverName:    "Jane Doe",
		ReceiverStreet:  "Musterstr. 1",
		ReceiverZip:     "10115",
		ReceiverCity:    "Berlin",
		ReceiverCountry: "DE",
		TotalAmount:     decimal.NewFromInt(100),
		Currency:        "EUR",
		PaymentStatus:   PaymentStatusPending,
		ShippingCode:    "dhl-standard",
	}
}

func testItems() []ItemInput {
	return []ItemInput{
		{SKU: "SKU-1", Name: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25)},
		{SKU: "SKU-2", Name: "Gadget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
	}
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), "ext-1001", "SW-1001", testCommercial(), testItems())
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending order from platform event", func(t *testing.T) {
		o := newTestOrder(t)

		assert.Equal(t, StatePending, o.State)
		assert.Equal(t, SyncStatusPending, o.SyncStatus)
		assert.Equal(t, shared.OriginPlatform, o.Origin)
		assert.False(t, o.IsOnHold)
		assert.False(t, o.SyncedToFfn)
		assert.Len(t, o.Items, 2)
		assert.NotNil(t, o.LastCommercialSyncAt)
	})

	t.Run("rejects empty external id", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), "", "SW-1", testCommercial(), testItems())
		assert.Error(t, err)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), "ext-1", "SW-1", testCommercial(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		items := []ItemInput{{SKU: "SKU-1", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(1)}}
		_, err := NewOrder(uuid.New(), "ext-1", "SW-1", testCommercial(), items)
		assert.Error(t, err)
	})
}

func TestFulfillmentStateTransitions(t *testing.T) {
	tests := []struct {
		from    FulfillmentState
		to      FulfillmentState
		allowed bool
	}{
		{StatePending, StateOnHold, true},
		{StatePending, StateAcknowledged, true},
		{StatePending, StateShipped, false},
		{StateOnHold, StatePending, true},
		{StateAcknowledged, StatePicking, true},
		{StateAcknowledged, StateShipped, true},
		{StatePicking, StatePacked, true},
		{StatePacked, StateShipped, true},
		{StatePartiallyShipped, StateShipped, true},
		{StateShipped, StateDelivered, true},
		{StateShipped, StatePending, false},
		{StateDelivered, StateCancelled, false},
		{StateCancelled, StatePending, false},
		{StatePacked, StateCancelled, true},
		{StatePicking, StateSplit, true},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderHold(t *testing.T) {
	t.Run("place and release hold", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.PlaceOnHold(HoldReasonAwaitingPayment))
		assert.True(t, o.IsOnHold)
		assert.Equal(t, StateOnHold, o.State)
		assert.Equal(t, HoldReasonAwaitingPayment, o.HoldReason)

		require.NoError(t, o.ReleaseHold())
		assert.False(t, o.IsOnHold)
		assert.Equal(t, StatePending, o.State)
		assert.Equal(t, HoldReasonNone, o.HoldReason)
	})

	t.Run("payment hold takes priority on double hold", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.PlaceOnHold(HoldReasonShippingMismatch))
		require.NoError(t, o.PlaceOnHold(HoldReasonAwaitingPayment))
		assert.Equal(t, HoldReasonAwaitingPayment, o.HoldReason)
	})

	t.Run("release without hold fails", func(t *testing.T) {
		o := newTestOrder(t)
		assert.ErrorIs(t, o.ReleaseHold(), ErrNotOnHold)
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("cancel clears hold and records origin", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.PlaceOnHold(HoldReasonAwaitingPayment))

		require.NoError(t, o.Cancel(shared.OriginPlatform, "customer request"))
		assert.True(t, o.IsCancelled)
		assert.Equal(t, StateCancelled, o.State)
		assert.Equal(t, shared.OriginPlatform, o.CancelOrigin)
		assert.False(t, o.IsOnHold)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel(shared.OriginInternal, "first"))
		require.NoError(t, o.Cancel(shared.OriginInternal, "second"))
		assert.Equal(t, "first", o.CancelReason)
	})

	t.Run("cancel after delivery fails", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.TransitionFulfillment(StateAcknowledged))
		require.NoError(t, o.TransitionFulfillment(StateShipped))
		require.NoError(t, o.TransitionFulfillment(StateDelivered))

		assert.Error(t, o.Cancel(shared.OriginInternal, "too late"))
	})

	t.Run("refund cancels even after delivery", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.TransitionFulfillment(StateAcknowledged))
		require.NoError(t, o.TransitionFulfillment(StateShipped))
		require.NoError(t, o.TransitionFulfillment(StateDelivered))

		require.NoError(t, o.CancelForRefund(shared.OriginPlatform, "payment refunded"))
		assert.True(t, o.IsCancelled)
		assert.Equal(t, StateCancelled, o.State)
		assert.Equal(t, "payment refunded", o.CancelReason)
	})

	t.Run("refund cancel is idempotent", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel(shared.OriginPlatform, "first"))
		require.NoError(t, o.CancelForRefund(shared.OriginPlatform, "refund"))
		assert.Equal(t, "first", o.CancelReason)
	})
}

func TestOrderSplit(t *testing.T) {
	t.Run("moves items into child with back-reference", func(t *testing.T) {
		o := newTestOrder(t)
		moveID := o.Items[0].ID

		child, err := o.Split([]uuid.UUID{moveID})
		require.NoError(t, err)

		assert.Equal(t, &o.ID, child.SplitFromOrderID)
		assert.Equal(t, o.ExternalOrderID+"-S1", child.ExternalOrderID)
		assert.Equal(t, StatePending, child.State)
		assert.Len(t, child.Items, 1)
		assert.Equal(t, "SKU-1", child.Items[0].SKU)
		assert.Len(t, o.Items, 1)
		assert.Equal(t, "SKU-2", o.Items[0].SKU)
		assert.Equal(t, o.Commercial, child.Commercial)
	})

	t.Run("cannot take every item", func(t *testing.T) {
		o := newTestOrder(t)
		ids := []uuid.UUID{o.Items[0].ID, o.Items[1].ID}

		_, err := o.Split(ids)
		assert.ErrorIs(t, err, ErrSplitLeavesNothing)
	})

	t.Run("rejects foreign item ids", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.Split([]uuid.UUID{uuid.New()})
		assert.ErrorIs(t, err, ErrItemNotInOrder)
	})

	t.Run("split suffix increments", func(t *testing.T) {
		o, err := NewOrder(uuid.New(), "ext-1", "SW-1", testCommercial(), []ItemInput{
			{SKU: "A", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
			{SKU: "B", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
			{SKU: "C", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
		})
		require.NoError(t, err)

		first, err := o.Split([]uuid.UUID{o.Items[0].ID})
		require.NoError(t, err)
		second, err := o.Split([]uuid.UUID{o.Items[0].ID})
		require.NoError(t, err)

		assert.Equal(t, "ext-1-S1", first.ExternalOrderID)
		assert.Equal(t, "ext-1-S2", second.ExternalOrderID)
	})
}

func TestFieldOwnership(t *testing.T) {
	t.Run("commercial fields writable only by platform", func(t *testing.T) {
		assert.True(t, IsWritable(FieldPaymentStatus, shared.OriginPlatform))
		assert.False(t, IsWritable(FieldPaymentStatus, shared.OriginInternal))
		assert.False(t, IsWritable(FieldTotalAmount, shared.OriginFulfillment))
	})

	t.Run("operational fields writable internally and by warehouse", func(t *testing.T) {
		assert.True(t, IsWritable(FieldTrackingNumber, shared.OriginInternal))
		assert.True(t, IsWritable(FieldFulfillmentState, shared.OriginFulfillment))
		assert.False(t, IsWritable(FieldTrackingNumber, shared.OriginPlatform))
	})

	t.Run("unknown fields are never writable", func(t *testing.T) {
		assert.False(t, IsWritable("nope", shared.OriginInternal))
	})

	t.Run("filter keeps allowed and reports rejected", func(t *testing.T) {
		patch := map[string]any{
			FieldTrackingNumber: "TRACK-1",
			FieldCarrier:        "dhl",
			FieldTotalAmount:    "999",
		}
		allowed, rejected := FilterWritable(patch, shared.OriginInternal)

		assert.Len(t, allowed, 2)
		assert.Contains(t, allowed, FieldTrackingNumber)
		assert.Contains(t, allowed, FieldCarrier)
		assert.Equal(t, []string{FieldTotalAmount}, rejected)
	})
}
