package ordersync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/domain/order"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/shipping"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

type serviceFixture struct {
	orders     *MockOrderRepository
	channels   *MockChannelRepository
	mappings   *MockMappingRepository
	mismatches *MockMismatchRepository
	notifier   *MockNotifier
	jobs       *MockJobRepository
	logs       *MockSyncLogRepository
	service    *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		orders:     new(MockOrderRepository),
		channels:   new(MockChannelRepository),
		mappings:   new(MockMappingRepository),
		mismatches: new(MockMismatchRepository),
		notifier:   new(MockNotifier),
		jobs:       new(MockJobRepository),
		logs:       new(MockSyncLogRepository),
	}
	resolver := NewShippingResolver(f.mappings, f.mismatches, f.notifier)
	f.service = NewService(f.orders, f.channels, resolver, f.jobs, f.logs)
	return f
}

func (f *serviceFixture) expectEnqueued(t *testing.T, queue, action string) {
	t.Helper()
	f.jobs.On("Save", mock.Anything, mock.MatchedBy(func(jobs []*syncjob.Job) bool {
		if len(jobs) != 1 || jobs[0].Queue != queue {
			return false
		}
		var payload OrderJobPayload
		if err := json.Unmarshal(jobs[0].Payload, &payload); err != nil {
			return false
		}
		return payload.Action == action
	})).Return(nil).Once()
}

func paidChannel() *channel.SalesChannel {
	ch, _ := channel.NewSalesChannel(channel.ChannelTypeShopware, "DE Store")
	return ch
}

func createReq(channelID uuid.UUID, payment string) CreateOrderRequest {
	return CreateOrderRequest{
		ChannelID:       channelID,
		ExternalOrderID: "sw-1001",
		OrderNumber:     "10001",
		Commercial: CommercialRequest{
			CustomerName:  "Lena Vogel",
			PaymentStatus: payment,
			ShippingCode:  "dhl-standard",
			TotalAmount:   decimal.NewFromInt(49),
			Currency:      "EUR",
		},
		Items: []ItemRequest{
			{SKU: "SKU-A", Name: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(20)},
		},
	}
}

func TestService_Create_PaidOrderIsQueuedForWarehouse(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	methodID := uuid.New()
	mapping, _ := shipping.NewMapping(ch.ID, "dhl-standard", methodID)

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(nil, shared.ErrNotFound)
	f.mappings.On("FindByChannelCode", mock.Anything, ch.ID, "dhl-standard").Return(mapping, nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToFfn, ActionPush)

	resp, err := f.service.Create(context.Background(), createReq(ch.ID, "PAID"))

	assert.NoError(t, err)
	assert.Equal(t, "PENDING", resp.State)
	assert.False(t, resp.IsOnHold)
	assert.Equal(t, &methodID, resp.ShippingMethodID)
	assert.False(t, resp.ShippingMismatch)
	f.jobs.AssertExpectations(t)
}

func TestService_Create_UnpaidOrderIsHeldWithoutJob(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	mapping, _ := shipping.NewMapping(ch.ID, "dhl-standard", uuid.New())

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(nil, shared.ErrNotFound)
	f.mappings.On("FindByChannelCode", mock.Anything, ch.ID, "dhl-standard").Return(mapping, nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Create(context.Background(), createReq(ch.ID, "PENDING"))

	assert.NoError(t, err)
	assert.True(t, resp.IsOnHold)
	assert.Equal(t, string(order.HoldReasonAwaitingPayment), resp.HoldReason)
	f.jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Create_UnmappedShippingFallsBack(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	fallbackID := uuid.New()
	ch.FallbackShippingMethodID = &fallbackID

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(nil, shared.ErrNotFound)
	f.mappings.On("FindByChannelCode", mock.Anything, ch.ID, "dhl-standard").Return(nil, shared.ErrNotFound)
	f.mismatches.On("Save", mock.Anything, mock.MatchedBy(func(r *shipping.MismatchRecord) bool {
		return r.ChannelCode == "dhl-standard" && r.UsedFallback
	})).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToFfn, ActionPush)

	resp, err := f.service.Create(context.Background(), createReq(ch.ID, "PAID"))

	assert.NoError(t, err)
	assert.Equal(t, &fallbackID, resp.ShippingMethodID)
	assert.True(t, resp.ShippingMismatch)
	assert.False(t, resp.IsOnHold)
	f.mismatches.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestService_Create_MismatchHoldsWhenChannelSaysSo(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	ch.HoldOnShippingMismatch = true

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(nil, shared.ErrNotFound)
	f.mappings.On("FindByChannelCode", mock.Anything, ch.ID, "dhl-standard").Return(nil, shared.ErrNotFound)
	f.mismatches.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Create(context.Background(), createReq(ch.ID, "PAID"))

	assert.NoError(t, err)
	assert.True(t, resp.IsOnHold)
	assert.Equal(t, string(order.HoldReasonShippingMismatch), resp.HoldReason)
	assert.Nil(t, resp.ShippingMethodID)
	f.jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Create_DuplicateDeliveryMergesIntoExisting(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	existing := existingOrder(ch.ID, "PAID")
	existing.MarkSyncedToFfn("ffn-1")

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(existing, nil)
	f.orders.On("Save", mock.Anything, existing).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	req := createReq(ch.ID, "PAID")
	req.Commercial.CustomerName = "Lena M. Vogel"
	resp, err := f.service.Create(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
	assert.Equal(t, "Lena M. Vogel", existing.Commercial.CustomerName)
	f.jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func existingOrder(channelID uuid.UUID, payment string) *order.Order {
	o, _ := order.NewOrder(channelID, "sw-1001", "10001", order.CommercialFields{
		CustomerName:  "Lena Vogel",
		PaymentStatus: order.PaymentStatus(payment),
		ShippingCode:  "dhl-standard",
	}, []order.ItemInput{
		{SKU: "SKU-A", Name: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(20)},
		{SKU: "SKU-B", Name: "Gadget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(9)},
	})
	return o
}

func TestService_UpdateCommercial_PaymentConfirmationReleasesHold(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	o := existingOrder(ch.ID, "PENDING")
	_ = o.PlaceOnHold(order.HoldReasonAwaitingPayment)

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToFfn, ActionPush)

	resp, err := f.service.UpdateCommercial(context.Background(), UpdateCommercialRequest{
		ChannelID:       ch.ID,
		ExternalOrderID: "sw-1001",
		Commercial:      CommercialRequest{PaymentStatus: "PAID", ShippingCode: "dhl-standard"},
	})

	assert.NoError(t, err)
	assert.False(t, resp.IsOnHold)
	assert.Equal(t, "PENDING", resp.State)
	f.jobs.AssertExpectations(t)
}

func TestService_UpdateCommercial_RefundCancelsEverywhere(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	o := existingOrder(ch.ID, "PAID")
	o.MarkSyncedToFfn("ffn-42")

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToFfn, ActionCancel)

	resp, err := f.service.UpdateCommercial(context.Background(), UpdateCommercialRequest{
		ChannelID:       ch.ID,
		ExternalOrderID: "sw-1001",
		Commercial:      CommercialRequest{PaymentStatus: "REFUNDED"},
	})

	assert.NoError(t, err)
	assert.True(t, resp.IsCancelled)
	assert.Equal(t, "CANCELLED", resp.State)
	f.jobs.AssertExpectations(t)
}

func TestService_UpdateCommercial_RefundCancelsDeliveredOrder(t *testing.T) {
	f := newServiceFixture()
	ch := paidChannel()
	o := existingOrder(ch.ID, "PAID")
	o.MarkSyncedToFfn("ffn-42")
	require.NoError(t, o.TransitionFulfillment(order.StateAcknowledged))
	require.NoError(t, o.TransitionFulfillment(order.StateShipped))
	require.NoError(t, o.TransitionFulfillment(order.StateDelivered))

	f.channels.On("FindByID", mock.Anything, ch.ID).Return(ch, nil)
	f.orders.On("FindByExternalID", mock.Anything, ch.ID, "sw-1001").Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToFfn, ActionCancel)

	resp, err := f.service.UpdateCommercial(context.Background(), UpdateCommercialRequest{
		ChannelID:       ch.ID,
		ExternalOrderID: "sw-1001",
		Commercial:      CommercialRequest{PaymentStatus: "REFUNDED"},
	})

	assert.NoError(t, err)
	assert.True(t, resp.IsCancelled)
	assert.Equal(t, "CANCELLED", resp.State)
	f.jobs.AssertExpectations(t)
}

func TestService_WithJobOptions_AppliesConfiguredRetryPolicy(t *testing.T) {
	f := newServiceFixture()
	resolver := NewShippingResolver(f.mappings, f.mismatches, f.notifier)
	svc := NewService(f.orders, f.channels, resolver, f.jobs, f.logs,
		WithJobOptions(syncjob.Options{RetryLimit: 7, RetryDelay: 45 * time.Second}))
	o := existingOrder(uuid.New(), "PAID")
	o.MarkSyncedToFfn("ffn-7")

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	var saved []*syncjob.Job
	f.jobs.On("Save", mock.Anything, mock.MatchedBy(func(jobs []*syncjob.Job) bool {
		saved = append(saved, jobs...)
		return true
	})).Return(nil)

	_, err := svc.Cancel(context.Background(), CancelOrderRequest{
		OrderID: o.ID,
		Origin:  shared.OriginInternal,
		Reason:  "customer request",
	})

	assert.NoError(t, err)
	require.Len(t, saved, 2)
	for _, job := range saved {
		assert.Equal(t, 7, job.RetryLimit)
		assert.Equal(t, 45*time.Second, job.RetryDelay)
		// the per-action priority is not overridden by the base options
		assert.Equal(t, priorityCancel, job.Priority)
	}
}

func TestService_ApplyOperationalPatch_DropsForeignFields(t *testing.T) {
	f := newServiceFixture()
	o := existingOrder(uuid.New(), "PAID")
	_ = o.TransitionFulfillment(order.StateAcknowledged)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToPlatform, ActionPush)

	resp, err := f.service.ApplyOperationalPatch(context.Background(), OperationalPatchRequest{
		OrderID: o.ID,
		Origin:  shared.OriginFulfillment,
		Fields: map[string]any{
			order.FieldTrackingNumber: "JJD0099",
			order.FieldCustomerName:   "Mallory",
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "JJD0099", o.TrackingNumber)
	assert.Equal(t, "Lena Vogel", o.Commercial.CustomerName)
	assert.Equal(t, []string{order.FieldCustomerName}, resp.RejectedFields)
	f.jobs.AssertExpectations(t)
}

func TestService_ApplyOperationalPatch_HoldReasonFollowsHoldFlag(t *testing.T) {
	f := newServiceFixture()
	o := existingOrder(uuid.New(), "PAID")

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	// isOnHold and holdReason arrive in one patch; the hold flag must
	// take effect before the reason regardless of map ordering
	resp, err := f.service.ApplyOperationalPatch(context.Background(), OperationalPatchRequest{
		OrderID: o.ID,
		Origin:  shared.OriginInternal,
		Fields: map[string]any{
			order.FieldHoldReason: "MANUAL",
			order.FieldIsOnHold:   true,
		},
	})

	assert.NoError(t, err)
	assert.True(t, resp.IsOnHold)
	assert.True(t, o.IsOnHold)
	assert.Equal(t, order.HoldReasonManual, o.HoldReason)
	f.jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_ApplyOperationalPatch_PlatformOriginIsFullyRejected(t *testing.T) {
	f := newServiceFixture()
	o := existingOrder(uuid.New(), "PAID")

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.logs.On("Append", mock.Anything, mock.MatchedBy(func(e *synclog.Entry) bool {
		return e.Action == "order.fields_rejected" && !e.Success
	})).Return(nil)

	resp, err := f.service.ApplyOperationalPatch(context.Background(), OperationalPatchRequest{
		OrderID: o.ID,
		Origin:  shared.OriginPlatform,
		Fields:  map[string]any{order.FieldTrackingNumber: "JJD0099"},
	})

	assert.NoError(t, err)
	assert.Empty(t, o.TrackingNumber)
	assert.Equal(t, []string{order.FieldTrackingNumber}, resp.RejectedFields)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Cancel_InternalCancelPropagatesToBothSides(t *testing.T) {
	f := newServiceFixture()
	o := existingOrder(uuid.New(), "PAID")
	o.MarkSyncedToFfn("ffn-7")

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToFfn, ActionCancel)
	f.expectEnqueued(t, syncjob.QueueOrderToPlatform, ActionCancel)

	resp, err := f.service.Cancel(context.Background(), CancelOrderRequest{
		OrderID: o.ID,
		Origin:  shared.OriginInternal,
		Reason:  "customer request",
	})

	assert.NoError(t, err)
	assert.True(t, resp.IsCancelled)
	f.jobs.AssertExpectations(t)
}

func TestService_Cancel_DuplicateCancelEnqueuesNothing(t *testing.T) {
	f := newServiceFixture()
	o := existingOrder(uuid.New(), "PAID")
	_ = o.Cancel(shared.OriginPlatform, "first")

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, o).Return(nil)
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Cancel(context.Background(), CancelOrderRequest{
		OrderID: o.ID,
		Origin:  shared.OriginPlatform,
		Reason:  "second",
	})

	assert.NoError(t, err)
	assert.True(t, resp.IsCancelled)
	assert.Equal(t, "first", o.CancelReason)
	f.jobs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Split_ChildIsQueuedSeparately(t *testing.T) {
	f := newServiceFixture()
	o := existingOrder(uuid.New(), "PAID")

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()
	f.logs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectEnqueued(t, syncjob.QueueOrderToFfn, ActionPush)

	resp, err := f.service.Split(context.Background(), SplitOrderRequest{
		OrderID: o.ID,
		ItemIDs: []uuid.UUID{o.Items[1].ID},
	})

	assert.NoError(t, err)
	assert.Equal(t, "sw-1001-S1", resp.ExternalOrderID)
	assert.Equal(t, &o.ID, resp.SplitFromOrderID)
	assert.Len(t, o.Items, 1)
	f.orders.AssertExpectations(t)
	f.jobs.AssertExpectations(t)
}
