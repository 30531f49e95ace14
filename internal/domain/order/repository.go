package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter defines criteria for listing orders
type Filter struct {
	ChannelID   *uuid.UUID
	State       *FulfillmentState
	SyncStatus  *SyncStatus
	IsOnHold    *bool
	IsCancelled *bool
	Since       *time.Time
	Page        int
	PageSize    int
}

// Repository persists orders and their item snapshots
type Repository interface {
	// Save creates or updates an order together with its items
	Save(ctx context.Context, o *Order) error

	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByExternalID looks an order up by its channel-scoped external
	// identity. Single creation authority is keyed on this pair.
	FindByExternalID(ctx context.Context, channelID uuid.UUID, externalOrderID string) (*Order, error)

	// ExistsByExternalID checks the (channel, external id) pair
	ExistsByExternalID(ctx context.Context, channelID uuid.UUID, externalOrderID string) (bool, error)

	FindByFfnOrderID(ctx context.Context, ffnOrderID string) (*Order, error)

	FindAll(ctx context.Context, filter Filter) ([]Order, int64, error)
}
