package synclog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows audit queries
type Filter struct {
	EntityType *EntityType
	EntityID   *uuid.UUID
	ExternalID string
	Target     string
	Direction  *Direction
	Success    *bool
	Since      *time.Time
	Page       int
	PageSize   int
}

// Repository is the append-only audit store. There is no update or
// delete; entries only accumulate.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error

	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	FindAll(ctx context.Context, filter Filter) ([]*Entry, int64, error)

	// HasRecentLocalPush reports whether an outbound entry for the
	// given external id and entity type was written within the window.
	// Used to classify inbound webhooks that merely echo our own push.
	HasRecentLocalPush(ctx context.Context, entityType EntityType, externalID string, window time.Duration) (bool, error)

	// DeleteOlderThan trims aged entries, retention only
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
