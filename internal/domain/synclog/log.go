package synclog

import (
	"time"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// EntityType names the entity an entry refers to
type EntityType string

const (
	EntityOrder   EntityType = "ORDER"
	EntityProduct EntityType = "PRODUCT"
	EntityStock   EntityType = "STOCK"
	EntityReturn  EntityType = "RETURN"
)

// Direction distinguishes entries written while absorbing inbound
// changes from entries written while pushing local changes out. Echo
// detection only looks at outbound entries.
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// Entry is one append-only audit record. Entries are never mutated or
// deleted; failed operations are logged the same way as successes.
type Entry struct {
	ID         uuid.UUID
	EntityType EntityType
	EntityID   *uuid.UUID
	// ExternalID is the entity's identity in the external system the
	// entry refers to; echo lookups are keyed on it
	ExternalID string
	Action     string
	Origin     shared.Origin
	Target     string
	Direction  Direction
	// ChangedFields is a JSON array of field names touched by the action
	ChangedFields []string
	// Details is an optional JSON document with the before/after values
	// of the change, e.g. old and new quantities for a stock entry
	Details      string
	Success      bool
	ErrorMessage string
	// JobID links outbound entries to the sync job that caused the
	// push; a partial causality token for echo detection
	JobID     *uuid.UUID
	CreatedAt time.Time
}

// NewEntry creates an audit entry
func NewEntry(entityType EntityType, action string, origin shared.Origin, direction Direction) *Entry {
	return &Entry{
		ID:         uuid.New(),
		EntityType: entityType,
		Action:     action,
		Origin:     origin,
		Direction:  direction,
		Success:    true,
		CreatedAt:  time.Now(),
	}
}

// WithEntity attaches the local entity id
func (e *Entry) WithEntity(id uuid.UUID) *Entry {
	e.EntityID = &id
	return e
}

// WithExternalID attaches the external identity
func (e *Entry) WithExternalID(externalID string) *Entry {
	e.ExternalID = externalID
	return e
}

// WithTarget names the system the action was directed at
func (e *Entry) WithTarget(target string) *Entry {
	e.Target = target
	return e
}

// WithChangedFields records the touched field names
func (e *Entry) WithChangedFields(fields ...string) *Entry {
	e.ChangedFields = fields
	return e
}

// WithDetails attaches a JSON document describing the change
func (e *Entry) WithDetails(details string) *Entry {
	e.Details = details
	return e
}

// WithJob links the entry to the sync job that caused it
func (e *Entry) WithJob(jobID uuid.UUID) *Entry {
	e.JobID = &jobID
	return e
}

// Failed marks the entry as a failure with a message
func (e *Entry) Failed(msg string) *Entry {
	e.Success = false
	e.ErrorMessage = msg
	return e
}
