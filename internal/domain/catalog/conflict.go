package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/shared"
)

var (
	ErrConflictNotFound = shared.NewDomainError("CONFLICT_NOT_FOUND", "Field conflict not found")
	ErrConflictResolved = shared.NewDomainError("CONFLICT_RESOLVED", "Field conflict is already resolved")
)

// ConflictResolution names the choice made when resolving a conflict
type ConflictResolution string

const (
	ConflictOpen             ConflictResolution = "OPEN"
	ConflictResolvedLocal    ConflictResolution = "RESOLVED_LOCAL"
	ConflictResolvedIncoming ConflictResolution = "RESOLVED_INCOMING"
	ConflictResolvedCustom   ConflictResolution = "RESOLVED_CUSTOM"
)

// FieldConflict is created when two origins disagree about the same
// product field since the last sync. It is never merged silently;
// a human picks the winner.
type FieldConflict struct {
	shared.BaseEntity
	ProductID      uuid.UUID
	ChannelID      uuid.UUID
	Field          string
	LocalValue     string
	IncomingValue  string
	IncomingOrigin shared.Origin
	Resolution     ConflictResolution
	ResolvedValue  string
	ResolvedBy     string
	ResolvedAt     *time.Time
}

// NewFieldConflict creates an open conflict for one product field
func NewFieldConflict(productID, channelID uuid.UUID, field, localValue, incomingValue string, incomingOrigin shared.Origin) *FieldConflict {
	return &FieldConflict{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      productID,
		ChannelID:      channelID,
		Field:          field,
		LocalValue:     localValue,
		IncomingValue:  incomingValue,
		IncomingOrigin: incomingOrigin,
		Resolution:     ConflictOpen,
	}
}

// Resolve closes the conflict with the chosen value
func (c *FieldConflict) Resolve(resolution ConflictResolution, customValue, by string) error {
	if c.Resolution != ConflictOpen {
		return ErrConflictResolved
	}
	switch resolution {
	case ConflictResolvedLocal:
		c.ResolvedValue = c.LocalValue
	case ConflictResolvedIncoming:
		c.ResolvedValue = c.IncomingValue
	case ConflictResolvedCustom:
		if customValue == "" {
			return shared.ErrInvalidInput
		}
		c.ResolvedValue = customValue
	default:
		return shared.ErrInvalidInput
	}
	now := time.Now()
	c.Resolution = resolution
	c.ResolvedBy = by
	c.ResolvedAt = &now
	c.UpdatedAt = now
	return nil
}

// IsOpen reports whether the conflict still needs resolution
func (c *FieldConflict) IsOpen() bool {
	return c.Resolution == ConflictOpen
}
