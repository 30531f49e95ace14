package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/shared"
)

var (
	ErrMethodNotFound  = shared.NewDomainError("SHIPPING_METHOD_NOT_FOUND", "Shipping method not found")
	ErrMappingNotFound = shared.NewDomainError("SHIPPING_MAPPING_NOT_FOUND", "Shipping method mapping not found")
	ErrMappingExists   = shared.NewDomainError("SHIPPING_MAPPING_EXISTS", "Shipping method mapping already exists")
)

// Method is a warehouse-side canonical shipping method
type Method struct {
	shared.BaseEntity
	Code     string
	Name     string
	Carrier  string
	IsActive bool
}

// NewMethod creates a canonical shipping method
func NewMethod(code, name, carrier string) (*Method, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_METHOD_CODE", "Method code cannot be empty")
	}
	return &Method{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Carrier:    carrier,
		IsActive:   true,
	}, nil
}

// Mapping maps a channel-native shipping code to a canonical method
type Mapping struct {
	shared.BaseEntity
	ChannelID   uuid.UUID
	ChannelCode string
	MethodID    uuid.UUID
}

// NewMapping creates a per-channel shipping code mapping
func NewMapping(channelID uuid.UUID, channelCode string, methodID uuid.UUID) (*Mapping, error) {
	if channelID == uuid.Nil || methodID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if channelCode == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL_CODE", "Channel shipping code cannot be empty")
	}
	return &Mapping{
		BaseEntity:  shared.NewBaseEntity(),
		ChannelID:   channelID,
		ChannelCode: channelCode,
		MethodID:    methodID,
	}, nil
}

// MismatchRecord is persisted evidence that resolution fell back or
// failed. It stays until an operator adds the missing mapping.
type MismatchRecord struct {
	shared.BaseEntity
	ChannelID    uuid.UUID
	ChannelCode  string
	OrderNumber  string
	UsedFallback bool
	Resolved     bool
	ResolvedAt   *time.Time
}

// NewMismatchRecord creates a mismatch record for a failed resolution
func NewMismatchRecord(channelID uuid.UUID, channelCode, orderNumber string, usedFallback bool) *MismatchRecord {
	return &MismatchRecord{
		BaseEntity:   shared.NewBaseEntity(),
		ChannelID:    channelID,
		ChannelCode:  channelCode,
		OrderNumber:  orderNumber,
		UsedFallback: usedFallback,
	}
}

// MarkResolved closes the record once the mapping exists
func (m *MismatchRecord) MarkResolved() {
	now := time.Now()
	m.Resolved = true
	m.ResolvedAt = &now
	m.UpdatedAt = now
}

// Resolution is the outcome of resolving a channel shipping code
type Resolution struct {
	MethodID     *uuid.UUID
	UsedFallback bool
	Mismatch     bool
}
