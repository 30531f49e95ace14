package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/shipping"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// DeadJobResponse is the operator view of a dead-lettered job
type DeadJobResponse struct {
	ID         uuid.UUID `json:"id"`
	Queue      string    `json:"queue"`
	Payload    string    `json:"payload"`
	Priority   int       `json:"priority"`
	RetryCount int       `json:"retryCount"`
	RetryLimit int       `json:"retryLimit"`
	Status     string    `json:"status"`
	LastError  string    `json:"lastError,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToDeadJobResponse maps a sync job to its API view
func ToDeadJobResponse(job *syncjob.Job) DeadJobResponse {
	return DeadJobResponse{
		ID:         job.ID,
		Queue:      job.Queue,
		Payload:    string(job.Payload),
		Priority:   job.Priority,
		RetryCount: job.RetryCount,
		RetryLimit: job.RetryLimit,
		Status:     string(job.Status),
		LastError:  job.LastError,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
}

// ConflictResponse is the operator view of a product field conflict
type ConflictResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"productId"`
	ChannelID      uuid.UUID  `json:"channelId"`
	Field          string     `json:"field"`
	LocalValue     string     `json:"localValue"`
	IncomingValue  string     `json:"incomingValue"`
	IncomingOrigin string     `json:"incomingOrigin"`
	Resolution     string     `json:"resolution"`
	ResolvedValue  string     `json:"resolvedValue,omitempty"`
	ResolvedBy     string     `json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ToConflictResponse maps a field conflict to its API view
func ToConflictResponse(c catalog.FieldConflict) ConflictResponse {
	return ConflictResponse{
		ID:             c.ID,
		ProductID:      c.ProductID,
		ChannelID:      c.ChannelID,
		Field:          c.Field,
		LocalValue:     c.LocalValue,
		IncomingValue:  c.IncomingValue,
		IncomingOrigin: string(c.IncomingOrigin),
		Resolution:     string(c.Resolution),
		ResolvedValue:  c.ResolvedValue,
		ResolvedBy:     c.ResolvedBy,
		ResolvedAt:     c.ResolvedAt,
		CreatedAt:      c.CreatedAt,
	}
}

// MismatchResponse is the operator view of a shipping mapping mismatch
type MismatchResponse struct {
	ID           uuid.UUID  `json:"id"`
	ChannelID    uuid.UUID  `json:"channelId"`
	ChannelCode  string     `json:"channelCode"`
	OrderNumber  string     `json:"orderNumber"`
	UsedFallback bool       `json:"usedFallback"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ToMismatchResponse maps a mismatch record to its API view
func ToMismatchResponse(m shipping.MismatchRecord) MismatchResponse {
	return MismatchResponse{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		ChannelCode:  m.ChannelCode,
		OrderNumber:  m.OrderNumber,
		UsedFallback: m.UsedFallback,
		Resolved:     m.Resolved,
		ResolvedAt:   m.ResolvedAt,
		CreatedAt:    m.CreatedAt,
	}
}

// AuditEntryResponse is one sync log entry in API responses
type AuditEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	EntityType    string          `json:"entityType"`
	EntityID      *uuid.UUID      `json:"entityId,omitempty"`
	ExternalID    string          `json:"externalId,omitempty"`
	Action        string          `json:"action"`
	Origin        string          `json:"origin"`
	Target        string          `json:"target"`
	Direction     string          `json:"direction"`
	ChangedFields []string        `json:"changedFields,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
	Success       bool            `json:"success"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
	JobID         *uuid.UUID      `json:"jobId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToAuditEntryResponse maps a sync log entry to its API view
func ToAuditEntryResponse(e *synclog.Entry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:            e.ID,
		EntityType:    string(e.EntityType),
		EntityID:      e.EntityID,
		ExternalID:    e.ExternalID,
		Action:        e.Action,
		Origin:        string(e.Origin),
		Target:        e.Target,
		Direction:     string(e.Direction),
		ChangedFields: e.ChangedFields,
		Details:       json.RawMessage(e.Details),
		Success:       e.Success,
		ErrorMessage:  e.ErrorMessage,
		JobID:         e.JobID,
		CreatedAt:     e.CreatedAt,
	}
}
