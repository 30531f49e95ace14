package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// SyncLogModel is the persistence model for an audit entry
type SyncLogModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	EntityType    string     `gorm:"type:varchar(20);not null;index:idx_log_entity_external,priority:1"`
	EntityID      *uuid.UUID `gorm:"type:uuid;index"`
	ExternalID    string     `gorm:"type:varchar(100);index:idx_log_entity_external,priority:2"`
	Action        string     `gorm:"type:varchar(50);not null"`
	Origin        string     `gorm:"type:varchar(20);not null"`
	Target        string     `gorm:"type:varchar(20)"`
	Direction     string     `gorm:"type:varchar(10);not null;index"`
	ChangedFields []byte     `gorm:"type:jsonb"`
	Details       []byte     `gorm:"type:jsonb"`
	Success       bool       `gorm:"not null;default:true"`
	ErrorMessage  string     `gorm:"type:text"`
	JobID         *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SyncLogModel) TableName() string {
	return "sync_logs"
}

// ToDomain converts the persistence model to a domain Entry
func (m *SyncLogModel) ToDomain() (*synclog.Entry, error) {
	var fields []string
	if len(m.ChangedFields) > 0 {
		if err := json.Unmarshal(m.ChangedFields, &fields); err != nil {
			return nil, err
		}
	}
	return &synclog.Entry{
		ID:            m.ID,
		EntityType:    synclog.EntityType(m.EntityType),
		EntityID:      m.EntityID,
		ExternalID:    m.ExternalID,
		Action:        m.Action,
		Origin:        shared.Origin(m.Origin),
		Target:        m.Target,
		Direction:     synclog.Direction(m.Direction),
		ChangedFields: fields,
		Details:       string(m.Details),
		Success:       m.Success,
		ErrorMessage:  m.ErrorMessage,
		JobID:         m.JobID,
		CreatedAt:     m.CreatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain Entry
func (m *SyncLogModel) FromDomain(e *synclog.Entry) error {
	var fields []byte
	if len(e.ChangedFields) > 0 {
		var err error
		fields, err = json.Marshal(e.ChangedFields)
		if err != nil {
			return err
		}
	}
	m.ID = e.ID
	m.EntityType = string(e.EntityType)
	m.EntityID = e.EntityID
	m.ExternalID = e.ExternalID
	m.Action = e.Action
	m.Origin = string(e.Origin)
	m.Target = e.Target
	m.Direction = string(e.Direction)
	m.ChangedFields = fields
	if e.Details != "" {
		m.Details = []byte(e.Details)
	} else {
		m.Details = nil
	}
	m.Success = e.Success
	m.ErrorMessage = e.ErrorMessage
	m.JobID = e.JobID
	m.CreatedAt = e.CreatedAt
	return nil
}
