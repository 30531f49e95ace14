package models

import (
	"time"

	"github.com/syncbridge/backend/internal/domain/syncjob"
)

// SyncJobModel is the persistence model for a queued sync job
type SyncJobModel struct {
	BaseModel
	Queue       string     `gorm:"type:varchar(50);not null;index:idx_job_queue_status,priority:1"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	Priority    int        `gorm:"not null;default:0"`
	RetryCount  int        `gorm:"not null;default:0"`
	RetryLimit  int        `gorm:"not null"`
	RetryDelay  int64      `gorm:"not null"` // nanoseconds
	Status      string     `gorm:"type:varchar(20);not null;index:idx_job_queue_status,priority:2"`
	LastError   string     `gorm:"type:text"`
	NextRetryAt *time.Time `gorm:"index"`
	CompletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (SyncJobModel) TableName() string {
	return "sync_jobs"
}

// ToDomain converts the persistence model to a domain Job
func (m *SyncJobModel) ToDomain() *syncjob.Job {
	return &syncjob.Job{
		ID:          m.ID,
		Queue:       m.Queue,
		Payload:     m.Payload,
		Priority:    m.Priority,
		RetryCount:  m.RetryCount,
		RetryLimit:  m.RetryLimit,
		RetryDelay:  time.Duration(m.RetryDelay),
		Status:      syncjob.Status(m.Status),
		LastError:   m.LastError,
		NextRetryAt: m.NextRetryAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Job
func (m *SyncJobModel) FromDomain(j *syncjob.Job) {
	m.ID = j.ID
	m.CreatedAt = j.CreatedAt
	m.UpdatedAt = j.UpdatedAt
	m.Queue = j.Queue
	m.Payload = j.Payload
	m.Priority = j.Priority
	m.RetryCount = j.RetryCount
	m.RetryLimit = j.RetryLimit
	m.RetryDelay = int64(j.RetryDelay)
	m.Status = string(j.Status)
	m.LastError = j.LastError
	m.NextRetryAt = j.NextRetryAt
	m.CompletedAt = j.CompletedAt
}

// SyncJobModelFromDomain creates a new persistence model from a domain Job
func SyncJobModelFromDomain(j *syncjob.Job) *SyncJobModel {
	m := &SyncJobModel{}
	m.FromDomain(j)
	return m
}
