package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/domain/catalog"
	"github.com/syncbridge/backend/internal/domain/shipping"
	"github.com/syncbridge/backend/internal/domain/syncjob"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// QueueStats is the per-queue status breakdown
type QueueStats struct {
	Queue  string                   `json:"queue"`
	Counts map[syncjob.Status]int64 `json:"counts"`
}

// AddMappingRequest creates a shipping code mapping and closes the
// mismatch records it makes obsolete
type AddMappingRequest struct {
	ChannelID   uuid.UUID `json:"channelId" binding:"required"`
	ChannelCode string    `json:"channelCode" binding:"required"`
	MethodID    uuid.UUID `json:"methodId" binding:"required"`
}

// AddMappingResult reports the mapping plus how many mismatch records
// it resolved
type AddMappingResult struct {
	MappingID       uuid.UUID `json:"mappingId"`
	ResolvedRecords int64     `json:"resolvedRecords"`
}

// Service is the operator surface: dead-letter management, conflict and
// mismatch triage, audit queries.
type Service struct {
	jobs       syncjob.Repository
	conflicts  catalog.ConflictRepository
	mismatches shipping.MismatchRepository
	mappings   shipping.MappingRepository
	methods    shipping.MethodRepository
	logs       synclog.Repository
}

// NewService creates the admin service
func NewService(jobs syncjob.Repository, conflicts catalog.ConflictRepository, mismatches shipping.MismatchRepository, mappings shipping.MappingRepository, methods shipping.MethodRepository, logs synclog.Repository) *Service {
	return &Service{
		jobs:       jobs,
		conflicts:  conflicts,
		mismatches: mismatches,
		mappings:   mappings,
		methods:    methods,
		logs:       logs,
	}
}

// ListDeadJobs returns dead-lettered jobs for triage
func (s *Service) ListDeadJobs(ctx context.Context, page, pageSize int) ([]*syncjob.Job, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.jobs.FindDead(ctx, page, pageSize)
}

// RetryDeadJob re-queues one dead-lettered job with a fresh retry budget
func (s *Service) RetryDeadJob(ctx context.Context, id uuid.UUID) (*syncjob.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := job.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Stats returns the status breakdown for every known queue
func (s *Service) Stats(ctx context.Context) ([]QueueStats, error) {
	queues, err := s.jobs.Queues(ctx)
	if err != nil {
		return nil, err
	}
	stats := make([]QueueStats, 0, len(queues))
	for _, queue := range queues {
		counts, err := s.jobs.CountByStatus(ctx, queue)
		if err != nil {
			return nil, err
		}
		stats = append(stats, QueueStats{Queue: queue, Counts: counts})
	}
	return stats, nil
}

// ListConflicts returns open product field conflicts
func (s *Service) ListConflicts(ctx context.Context, page, pageSize int) ([]catalog.FieldConflict, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.conflicts.FindOpen(ctx, page, pageSize)
}

// ListMismatches returns unresolved shipping mismatch records
func (s *Service) ListMismatches(ctx context.Context, page, pageSize int) ([]shipping.MismatchRecord, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.mismatches.FindUnresolved(ctx, page, pageSize)
}

// AddMapping creates the missing shipping mapping an operator was
// notified about and marks every matching mismatch record resolved.
func (s *Service) AddMapping(ctx context.Context, req AddMappingRequest) (*AddMappingResult, error) {
	if _, err := s.methods.FindByID(ctx, req.MethodID); err != nil {
		return nil, err
	}
	exists, err := s.mappings.ExistsByChannelCode(ctx, req.ChannelID, req.ChannelCode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shipping.ErrMappingExists
	}

	mapping, err := shipping.NewMapping(req.ChannelID, req.ChannelCode, req.MethodID)
	if err != nil {
		return nil, err
	}
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}

	resolved, err := s.mismatches.MarkResolvedForCode(ctx, req.ChannelID, req.ChannelCode)
	if err != nil {
		return nil, err
	}
	return &AddMappingResult{MappingID: mapping.ID, ResolvedRecords: resolved}, nil
}

// AuditTrail queries the sync log
func (s *Service) AuditTrail(ctx context.Context, filter synclog.Filter) ([]*synclog.Entry, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	return s.logs.FindAll(ctx, filter)
}
