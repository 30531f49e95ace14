package shipping

import (
	"context"

	"github.com/google/uuid"
)

// MethodRepository persists canonical shipping methods
type MethodRepository interface {
	Save(ctx context.Context, m *Method) error
	FindByID(ctx context.Context, id uuid.UUID) (*Method, error)
	FindByCode(ctx context.Context, code string) (*Method, error)
	FindActive(ctx context.Context) ([]Method, error)
}

// MappingRepository persists per-channel shipping code mappings
type MappingRepository interface {
	Save(ctx context.Context, m *Mapping) error
	FindByChannelCode(ctx context.Context, channelID uuid.UUID, channelCode string) (*Mapping, error)
	ExistsByChannelCode(ctx context.Context, channelID uuid.UUID, channelCode string) (bool, error)
}

// MismatchRepository persists shipping mismatch records
type MismatchRepository interface {
	Save(ctx context.Context, r *MismatchRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*MismatchRecord, error)
	FindUnresolved(ctx context.Context, page, pageSize int) ([]MismatchRecord, int64, error)
	// MarkResolvedForCode resolves every open record for a channel code
	// once the mapping has been added
	MarkResolvedForCode(ctx context.Context, channelID uuid.UUID, channelCode string) (int64, error)
}
