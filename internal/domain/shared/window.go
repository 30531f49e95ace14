package shared

import (
	"context"
	"time"
)

// WindowStore remembers keys for a trailing time window. It backs the
// webhook dedup and echo checks: best-effort, bounded memory, safe to
// lose on restart because every consumer re-applies idempotently.
type WindowStore interface {
	// MarkSeen records a key with a TTL.
	// Returns true if the key was newly recorded, false if it was
	// already present and unexpired.
	MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Seen checks whether a key is present and unexpired
	Seen(ctx context.Context, key string) (bool, error)

	// Close releases resources (sweep goroutines, connections)
	Close() error
}

// WindowConfig holds the trailing windows used by the ingest filters
type WindowConfig struct {
	// DedupTTL is how long a webhook delivery id is remembered
	DedupTTL time.Duration
	// EchoTTL is how long an outbound push suppresses the platform's
	// reflected notification for the same external entity
	EchoTTL time.Duration
}

// DefaultWindowConfig returns the default filter windows
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		DedupTTL: 10 * time.Minute,
		EchoTTL:  3 * time.Minute,
	}
}
