package platform

import (
	"fmt"
	"sync"

	"github.com/syncbridge/backend/internal/domain/channel"
)

// Registry resolves the platform adapter for a channel type
type Registry struct {
	mu      sync.RWMutex
	clients map[channel.ChannelType]channel.PlatformClient
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{clients: make(map[channel.ChannelType]channel.PlatformClient)}
}

var _ channel.PlatformClientRegistry = (*Registry)(nil)

// Register adds an adapter, replacing any previous one for the same type
func (r *Registry) Register(client channel.PlatformClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.ChannelType()] = client
}

// ClientFor returns the adapter for a channel type
func (r *Registry) ClientFor(channelType channel.ChannelType) (channel.PlatformClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[channelType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrUnknownChannel, channelType)
	}
	return client, nil
}
