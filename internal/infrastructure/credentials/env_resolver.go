package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/channel"
)

// EnvCredentialResolver resolves channel credentials from environment
// variables. The channel's secret ref is normalized into a variable
// stem, e.g. ref "shopware-prod" with prefix "SYNCBRIDGE_CHANNEL_"
// reads SYNCBRIDGE_CHANNEL_SHOPWARE_PROD_API_KEY and friends. Secrets
// never pass through the database this way.
type EnvCredentialResolver struct {
	channels channel.Repository
	prefix   string
}

// DefaultEnvPrefix is the variable prefix used when none is given
const DefaultEnvPrefix = "SYNCBRIDGE_CHANNEL_"

// NewEnvCredentialResolver creates a resolver reading from the process
// environment
func NewEnvCredentialResolver(channels channel.Repository, prefix string) *EnvCredentialResolver {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvCredentialResolver{channels: channels, prefix: prefix}
}

var _ channel.CredentialResolver = (*EnvCredentialResolver)(nil)

// Resolve returns the decrypted credentials for one channel
func (r *EnvCredentialResolver) Resolve(ctx context.Context, channelID uuid.UUID) (*channel.Credentials, error) {
	ch, err := r.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch.WebhookSecretRef == "" {
		return nil, fmt.Errorf("%w: channel %s has no secret ref", channel.ErrMissingCredential, channelID)
	}

	stem := r.prefix + normalizeRef(ch.WebhookSecretRef)
	creds := &channel.Credentials{
		APIKey:        os.Getenv(stem + "_API_KEY"),
		APISecret:     os.Getenv(stem + "_API_SECRET"),
		WebhookSecret: os.Getenv(stem + "_WEBHOOK_SECRET"),
	}
	if creds.APIKey == "" && creds.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: no secrets found under %s", channel.ErrMissingCredential, stem)
	}
	return creds, nil
}

// normalizeRef turns a secret ref into an environment variable stem
func normalizeRef(ref string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, ref)
	return mapped
}
