package platform

import (
	"fmt"
	"net/http"

	"github.com/syncbridge/backend/internal/domain/channel"
)

// maxResponseSize is the maximum allowed response size from a platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// classifyStatus maps an HTTP status to a normalized client error.
// Client-side statuses are terminal because retrying the same request
// cannot change the outcome; 408 and 429 are transient by nature.
func classifyStatus(platform string, status int) error {
	if status < 400 {
		return nil
	}
	code := fmt.Sprintf("HTTP_%d", status)
	message := fmt.Sprintf("%s: request failed with HTTP %d", platform, status)
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500 {
		return channel.NewTransientClientError(code, message)
	}
	return channel.NewTerminalClientError(code, message)
}
