package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/domain/channel"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

// Signature headers accepted on webhook deliveries. The generic header
// carries a hex digest; the Shopify one is base64 as sent by Shopify.
const (
	SignatureHeader        = "X-Webhook-Signature"
	ShopifySignatureHeader = "X-Shopify-Hmac-Sha256"
)

// WebhookSignature verifies the HMAC-SHA256 signature of a webhook
// delivery against the channel's webhook secret. The channel id is
// taken from the :channelID path parameter; the verified body is put
// back so handlers can bind it.
func WebhookSignature(resolver channel.CredentialResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID, err := uuid.Parse(c.Param("channelID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "invalid channel id"))
			return
		}

		given, encoding := signatureFromHeaders(c)
		if given == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeInvalidSignature, "missing webhook signature"))
			return
		}

		creds, err := resolver.Resolve(c.Request.Context(), channelID)
		if err != nil || creds == nil || creds.WebhookSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeInvalidSignature, "webhook secret not configured"))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "failed to read request body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha256.New, []byte(creds.WebhookSecret))
		mac.Write(body)
		digest := mac.Sum(nil)

		var expected string
		if encoding == "base64" {
			expected = base64.StdEncoding.EncodeToString(digest)
		} else {
			expected = hex.EncodeToString(digest)
		}

		if !hmac.Equal([]byte(given), []byte(expected)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeInvalidSignature, "webhook signature mismatch"))
			return
		}

		c.Set("channel_id", channelID)
		c.Next()
	}
}

func signatureFromHeaders(c *gin.Context) (signature, encoding string) {
	if sig := c.GetHeader(SignatureHeader); sig != "" {
		return sig, "hex"
	}
	if sig := c.GetHeader(ShopifySignatureHeader); sig != "" {
		return sig, "base64"
	}
	return "", ""
}
