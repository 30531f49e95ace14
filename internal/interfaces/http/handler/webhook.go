package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/syncbridge/backend/internal/application/ingest"
)

// Delivery headers read off webhook requests. The Shopify variants are
// what Shopify actually sends; the generic ones cover everything else.
const (
	DeliveryIDHeader        = "X-Webhook-Delivery-ID"
	TopicHeader             = "X-Webhook-Topic"
	ShopifyDeliveryIDHeader = "X-Shopify-Webhook-Id"
	ShopifyTopicHeader      = "X-Shopify-Topic"
)

// WebhookHandler receives platform webhook deliveries
type WebhookHandler struct {
	BaseHandler
	ingestService *ingest.Service
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(ingestService *ingest.Service) *WebhookHandler {
	return &WebhookHandler{ingestService: ingestService}
}

// Receive handles POST /webhooks/:channelID. Duplicates, echoes and
// unconsumed topics are acknowledged with 200 so the platform does not
// redeliver them; only a real processing failure returns an error.
func (h *WebhookHandler) Receive(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("channelID"))
	if err != nil {
		h.BadRequest(c, "invalid channel id")
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "failed to read request body")
		return
	}

	env := ingest.Envelope{
		ChannelID:  channelID,
		DeliveryID: deliveryID(c),
		Topic:      topic(c),
		Payload:    payload,
	}

	result, err := h.ingestService.Process(c.Request.Context(), env)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func deliveryID(c *gin.Context) string {
	if id := c.GetHeader(DeliveryIDHeader); id != "" {
		return id
	}
	return c.GetHeader(ShopifyDeliveryIDHeader)
}

func topic(c *gin.Context) string {
	if t := c.GetHeader(TopicHeader); t != "" {
		return t
	}
	return c.GetHeader(ShopifyTopicHeader)
}
