package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/syncbridge/backend/internal/application/ordersync"
	"github.com/syncbridge/backend/internal/application/productsync"
	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/domain/synclog"
)

// Outcome classifies what happened to one webhook delivery. Everything
// except a processing failure is acknowledged with success upstream so
// the platform does not redeliver on purpose.
type Outcome string

const (
	OutcomeProcessed Outcome = "PROCESSED"
	OutcomeDuplicate Outcome = "DUPLICATE"
	OutcomeEcho      Outcome = "ECHO"
	OutcomeSkipped   Outcome = "SKIPPED"
	// OutcomeInvalid marks a delivery that failed validation. It is
	// still acknowledged upstream: redelivering a payload that cannot
	// be parsed or applied would only produce a retry storm.
	OutcomeInvalid Outcome = "INVALID"
)

// Result is the ingest verdict for one delivery
type Result struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Envelope is a webhook delivery normalized by the transport layer.
// Topic follows the resource.action convention, e.g. order.created.
type Envelope struct {
	ChannelID  uuid.UUID       `json:"channelId"`
	DeliveryID string          `json:"deliveryId"`
	Topic      string          `json:"topic"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderPayload is the normalized order body of order.* topics
type OrderPayload struct {
	ExternalOrderID string                      `json:"externalOrderId"`
	OrderNumber     string                      `json:"orderNumber"`
	Reason          string                      `json:"reason"`
	Commercial      ordersync.CommercialRequest `json:"commercial"`
	Items           []ordersync.ItemRequest     `json:"items"`
}

// ProductPayload is the normalized product body of product.* topics
type ProductPayload struct {
	ExternalProductID string         `json:"externalProductId"`
	SKU               string         `json:"sku"`
	Fields            map[string]any `json:"fields"`
}

// OrderSink consumes routed order events. Satisfied by the order sync
// service.
type OrderSink interface {
	Create(ctx context.Context, req ordersync.CreateOrderRequest) (*ordersync.OrderResponse, error)
	UpdateCommercial(ctx context.Context, req ordersync.UpdateCommercialRequest) (*ordersync.OrderResponse, error)
	CancelByExternalID(ctx context.Context, channelID uuid.UUID, externalOrderID string, origin shared.Origin, reason string) (*ordersync.OrderResponse, error)
}

// ProductSink consumes routed product events. Satisfied by the product
// sync service.
type ProductSink interface {
	ApplyInbound(ctx context.Context, req productsync.InboundProductRequest) (*productsync.ApplyResult, error)
}

// Service is the single entry point for platform webhooks: it drops
// duplicate deliveries, recognizes echoes of our own pushes, routes the
// rest by topic and intentionally skips what it does not consume.
type Service struct {
	window   shared.WindowStore
	windows  shared.WindowConfig
	logs     synclog.Repository
	orders   OrderSink
	products ProductSink
}

// NewService creates the webhook ingest service
func NewService(window shared.WindowStore, windows shared.WindowConfig, logs synclog.Repository, orders OrderSink, products ProductSink) *Service {
	return &Service{
		window:   window,
		windows:  windows,
		logs:     logs,
		orders:   orders,
		products: products,
	}
}

// Process handles one delivery. Only a real processing failure returns
// an error; duplicates, echoes and unconsumed topics come back as a
// successful non-processed result.
func (s *Service) Process(ctx context.Context, env Envelope) (*Result, error) {
	deliveryID := env.DeliveryID
	if deliveryID == "" {
		// Platforms that send no delivery id still get dedup, keyed on
		// what they actually sent
		deliveryID = contentKey(env)
	}
	key := fmt.Sprintf("wh:%s:%s", env.ChannelID, deliveryID)
	fresh, err := s.window.MarkSeen(ctx, key, s.windows.DedupTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return &Result{Outcome: OutcomeDuplicate}, nil
	}

	resource, action, ok := splitTopic(env.Topic)
	if !ok {
		return &Result{Outcome: OutcomeSkipped, Reason: "malformed topic"}, nil
	}

	switch resource {
	case "order":
		return s.processOrder(ctx, env, action)
	case "product":
		return s.processProduct(ctx, env, action)
	default:
		return &Result{Outcome: OutcomeSkipped, Reason: "topic not consumed"}, nil
	}
}

func (s *Service) processOrder(ctx context.Context, env Envelope, action string) (*Result, error) {
	var payload OrderPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return s.invalid(ctx, env, synclog.EntityOrder, "", "malformed order payload")
	}
	if payload.ExternalOrderID == "" {
		return s.invalid(ctx, env, synclog.EntityOrder, "", "missing external order id")
	}

	switch action {
	case "created":
		_, err := s.orders.Create(ctx, ordersync.CreateOrderRequest{
			ChannelID:       env.ChannelID,
			ExternalOrderID: payload.ExternalOrderID,
			OrderNumber:     payload.OrderNumber,
			Commercial:      payload.Commercial,
			Items:           payload.Items,
		})
		if err != nil {
			return s.sinkFailure(ctx, env, synclog.EntityOrder, payload.ExternalOrderID, err)
		}
		return &Result{Outcome: OutcomeProcessed}, nil

	case "updated":
		echo, err := s.isEcho(ctx, synclog.EntityOrder, payload.ExternalOrderID)
		if err != nil {
			return nil, err
		}
		if echo {
			return &Result{Outcome: OutcomeEcho}, nil
		}
		_, err = s.orders.UpdateCommercial(ctx, ordersync.UpdateCommercialRequest{
			ChannelID:       env.ChannelID,
			ExternalOrderID: payload.ExternalOrderID,
			Commercial:      payload.Commercial,
		})
		if errors.Is(err, shared.ErrNotFound) {
			// Updates never create; an unknown order means the created
			// event has not arrived yet and the platform will resend
			return &Result{Outcome: OutcomeSkipped, Reason: "order unknown"}, nil
		}
		if err != nil {
			return s.sinkFailure(ctx, env, synclog.EntityOrder, payload.ExternalOrderID, err)
		}
		return &Result{Outcome: OutcomeProcessed}, nil

	case "cancelled":
		echo, err := s.isEcho(ctx, synclog.EntityOrder, payload.ExternalOrderID)
		if err != nil {
			return nil, err
		}
		if echo {
			return &Result{Outcome: OutcomeEcho}, nil
		}
		reason := payload.Reason
		if reason == "" {
			reason = "cancelled on platform"
		}
		_, err = s.orders.CancelByExternalID(ctx, env.ChannelID, payload.ExternalOrderID, shared.OriginPlatform, reason)
		if errors.Is(err, shared.ErrNotFound) {
			return &Result{Outcome: OutcomeSkipped, Reason: "order unknown"}, nil
		}
		if err != nil {
			return s.sinkFailure(ctx, env, synclog.EntityOrder, payload.ExternalOrderID, err)
		}
		return &Result{Outcome: OutcomeProcessed}, nil

	default:
		return &Result{Outcome: OutcomeSkipped, Reason: "topic not consumed"}, nil
	}
}

func (s *Service) processProduct(ctx context.Context, env Envelope, action string) (*Result, error) {
	switch action {
	case "created", "updated":
	default:
		return &Result{Outcome: OutcomeSkipped, Reason: "topic not consumed"}, nil
	}

	var payload ProductPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return s.invalid(ctx, env, synclog.EntityProduct, "", "malformed product payload")
	}
	if payload.ExternalProductID == "" {
		return s.invalid(ctx, env, synclog.EntityProduct, "", "missing external product id")
	}

	echo, err := s.isEcho(ctx, synclog.EntityProduct, payload.ExternalProductID)
	if err != nil {
		return nil, err
	}
	if echo {
		return &Result{Outcome: OutcomeEcho}, nil
	}

	if _, err := s.products.ApplyInbound(ctx, productsync.InboundProductRequest{
		ChannelID:         env.ChannelID,
		ExternalProductID: payload.ExternalProductID,
		SKU:               payload.SKU,
		Fields:            payload.Fields,
	}); err != nil {
		return s.sinkFailure(ctx, env, synclog.EntityProduct, payload.ExternalProductID, err)
	}
	return &Result{Outcome: OutcomeProcessed}, nil
}

// isEcho checks whether we recently pushed this entity outward; the
// platform reporting it back then carries nothing new
func (s *Service) isEcho(ctx context.Context, entity synclog.EntityType, externalID string) (bool, error) {
	return s.logs.HasRecentLocalPush(ctx, entity, externalID, s.windows.EchoTTL)
}

// invalid records a validation failure in the audit trail and returns
// it as an acknowledged result, never an error
func (s *Service) invalid(ctx context.Context, env Envelope, entity synclog.EntityType, externalID, reason string) (*Result, error) {
	entry := synclog.NewEntry(entity, env.Topic, shared.OriginPlatform, synclog.DirectionInbound).
		WithExternalID(externalID).
		Failed(reason)
	_ = s.logs.Append(ctx, entry)
	return &Result{Outcome: OutcomeInvalid, Reason: reason}, nil
}

// sinkFailure classifies an error from a routed handler. Domain errors
// are permanent: redelivery cannot fix a payload the domain rejects, so
// they are logged and acknowledged. Everything else stays an error and
// surfaces as a retryable failure.
func (s *Service) sinkFailure(ctx context.Context, env Envelope, entity synclog.EntityType, externalID string, err error) (*Result, error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return s.invalid(ctx, env, entity, externalID, domainErr.Message)
	}
	return nil, err
}

// contentKey derives a dedup key for deliveries that carry no delivery
// id, so redelivered bodies still collapse onto one key
func contentKey(env Envelope) string {
	h := sha256.New()
	h.Write([]byte(env.Topic))
	h.Write([]byte{0})
	h.Write(env.Payload)
	return hex.EncodeToString(h.Sum(nil))
}

func splitTopic(topic string) (resource, action string, ok bool) {
	parts := strings.SplitN(topic, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
