package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syncbridge/backend/internal/domain/channel"
)

// maxResponseSize is the maximum allowed response size from the warehouse API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Config holds configuration for the fulfillment warehouse API
type Config struct {
	// BaseURL is the warehouse API root
	BaseURL string
	// APIKey authenticates every request
	APIKey string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Errors for fulfillment configuration
var (
	ErrConfigMissingBaseURL = errors.New("fulfillment: base URL is required")
	ErrConfigMissingAPIKey  = errors.New("fulfillment: API key is required")
)

// Validate validates the fulfillment configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// Client implements channel.FulfillmentClient against the warehouse's
// HTTP API
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new fulfillment warehouse client
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

var _ channel.FulfillmentClient = (*Client)(nil)

// SyncOrder creates an outbound order in the warehouse and returns the
// warehouse's identifier for it
func (c *Client) SyncOrder(ctx context.Context, order channel.FfnOrder) (string, error) {
	body := ffnOrderRequest{
		Reference:      order.LocalOrderID.String(),
		ExternalNumber: order.ExternalNumber,
		ShippingMethod: order.ShippingMethod,
		Receiver: ffnReceiver{
			Name:    order.ReceiverName,
			Street:  order.ReceiverStreet,
			Zip:     order.ReceiverZip,
			City:    order.ReceiverCity,
			Country: order.ReceiverCountry,
		},
	}
	for _, item := range order.Items {
		body.Items = append(body.Items, ffnOrderItem{
			SKU:      item.SKU,
			Quantity: item.Quantity.IntPart(),
		})
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return "", err
	}
	var resp ffnOrderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", channel.NewTransientClientError("INVALID_RESPONSE",
			fmt.Sprintf("fulfillment: failed to parse order response: %v", err))
	}
	if resp.OrderID == "" {
		return "", channel.NewTerminalClientError("MISSING_ORDER_ID", "fulfillment: create order returned no id")
	}
	return resp.OrderID, nil
}

// CancelOrder cancels an outbound order in the warehouse
func (c *Client) CancelOrder(ctx context.Context, ffnOrderID string) error {
	path := fmt.Sprintf("/orders/%s/cancel", url.PathEscape(ffnOrderID))
	_, err := c.doRequest(ctx, http.MethodPost, path, nil)
	return err
}

// GetStockForSkus fetches the warehouse-reported quantities for SKUs
func (c *Client) GetStockForSkus(ctx context.Context, skus []string) ([]channel.SkuStock, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	path := "/stock?skus=" + url.QueryEscape(strings.Join(skus, ","))
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp ffnStockResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, channel.NewTransientClientError("INVALID_RESPONSE",
			fmt.Sprintf("fulfillment: failed to parse stock response: %v", err))
	}

	levels := make([]channel.SkuStock, 0, len(resp.Items))
	for _, item := range resp.Items {
		levels = append(levels, channel.SkuStock{
			SKU:       item.SKU,
			Available: decimal.NewFromInt(item.Available),
			Reserved:  decimal.NewFromInt(item.Reserved),
			Announced: decimal.NewFromInt(item.Announced),
		})
	}
	return levels, nil
}

// PollInboundUpdates returns goods receipts completed since the given time
func (c *Client) PollInboundUpdates(ctx context.Context, since time.Time) ([]channel.InboundUpdate, error) {
	path := "/inbounds?completed_since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp ffnInboundResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, channel.NewTransientClientError("INVALID_RESPONSE",
			fmt.Sprintf("fulfillment: failed to parse inbound response: %v", err))
	}

	updates := make([]channel.InboundUpdate, 0, len(resp.Inbounds))
	for _, inbound := range resp.Inbounds {
		updates = append(updates, channel.InboundUpdate{
			InboundID:   inbound.ID,
			SKUs:        inbound.SKUs,
			CompletedAt: inbound.CompletedAt,
		})
	}
	return updates, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("fulfillment: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("fulfillment: failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, channel.NewTransientClientError("UNREACHABLE",
			fmt.Sprintf("fulfillment: request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, channel.NewTransientClientError("READ_FAILED",
			fmt.Sprintf("fulfillment: failed to read response: %v", err))
	}

	if resp.StatusCode >= 400 {
		code := fmt.Sprintf("HTTP_%d", resp.StatusCode)
		message := fmt.Sprintf("fulfillment: request failed with HTTP %d", resp.StatusCode)
		if resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= 500 {
			return nil, channel.NewTransientClientError(code, message)
		}
		return nil, channel.NewTerminalClientError(code, message)
	}
	return respBody, nil
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type ffnReceiver struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type ffnOrderItem struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
}

type ffnOrderRequest struct {
	Reference      string         `json:"reference"`
	ExternalNumber string         `json:"externalNumber"`
	ShippingMethod string         `json:"shippingMethod,omitempty"`
	Receiver       ffnReceiver    `json:"receiver"`
	Items          []ffnOrderItem `json:"items"`
}

type ffnOrderResponse struct {
	OrderID string `json:"orderId"`
}

type ffnStockResponse struct {
	Items []struct {
		SKU       string `json:"sku"`
		Available int64  `json:"available"`
		Reserved  int64  `json:"reserved"`
		Announced int64  `json:"announced"`
	} `json:"items"`
}

type ffnInboundResponse struct {
	Inbounds []struct {
		ID          string    `json:"id"`
		SKUs        []string  `json:"skus"`
		CompletedAt time.Time `json:"completedAt"`
	} `json:"inbounds"`
}
