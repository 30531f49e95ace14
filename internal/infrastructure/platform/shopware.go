package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syncbridge/backend/internal/domain/channel"
)

// ShopwareConfig holds configuration for the Shopware Admin API
type ShopwareConfig struct {
	// BaseURL is the shop's Admin API root, e.g. https://shop.example.com/api
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Errors for Shopware configuration
var ErrShopwareConfigMissingBaseURL = errors.New("shopware: base URL is required")

// NewShopwareConfig creates a new Shopware configuration with defaults
func NewShopwareConfig(baseURL string) *ShopwareConfig {
	return &ShopwareConfig{
		BaseURL:        baseURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Shopware configuration
func (c *ShopwareConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrShopwareConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// ShopwareAdapter implements channel.PlatformClient for Shopware shops.
// Credentials are looked up per channel through the resolver; the
// adapter itself holds no secrets.
type ShopwareAdapter struct {
	config     *ShopwareConfig
	resolver   channel.CredentialResolver
	httpClient *http.Client
}

// NewShopwareAdapter creates a new Shopware adapter
func NewShopwareAdapter(config *ShopwareConfig, resolver channel.CredentialResolver) (*ShopwareAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopwareAdapter{
		config:   config,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

var _ channel.PlatformClient = (*ShopwareAdapter)(nil)

// ChannelType returns the platform kind this client talks to
func (a *ShopwareAdapter) ChannelType() channel.ChannelType {
	return channel.ChannelTypeShopware
}

// UpdateOrder mirrors operational order fields to the shop
func (a *ShopwareAdapter) UpdateOrder(ctx context.Context, channelID uuid.UUID, update channel.PlatformOrderUpdate) error {
	body := shopwareOrderUpdateRequest{
		State:          update.FulfillmentState,
		Carrier:        update.Carrier,
		TrackingNumber: update.TrackingNumber,
	}
	path := fmt.Sprintf("/order/%s/sync-state", update.ExternalOrderID)
	_, err := a.doRequest(ctx, channelID, http.MethodPatch, path, body)
	return err
}

// CancelOrder transitions the shop order to cancelled
func (a *ShopwareAdapter) CancelOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, reason string) error {
	body := shopwareCancelRequest{Reason: reason}
	path := fmt.Sprintf("/order/%s/state/cancel", externalOrderID)
	_, err := a.doRequest(ctx, channelID, http.MethodPost, path, body)
	return err
}

// FulfillOrder records shipment on the shop order
func (a *ShopwareAdapter) FulfillOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, carrier, trackingNumber string) error {
	body := shopwareFulfillRequest{
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
	}
	path := fmt.Sprintf("/order/%s/state/ship", externalOrderID)
	_, err := a.doRequest(ctx, channelID, http.MethodPost, path, body)
	return err
}

// CreateProduct creates a product in the shop and returns its id
func (a *ShopwareAdapter) CreateProduct(ctx context.Context, channelID uuid.UUID, product channel.PlatformProduct) (string, error) {
	respBody, err := a.doRequest(ctx, channelID, http.MethodPost, "/product", newShopwareProductRequest(product))
	if err != nil {
		return "", err
	}
	var resp shopwareProductResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", channel.NewTransientClientError("INVALID_RESPONSE",
			fmt.Sprintf("shopware: failed to parse product response: %v", err))
	}
	if resp.Data.ID == "" {
		return "", channel.NewTerminalClientError("MISSING_PRODUCT_ID", "shopware: create product returned no id")
	}
	return resp.Data.ID, nil
}

// UpdateProduct updates a product in the shop
func (a *ShopwareAdapter) UpdateProduct(ctx context.Context, channelID uuid.UUID, product channel.PlatformProduct) error {
	path := fmt.Sprintf("/product/%s", product.ExternalProductID)
	_, err := a.doRequest(ctx, channelID, http.MethodPatch, path, newShopwareProductRequest(product))
	return err
}

// DeleteProduct removes a product from the shop
func (a *ShopwareAdapter) DeleteProduct(ctx context.Context, channelID uuid.UUID, externalProductID string) error {
	path := fmt.Sprintf("/product/%s", externalProductID)
	_, err := a.doRequest(ctx, channelID, http.MethodDelete, path, nil)
	return err
}

// SetStock overwrites the sellable quantity of one product
func (a *ShopwareAdapter) SetStock(ctx context.Context, channelID uuid.UUID, externalProductID string, available decimal.Decimal) error {
	body := shopwareStockRequest{Stock: available.IntPart()}
	path := fmt.Sprintf("/product/%s", externalProductID)
	_, err := a.doRequest(ctx, channelID, http.MethodPatch, path, body)
	return err
}

func (a *ShopwareAdapter) doRequest(ctx context.Context, channelID uuid.UUID, method, path string, body any) ([]byte, error) {
	creds, err := a.resolver.Resolve(ctx, channelID)
	if err != nil {
		return nil, channel.NewTerminalClientError("MISSING_CREDENTIALS",
			fmt.Sprintf("shopware: failed to resolve credentials: %v", err))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("shopware: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("shopware: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, channel.NewTransientClientError("UNREACHABLE",
			fmt.Sprintf("shopware: request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, channel.NewTransientClientError("READ_FAILED",
			fmt.Sprintf("shopware: failed to read response: %v", err))
	}

	if err := classifyStatus("shopware", resp.StatusCode); err != nil {
		return nil, err
	}
	return respBody, nil
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type shopwareOrderUpdateRequest struct {
	State          string `json:"state,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

type shopwareCancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

type shopwareFulfillRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
}

type shopwareProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
}

func newShopwareProductRequest(product channel.PlatformProduct) shopwareProductRequest {
	return shopwareProductRequest{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Active:      product.Active,
	}
}

type shopwareStockRequest struct {
	Stock int64 `json:"stock"`
}

type shopwareProductResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}
