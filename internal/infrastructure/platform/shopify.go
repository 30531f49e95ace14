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

// ShopifyAPIVersion is the pinned Admin API version
const ShopifyAPIVersion = "2024-07"

// ShopifyConfig holds configuration for the Shopify Admin API
type ShopifyConfig struct {
	// ShopDomain is the myshopify domain, e.g. acme.myshopify.com
	ShopDomain string
	// APIVersion overrides the pinned Admin API version
	APIVersion string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Errors for Shopify configuration
var ErrShopifyConfigMissingDomain = errors.New("shopify: shop domain is required")

// NewShopifyConfig creates a new Shopify configuration with defaults
func NewShopifyConfig(shopDomain string) *ShopifyConfig {
	return &ShopifyConfig{
		ShopDomain:     shopDomain,
		APIVersion:     ShopifyAPIVersion,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Shopify configuration
func (c *ShopifyConfig) Validate() error {
	if c.ShopDomain == "" {
		return ErrShopifyConfigMissingDomain
	}
	if c.APIVersion == "" {
		c.APIVersion = ShopifyAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

func (c *ShopifyConfig) baseURL() string {
	return fmt.Sprintf("https://%s/admin/api/%s", c.ShopDomain, c.APIVersion)
}

// ShopifyAdapter implements channel.PlatformClient for Shopify shops
type ShopifyAdapter struct {
	config     *ShopifyConfig
	resolver   channel.CredentialResolver
	httpClient *http.Client
}

// NewShopifyAdapter creates a new Shopify adapter
func NewShopifyAdapter(config *ShopifyConfig, resolver channel.CredentialResolver) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopifyAdapter{
		config:   config,
		resolver: resolver,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

var _ channel.PlatformClient = (*ShopifyAdapter)(nil)

// ChannelType returns the platform kind this client talks to
func (a *ShopifyAdapter) ChannelType() channel.ChannelType {
	return channel.ChannelTypeShopify
}

// UpdateOrder mirrors operational order fields to the shop. Shopify has
// no free-form order state, so the update is expressed through order
// metafields plus tracking on the fulfillment.
func (a *ShopifyAdapter) UpdateOrder(ctx context.Context, channelID uuid.UUID, update channel.PlatformOrderUpdate) error {
	body := shopifyOrderUpdateRequest{}
	body.Order.ID = update.ExternalOrderID
	body.Order.NoteAttributes = []shopifyNoteAttribute{
		{Name: "fulfillment_state", Value: update.FulfillmentState},
	}
	if update.TrackingNumber != "" {
		body.Order.NoteAttributes = append(body.Order.NoteAttributes,
			shopifyNoteAttribute{Name: "carrier", Value: update.Carrier},
			shopifyNoteAttribute{Name: "tracking_number", Value: update.TrackingNumber},
		)
	}
	path := fmt.Sprintf("/orders/%s.json", update.ExternalOrderID)
	_, err := a.doRequest(ctx, channelID, http.MethodPut, path, body)
	return err
}

// CancelOrder cancels the order in the shop
func (a *ShopifyAdapter) CancelOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, reason string) error {
	body := shopifyCancelRequest{Reason: reason}
	path := fmt.Sprintf("/orders/%s/cancel.json", externalOrderID)
	_, err := a.doRequest(ctx, channelID, http.MethodPost, path, body)
	return err
}

// FulfillOrder creates a fulfillment with tracking on the shop order
func (a *ShopifyAdapter) FulfillOrder(ctx context.Context, channelID uuid.UUID, externalOrderID, carrier, trackingNumber string) error {
	body := shopifyFulfillmentRequest{}
	body.Fulfillment.TrackingInfo.Company = carrier
	body.Fulfillment.TrackingInfo.Number = trackingNumber
	body.Fulfillment.NotifyCustomer = true
	path := fmt.Sprintf("/orders/%s/fulfillments.json", externalOrderID)
	_, err := a.doRequest(ctx, channelID, http.MethodPost, path, body)
	return err
}

// CreateProduct creates a product in the shop and returns its id
func (a *ShopifyAdapter) CreateProduct(ctx context.Context, channelID uuid.UUID, product channel.PlatformProduct) (string, error) {
	respBody, err := a.doRequest(ctx, channelID, http.MethodPost, "/products.json", newShopifyProductRequest(product))
	if err != nil {
		return "", err
	}
	var resp shopifyProductResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", channel.NewTransientClientError("INVALID_RESPONSE",
			fmt.Sprintf("shopify: failed to parse product response: %v", err))
	}
	if resp.Product.ID == 0 {
		return "", channel.NewTerminalClientError("MISSING_PRODUCT_ID", "shopify: create product returned no id")
	}
	return fmt.Sprintf("%d", resp.Product.ID), nil
}

// UpdateProduct updates a product in the shop
func (a *ShopifyAdapter) UpdateProduct(ctx context.Context, channelID uuid.UUID, product channel.PlatformProduct) error {
	path := fmt.Sprintf("/products/%s.json", product.ExternalProductID)
	_, err := a.doRequest(ctx, channelID, http.MethodPut, path, newShopifyProductRequest(product))
	return err
}

// DeleteProduct removes a product from the shop
func (a *ShopifyAdapter) DeleteProduct(ctx context.Context, channelID uuid.UUID, externalProductID string) error {
	path := fmt.Sprintf("/products/%s.json", externalProductID)
	_, err := a.doRequest(ctx, channelID, http.MethodDelete, path, nil)
	return err
}

// SetStock overwrites the sellable quantity of one product's inventory
func (a *ShopifyAdapter) SetStock(ctx context.Context, channelID uuid.UUID, externalProductID string, available decimal.Decimal) error {
	body := shopifyInventorySetRequest{
		InventoryItemID: externalProductID,
		Available:       available.IntPart(),
	}
	_, err := a.doRequest(ctx, channelID, http.MethodPost, "/inventory_levels/set.json", body)
	return err
}

func (a *ShopifyAdapter) doRequest(ctx context.Context, channelID uuid.UUID, method, path string, body any) ([]byte, error) {
	creds, err := a.resolver.Resolve(ctx, channelID)
	if err != nil {
		return nil, channel.NewTerminalClientError("MISSING_CREDENTIALS",
			fmt.Sprintf("shopify: failed to resolve credentials: %v", err))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.baseURL()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", creds.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, channel.NewTransientClientError("UNREACHABLE",
			fmt.Sprintf("shopify: request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, channel.NewTransientClientError("READ_FAILED",
			fmt.Sprintf("shopify: failed to read response: %v", err))
	}

	if err := classifyStatus("shopify", resp.StatusCode); err != nil {
		return nil, err
	}
	return respBody, nil
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type shopifyNoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type shopifyOrderUpdateRequest struct {
	Order struct {
		ID             string                 `json:"id"`
		NoteAttributes []shopifyNoteAttribute `json:"note_attributes"`
	} `json:"order"`
}

type shopifyCancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

type shopifyFulfillmentRequest struct {
	Fulfillment struct {
		TrackingInfo struct {
			Company string `json:"company"`
			Number  string `json:"number"`
		} `json:"tracking_info"`
		NotifyCustomer bool `json:"notify_customer"`
	} `json:"fulfillment"`
}

type shopifyProductRequest struct {
	Product struct {
		Title    string `json:"title"`
		BodyHTML string `json:"body_html,omitempty"`
		Status   string `json:"status"`
		Variants []struct {
			Price string `json:"price"`
		} `json:"variants"`
	} `json:"product"`
}

func newShopifyProductRequest(product channel.PlatformProduct) shopifyProductRequest {
	req := shopifyProductRequest{}
	req.Product.Title = product.Name
	req.Product.BodyHTML = product.Description
	if product.Active {
		req.Product.Status = "active"
	} else {
		req.Product.Status = "draft"
	}
	req.Product.Variants = []struct {
		Price string `json:"price"`
	}{{Price: product.Price.StringFixed(2)}}
	return req
}

type shopifyProductResponse struct {
	Product struct {
		ID int64 `json:"id"`
	} `json:"product"`
}

type shopifyInventorySetRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	Available       int64  `json:"available"`
}
