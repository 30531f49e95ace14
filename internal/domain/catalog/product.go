package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/syncbridge/backend/internal/domain/shared"
)

var (
	ErrProductNotFound        = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrProductChannelNotFound = shared.NewDomainError("PRODUCT_CHANNEL_NOT_FOUND", "Product channel link not found")
	ErrInvalidSKU             = shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	ErrUnknownProductField    = shared.NewDomainError("UNKNOWN_PRODUCT_FIELD", "Unknown product field")
)

// Product field names used for per-field ownership arbitration
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldWeight      = "weight"
	FieldActive      = "active"
)

// knownFields is the set of catalog fields subject to sync arbitration
var knownFields = map[string]bool{
	FieldName:        true,
	FieldDescription: true,
	FieldPrice:       true,
	FieldWeight:      true,
	FieldActive:      true,
}

// IsKnownField reports whether the field participates in product sync
func IsKnownField(field string) bool {
	return knownFields[field]
}

// Product is the canonical catalog record
type Product struct {
	shared.BaseEntity
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Weight      decimal.Decimal
	Active      bool
}

// NewProduct creates a new canonical product
func NewProduct(sku, name string, price decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, ErrInvalidSKU
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Price:      price,
		Active:     true,
	}, nil
}

// FieldValue returns the current value of a sync-arbitrated field
func (p *Product) FieldValue(field string) (any, error) {
	switch field {
	case FieldName:
		return p.Name, nil
	case FieldDescription:
		return p.Description, nil
	case FieldPrice:
		return p.Price.String(), nil
	case FieldWeight:
		return p.Weight.String(), nil
	case FieldActive:
		return p.Active, nil
	default:
		return nil, ErrUnknownProductField
	}
}

// SetFieldValue writes a sync-arbitrated field. Values arrive in the
// normalized wire representation (strings for decimals).
func (p *Product) SetFieldValue(field string, value any) error {
	switch field {
	case FieldName:
		s, ok := value.(string)
		if !ok || s == "" {
			return shared.ErrInvalidInput
		}
		p.Name = s
	case FieldDescription:
		s, ok := value.(string)
		if !ok {
			return shared.ErrInvalidInput
		}
		p.Description = s
	case FieldPrice:
		d, err := toDecimal(value)
		if err != nil || d.IsNegative() {
			return shared.ErrInvalidInput
		}
		p.Price = d
	case FieldWeight:
		d, err := toDecimal(value)
		if err != nil || d.IsNegative() {
			return shared.ErrInvalidInput
		}
		p.Weight = d
	case FieldActive:
		b, ok := value.(bool)
		if !ok {
			return shared.ErrInvalidInput
		}
		p.Active = b
	default:
		return ErrUnknownProductField
	}
	p.UpdatedAt = time.Now()
	return nil
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Decimal{}, shared.ErrInvalidInput
	}
}

// ---------------------------------------------------------------------------
// ProductChannel
// ---------------------------------------------------------------------------

// FieldWriter records which origin last wrote a field and when. It is
// the unit of the dynamic per-field ownership rule: the last writer
// stays authoritative until another origin writes the same field.
type FieldWriter struct {
	LastWriter    shared.Origin `json:"lastWriter"`
	LastWrittenAt time.Time     `json:"lastWrittenAt"`
}

// SyncState is the per-channel product sync status
type SyncState string

const (
	SyncStatePending  SyncState = "PENDING"
	SyncStateSynced   SyncState = "SYNCED"
	SyncStateError    SyncState = "ERROR"
	SyncStateConflict SyncState = "CONFLICT"
)

// ProductChannel links a canonical product to its identity on one sales
// channel and carries the field-level writer metadata for arbitration.
type ProductChannel struct {
	shared.BaseEntity
	ProductID         uuid.UUID
	ChannelID         uuid.UUID
	ExternalProductID string
	SyncEnabled       bool
	SyncState         SyncState
	SyncError         string
	LastSyncAt        *time.Time
	FieldMeta         map[string]FieldWriter
}

// NewProductChannel creates a new product-to-channel link
func NewProductChannel(productID, channelID uuid.UUID, externalProductID string) (*ProductChannel, error) {
	if productID == uuid.Nil || channelID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	return &ProductChannel{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		ChannelID:         channelID,
		ExternalProductID: externalProductID,
		SyncEnabled:       true,
		SyncState:         SyncStatePending,
		FieldMeta:         make(map[string]FieldWriter),
	}, nil
}

// RecordWrite stamps a field as last written by the given origin
func (pc *ProductChannel) RecordWrite(field string, origin shared.Origin, at time.Time) {
	if pc.FieldMeta == nil {
		pc.FieldMeta = make(map[string]FieldWriter)
	}
	pc.FieldMeta[field] = FieldWriter{LastWriter: origin, LastWrittenAt: at}
	pc.UpdatedAt = time.Now()
}

// Conflicts reports whether an incoming write from origin disagrees with
// the current field owner. A write by the same origin, or to a field
// nobody has written yet, never conflicts.
func (pc *ProductChannel) Conflicts(field string, origin shared.Origin) bool {
	meta, ok := pc.FieldMeta[field]
	if !ok {
		return false
	}
	return meta.LastWriter != origin
}

// MarkSynced records a successful outbound sync
func (pc *ProductChannel) MarkSynced() {
	now := time.Now()
	pc.SyncState = SyncStateSynced
	pc.SyncError = ""
	pc.LastSyncAt = &now
	pc.UpdatedAt = now
}

// MarkSyncError records an outbound sync failure
func (pc *ProductChannel) MarkSyncError(msg string) {
	now := time.Now()
	pc.SyncState = SyncStateError
	pc.SyncError = msg
	pc.LastSyncAt = &now
	pc.UpdatedAt = now
}

// MarkConflict flags the link as having unresolved field conflicts
func (pc *ProductChannel) MarkConflict() {
	pc.SyncState = SyncStateConflict
	pc.UpdatedAt = time.Now()
}
