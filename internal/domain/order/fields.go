package order

import (
	"github.com/syncbridge/backend/internal/domain/shared"
)

// Field names used in patches, ownership checks and changed-field logs.
const (
	FieldCustomerName    = "customerName"
	FieldCustomerEmail   = "customerEmail"
	FieldReceiverName    = "receiverName"
	FieldReceiverStreet  = "receiverStreet"
	FieldReceiverZip     = "receiverZip"
	FieldReceiverCity    = "receiverCity"
	FieldReceiverCountry = "receiverCountry"
	FieldTotalAmount     = "totalAmount"
	FieldShippingAmount  = "shippingAmount"
	FieldCurrency        = "currency"
	FieldPaymentStatus   = "paymentStatus"
	FieldShippingCode    = "shippingCode"

	FieldFulfillmentState = "fulfillmentState"
	FieldCarrier          = "carrier"
	FieldTrackingNumber   = "trackingNumber"
	FieldIsOnHold         = "isOnHold"
	FieldHoldReason       = "holdReason"
	FieldShippingMethodID = "shippingMethodId"
)

// commercialFields is the fixed set writable only by platform origins
var commercialFields = map[string]bool{
	FieldCustomerName:    true,
	FieldCustomerEmail:   true,
	FieldReceiverName:    true,
	FieldReceiverStreet:  true,
	FieldReceiverZip:     true,
	FieldReceiverCity:    true,
	FieldReceiverCountry: true,
	FieldTotalAmount:     true,
	FieldShippingAmount:  true,
	FieldCurrency:        true,
	FieldPaymentStatus:   true,
	FieldShippingCode:    true,
}

// operationalFields is the fixed set writable only internally
var operationalFields = map[string]bool{
	FieldFulfillmentState: true,
	FieldCarrier:          true,
	FieldTrackingNumber:   true,
	FieldIsOnHold:         true,
	FieldHoldReason:       true,
	FieldShippingMethodID: true,
}

// operationalApplyOrder fixes the order operational patches apply in.
// isOnHold must precede holdReason: the reason only sticks while the
// order is on hold.
var operationalApplyOrder = []string{
	FieldShippingMethodID,
	FieldFulfillmentState,
	FieldCarrier,
	FieldTrackingNumber,
	FieldIsOnHold,
	FieldHoldReason,
}

// OperationalApplyOrder returns the deterministic order in which
// operational patch fields are applied
func OperationalApplyOrder() []string {
	out := make([]string, len(operationalApplyOrder))
	copy(out, operationalApplyOrder)
	return out
}

// IsCommercialField reports whether the field belongs to the commercial set
func IsCommercialField(field string) bool {
	return commercialFields[field]
}

// IsOperationalField reports whether the field belongs to the operational set
func IsOperationalField(field string) bool {
	return operationalFields[field]
}

// IsWritable is the order half of the field ownership registry: a pure
// lookup over the fixed commercial/operational partition. Product field
// ownership is dynamic and lives with the catalog.
func IsWritable(field string, origin shared.Origin) bool {
	switch {
	case commercialFields[field]:
		return origin == shared.OriginPlatform
	case operationalFields[field]:
		return origin == shared.OriginInternal || origin == shared.OriginFulfillment
	default:
		return false
	}
}

// FilterWritable splits a patch into the subset the origin may write and
// the rejected field names. Rejected fields are dropped, not coerced;
// callers log them and apply the rest.
func FilterWritable(patch map[string]any, origin shared.Origin) (allowed map[string]any, rejected []string) {
	allowed = make(map[string]any, len(patch))
	for field, value := range patch {
		if IsWritable(field, origin) {
			allowed[field] = value
		} else {
			rejected = append(rejected, field)
		}
	}
	return allowed, rejected
}
