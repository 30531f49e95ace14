package shared

// Origin identifies the system that produced a change. Every merge,
// log entry and propagation decision is keyed on it.
type Origin string

const (
	// OriginPlatform is a storefront platform (any sales channel)
	OriginPlatform Origin = "PLATFORM"
	// OriginFulfillment is the third-party fulfillment warehouse
	OriginFulfillment Origin = "FULFILLMENT"
	// OriginInternal is an operator acting through this system
	OriginInternal Origin = "INTERNAL"
)

// IsValid returns true if the origin is valid
func (o Origin) IsValid() bool {
	switch o {
	case OriginPlatform, OriginFulfillment, OriginInternal:
		return true
	default:
		return false
	}
}

// String returns the string representation of Origin
func (o Origin) String() string {
	return string(o)
}

// IsExternal returns true if the origin is one of the external systems
func (o Origin) IsExternal() bool {
	return o == OriginPlatform || o == OriginFulfillment
}
