package enums

// PriceBasis tags which pricing mode produced an effective price, so read
// paths never consume stale base fields silently.
type PriceBasis string

const (
	// PriceBasisBase means the product's own price_estimated was used.
	PriceBasisBase PriceBasis = "base"
	// PriceBasisVariant means a resolved or explicitly selected variant was used.
	PriceBasisVariant PriceBasis = "variant"
	// PriceBasisFallback means the product is variant-priced but no variant
	// could be resolved, so price_estimated was used as a degraded default.
	PriceBasisFallback PriceBasis = "fallback"
)

// String implements fmt.Stringer.
func (b PriceBasis) String() string {
	return string(b)
}
