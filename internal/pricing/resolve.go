package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feriaverde/catalog-backend/pkg/db/models"
	"github.com/feriaverde/catalog-backend/pkg/enums"
)

// Effective is the single authoritative price/weight state for a product at
// read time. Exactly one of the weight representations is meaningful: base
// and fallback pricing carry WeightGrams, variant pricing carries Amount+Unit.
type Effective struct {
	Price          decimal.Decimal
	Basis          enums.PriceBasis
	DiscountActive bool
	WeightGrams    int
	Amount         decimal.Decimal
	Unit           enums.VariantUnit
	Variant        *models.ProductVariant
}

// DefaultVariant returns the variant the storefront pre-selects: the active
// variant flagged as default, or else the first active variant ordered by
// sort_order ascending with id as the tie-break. Returns nil when no variant
// is active.
func DefaultVariant(variants []models.ProductVariant) *models.ProductVariant {
	var firstActive *models.ProductVariant
	for i := range variants {
		v := &variants[i]
		if !v.IsActive {
			continue
		}
		if v.IsDefault {
			return v
		}
		if firstActive == nil || lessBySortThenID(v, firstActive) {
			firstActive = v
		}
	}
	return firstActive
}

func lessBySortThenID(a, b *models.ProductVariant) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	return a.ID < b.ID
}

// SortVariants orders variants the way every read path presents them:
// sort_order ascending, then id ascending.
func SortVariants(variants []models.ProductVariant) {
	sort.SliceStable(variants, func(i, j int) bool {
		return lessBySortThenID(&variants[i], &variants[j])
	})
}

// ResolveEffective picks the price and weight to display or charge for a
// product. Base-field pricing is subject to the discount window; variant
// prices are never discounted, including the degraded fallback where a
// variant-priced product has no resolvable variant.
func ResolveEffective(product *models.Product, selected *models.ProductVariant, now time.Time) Effective {
	if !product.HasVariants {
		return Effective{
			Price:          FinalPrice(product.PriceEstimated, product.DiscountPct, product.DiscountUntil, now),
			Basis:          enums.PriceBasisBase,
			DiscountActive: IsDiscountActive(product.DiscountPct, product.DiscountUntil, now),
			WeightGrams:    product.WeightGrams,
		}
	}

	variant := selected
	if variant == nil {
		variant = DefaultVariant(product.Variants)
	}
	if variant == nil {
		price := product.PriceEstimated
		if price.IsNegative() {
			price = decimal.Zero
		}
		return Effective{
			Price:       price,
			Basis:       enums.PriceBasisFallback,
			WeightGrams: product.WeightGrams,
		}
	}

	price := variant.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	return Effective{
		Price:   price,
		Basis:   enums.PriceBasisVariant,
		Amount:  variant.Amount,
		Unit:    variant.Unit,
		Variant: variant,
	}
}
