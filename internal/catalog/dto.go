package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feriaverde/catalog-backend/internal/pricing"
	"github.com/feriaverde/catalog-backend/pkg/db/models"
)

// ProductView is the storefront payload: persisted fields plus the resolved
// price and weight for the requested instant.
type ProductView struct {
	ID          int64   `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	BrandID     *int64  `json:"brand_id,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	HasVariants bool    `json:"has_variants"`

	Price           decimal.Decimal `json:"price"`
	PriceBasis      string          `json:"price_basis"`
	DiscountActive  bool            `json:"discount_active"`
	DiscountPercent int             `json:"discount_percent,omitempty"`
	DiscountUntil   *time.Time      `json:"discount_until,omitempty"`

	WeightGrams *int             `json:"weight_grams,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Unit        string           `json:"unit,omitempty"`

	SelectedVariantID *int64        `json:"selected_variant_id,omitempty"`
	Variants          []VariantView `json:"variants"`
}

// VariantView is one purchasable option on the storefront.
type VariantView struct {
	ID        int64           `json:"id"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	IsDefault bool            `json:"is_default"`
	SortOrder int             `json:"sort_order"`
}

// ProductListView is one storefront listing page.
type ProductListView struct {
	Products   []ProductView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// newProductView resolves the product's effective price/weight at the given
// instant and projects only active variants.
func newProductView(product *models.Product, selected *models.ProductVariant, now time.Time) *ProductView {
	effective := pricing.ResolveEffective(product, selected, now)

	view := &ProductView{
		ID:             product.ID,
		Slug:           product.Slug,
		Name:           product.Name,
		Description:    product.Description,
		CategoryID:     product.CategoryID,
		BrandID:        product.BrandID,
		ImageURL:       product.ImageURL,
		HasVariants:    product.HasVariants,
		Price:          effective.Price,
		PriceBasis:     string(effective.Basis),
		DiscountActive: effective.DiscountActive,
		Variants:       make([]VariantView, 0, len(product.Variants)),
	}

	if effective.DiscountActive {
		view.DiscountPercent = product.DiscountPct
		view.DiscountUntil = product.DiscountUntil
	}

	if effective.Variant != nil {
		id := effective.Variant.ID
		view.SelectedVariantID = &id
		amount := effective.Amount
		view.Amount = &amount
		view.Unit = string(effective.Unit)
	} else {
		weight := effective.WeightGrams
		view.WeightGrams = &weight
	}

	for _, v := range product.Variants {
		if !v.IsActive {
			continue
		}
		view.Variants = append(view.Variants, VariantView{
			ID:        v.ID,
			Label:     v.Label,
			Amount:    v.Amount,
			Unit:      string(v.Unit),
			Price:     v.Price,
			IsDefault: v.IsDefault,
			SortOrder: v.SortOrder,
		})
	}
	return view
}
