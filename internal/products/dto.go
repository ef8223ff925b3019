package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feriaverde/catalog-backend/pkg/db/models"
)

// ProductDTO represents the admin-facing product payload returned to clients.
type ProductDTO struct {
	ID              int64            `json:"id"`
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	PriceEstimated  decimal.Decimal  `json:"price_estimated"`
	WeightGrams     int              `json:"weight_grams"`
	DiscountPercent int              `json:"discount_percent"`
	DiscountUntil   *time.Time       `json:"discount_until,omitempty"`
	CategoryID      *int64           `json:"category_id,omitempty"`
	BrandID         *int64           `json:"brand_id,omitempty"`
	ImageURL        *string          `json:"image_url,omitempty"`
	HasVariants     bool             `json:"has_variants"`
	Version         int              `json:"version"`
	Variants        []VariantDTO     `json:"variants"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// VariantDTO is one sellable variant row in admin responses.
type VariantDTO struct {
	ID        int64           `json:"id"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	IsDefault bool            `json:"is_default"`
	IsActive  bool            `json:"is_active"`
	SortOrder int             `json:"sort_order"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductListDTO is one admin listing page.
type ProductListDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:              product.ID,
		Slug:            product.Slug,
		Name:            product.Name,
		Description:     product.Description,
		PriceEstimated:  product.PriceEstimated,
		WeightGrams:     product.WeightGrams,
		DiscountPercent: product.DiscountPct,
		DiscountUntil:   product.DiscountUntil,
		CategoryID:      product.CategoryID,
		BrandID:         product.BrandID,
		ImageURL:        product.ImageURL,
		HasVariants:     product.HasVariants,
		Version:         product.Version,
		Variants:        make([]VariantDTO, 0, len(product.Variants)),
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
	for _, v := range product.Variants {
		dto.Variants = append(dto.Variants, NewVariantDTO(&v))
	}
	return dto
}

// NewVariantDTO builds a variant DTO from the persisted row.
func NewVariantDTO(variant *models.ProductVariant) VariantDTO {
	return VariantDTO{
		ID:        variant.ID,
		Label:     variant.Label,
		Amount:    variant.Amount,
		Unit:      string(variant.Unit),
		Price:     variant.Price,
		IsDefault: variant.IsDefault,
		IsActive:  variant.IsActive,
		SortOrder: variant.SortOrder,
		CreatedAt: variant.CreatedAt,
		UpdatedAt: variant.UpdatedAt,
	}
}
