package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the canonical catalog listing. Base pricing fields
// (PriceEstimated, WeightGrams) are authoritative only while HasVariants is
// false; once variants exist they become inert placeholders kept for the
// degraded read fallback.
type Product struct {
	ID             int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Slug           string           `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Name           string           `gorm:"column:name;not null" json:"name"`
	Description    *string          `gorm:"column:description" json:"description,omitempty"`
	PriceEstimated decimal.Decimal  `gorm:"column:price_estimated;type:numeric(12,2);not null" json:"price_estimated"`
	WeightGrams    int              `gorm:"column:weight_grams;not null;default:0" json:"weight_grams"`
	DiscountPct    int              `gorm:"column:discount_percent;not null;default:0" json:"discount_percent"`
	DiscountUntil  *time.Time       `gorm:"column:discount_until" json:"discount_until,omitempty"`
	CategoryID     *int64           `gorm:"column:category_id" json:"category_id,omitempty"`
	BrandID        *int64           `gorm:"column:brand_id" json:"brand_id,omitempty"`
	ImageURL       *string          `gorm:"column:image_url" json:"image_url,omitempty"`
	HasVariants    bool             `gorm:"column:has_variants;not null;default:false" json:"has_variants"`
	Version        int              `gorm:"column:version;not null;default:1" json:"version"`
	Variants       []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
