package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feriaverde/catalog-backend/pkg/enums"
)

// ProductVariant is a purchasable size/quantity option owned by exactly one
// product. Variants are soft-retired (IsActive=false) rather than deleted
// when the owning product leaves variant mode.
type ProductVariant struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID int64             `gorm:"column:product_id;not null;index" json:"product_id"`
	Label     string            `gorm:"column:label;not null" json:"label"`
	Amount    decimal.Decimal   `gorm:"column:amount;type:numeric(10,3);not null" json:"amount"`
	Unit      enums.VariantUnit `gorm:"column:unit;type:text;not null" json:"unit"`
	Price     decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	IsDefault bool              `gorm:"column:is_default;not null;default:false" json:"is_default"`
	IsActive  bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	SortOrder int               `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
