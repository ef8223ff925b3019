package product

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/feriaverde/catalog-backend/pkg/db/models"
	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
	"github.com/feriaverde/catalog-backend/pkg/pagination"
)

// Repository wires together product and variant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetail fetches a product with its variants in display order.
func (r *Repository) FindDetail(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetailBySlug fetches a product with its variants by storefront slug.
func (r *Repository) FindDetailBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&product, "slug = ?", slug).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SlugExists reports whether any product already claims the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("slug = ?", slug).
		Count(&count).
		Error
	return count > 0, err
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProductVersioned writes the product's base fields guarded by its
// version column. The write only lands when the stored version still matches
// the one the caller read; a zero-row update means another writer got there
// first and surfaces as a conflict.
func (r *Repository) UpdateProductVersioned(ctx context.Context, product *models.Product, expectedVersion int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND version = ?", product.ID, expectedVersion).
		Updates(map[string]any{
			"name":             product.Name,
			"description":      product.Description,
			"price_estimated":  product.PriceEstimated,
			"weight_grams":     product.WeightGrams,
			"discount_percent": product.DiscountPct,
			"discount_until":   product.DiscountUntil,
			"category_id":      product.CategoryID,
			"brand_id":         product.BrandID,
			"image_url":        product.ImageURL,
			"has_variants":     product.HasVariants,
			"version":          expectedVersion + 1,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product was modified concurrently; re-read and retry")
	}
	product.Version = expectedVersion + 1
	return nil
}

// DeleteProduct removes a product by ID; variant rows cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListVariants returns all variant rows for the product in display order.
func (r *Repository) ListVariants(ctx context.Context, productID int64) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC, id ASC").
		Find(&rows).
		Error
	return rows, err
}

// DeleteVariants removes the given variant rows.
func (r *Repository) DeleteVariants(ctx context.Context, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id = ? AND id IN ?", productID, ids).
		Delete(&models.ProductVariant{}).
		Error
}

// UpdateVariant overwrites the mutable columns of one persisted variant.
func (r *Repository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND product_id = ?", variant.ID, variant.ProductID).
		Updates(map[string]any{
			"label":      variant.Label,
			"amount":     variant.Amount,
			"unit":       variant.Unit,
			"price":      variant.Price,
			"is_default": variant.IsDefault,
			"is_active":  variant.IsActive,
			"sort_order": variant.SortOrder,
			"updated_at": time.Now().UTC(),
		}).
		Error
}

// CreateVariants inserts the new variant rows, filling in generated IDs.
func (r *Repository) CreateVariants(ctx context.Context, variants []models.ProductVariant) ([]models.ProductVariant, error) {
	if len(variants) == 0 {
		return variants, nil
	}
	if err := r.db.WithContext(ctx).Create(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// RetireAllVariants flips every variant of the product inactive and clears
// the default flag, preserving the rows for history.
func (r *Repository) RetireAllVariants(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{
			"is_active":  false,
			"is_default": false,
			"updated_at": time.Now().UTC(),
		}).
		Error
}

// ProductListFilters narrows the catalog listing.
type ProductListFilters struct {
	CategoryID  *int64
	BrandID     *int64
	HasVariants *bool
	Query       string
}

// ListQuery bundles the listing parameters shared by the admin and
// storefront read paths.
type ListQuery struct {
	Pagination pagination.Params
	Filters    ProductListFilters
}

// ProductListResult is one page of summaries plus the next-page cursor.
type ProductListResult struct {
	Products   []models.Product
	NextCursor string
}

// ListSummaries pages through products newest-first with a keyset cursor.
func (r *Repository) ListSummaries(ctx context.Context, query ListQuery) (*ProductListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})

	filter := query.Filters
	if filter.CategoryID != nil {
		qb = qb.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.BrandID != nil {
		qb = qb.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.HasVariants != nil {
		qb = qb.Where("has_variants = ?", *filter.HasVariants)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(slug) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ProductListResult{
		Products:   rows,
		NextCursor: nextCursor,
	}, nil
}
