package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feriaverde/catalog-backend/internal/pricing"
	"github.com/feriaverde/catalog-backend/pkg/db"
	"github.com/feriaverde/catalog-backend/pkg/db/models"
	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
	"github.com/feriaverde/catalog-backend/pkg/metrics"
	"github.com/feriaverde/catalog-backend/pkg/pagination"
)

// Service exposes catalog product management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID int64, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID int64) error
	GetProduct(ctx context.Context, productID int64) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListDTO, error)
	RetireVariants(ctx context.Context, productID int64, version int) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	Description     *string
	PriceEstimated  decimal.Decimal
	WeightGrams     int
	DiscountPercent int
	DiscountUntil   *time.Time
	CategoryID      *int64
	BrandID         *int64
	ImageURL        *string
	HasVariants     bool
	Variants        []VariantInput
}

// UpdateProductInput is the full desired state of a product. Version must
// match the version the caller last read.
type UpdateProductInput struct {
	Version         int
	Name            string
	Description     *string
	PriceEstimated  decimal.Decimal
	WeightGrams     int
	DiscountPercent int
	DiscountUntil   *time.Time
	CategoryID      *int64
	BrandID         *int64
	ImageURL        *string
	HasVariants     bool
	Variants        []VariantInput
}

// ListProductsInput holds admin listing parameters.
type ListProductsInput struct {
	Pagination pagination.Params
	Filters    ProductListFilters
}

// SnapshotInvalidator drops cached storefront snapshots after a mutation.
type SnapshotInvalidator interface {
	InvalidateProduct(ctx context.Context, productID int64, slug string) error
}

// service implements the product service.
type service struct {
	repo        *Repository
	dbClient    *db.Client
	invalidator SnapshotInvalidator
	metrics     *metrics.CatalogMetrics
}

// NewService constructs a product service instance. The invalidator and
// metrics collaborators are optional.
func NewService(repo *Repository, dbClient *db.Client, invalidator SnapshotInvalidator, catalogMetrics *metrics.CatalogMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		invalidator: invalidator,
		metrics:     catalogMetrics,
	}, nil
}

// CreateProduct creates the product and its initial variant set.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	started := time.Now()
	dto, err := s.createProduct(ctx, input)
	s.recordMutation("create_product", started, err)
	return dto, err
}

func (s *service) createProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateBaseFields(input.Name, input.PriceEstimated, input.WeightGrams, input.HasVariants); err != nil {
		return nil, err
	}
	if input.HasVariants && len(input.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant-priced products need at least one variant")
	}

	percent, until := pricing.NormalizeDiscount(input.DiscountPercent, input.DiscountUntil)

	slug, err := uniqueSlug(ctx, s.repo, input.Name)
	if err != nil {
		return nil, err
	}

	var createdID int64
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row := &models.Product{
			Slug:           slug,
			Name:           strings.TrimSpace(input.Name),
			Description:    input.Description,
			PriceEstimated: input.PriceEstimated,
			WeightGrams:    input.WeightGrams,
			DiscountPct:    percent,
			DiscountUntil:  until,
			CategoryID:     input.CategoryID,
			BrandID:        input.BrandID,
			ImageURL:       input.ImageURL,
			HasVariants:    input.HasVariants,
			Version:        1,
		}
		created, err := txRepo.CreateProduct(ctx, row)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "slug already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = created.ID

		if input.HasVariants {
			if err := s.syncVariants(ctx, txRepo, created.ID, nil, input.Variants); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	detail, err := s.repo.FindDetail(ctx, createdID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(detail), nil
}

// UpdateProduct replaces the product's base fields and reconciles its variant
// set inside one transaction. Either everything lands or nothing does.
func (s *service) UpdateProduct(ctx context.Context, productID int64, input UpdateProductInput) (*ProductDTO, error) {
	started := time.Now()
	dto, err := s.updateProduct(ctx, productID, input)
	s.recordMutation("update_product", started, err)
	return dto, err
}

func (s *service) updateProduct(ctx context.Context, productID int64, input UpdateProductInput) (*ProductDTO, error) {
	if err := validateBaseFields(input.Name, input.PriceEstimated, input.WeightGrams, input.HasVariants); err != nil {
		return nil, err
	}
	if input.Version <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version is required")
	}
	if input.HasVariants && len(input.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant-priced products need at least one variant")
	}

	current, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	percent, until := pricing.NormalizeDiscount(input.DiscountPercent, input.DiscountUntil)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row := &models.Product{
			ID:             current.ID,
			Name:           strings.TrimSpace(input.Name),
			Description:    input.Description,
			PriceEstimated: input.PriceEstimated,
			WeightGrams:    input.WeightGrams,
			DiscountPct:    percent,
			DiscountUntil:  until,
			CategoryID:     input.CategoryID,
			BrandID:        input.BrandID,
			ImageURL:       input.ImageURL,
			HasVariants:    input.HasVariants,
		}
		if err := txRepo.UpdateProductVersioned(ctx, row, input.Version); err != nil {
			if pkgerrors.As(err) != nil {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}

		if input.HasVariants {
			persisted, err := txRepo.ListVariants(ctx, current.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variants")
			}
			return s.syncVariants(ctx, txRepo, current.ID, persisted, input.Variants)
		}

		// Turning variants off retires the set; rows stay for history.
		if err := txRepo.RetireAllVariants(ctx, current.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: retire variants")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	s.invalidate(ctx, current.ID, current.Slug)

	detail, err := s.repo.FindDetail(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(detail), nil
}

// RetireVariants turns off variant pricing for the product, deactivating
// every variant while keeping the rows.
func (s *service) RetireVariants(ctx context.Context, productID int64, version int) (*ProductDTO, error) {
	started := time.Now()
	dto, err := s.retireVariants(ctx, productID, version)
	s.recordMutation("retire_variants", started, err)
	return dto, err
}

func (s *service) retireVariants(ctx context.Context, productID int64, version int) (*ProductDTO, error) {
	if version <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version is required")
	}

	current, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !current.HasVariants {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not variant-priced")
	}
	if !current.PriceEstimated.IsPositive() || current.WeightGrams <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"product needs a positive base price and weight before retiring variants")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		row := *current
		row.HasVariants = false
		if err := txRepo.UpdateProductVersioned(ctx, &row, version); err != nil {
			if pkgerrors.As(err) != nil {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if err := txRepo.RetireAllVariants(ctx, current.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: retire variants")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire variants")
	}

	s.invalidate(ctx, current.ID, current.Slug)

	detail, err := s.repo.FindDetail(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(detail), nil
}

// DeleteProduct removes a product; variant rows cascade.
func (s *service) DeleteProduct(ctx context.Context, productID int64) error {
	started := time.Now()
	err := s.deleteProduct(ctx, productID)
	s.recordMutation("delete_product", started, err)
	return err
}

func (s *service) deleteProduct(ctx context.Context, productID int64) error {
	current, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	s.invalidate(ctx, current.ID, current.Slug)
	return nil
}

// GetProduct loads one product with its variants for the admin surface.
func (s *service) GetProduct(ctx context.Context, productID int64) (*ProductDTO, error) {
	detail, err := s.repo.FindDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(detail), nil
}

// ListProducts pages through products for the admin surface.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListDTO, error) {
	result, err := s.repo.ListSummaries(ctx, ListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	dto := &ProductListDTO{
		Products:   make([]ProductDTO, 0, len(result.Products)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Products {
		dto.Products = append(dto.Products, *NewProductDTO(&result.Products[i]))
	}
	return dto, nil
}

// syncVariants plans the reconciliation and applies it step by step,
// recording which steps had already landed when a storage error aborts the
// transaction.
func (s *service) syncVariants(ctx context.Context, txRepo *Repository, productID int64, persisted []models.ProductVariant, incoming []VariantInput) error {
	plan, err := planVariantSync(productID, persisted, incoming)
	if err != nil {
		return err
	}

	applied := make([]SyncStep, 0, 3)
	fail := func(step SyncStep, err error) error {
		s.metrics.IncSyncFailure(string(step))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sync variants").
			WithDetails(map[string]any{"step": string(step), "applied": appliedSteps(applied)})
	}

	if err := txRepo.DeleteVariants(ctx, productID, plan.deleteIDs); err != nil {
		return fail(SyncStepDelete, err)
	}
	applied = append(applied, SyncStepDelete)

	for _, row := range plan.updates() {
		if err := txRepo.UpdateVariant(ctx, &row); err != nil {
			return fail(SyncStepUpdate, err)
		}
	}
	applied = append(applied, SyncStepUpdate)

	if _, err := txRepo.CreateVariants(ctx, plan.inserts()); err != nil {
		return fail(SyncStepInsert, err)
	}
	return nil
}

func appliedSteps(steps []SyncStep) []string {
	out := make([]string, 0, len(steps))
	for _, step := range steps {
		out = append(out, string(step))
	}
	return out
}

func (s *service) loadProduct(ctx context.Context, productID int64) (*models.Product, error) {
	current, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return current, nil
}

func (s *service) invalidate(ctx context.Context, productID int64, slug string) {
	if s.invalidator == nil {
		return
	}
	// Best effort: a stale snapshot expires on its own TTL.
	_ = s.invalidator.InvalidateProduct(ctx, productID, slug)
}

func (s *service) recordMutation(operation string, started time.Time, err error) {
	s.metrics.ObserveDuration(operation, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(operation)
		return
	}
	s.metrics.IncSuccess(operation)
}

func validateBaseFields(name string, priceEstimated decimal.Decimal, weightGrams int, hasVariants bool) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !hasVariants {
		if !priceEstimated.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price_estimated must be positive when the product has no variants")
		}
		if weightGrams <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "weight_grams must be positive when the product has no variants")
		}
	}
	if priceEstimated.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_estimated cannot be negative")
	}
	if weightGrams < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight_grams cannot be negative")
	}
	return nil
}
