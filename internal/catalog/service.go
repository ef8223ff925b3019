package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	product "github.com/feriaverde/catalog-backend/internal/products"
	"github.com/feriaverde/catalog-backend/pkg/db/models"
	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
	"github.com/feriaverde/catalog-backend/pkg/pagination"
)

// Service exposes the public storefront read operations.
type Service interface {
	GetProduct(ctx context.Context, slug string, variantID *int64) (*ProductView, error)
	ListProducts(ctx context.Context, input ListInput) (*ProductListView, error)
}

// ListInput holds storefront listing parameters.
type ListInput struct {
	Pagination pagination.Params
	Filters    product.ProductListFilters
}

type service struct {
	repo  *product.Repository
	cache *SnapshotCache
	now   func() time.Time
}

// NewService constructs the storefront service. The cache is optional; nil
// disables snapshot caching. nowFn defaults to time.Now.
func NewService(repo *product.Repository, cache *SnapshotCache, nowFn func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &service{repo: repo, cache: cache, now: nowFn}, nil
}

// GetProduct serves one product by slug, optionally pre-selecting a variant.
// The price is resolved at serve time, so a cached snapshot whose discount
// window lapsed still prices correctly.
func (s *service) GetProduct(ctx context.Context, slug string, variantID *int64) (*ProductView, error) {
	snapshot := s.cache.GetBySlug(ctx, slug)
	if snapshot == nil {
		loaded, err := s.repo.FindDetailBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		snapshot = loaded
		s.cache.Store(ctx, snapshot)
	}

	var selected *models.ProductVariant
	if variantID != nil {
		selected = findActiveVariant(snapshot.Variants, *variantID)
		if selected == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
	}

	return newProductView(snapshot, selected, s.now()), nil
}

// ListProducts pages through the catalog, pricing every row at serve time.
func (s *service) ListProducts(ctx context.Context, input ListInput) (*ProductListView, error) {
	result, err := s.repo.ListSummaries(ctx, product.ListQuery{
		Pagination: input.Pagination,
		Filters:    input.Filters,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	now := s.now()
	view := &ProductListView{
		Products:   make([]ProductView, 0, len(result.Products)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Products {
		view.Products = append(view.Products, *newProductView(&result.Products[i], nil, now))
	}
	return view, nil
}

func findActiveVariant(variants []models.ProductVariant, id int64) *models.ProductVariant {
	for i := range variants {
		if variants[i].ID == id && variants[i].IsActive {
			return &variants[i]
		}
	}
	return nil
}
