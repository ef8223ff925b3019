package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/feriaverde/catalog-backend/api/responses"
	"github.com/feriaverde/catalog-backend/api/validators"
	productsvc "github.com/feriaverde/catalog-backend/internal/products"
	"github.com/feriaverde/catalog-backend/pkg/enums"
	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
	"github.com/feriaverde/catalog-backend/pkg/logger"
	"github.com/feriaverde/catalog-backend/pkg/pagination"
)

// AdminCreateProduct handles product creation on the admin surface.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AdminUpdateProduct replaces a product's full state, variants included.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// AdminRetireVariants turns off variant pricing for a product.
func AdminRetireVariants(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload retireVariantsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.RetireVariants(r.Context(), productID, payload.Version)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// AdminDeleteProduct removes a product and its variants.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

// AdminGetProduct returns one product with all of its variants.
func AdminGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// AdminListProducts pages through products on the admin surface.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
			Filters: filters,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type variantRequest struct {
	ID        *int64          `json:"id,omitempty"`
	Label     string          `json:"label" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Unit      string          `json:"unit" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	IsDefault bool            `json:"is_default"`
	IsActive  *bool           `json:"is_active,omitempty"`
	SortOrder int             `json:"sort_order"`
}

type productRequest struct {
	Name            string           `json:"name" validate:"required"`
	Description     *string          `json:"description,omitempty"`
	PriceEstimated  decimal.Decimal  `json:"price_estimated"`
	WeightGrams     int              `json:"weight_grams"`
	DiscountPercent int              `json:"discount_percent"`
	DiscountUntil   *time.Time       `json:"discount_until,omitempty"`
	CategoryID      *int64           `json:"category_id,omitempty"`
	BrandID         *int64           `json:"brand_id,omitempty"`
	ImageURL        *string          `json:"image_url,omitempty"`
	HasVariants     bool             `json:"has_variants"`
	Variants        []variantRequest `json:"variants,omitempty"`
}

type updateProductRequest struct {
	productRequest
	Version int `json:"version" validate:"required,min=1"`
}

type retireVariantsRequest struct {
	Version int `json:"version" validate:"required,min=1"`
}

const (
	maxNameLen   = 200
	maxLabelLen  = 120
	maxSearchLen = 100
)

func (r productRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	variants, err := parseVariantRequests(r.Variants)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}
	return productsvc.CreateProductInput{
		Name:            validators.SanitizeString(r.Name, maxNameLen),
		Description:     r.Description,
		PriceEstimated:  r.PriceEstimated,
		WeightGrams:     r.WeightGrams,
		DiscountPercent: r.DiscountPercent,
		DiscountUntil:   r.DiscountUntil,
		CategoryID:      r.CategoryID,
		BrandID:         r.BrandID,
		ImageURL:        r.ImageURL,
		HasVariants:     r.HasVariants,
		Variants:        variants,
	}, nil
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	variants, err := parseVariantRequests(r.Variants)
	if err != nil {
		return productsvc.UpdateProductInput{}, err
	}
	return productsvc.UpdateProductInput{
		Version:         r.Version,
		Name:            validators.SanitizeString(r.Name, maxNameLen),
		Description:     r.Description,
		PriceEstimated:  r.PriceEstimated,
		WeightGrams:     r.WeightGrams,
		DiscountPercent: r.DiscountPercent,
		DiscountUntil:   r.DiscountUntil,
		CategoryID:      r.CategoryID,
		BrandID:         r.BrandID,
		ImageURL:        r.ImageURL,
		HasVariants:     r.HasVariants,
		Variants:        variants,
	}, nil
}

func parseVariantRequests(requests []variantRequest) ([]productsvc.VariantInput, error) {
	variants := make([]productsvc.VariantInput, 0, len(requests))
	for _, req := range requests {
		unit, err := enums.ParseVariantUnit(strings.TrimSpace(req.Unit))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant unit")
		}
		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}
		variants = append(variants, productsvc.VariantInput{
			ID:        req.ID,
			Label:     validators.SanitizeString(req.Label, maxLabelLen),
			Amount:    req.Amount,
			Unit:      unit,
			Price:     req.Price,
			IsDefault: req.IsDefault,
			IsActive:  isActive,
			SortOrder: req.SortOrder,
		})
	}
	return variants, nil
}

func parseProductID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}

func parseListFilters(r *http.Request) (productsvc.ProductListFilters, error) {
	filters := productsvc.ProductListFilters{
		Query: validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid category_id").
				WithDetails(map[string]any{"field": "category_id"})
		}
		filters.CategoryID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("brand_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid brand_id").
				WithDetails(map[string]any{"field": "brand_id"})
		}
		filters.BrandID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("has_variants")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid has_variants").
				WithDetails(map[string]any{"field": "has_variants"})
		}
		filters.HasVariants = &value
	}
	return filters, nil
}
