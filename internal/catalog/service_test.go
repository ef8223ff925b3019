package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	product "github.com/feriaverde/catalog-backend/internal/products"
	"github.com/feriaverde/catalog-backend/pkg/db/models"
	"github.com/feriaverde/catalog-backend/pkg/enums"
	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
)

func setupCatalog(t *testing.T, cache *SnapshotCache, now time.Time) (Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.ProductVariant{}))

	svc, err := NewService(product.NewRepository(conn), cache, func() time.Time { return now })
	require.NoError(t, err)
	return svc, conn
}

func seedVariantProduct(t *testing.T, conn *gorm.DB) *models.Product {
	t.Helper()
	row := &models.Product{
		Slug:           "arroz-extra",
		Name:           "Arroz Extra",
		PriceEstimated: decimal.RequireFromString("4.00"),
		WeightGrams:    1000,
		HasVariants:    true,
		Version:        1,
	}
	require.NoError(t, conn.Create(row).Error)

	variants := []models.ProductVariant{
		{ProductID: row.ID, Label: "1 kg", Amount: decimal.NewFromInt(1), Unit: enums.VariantUnitKilogram, Price: decimal.RequireFromString("4.50"), IsDefault: true, IsActive: true, SortOrder: 0},
		{ProductID: row.ID, Label: "5 kg", Amount: decimal.NewFromInt(5), Unit: enums.VariantUnitKilogram, Price: decimal.RequireFromString("21.00"), IsActive: true, SortOrder: 1},
		{ProductID: row.ID, Label: "retired", Amount: decimal.NewFromInt(10), Unit: enums.VariantUnitKilogram, Price: decimal.RequireFromString("40.00"), SortOrder: 2},
	}
	require.NoError(t, conn.Create(&variants).Error)
	return row
}

func TestCatalogGetProductNotFound(t *testing.T) {
	svc, _ := setupCatalog(t, nil, time.Now())

	_, err := svc.GetProduct(context.Background(), "no-such-product", nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCatalogGetProductDefaultVariant(t *testing.T) {
	now := time.Now()
	svc, conn := setupCatalog(t, nil, now)
	seedVariantProduct(t, conn)

	view, err := svc.GetProduct(context.Background(), "arroz-extra", nil)
	require.NoError(t, err)

	require.Equal(t, string(enums.PriceBasisVariant), view.PriceBasis)
	require.True(t, view.Price.Equal(decimal.RequireFromString("4.50")))
	require.NotNil(t, view.SelectedVariantID)
	require.Equal(t, "kg", view.Unit)
	require.Nil(t, view.WeightGrams)

	// Only active variants are projected.
	require.Len(t, view.Variants, 2)
	for _, v := range view.Variants {
		require.NotEqual(t, "retired", v.Label)
	}
}

func TestCatalogGetProductExplicitVariant(t *testing.T) {
	now := time.Now()
	svc, conn := setupCatalog(t, nil, now)
	seeded := seedVariantProduct(t, conn)

	var fiveKilo models.ProductVariant
	require.NoError(t, conn.Where("product_id = ? AND label = ?", seeded.ID, "5 kg").First(&fiveKilo).Error)

	view, err := svc.GetProduct(context.Background(), "arroz-extra", &fiveKilo.ID)
	require.NoError(t, err)
	require.NotNil(t, view.SelectedVariantID)
	require.Equal(t, fiveKilo.ID, *view.SelectedVariantID)
	require.True(t, view.Price.Equal(decimal.RequireFromString("21.00")))
}

func TestCatalogGetProductRejectsInactiveVariant(t *testing.T) {
	now := time.Now()
	svc, conn := setupCatalog(t, nil, now)
	seeded := seedVariantProduct(t, conn)

	var retired models.ProductVariant
	require.NoError(t, conn.Where("product_id = ? AND label = ?", seeded.ID, "retired").First(&retired).Error)

	_, err := svc.GetProduct(context.Background(), "arroz-extra", &retired.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	unknown := int64(999999)
	_, err = svc.GetProduct(context.Background(), "arroz-extra", &unknown)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCatalogPricesDiscountAtServeTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(time.Minute)

	svc, conn := setupCatalog(t, nil, now)
	row := &models.Product{
		Slug:           "papa-amarilla",
		Name:           "Papa Amarilla",
		PriceEstimated: decimal.RequireFromString("10.00"),
		WeightGrams:    1000,
		DiscountPct:    50,
		DiscountUntil:  &until,
		Version:        1,
	}
	require.NoError(t, conn.Create(row).Error)

	view, err := svc.GetProduct(context.Background(), "papa-amarilla", nil)
	require.NoError(t, err)
	require.True(t, view.DiscountActive)
	require.True(t, view.Price.Equal(decimal.RequireFromString("5.00")))
	require.Equal(t, string(enums.PriceBasisBase), view.PriceBasis)
	require.NotNil(t, view.WeightGrams)
	require.Equal(t, 1000, *view.WeightGrams)
}

func TestCatalogExpiredDiscountNotApplied(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(-time.Minute)

	svc, conn := setupCatalog(t, nil, now)
	row := &models.Product{
		Slug:           "papa-amarilla",
		Name:           "Papa Amarilla",
		PriceEstimated: decimal.RequireFromString("10.00"),
		WeightGrams:    1000,
		DiscountPct:    50,
		DiscountUntil:  &until,
		Version:        1,
	}
	require.NoError(t, conn.Create(row).Error)

	view, err := svc.GetProduct(context.Background(), "papa-amarilla", nil)
	require.NoError(t, err)
	require.False(t, view.DiscountActive)
	require.True(t, view.Price.Equal(decimal.RequireFromString("10.00")))
	require.Zero(t, view.DiscountPercent)
	require.Nil(t, view.DiscountUntil)
}

func TestCatalogListProducts(t *testing.T) {
	now := time.Now()
	svc, conn := setupCatalog(t, nil, now)
	seedVariantProduct(t, conn)
	require.NoError(t, conn.Create(&models.Product{
		Slug:           "papa-amarilla",
		Name:           "Papa Amarilla",
		PriceEstimated: decimal.RequireFromString("5.00"),
		WeightGrams:    500,
		Version:        1,
		CreatedAt:      now.Add(time.Second),
	}).Error)

	view, err := svc.ListProducts(context.Background(), ListInput{})
	require.NoError(t, err)
	require.Len(t, view.Products, 2)

	for _, p := range view.Products {
		switch p.Slug {
		case "arroz-extra":
			require.Equal(t, string(enums.PriceBasisVariant), p.PriceBasis)
		case "papa-amarilla":
			require.Equal(t, string(enums.PriceBasisBase), p.PriceBasis)
		default:
			t.Fatalf("unexpected product %q", p.Slug)
		}
	}
}
