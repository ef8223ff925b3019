package product

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feriaverde/catalog-backend/pkg/db/models"
	"github.com/feriaverde/catalog-backend/pkg/enums"
	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
	"github.com/feriaverde/catalog-backend/pkg/pagination"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.ProductVariant{}))
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, slug string, createdAt time.Time) *models.Product {
	t.Helper()
	row := &models.Product{
		Slug:           slug,
		Name:           slug,
		PriceEstimated: decimal.RequireFromString("9.90"),
		WeightGrams:    500,
		Version:        1,
		CreatedAt:      createdAt,
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func seedVariant(t *testing.T, conn *gorm.DB, productID int64, label string, sortOrder int, isDefault bool) *models.ProductVariant {
	t.Helper()
	row := &models.ProductVariant{
		ProductID: productID,
		Label:     label,
		Amount:    decimal.NewFromInt(500),
		Unit:      enums.VariantUnitGram,
		Price:     decimal.RequireFromString("4.50"),
		IsDefault: isDefault,
		IsActive:  true,
		SortOrder: sortOrder,
	}
	require.NoError(t, conn.Create(row).Error)
	return row
}

func TestRepositoryFindDetailOrdersVariants(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	p := seedProduct(t, conn, "papa-amarilla", time.Now())
	seedVariant(t, conn, p.ID, "second", 1, false)
	seedVariant(t, conn, p.ID, "first", 0, true)

	detail, err := repo.FindDetail(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Variants, 2)
	require.Equal(t, "first", detail.Variants[0].Label)
	require.Equal(t, "second", detail.Variants[1].Label)

	bySlug, err := repo.FindDetailBySlug(ctx, "papa-amarilla")
	require.NoError(t, err)
	require.Equal(t, p.ID, bySlug.ID)
}

func TestRepositorySlugExists(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedProduct(t, conn, "papa-amarilla", time.Now())

	exists, err := repo.SlugExists(ctx, "papa-amarilla")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.SlugExists(ctx, "papa-blanca")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRepositoryUpdateProductVersioned(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	p := seedProduct(t, conn, "papa-amarilla", time.Now())

	p.Name = "Papa amarilla premium"
	require.NoError(t, repo.UpdateProductVersioned(ctx, p, 1))
	require.Equal(t, 2, p.Version)

	reloaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Papa amarilla premium", reloaded.Name)
	require.Equal(t, 2, reloaded.Version)

	// Stale writer loses.
	err = repo.UpdateProductVersioned(ctx, p, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRepositoryDeleteProduct(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	p := seedProduct(t, conn, "papa-amarilla", time.Now())
	require.NoError(t, repo.DeleteProduct(ctx, p.ID))

	_, err := repo.FindByID(ctx, p.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.DeleteProduct(ctx, p.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryVariantWrites(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	p := seedProduct(t, conn, "papa-amarilla", time.Now())
	a := seedVariant(t, conn, p.ID, "a", 0, true)
	b := seedVariant(t, conn, p.ID, "b", 1, false)

	a.Label = "a renamed"
	a.Price = decimal.RequireFromString("5.00")
	require.NoError(t, repo.UpdateVariant(ctx, a))

	created, err := repo.CreateVariants(ctx, []models.ProductVariant{{
		ProductID: p.ID,
		Label:     "c",
		Amount:    decimal.NewFromInt(1),
		Unit:      enums.VariantUnitKilogram,
		Price:     decimal.RequireFromString("8.00"),
		IsActive:  true,
		SortOrder: 2,
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.NotZero(t, created[0].ID)

	require.NoError(t, repo.DeleteVariants(ctx, p.ID, []int64{b.ID}))

	rows, err := repo.ListVariants(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "a renamed", rows[0].Label)
	require.Equal(t, "c", rows[1].Label)

	require.NoError(t, repo.RetireAllVariants(ctx, p.ID))
	rows, err = repo.ListVariants(ctx, p.ID)
	require.NoError(t, err)
	for _, row := range rows {
		require.False(t, row.IsActive)
		require.False(t, row.IsDefault)
	}
}

func TestRepositoryListSummariesPaginates(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedProduct(t, conn, fmt.Sprintf("product-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListSummaries(ctx, ListQuery{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)
	require.Equal(t, "product-4", first.Products[0].Slug)
	require.Equal(t, "product-3", first.Products[1].Slug)

	second, err := repo.ListSummaries(ctx, ListQuery{Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)
	require.Equal(t, "product-2", second.Products[0].Slug)
	require.Equal(t, "product-1", second.Products[1].Slug)

	third, err := repo.ListSummaries(ctx, ListQuery{Pagination: pagination.Params{Limit: 2, Cursor: second.NextCursor}})
	require.NoError(t, err)
	require.Len(t, third.Products, 1)
	require.Empty(t, third.NextCursor)
}

func TestRepositoryListSummariesFilters(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	now := time.Now()
	catA := int64(10)
	withCat := seedProduct(t, conn, "aji-limo", now)
	require.NoError(t, conn.Model(withCat).Update("category_id", catA).Error)
	variantPriced := seedProduct(t, conn, "papa-amarilla", now.Add(time.Second))
	require.NoError(t, conn.Model(variantPriced).Update("has_variants", true).Error)
	seedProduct(t, conn, "cebolla-roja", now.Add(2*time.Second))

	byCat, err := repo.ListSummaries(ctx, ListQuery{Filters: ProductListFilters{CategoryID: &catA}})
	require.NoError(t, err)
	require.Len(t, byCat.Products, 1)
	require.Equal(t, "aji-limo", byCat.Products[0].Slug)

	hasVariants := true
	byMode, err := repo.ListSummaries(ctx, ListQuery{Filters: ProductListFilters{HasVariants: &hasVariants}})
	require.NoError(t, err)
	require.Len(t, byMode.Products, 1)
	require.Equal(t, "papa-amarilla", byMode.Products[0].Slug)

	bySearch, err := repo.ListSummaries(ctx, ListQuery{Filters: ProductListFilters{Query: "Cebolla"}})
	require.NoError(t, err)
	require.Len(t, bySearch.Products, 1)
	require.Equal(t, "cebolla-roja", bySearch.Products[0].Slug)

	byInvalidCursor, err := repo.ListSummaries(ctx, ListQuery{Pagination: pagination.Params{Cursor: "@@not-base64@@"}})
	require.Nil(t, byInvalidCursor)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
