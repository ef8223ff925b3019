package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/feriaverde/catalog-backend/internal/catalog"
	products "github.com/feriaverde/catalog-backend/internal/products"
	pkgAuth "github.com/feriaverde/catalog-backend/pkg/auth"
	"github.com/feriaverde/catalog-backend/pkg/config"
	"github.com/feriaverde/catalog-backend/pkg/enums"
	"github.com/feriaverde/catalog-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, input products.CreateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) UpdateProduct(ctx context.Context, productID int64, input products.UpdateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) DeleteProduct(ctx context.Context, productID int64) error {
	return nil
}

func (stubProductService) GetProduct(ctx context.Context, productID int64) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: productID}, nil
}

func (stubProductService) ListProducts(ctx context.Context, input products.ListProductsInput) (*products.ProductListDTO, error) {
	return &products.ProductListDTO{}, nil
}

func (stubProductService) RetireVariants(ctx context.Context, productID int64, version int) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: productID}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) GetProduct(ctx context.Context, slug string, variantID *int64) (*catalog.ProductView, error) {
	return &catalog.ProductView{Slug: slug}, nil
}

func (stubCatalogService) ListProducts(ctx context.Context, input catalog.ListInput) (*catalog.ProductListView, error) {
	return &catalog.ProductListView{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		nil,
		stubProductService{},
		stubCatalogService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestCatalogRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	list := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, list)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public listing got %d", resp.Code)
	}

	detail := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/papa-amarilla", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, detail)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public detail got %d", resp.Code)
	}
}

func TestAdminGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	editor := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	editor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleEditor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, editor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminProductDetailRequiresNumericID(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products/not-a-number", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id got %d", resp.Code)
	}
}

func TestCatalogRejectsInvalidVariantQuery(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/papa-amarilla?variant_id=abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid variant_id got %d", resp.Code)
	}
}
