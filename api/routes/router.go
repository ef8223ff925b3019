package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feriaverde/catalog-backend/api/controllers"
	"github.com/feriaverde/catalog-backend/api/middleware"
	"github.com/feriaverde/catalog-backend/internal/catalog"
	products "github.com/feriaverde/catalog-backend/internal/products"
	"github.com/feriaverde/catalog-backend/pkg/config"
	"github.com/feriaverde/catalog-backend/pkg/db"
	"github.com/feriaverde/catalog-backend/pkg/logger"
	"github.com/feriaverde/catalog-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	productService products.Service,
	catalogService catalog.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.CatalogListProducts(catalogService, logg))
		r.Get("/products/{slug}", controllers.CatalogGetProduct(catalogService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(productService, logg))
			r.Post("/", controllers.AdminCreateProduct(productService, logg))
			r.Get("/{productId}", controllers.AdminGetProduct(productService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(productService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(productService, logg))
			r.Post("/{productId}/variants/retire", controllers.AdminRetireVariants(productService, logg))
		})
	})

	return r
}
