package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medsupply/cotizaciones-api/api/controllers"
	"github.com/medsupply/cotizaciones-api/api/middleware"
	"github.com/medsupply/cotizaciones-api/internal/auth"
	"github.com/medsupply/cotizaciones-api/internal/catalog"
	"github.com/medsupply/cotizaciones-api/internal/clients"
	"github.com/medsupply/cotizaciones-api/internal/quotations"
	"github.com/medsupply/cotizaciones-api/internal/reports"
	"github.com/medsupply/cotizaciones-api/internal/shipments"
	"github.com/medsupply/cotizaciones-api/internal/users"
	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/enums"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/metrics"
	pkgredis "github.com/medsupply/cotizaciones-api/pkg/redis"
)

// Deps is everything the router needs. RateLimitStore, IdempotencyStore,
// Metrics, MetricsHandler and Renderer are optional.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger
	DB     controllers.Pinger

	RateLimitStore   middleware.RateLimitStore
	IdempotencyStore pkgredis.IdempotencyStore
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler

	Auth       auth.Service
	Users      users.Service
	Clients    clients.Service
	Products   catalog.ProductService
	Categories catalog.CategoryService
	Quotations quotations.Service
	Renderer   controllers.QuotationRenderer
	Shipments  shipments.Service
	Reports    reports.Service

	StartedAt time.Time
}

// NewRouter mounts every resource under its Spanish root path.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	if d.StartedAt.IsZero() {
		d.StartedAt = time.Now()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.ErrorStacks(!cfg.App.IsProd()))

	r.NotFound(controllers.NotFound())
	r.MethodNotAllowed(controllers.MethodNotAllowed())

	r.Get("/", controllers.APIInfo(cfg))
	r.Get("/health", controllers.Health(d.DB, d.StartedAt, logg))
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	authenticated := middleware.Auth(cfg.JWT, logg)
	adminOnly := middleware.RequireRole(logg, enums.RoleAdmin.String())
	idempotent := middleware.Idempotency(d.IdempotencyStore, cfg.Idempotency.TTL, logg)
	loginLimit := middleware.AuthRateLimit(
		middleware.NewAuthRateLimitPolicy("login", cfg.AuthRateLimit.LoginWindow, cfg.AuthRateLimit.LoginIPLimit, cfg.AuthRateLimit.LoginUsernameLimit),
		d.RateLimitStore,
		logg,
	)

	r.Route("/usuarios", func(r chi.Router) {
		r.With(loginLimit).Post("/login", controllers.AuthLogin(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/perfil", controllers.UserProfile(d.Users, logg))
			r.Get("/roles/listar", controllers.UserRoles(d.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.UserList(d.Users, logg))
				r.Post("/", controllers.UserCreate(d.Users, logg))
				r.Get("/{id}", controllers.UserGet(d.Users, logg))
				r.Put("/{id}", controllers.UserUpdate(d.Users, logg))
				r.Delete("/{id}", controllers.UserDelete(d.Users, logg))
			})
		})
	})

	r.Route("/clientes", func(r chi.Router) {
		r.Post("/validar-rut", controllers.ClientCheckRUT(d.Clients, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", controllers.ClientList(d.Clients, logg))
			r.Get("/{id}", controllers.ClientGet(d.Clients, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", controllers.ClientCreate(d.Clients, logg))
				r.Put("/{id}", controllers.ClientUpdate(d.Clients, logg))
				r.Delete("/{id}", controllers.ClientDelete(d.Clients, logg))
			})
		})
	})

	r.Route("/productos", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.ProductList(d.Products, logg))
		r.Get("/codigo/{codigo}", controllers.ProductGetByCode(d.Products, logg))
		r.Get("/{id}", controllers.ProductGet(d.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", controllers.ProductCreate(d.Products, logg))
			r.Put("/{id}", controllers.ProductUpdate(d.Products, logg))
			r.Delete("/{id}", controllers.ProductDelete(d.Products, logg))
			r.Patch("/{id}/stock", controllers.ProductSetStock(d.Products, logg))
			r.Patch("/{id}/activar", controllers.ProductSetActive(d.Products, logg))
		})
	})

	r.Route("/categorias", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.CategoryList(d.Categories, logg))
		r.Get("/{id}", controllers.CategoryGet(d.Categories, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", controllers.CategoryCreate(d.Categories, logg))
			r.Put("/{id}", controllers.CategoryUpdate(d.Categories, logg))
			r.Delete("/{id}", controllers.CategoryDelete(d.Categories, logg))
		})
	})

	r.Route("/cotizaciones", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.QuotationList(d.Quotations, logg))
		r.With(idempotent).Post("/", controllers.QuotationCreate(d.Quotations, logg))
		r.Get("/estadisticas/resumen", controllers.QuotationStats(d.Quotations, logg))
		r.Get("/{id}", controllers.QuotationGet(d.Quotations, logg))
		r.Get("/{id}/pdf", controllers.QuotationDocument(d.Quotations, d.Renderer, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Put("/{id}", controllers.QuotationUpdate(d.Quotations, logg))
			r.Delete("/{id}", controllers.QuotationDelete(d.Quotations, logg))
		})
	})

	r.Route("/despachos", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.ShipmentList(d.Shipments, logg))
		r.Get("/estadisticas/resumen", controllers.ShipmentStats(d.Shipments, logg))
		r.Get("/cotizacion/{id}", controllers.ShipmentGetByQuotation(d.Shipments, logg))
		r.Get("/{id}", controllers.ShipmentGet(d.Shipments, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.With(idempotent).Post("/", controllers.ShipmentCreate(d.Shipments, logg))
			r.Put("/{id}", controllers.ShipmentUpdate(d.Shipments, logg))
			r.Delete("/{id}", controllers.ShipmentDelete(d.Shipments, logg))
		})
	})

	r.Route("/reportes", func(r chi.Router) {
		r.Use(authenticated, adminOnly)
		r.Get("/", controllers.ReportIndex())
		r.Get("/ventas", controllers.ReportSales(d.Reports, logg))
		r.Get("/productos-mas-vendidos", controllers.ReportTopProducts(d.Reports, logg))
		r.Get("/clientes-top", controllers.ReportTopClients(d.Reports, logg))
		r.Get("/cotizaciones-por-estado", controllers.ReportQuotationsByState(d.Reports, logg))
		r.Get("/despachos-pendientes", controllers.ReportPendingShipments(d.Reports, logg))
		r.Get("/dashboard", controllers.ReportDashboard(d.Reports, logg))
	})

	return r
}
