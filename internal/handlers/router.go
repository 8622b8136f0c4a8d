package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/threadline/storefront/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers

	catalog   RouteRegistrar
	customize RouteRegistrar
	cart      RouteRegistrar
	auth      RouteRegistrar
	admin     RouteRegistrar
	settings  RouteRegistrar
	content   RouteRegistrar

	adminMiddlewares []func(http.Handler) http.Handler
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix = "/api/v1"
	defaultTimeout   = 60 * time.Second
)

// WithMiddleware appends shared middleware applied to every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealth installs the health handlers.
func WithHealth(h *HealthHandlers) Option {
	return func(cfg *routerConfig) { cfg.health = h }
}

// WithCatalogRoutes mounts the catalog group.
func WithCatalogRoutes(registrar RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.catalog = registrar }
}

// WithCustomizeRoutes mounts the customization group.
func WithCustomizeRoutes(registrar RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.customize = registrar }
}

// WithCartRoutes mounts the cart group.
func WithCartRoutes(registrar RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.cart = registrar }
}

// WithAuthRoutes mounts the auth group.
func WithAuthRoutes(registrar RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.auth = registrar }
}

// WithAdminRoutes mounts the seller panel group with its gate middleware.
func WithAdminRoutes(registrar RouteRegistrar, mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.admin = registrar
		cfg.adminMiddlewares = mw
	}
}

// WithSettingsRoutes mounts the settings group.
func WithSettingsRoutes(registrar RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.settings = registrar }
}

// WithContentRoutes mounts the static content group.
func WithContentRoutes(registrar RouteRegistrar) Option {
	return func(cfg *routerConfig) { cfg.content = registrar }
}

// NewRouter constructs the chi router with shared middleware and the expected
// route groups.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	r.Route(cfg.basePath, func(api chi.Router) {
		mount := func(path string, registrar RouteRegistrar, name string, groupMW []func(http.Handler) http.Handler) {
			api.Route(path, func(group chi.Router) {
				for _, mw := range groupMW {
					if mw != nil {
						group.Use(mw)
					}
				}
				if registrar != nil {
					registrar(group)
					return
				}
				registerNotImplemented(group, name)
			})
		}

		mount("/catalog", cfg.catalog, "catalog", nil)
		mount("/customize", cfg.customize, "customize", nil)
		mount("/cart", cfg.cart, "cart", nil)
		mount("/auth", cfg.auth, "auth", nil)
		mount("/admin", cfg.admin, "admin", cfg.adminMiddlewares)
		mount("/settings", cfg.settings, "settings", nil)
		mount("/content", cfg.content, "content", nil)
	})

	return r
}

func registerNotImplemented(r chi.Router, name string) {
	r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes are not configured", name), http.StatusNotImplemented))
	})
}
