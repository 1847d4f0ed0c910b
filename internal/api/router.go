package api

import (
	"net/http"

	"github.com/example/tg-storefront/internal/api/middleware"
	"github.com/example/tg-storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds everything the router wires together
type RouterConfig struct {
	Handlers       *Handlers
	AuthHandlers   *AuthHandlers
	AdminHandlers  *AdminHandlers
	JWTService     *auth.JWTService
	Metrics        func(http.Handler) http.Handler
	MetricsHandler http.Handler
	WebDir         string
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics)
	}

	r.Get("/healthz", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/refresh", cfg.AuthHandlers.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionMiddleware(cfg.JWTService))

			r.Get("/me", cfg.AuthHandlers.Me)
			r.Post("/auth/telegram", cfg.AuthHandlers.TelegramAuth)
			r.Post("/auth/logout", cfg.AuthHandlers.Logout)
			r.Post("/auth/admin", cfg.AuthHandlers.AdminLogin)

			// Catalog
			r.Get("/catalog", h.withSession(h.GetCatalog))
			r.Post("/catalog/filter", h.withSession(h.SetFilter))
			r.Post("/catalog/more", h.withSession(h.LoadMore))
			r.Post("/catalog/reload", h.withSession(h.Reload))
			r.Get("/categories", h.withSession(h.GetCategories))
			r.Get("/products/{id}", h.GetProduct)
			r.Get("/images", h.Image)

			// Cart
			r.Get("/cart", h.withSession(h.GetCart))
			r.Delete("/cart", h.withSession(h.ClearCart))
			r.Post("/cart/items", h.withSession(h.AddToCart))
			r.Put("/cart/items/{productID}", h.withSession(h.UpdateCartItem))
			r.Delete("/cart/items/{productID}", h.withSession(h.RemoveFromCart))
			r.Get("/cart/validate", h.withSession(h.ValidateCart))

			// Checkout
			r.Post("/checkout", h.withSession(h.Checkout))
			r.Post("/checkout/validate", h.withSession(h.ValidateDraft))
			r.Get("/orders", h.withSession(h.GetOrders))
		})

		if cfg.AdminHandlers != nil {
			a := cfg.AdminHandlers
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AuthMiddleware(cfg.JWTService))
				r.Use(middleware.RequireRole(auth.RoleAdmin))

				r.Get("/categories", a.ListCategories)
				r.Post("/categories", a.CreateCategory)
				r.Put("/categories/{id}", a.UpdateCategory)
				r.Delete("/categories/{id}", a.DeleteCategory)
				r.Post("/categories/{id}/subcategories", a.CreateSubcategory)
				r.Delete("/subcategories/{id}", a.DeleteSubcategory)

				r.Get("/products", a.ListProducts)
				r.Post("/products", a.CreateProduct)
				r.Patch("/products/{id}", a.UpdateProduct)
				r.Delete("/products/{id}", a.DeleteProduct)

				r.Put("/orders/{id}/status", a.UpdateOrderStatus)
			})
		}
	})

	// Static files (Mini App)
	if cfg.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	}

	return r
}
