package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Session            SessionOptions
}

type Handlers struct {
	Products     *ProductHandler
	Carts        *CartHandler
	Checkout     *CheckoutHandler
	CustomOrders *CustomOrderHandler
	Admin        *AdminHandler
	AdminAuth    TokenVerifier
}

func NewRouter(cfg RouterConfig, h Handlers, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(BodyLimitMiddleware(cfg.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/featured", h.Products.Featured)
			r.Get("/{id}", h.Products.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Session))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Carts.GetCart)
				r.Delete("/", h.Carts.ClearCart)
				r.Post("/items", h.Carts.AddItem)
				r.Put("/items/{product_id}", h.Carts.UpdateQuantity)
				r.Delete("/items/{product_id}", h.Carts.RemoveItem)
			})
			r.Delete("/session", h.Carts.EndSession)

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", h.Checkout.Summary)
				r.Post("/", h.Checkout.Submit)
				r.Get("/{order_id}", h.Checkout.Get)
				r.Post("/{order_id}/payment", h.Checkout.ConfirmPayment)
				r.Post("/{order_id}/dismiss", h.Checkout.Dismiss)
			})
		})

		r.Post("/custom-orders", h.CustomOrders.Submit)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.Login)

			r.Group(func(r chi.Router) {
				r.Use(AdminAuthMiddleware(h.AdminAuth))

				r.Get("/products", h.Admin.ListProducts)
				r.Post("/products", h.Admin.CreateProduct)
				r.Put("/products/{id}", h.Admin.UpdateProduct)
				r.Delete("/products/{id}", h.Admin.DeleteProduct)
				r.Get("/orders", h.Admin.ListOrders)
				r.Get("/custom-orders", h.Admin.ListCustomOrders)
			})
		})
	})

	return r
}
