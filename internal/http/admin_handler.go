package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
	customorder "github.com/bakehouse/storefront/internal/customorder/domain"
	orders "github.com/bakehouse/storefront/internal/orders/domain"
	"github.com/go-chi/chi/v5"
)

const defaultListLimit = 100

type AdminCatalog interface {
	AdminProducts(ctx context.Context) ([]*catalog.Product, error)
	CreateProduct(ctx context.Context, p *catalog.Product) error
	UpdateProduct(ctx context.Context, p *catalog.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type OrderLister interface {
	ListOrders(ctx context.Context, limit int) ([]*orders.Order, error)
}

type CustomOrderLister interface {
	List(ctx context.Context, limit int64) ([]*customorder.CustomOrder, error)
}

type TokenIssuer interface {
	Login(password string) (string, time.Time, error)
}

type AdminHandler struct {
	auth         TokenIssuer
	catalog      AdminCatalog
	orders       OrderLister
	customOrders CustomOrderLister
	timeout      time.Duration
	log          *slog.Logger
}

func NewAdminHandler(
	auth TokenIssuer,
	catalog AdminCatalog,
	orders OrderLister,
	customOrders CustomOrderLister,
	timeout time.Duration,
	log *slog.Logger,
) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{
		auth:         auth,
		catalog:      catalog,
		orders:       orders,
		customOrders: customOrders,
		timeout:      timeout,
		log:          log,
	}
}

type LoginRequestDTO struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ProductRequestDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Featured    bool    `json:"featured"`
}

func (p ProductRequestDTO) toProduct(id string) *catalog.Product {
	return &catalog.Product{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    catalog.Category(p.Category),
		ImageURL:    p.ImageURL,
		Featured:    p.Featured,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}

	token, expiresAt, err := h.auth.Login(req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.AdminProducts(ctx)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}

	p := req.toProduct("")
	if err := h.catalog.CreateProduct(ctx, p); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.audit(r, "product created", p.ID)
	respondJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}

	p := req.toProduct(chi.URLParam(r, "id"))
	if err := h.catalog.UpdateProduct(ctx, p); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.audit(r, "product updated", p.ID)
	respondJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.catalog.DeleteProduct(ctx, id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.audit(r, "product deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	list, err := h.orders.ListOrders(ctx, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": list})
}

func (h *AdminHandler) ListCustomOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	list, err := h.customOrders.List(ctx, int64(limit))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"custom_orders": list})
}

func (h *AdminHandler) audit(r *http.Request, msg, productID string) {
	subject := ""
	if claims := AdminClaimsFromContext(r.Context()); claims != nil {
		subject = claims.Subject
	}
	h.log.InfoContext(r.Context(), msg, "product_id", productID, "admin", subject)
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 500 {
		respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
		return 0, false
	}
	return limit, true
}
