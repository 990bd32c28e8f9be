package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bakehouse/storefront/internal/cart/domain"
	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
	"github.com/go-chi/chi/v5"
)

type CartManager interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddToCart(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	ClearCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	EndSession(ctx context.Context, sessionID string) error
}

type CartHandler struct {
	carts   CartManager
	timeout time.Duration
	session SessionOptions
}

func NewCartHandler(carts CartManager, timeout time.Duration, session SessionOptions) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		session: session,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

// Quantity is a pointer so a missing field is told apart from 0, which
// removes the line.
type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartLineDTO struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal float64         `json:"subtotal"`
}

type CartResponse struct {
	Items     []CartLineDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Subtotal  float64       `json:"subtotal"`
	Total     float64       `json:"total"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func toCartResponse(c *domain.Cart) CartResponse {
	items := make([]CartLineDTO, len(c.Lines))
	for i, l := range c.Lines {
		items[i] = CartLineDTO{
			Product:  l.Product,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		}
	}
	return CartResponse{
		Items:     items,
		ItemCount: c.Count(),
		Subtotal:  c.Subtotal(),
		Total:     c.Total(),
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.GetCart(ctx, SessionIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	c, err := h.carts.AddToCart(ctx, SessionIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartResponse(c))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	c, err := h.carts.UpdateQuantity(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "product_id"), *req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.RemoveFromCart(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "product_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(c))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.ClearCart(ctx, SessionIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(c))
}

// EndSession drops the session's cart and expires its cookie.
func (h *CartHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.EndSession(ctx, SessionIDFromContext(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}
	http.SetCookie(w, expiredSessionCookie(h.session))
	w.WriteHeader(http.StatusNoContent)
}
