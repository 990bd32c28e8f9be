package http

import (
	"net/http"
	"strings"

	"github.com/bakehouse/storefront/internal/catalog/domain"
	"github.com/go-chi/chi/v5"
)

type ProductCatalog interface {
	List(category domain.Category, query string) []domain.Product
	Featured(limit int) []domain.Product
	Get(id string) (domain.Product, error)
}

type ProductHandler struct {
	catalog       ProductCatalog
	featuredLimit int
}

func NewProductHandler(catalog ProductCatalog, featuredLimit int) *ProductHandler {
	return &ProductHandler{
		catalog:       catalog,
		featuredLimit: featuredLimit,
	}
}

type ProductsResponse struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories,omitempty"`
}

// List serves the shop page: ?category= narrows to one category (All or
// empty for every product) and ?q= searches names and descriptions.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(strings.TrimSpace(r.URL.Query().Get("category")))
	if category != "" && category != domain.CategoryAll && !category.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_category", "unknown category")
		return
	}

	categories := append([]domain.Category{domain.CategoryAll}, domain.Categories...)
	respondJSON(w, http.StatusOK, ProductsResponse{
		Products:   h.catalog.List(category, r.URL.Query().Get("q")),
		Categories: categories,
	})
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ProductsResponse{Products: h.catalog.Featured(h.featuredLimit)})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
