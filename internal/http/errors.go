package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bakehouse/storefront/internal/admin"
	"github.com/bakehouse/storefront/internal/cart/cache"
	cartsvc "github.com/bakehouse/storefront/internal/cart/service"
	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
	catalogsvc "github.com/bakehouse/storefront/internal/catalog/service"
	checkout "github.com/bakehouse/storefront/internal/checkout/service"
	customorder "github.com/bakehouse/storefront/internal/customorder/domain"
	orders "github.com/bakehouse/storefront/internal/orders/repository"
)

// handleServiceError maps domain errors onto HTTP statuses. Anything not
// listed is logged and reported as a 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var checkoutInvalid *checkout.ValidationError
	var customInvalid *customorder.ValidationError

	switch {
	case errors.As(err, &checkoutInvalid):
		respondErrorDetails(w, http.StatusBadRequest, "validation_failed",
			"Please fill in all required fields", checkoutInvalid.Fields)
	case errors.As(err, &customInvalid):
		respondErrorDetails(w, http.StatusBadRequest, "validation_failed",
			"Please fill in all required fields", customInvalid.Fields)
	case errors.Is(err, catalog.ErrInvalidProduct):
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())

	case errors.Is(err, checkout.ErrEmptyCart):
		respondErrorDetails(w, http.StatusConflict, "empty_cart",
			"Your cart is empty", map[string]string{"redirect": "/cart"})
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, checkout.ErrGatewayCancelled):
		respondError(w, http.StatusConflict, "payment_cancelled", "Payment cancelled")
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, cache.ErrConflict):
		respondError(w, http.StatusConflict, "cart_conflict", "cart was modified concurrently, please retry")

	case errors.Is(err, checkout.ErrSignatureMismatch):
		respondError(w, http.StatusPaymentRequired, "payment_verification_failed", "Payment could not be verified")
	case errors.Is(err, checkout.ErrGatewayUnavailable):
		respondError(w, http.StatusServiceUnavailable, "gateway_unavailable",
			"Online payment is unavailable right now. Please choose cash on pickup.")

	case errors.Is(err, checkout.ErrAttemptNotFound):
		respondError(w, http.StatusNotFound, "checkout_not_found", err.Error())
	case errors.Is(err, cartsvc.ErrProductNotFound), errors.Is(err, catalogsvc.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())

	case errors.Is(err, admin.ErrInvalidCredentials), errors.Is(err, admin.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, admin.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "admin_disabled", err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
