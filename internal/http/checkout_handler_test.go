package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
	"github.com/bakehouse/storefront/internal/checkout/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const submitBody = `{
	"name": "Asha",
	"email": "asha@example.com",
	"phone": "9876543210",
	"address": "12 MG Road",
	"special_instructions": "Happy birthday on top",
	"payment_method": "cop"
}`

func newTestCheckoutHandler(mock *CheckoutMock) *CheckoutHandler {
	return NewCheckoutHandler(mock, 5*time.Second)
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	return response
}

func TestCheckoutSummary_EmptyCartRedirects(t *testing.T) {
	handler := newTestCheckoutHandler(&CheckoutMock{err: service.ErrEmptyCart})

	recorder := httptest.NewRecorder()
	handler.Summary(recorder, withSession(httptest.NewRequest("GET", "/api/v1/checkout", nil)))

	require.Equal(t, http.StatusConflict, recorder.Code)
	response := decodeError(t, recorder)
	assert.Equal(t, "empty_cart", response.Code)
	assert.Equal(t, map[string]any{"redirect": "/cart"}, response.Details)
}

func TestCheckoutSummary_Success(t *testing.T) {
	snapshot := &d.CartSnapshot{ItemCount: 3, Subtotal: 200, Total: 200, Currency: "INR"}
	mock := &CheckoutMock{snapshot: snapshot}
	handler := newTestCheckoutHandler(mock)

	recorder := httptest.NewRecorder()
	handler.Summary(recorder, withSession(httptest.NewRequest("GET", "/api/v1/checkout", nil)))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, testSessionID, mock.gotSessionID)

	var got d.CartSnapshot
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	assert.Equal(t, 200.0, got.Total)
	assert.Equal(t, 3, got.ItemCount)
}

func TestCheckoutSubmit_CashOnPickup(t *testing.T) {
	attempt := d.NewAttempt("ORD-1", testSessionID, d.PaymentMethodCOP)
	attempt.State = d.StateCompleted
	attempt.WebhookSent = true
	mock := &CheckoutMock{attempt: attempt}
	handler := newTestCheckoutHandler(mock)

	recorder := httptest.NewRecorder()
	handler.Submit(recorder, withSession(httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(submitBody))))

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, d.PaymentMethodCOP, mock.gotMethod)
	assert.Equal(t, "Asha", mock.gotForm.Name)
	assert.Equal(t, "Happy birthday on top", mock.gotForm.SpecialInstructions)

	var got d.Attempt
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	assert.Equal(t, "ORD-1", got.ID)
	assert.Equal(t, d.StateCompleted, got.State)
	assert.True(t, got.WebhookSent)
}

func TestCheckoutSubmit_GatewayPendingIsAccepted(t *testing.T) {
	attempt := d.NewAttempt("ORD-2", testSessionID, d.PaymentMethodGateway)
	attempt.State = d.StateGatewayPending
	attempt.Session = &d.GatewaySession{Key: "rzp_test_key", Amount: 20000, Currency: "INR", GatewayOrderID: "order_gw_1"}
	handler := newTestCheckoutHandler(&CheckoutMock{attempt: attempt})

	recorder := httptest.NewRecorder()
	body := strings.Replace(submitBody, `"cop"`, `"razorpay"`, 1)
	handler.Submit(recorder, withSession(httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(body))))

	require.Equal(t, http.StatusAccepted, recorder.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	session, ok := got["gateway_session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 20000.0, session["amount"])
	assert.Equal(t, "order_gw_1", session["order_id"])
}

func TestCheckoutSubmit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"validation",
			&service.ValidationError{Fields: map[string]string{"email": "is required"}},
			http.StatusBadRequest, "validation_failed",
		},
		{"empty cart", service.ErrEmptyCart, http.StatusConflict, "empty_cart"},
		{"in flight", service.ErrSubmissionInFlight, http.StatusConflict, "checkout_in_progress"},
		{
			"gateway unavailable",
			fmt.Errorf("%w: create order: timeout", service.ErrGatewayUnavailable),
			http.StatusServiceUnavailable, "gateway_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestCheckoutHandler(&CheckoutMock{err: tt.err})

			recorder := httptest.NewRecorder()
			handler.Submit(recorder, withSession(httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(submitBody))))

			require.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, recorder).Code)
		})
	}
}

func TestCheckoutSubmit_ValidationDetails(t *testing.T) {
	err := &service.ValidationError{Fields: map[string]string{"name": "is required", "phone": "is required"}}
	handler := newTestCheckoutHandler(&CheckoutMock{err: err})

	recorder := httptest.NewRecorder()
	handler.Submit(recorder, withSession(httptest.NewRequest("POST", "/api/v1/checkout", strings.NewReader(submitBody))))

	response := decodeError(t, recorder)
	assert.Equal(t, "Please fill in all required fields", response.Error)
	assert.Equal(t, map[string]any{"name": "is required", "phone": "is required"}, response.Details)
}

func TestCheckoutConfirmPayment(t *testing.T) {
	attempt := d.NewAttempt("ORD-3", testSessionID, d.PaymentMethodGateway)
	attempt.State = d.StateCompleted
	mock := &CheckoutMock{attempt: attempt}
	handler := newTestCheckoutHandler(mock)

	body := `{"razorpay_payment_id":"pay_1","razorpay_order_id":"order_gw_1","razorpay_signature":"sig"}`
	recorder := httptest.NewRecorder()
	request := withURLParam(withSession(httptest.NewRequest("POST", "/api/v1/checkout/ORD-3/payment", strings.NewReader(body))), "order_id", "ORD-3")
	handler.ConfirmPayment(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ORD-3", mock.gotOrderID)
	assert.Equal(t, d.GatewayRef{PaymentID: "pay_1", OrderID: "order_gw_1", Signature: "sig"}, mock.gotRef)
}

func TestCheckoutConfirmPayment_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"signature mismatch", service.ErrSignatureMismatch, http.StatusPaymentRequired, "payment_verification_failed"},
		{"already cancelled", service.ErrGatewayCancelled, http.StatusConflict, "payment_cancelled"},
		{
			"not pending",
			&d.IllegalTransitionError{From: d.StateCompleted, To: d.StateNotificationDispatched},
			http.StatusConflict, "illegal_transition",
		},
		{"other session", service.ErrAttemptNotFound, http.StatusNotFound, "checkout_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestCheckoutHandler(&CheckoutMock{err: tt.err})

			body := `{"razorpay_payment_id":"pay_1"}`
			recorder := httptest.NewRecorder()
			request := withURLParam(withSession(httptest.NewRequest("POST", "/api/v1/checkout/ORD-3/payment", strings.NewReader(body))), "order_id", "ORD-3")
			handler.ConfirmPayment(recorder, request)

			require.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, recorder).Code)
		})
	}
}

func TestCheckoutDismissAndGet(t *testing.T) {
	attempt := d.NewAttempt("ORD-4", testSessionID, d.PaymentMethodGateway)
	attempt.State = d.StateCancelled
	attempt.Message = "Payment cancelled"
	mock := &CheckoutMock{attempt: attempt}
	handler := newTestCheckoutHandler(mock)

	recorder := httptest.NewRecorder()
	handler.Dismiss(recorder, withURLParam(withSession(httptest.NewRequest("POST", "/api/v1/checkout/ORD-4/dismiss", nil)), "order_id", "ORD-4"))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, mock.dismissed)

	recorder = httptest.NewRecorder()
	handler.Get(recorder, withURLParam(withSession(httptest.NewRequest("GET", "/api/v1/checkout/ORD-4", nil)), "order_id", "ORD-4"))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got d.Attempt
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	assert.Equal(t, d.StateCancelled, got.State)
	assert.Equal(t, "Payment cancelled", got.Message)
}
