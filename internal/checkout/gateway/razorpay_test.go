package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient(Config{}, nil).Configured())
	assert.False(t, NewClient(Config{KeyID: "  "}, nil).Configured())
	assert.True(t, NewClient(Config{KeyID: "rzp_test_key"}, nil).Configured())
}

func TestCreateOrder_Success(t *testing.T) {
	var got createOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_gw_1","status":"created"}`))
	}))
	defer server.Close()

	c := NewClient(Config{KeyID: "rzp_test_key", KeySecret: "secret", BaseURL: server.URL + "/"}, nil)

	id, err := c.CreateOrder(context.Background(), "ORD-1", 20000, "INR")
	require.NoError(t, err)
	assert.Equal(t, "order_gw_1", id)
	assert.Equal(t, createOrderRequest{Amount: 20000, Currency: "INR", Receipt: "ORD-1"}, got)
}

func TestCreateOrder_WithoutSecretSkipsGateway(t *testing.T) {
	var called atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}))
	defer server.Close()

	c := NewClient(Config{KeyID: "rzp_test_key", BaseURL: server.URL}, nil)

	id, err := c.CreateOrder(context.Background(), "ORD-1", 100, "INR")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.False(t, called.Load())
}

func TestCreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"missing id", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"created"}`))
		}},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{`))
		}},
		{"too slow", func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(Config{KeyID: "k", KeySecret: "s", BaseURL: server.URL, Timeout: 100 * time.Millisecond}, nil)
			_, err := c.CreateOrder(context.Background(), "ORD-1", 100, "INR")
			assert.Error(t, err)
		})
	}
}

func TestCreateOrder_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(Config{KeyID: "k", KeySecret: "s", BaseURL: server.URL}, nil)
	for i := 0; i < 5; i++ {
		_, err := c.CreateOrder(context.Background(), "ORD-1", 100, "INR")
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	}

	_, err := c.CreateOrder(context.Background(), "ORD-1", 100, "INR")
	assert.Error(t, err)
	assert.Equal(t, int32(5), calls.Load(), "open breaker must not reach the gateway")
}

func TestVerifySignature(t *testing.T) {
	c := NewClient(Config{KeyID: "k", KeySecret: "secret"}, nil)
	good := Sign("secret", "order_gw_1", "pay_1")

	assert.True(t, c.VerifySignature("order_gw_1", "pay_1", good))
	assert.False(t, c.VerifySignature("order_gw_1", "pay_2", good))
	assert.False(t, c.VerifySignature("order_gw_1", "pay_1", "deadbeef"))
	assert.True(t, c.VerifySignature("", "pay_1", ""), "modal-only payments carry no gateway order")

	noSecret := NewClient(Config{KeyID: "k"}, nil)
	assert.True(t, noSecret.VerifySignature("order_gw_1", "pay_1", "anything"))
}

func TestSign_Deterministic(t *testing.T) {
	assert.Len(t, Sign("key", "order_1", "pay_1"), 64)
	assert.Equal(t, Sign("key", "order_1", "pay_1"), Sign("key", "order_1", "pay_1"))
	assert.NotEqual(t, Sign("key", "order_1", "pay_1"), Sign("key2", "order_1", "pay_1"))
}
