// Package gateway talks to the hosted payment gateway: it opens gateway
// orders and verifies the signature returned by the payment callback.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bakehouse/storefront/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrUnexpectedStatus = errors.New("unexpected gateway response status")

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker[string]
	log        *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[string]("razorpay", circuitbreaker.DefaultConfig(), log),
		log:     log,
	}
}

func (c *Client) KeyID() string {
	return c.cfg.KeyID
}

// Configured reports whether a payment modal can be opened at all.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.KeyID) != ""
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateOrder opens a gateway order for amount minor units and returns its id.
// Without a key secret the modal is opened from the key id alone and no
// gateway order is created.
func (c *Client) CreateOrder(ctx context.Context, receipt string, amount int64, currency string) (string, error) {
	if c.cfg.KeySecret == "" {
		return "", nil
	}
	return c.breaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return c.createOrder(ctx, receipt, amount, currency)
	})
}

func (c *Client) createOrder(ctx context.Context, receipt string, amount int64, currency string) (string, error) {
	body, err := json.Marshal(createOrderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return "", fmt.Errorf("marshal order request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode order response failed: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("gateway returned an order without id")
	}

	c.log.DebugContext(ctx, "gateway order created", "receipt", receipt, "gateway_order_id", out.ID)
	return out.ID, nil
}

// VerifySignature checks the callback signature against the key secret.
// Callbacks for modal-only payments carry no gateway order and cannot be verified.
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	if c.cfg.KeySecret == "" || gatewayOrderID == "" {
		return true
	}
	expected := Sign(c.cfg.KeySecret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 of "<gateway order id>|<payment id>".
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
