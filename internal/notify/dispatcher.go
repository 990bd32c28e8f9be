// Package notify delivers placed orders to the external order automation
// webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
	"github.com/bakehouse/storefront/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const placeholderURL = "YOUR_N8N_WEBHOOK_URL"

// RetryPolicy bounds redelivery of one notification.
type RetryPolicy struct {
	MaxAttempts        int
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaxInterval        time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:        3,
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaxInterval:        10 * time.Second,
	}
}

// Backoff is the wait before retry number n (1-based).
func (p RetryPolicy) Backoff(n int) time.Duration {
	wait := float64(p.InitialInterval)
	for i := 1; i < n; i++ {
		wait *= p.BackoffCoefficient
	}
	if ceiling := float64(p.MaxInterval); p.MaxInterval > 0 && wait > ceiling {
		wait = ceiling
	}
	return time.Duration(wait)
}

// MaxDuration is the longest one delivery can take when every attempt runs
// into the per-request timeout.
func (p RetryPolicy) MaxDuration(timeout time.Duration) time.Duration {
	total := time.Duration(p.MaxAttempts) * timeout
	for n := 1; n < p.MaxAttempts; n++ {
		total += p.Backoff(n)
	}
	return total
}

type Config struct {
	URL     string
	Timeout time.Duration
	Retry   RetryPolicy
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.code)
}

type Dispatcher struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	retry      RetryPolicy
	breaker    *circuitbreaker.Breaker[struct{}]
	log        *slog.Logger
}

func NewDispatcher(cfg Config, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}
	if cfg.Retry.BackoffCoefficient < 1 {
		cfg.Retry.BackoffCoefficient = 1
	}

	breakerCfg := circuitbreaker.DefaultConfig()
	// A rejected payload says nothing about the endpoint's health.
	breakerCfg.IsSuccessful = func(err error) bool {
		return err == nil || !retryable(err)
	}

	return &Dispatcher{
		url:     strings.TrimSpace(cfg.URL),
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		retry:   cfg.Retry,
		breaker: circuitbreaker.New[struct{}]("order-webhook", breakerCfg, log),
		log:     log,
	}
}

// MaxDeliveryTime bounds how long Notify can block on a reachable but
// unresponsive endpoint.
func (n *Dispatcher) MaxDeliveryTime() time.Duration {
	return n.retry.MaxDuration(n.timeout)
}

// Configured reports whether a real endpoint is set. Empty and placeholder
// URLs are treated as unset.
func (n *Dispatcher) Configured() bool {
	return n.url != "" && !strings.Contains(n.url, placeholderURL)
}

// Notify posts the order to the webhook and reports whether it was accepted.
// It never returns an error: a missed notification does not undo an order.
func (n *Dispatcher) Notify(ctx context.Context, order *d.Order) bool {
	if !n.Configured() {
		n.log.WarnContext(ctx, "webhook url not configured", "order_id", order.OrderID)
		return false
	}

	body, err := json.Marshal(NewPayload(order))
	if err != nil {
		n.log.ErrorContext(ctx, "failed to marshal webhook payload", "order_id", order.OrderID, "error", err)
		return false
	}

	_, err = n.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, n.deliver(ctx, order.OrderID, body)
	})
	if err != nil {
		n.log.WarnContext(ctx, "webhook delivery failed", "order_id", order.OrderID, "error", err)
		return false
	}

	n.log.InfoContext(ctx, "webhook sent", "order_id", order.OrderID)
	return true
}

func (n *Dispatcher) deliver(ctx context.Context, orderID string, body []byte) error {
	var err error
	for attempt := 1; attempt <= n.retry.MaxAttempts; attempt++ {
		if err = n.post(ctx, body); err == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(err) || attempt == n.retry.MaxAttempts {
			break
		}

		wait := n.retry.Backoff(attempt)
		n.log.DebugContext(ctx, "retrying webhook", "order_id", orderID, "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

func (n *Dispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

// retryable: transport errors, 5xx and 429. Other statuses are final.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}
