package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	cart "github.com/bakehouse/storefront/internal/cart/domain"
	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

// MockCart implements CartProvider over in-memory carts.
type MockCart struct {
	mu         sync.Mutex
	carts      map[string]*cart.Cart
	GetErr     error
	ClearCalls int
}

func newMockCart() *MockCart {
	return &MockCart{carts: map[string]*cart.Cart{}}
}

func (m *MockCart) GetCart(_ context.Context, sessionID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.carts[sessionID]
	if !ok {
		return cart.NewCart(sessionID), nil
	}
	return c.Clone(), nil
}

func (m *MockCart) ClearCart(_ context.Context, sessionID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	c := cart.NewCart(sessionID)
	m.carts[sessionID] = c
	return c.Clone(), nil
}

func (m *MockCart) add(sessionID string, p catalog.Product, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[sessionID]
	if !ok {
		c = cart.NewCart(sessionID)
		m.carts[sessionID] = c
	}
	for i := 0; i < times; i++ {
		c.AddToCart(p)
	}
}

func (m *MockCart) count(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[sessionID]; ok {
		return c.Count()
	}
	return 0
}

// MockGateway implements PaymentGateway and captures the order request.
type MockGateway struct {
	mu             sync.Mutex
	Key            string
	Unconfigured   bool
	GatewayOrderID string
	CreateErr      error
	ValidSignature string
	Receipt        string
	Amount         int64
	Currency       string
}

func (m *MockGateway) KeyID() string { return m.Key }
func (m *MockGateway) Configured() bool { return !m.Unconfigured }

func (m *MockGateway) CreateOrder(_ context.Context, receipt string, amount int64, currency string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Receipt, m.Amount, m.Currency = receipt, amount, currency
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	return m.GatewayOrderID, nil
}

func (m *MockGateway) VerifySignature(_, _, signature string) bool {
	return signature == m.ValidSignature
}

// MockNotifier implements Notifier. When block is set, Notify signals entered
// and waits for release.
type MockNotifier struct {
	mu      sync.Mutex
	Result  bool
	Orders  []*d.Order
	block   bool
	entered chan struct{}
	release chan struct{}
}

func (m *MockNotifier) Notify(_ context.Context, order *d.Order) bool {
	if m.block {
		m.entered <- struct{}{}
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, order.Clone())
	return m.Result
}

func (m *MockNotifier) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}

// MockRecorder implements OrderRecorder.
type MockRecorder struct {
	mu       sync.Mutex
	Orders   []*d.Order
	Webhooks []bool
	Err      error
}

func (m *MockRecorder) RecordOrder(_ context.Context, order *d.Order, webhookSent bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Orders = append(m.Orders, order.Clone())
	m.Webhooks = append(m.Webhooks, webhookSent)
	return nil
}

var (
	glasscake = catalog.Product{ID: "p1", Name: "Vanilla Glasscake", Price: 50, Category: catalog.CategoryCakes}
	jarcake   = catalog.Product{ID: "p2", Name: "Vanilla Jarcake", Price: 100, Category: catalog.CategoryCakes}

	validForm = d.CheckoutForm{
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Address: "12 MG Road, Bengaluru",
	}

	errBoom = errors.New("boom")
)

type testDeps struct {
	cart     *MockCart
	gateway  *MockGateway
	notifier *MockNotifier
	recorder *MockRecorder
}

// newTestCheckoutService creates a fully wired service whose session "sess-1"
// holds 2 x Rs.50 and 1 x Rs.100.
func newTestCheckoutService(t *testing.T, paymentWindow time.Duration) (*CheckoutServiceImpl, *testDeps) {
	t.Helper()

	deps := &testDeps{
		cart: newMockCart(),
		gateway: &MockGateway{
			Key:            "rzp_test_key",
			GatewayOrderID: "order_gw_1",
			ValidSignature: "good-signature",
		},
		notifier: &MockNotifier{Result: true},
		recorder: &MockRecorder{},
	}
	deps.cart.add("sess-1", glasscake, 2)
	deps.cart.add("sess-1", jarcake, 1)

	cfg := DefaultConfig()
	cfg.PaymentWindow = paymentWindow
	cfg.CompletionTimeout = 5 * time.Second

	svc := NewCheckoutService(deps.cart, deps.gateway, deps.notifier, deps.recorder, NewAttemptStore(time.Hour), cfg, nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, deps
}
