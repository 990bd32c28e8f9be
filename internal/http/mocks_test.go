package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bakehouse/storefront/internal/admin"
	cart "github.com/bakehouse/storefront/internal/cart/domain"
	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
	catalogsvc "github.com/bakehouse/storefront/internal/catalog/service"
	d "github.com/bakehouse/storefront/internal/checkout/domain"
	customorder "github.com/bakehouse/storefront/internal/customorder/domain"
	orders "github.com/bakehouse/storefront/internal/orders/domain"
	"github.com/go-chi/chi/v5"
)

const testSessionID = "7f1c2a7e-9a55-4d55-9a8e-0d7f3c1f2b10"

var (
	glasscake = catalog.Product{ID: "p1", Name: "Vanilla Glasscake", Price: 50, Category: catalog.CategoryCakes}
	jarcake   = catalog.Product{ID: "p2", Name: "Vanilla Jarcake", Price: 100, Category: catalog.CategoryCakes}
)

// --- catalog ---

type CatalogMock struct {
	products []catalog.Product
	err      error

	gotCategory catalog.Category
	gotQuery    string
}

func (m *CatalogMock) List(category catalog.Category, query string) []catalog.Product {
	m.gotCategory, m.gotQuery = category, query
	return m.products
}

func (m *CatalogMock) Featured(limit int) []catalog.Product {
	if limit < len(m.products) {
		return m.products[:limit]
	}
	return m.products
}

func (m *CatalogMock) Get(id string) (catalog.Product, error) {
	if m.err != nil {
		return catalog.Product{}, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalogsvc.ErrProductNotFound
}

// --- cart ---

type CartMock struct {
	mu    sync.Mutex
	cart  *cart.Cart
	err   error
	ended []string

	gotSessionID string
	gotProductID string
	gotQuantity  int
}

func (m *CartMock) record(sessionID, productID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotSessionID, m.gotProductID = sessionID, productID
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return cart.NewCart(sessionID), nil
	}
	return m.cart, nil
}

func (m *CartMock) GetCart(_ context.Context, sessionID string) (*cart.Cart, error) {
	return m.record(sessionID, "")
}

func (m *CartMock) AddToCart(_ context.Context, sessionID, productID string) (*cart.Cart, error) {
	return m.record(sessionID, productID)
}

func (m *CartMock) RemoveFromCart(_ context.Context, sessionID, productID string) (*cart.Cart, error) {
	return m.record(sessionID, productID)
}

func (m *CartMock) UpdateQuantity(_ context.Context, sessionID, productID string, quantity int) (*cart.Cart, error) {
	m.mu.Lock()
	m.gotQuantity = quantity
	m.mu.Unlock()
	return m.record(sessionID, productID)
}

func (m *CartMock) ClearCart(_ context.Context, sessionID string) (*cart.Cart, error) {
	return m.record(sessionID, "")
}

func (m *CartMock) EndSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = append(m.ended, sessionID)
	return m.err
}

// --- checkout ---

type CheckoutMock struct {
	attempt  *d.Attempt
	snapshot *d.CartSnapshot
	err      error

	gotSessionID string
	gotOrderID   string
	gotForm      d.CheckoutForm
	gotMethod    d.PaymentMethod
	gotRef       d.GatewayRef
	dismissed    bool
}

func (m *CheckoutMock) Begin(_ context.Context, sessionID string) (*d.CartSnapshot, error) {
	m.gotSessionID = sessionID
	return m.snapshot, m.err
}

func (m *CheckoutMock) Submit(_ context.Context, sessionID string, form d.CheckoutForm, method d.PaymentMethod) (*d.Attempt, error) {
	m.gotSessionID, m.gotForm, m.gotMethod = sessionID, form, method
	return m.attempt, m.err
}

func (m *CheckoutMock) ConfirmPayment(_ context.Context, sessionID, orderID string, ref d.GatewayRef) (*d.Attempt, error) {
	m.gotSessionID, m.gotOrderID, m.gotRef = sessionID, orderID, ref
	return m.attempt, m.err
}

func (m *CheckoutMock) DismissPayment(_ context.Context, sessionID, orderID string) (*d.Attempt, error) {
	m.gotSessionID, m.gotOrderID, m.dismissed = sessionID, orderID, true
	return m.attempt, m.err
}

func (m *CheckoutMock) Get(_ context.Context, sessionID, orderID string) (*d.Attempt, error) {
	m.gotSessionID, m.gotOrderID = sessionID, orderID
	return m.attempt, m.err
}

// --- custom orders ---

type CustomOrdersMock struct {
	orders []*customorder.CustomOrder
	err    error
	got    customorder.Request
	limit  int64
}

func (m *CustomOrdersMock) Submit(_ context.Context, req customorder.Request) (*customorder.CustomOrder, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	if err := req.Validate(time.Now()); err != nil {
		return nil, err
	}
	return &customorder.CustomOrder{ID: "co-1", Status: customorder.StatusNew}, nil
}

func (m *CustomOrdersMock) List(_ context.Context, limit int64) ([]*customorder.CustomOrder, error) {
	m.limit = limit
	return m.orders, m.err
}

// --- admin ---

type AdminCatalogMock struct {
	products []*catalog.Product
	err      error
	created  *catalog.Product
	updated  *catalog.Product
	deleted  string
}

func (m *AdminCatalogMock) AdminProducts(context.Context) ([]*catalog.Product, error) {
	return m.products, m.err
}

func (m *AdminCatalogMock) CreateProduct(_ context.Context, p *catalog.Product) error {
	if m.err != nil {
		return m.err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = "new-id"
	m.created = p
	return nil
}

func (m *AdminCatalogMock) UpdateProduct(_ context.Context, p *catalog.Product) error {
	if m.err != nil {
		return m.err
	}
	m.updated = p
	return nil
}

func (m *AdminCatalogMock) DeleteProduct(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = id
	return nil
}

type OrdersMock struct {
	orders []*orders.Order
	err    error
	limit  int
}

func (m *OrdersMock) ListOrders(_ context.Context, limit int) ([]*orders.Order, error) {
	m.limit = limit
	return m.orders, m.err
}

// --- helpers ---

func withSession(r *http.Request) *http.Request {
	return r.WithContext(WithSessionID(r.Context(), testSessionID))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newTestAdminHandler(auth *admin.Authenticator, cat *AdminCatalogMock, ord *OrdersMock, custom *CustomOrdersMock) *AdminHandler {
	return NewAdminHandler(auth, cat, ord, custom, 5*time.Second, nil)
}
