package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cart "github.com/bakehouse/storefront/internal/cart/domain"
	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

type CartProvider interface {
	GetCart(ctx context.Context, sessionID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, sessionID string) (*cart.Cart, error)
}

type PaymentGateway interface {
	KeyID() string
	Configured() bool
	CreateOrder(ctx context.Context, receipt string, amount int64, currency string) (string, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

type Notifier interface {
	Notify(ctx context.Context, order *d.Order) bool
}

// OrderRecorder hands a placed order to the downstream orders pipeline.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, order *d.Order, webhookSent bool) error
}

type CheckoutService interface {
	Begin(ctx context.Context, sessionID string) (*d.CartSnapshot, error)
	Submit(ctx context.Context, sessionID string, form d.CheckoutForm, method d.PaymentMethod) (*d.Attempt, error)
	ConfirmPayment(ctx context.Context, sessionID, orderID string, ref d.GatewayRef) (*d.Attempt, error)
	DismissPayment(ctx context.Context, sessionID, orderID string) (*d.Attempt, error)
	Get(ctx context.Context, sessionID, orderID string) (*d.Attempt, error)
}

type Config struct {
	Currency          string
	MerchantName      string
	ThemeColor        string
	PaymentWindow     time.Duration
	GatewayTimeout    time.Duration
	CompletionTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Currency:          "INR",
		MerchantName:      "Neha's Bakehouse",
		ThemeColor:        "#F97316",
		PaymentWindow:     15 * time.Minute,
		GatewayTimeout:    10 * time.Second,
		CompletionTimeout: 45 * time.Second,
	}
}

type CheckoutServiceImpl struct {
	cart     CartProvider
	gateway  PaymentGateway
	notifier Notifier
	recorder OrderRecorder
	attempts *AttemptStore
	cfg      Config
	log      *slog.Logger

	waits *paymentWaits
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewCheckoutService wires the orchestrator. recorder may be nil when no
// orders pipeline is configured.
func NewCheckoutService(
	carts CartProvider,
	gateway PaymentGateway,
	notifier Notifier,
	recorder OrderRecorder,
	attempts *AttemptStore,
	cfg Config,
	log *slog.Logger,
) *CheckoutServiceImpl {
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutServiceImpl{
		cart:     carts,
		gateway:  gateway,
		notifier: notifier,
		recorder: recorder,
		attempts: attempts,
		cfg:      cfg,
		log:      log,
		waits:    newPaymentWaits(),
		stop:     make(chan struct{}),
	}
}

// Close abandons outstanding payment windows and waits for their goroutines.
func (s *CheckoutServiceImpl) Close() error {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.attempts.Close()
}
