package domain

import (
	"math"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodGateway PaymentMethod = "razorpay"
	PaymentMethodCOP     PaymentMethod = "cop"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodGateway || m == PaymentMethodCOP
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// GatewayRef correlates an order with the payment gateway's records.
type GatewayRef struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

// Order is built once per checkout attempt. Only PaymentStatus and Gateway
// change after construction.
type Order struct {
	OrderID             string        `json:"order_id"`
	OrderDate           time.Time     `json:"order_date"`
	Customer            Customer      `json:"customer"`
	Items               []LineItem    `json:"items"`
	Summary             Summary       `json:"summary"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	PaymentMethod       PaymentMethod `json:"payment_method"`
	PaymentStatus       PaymentStatus `json:"payment_status"`
	Gateway             *GatewayRef   `json:"gateway,omitempty"`
}

func NewOrder(orderID string, form CheckoutForm, snapshot *CartSnapshot, method PaymentMethod) *Order {
	items := make([]LineItem, len(snapshot.Items))
	copy(items, snapshot.Items)

	return &Order{
		OrderID:   orderID,
		OrderDate: snapshot.CapturedAt,
		Customer: Customer{
			Name:    form.Name,
			Email:   form.Email,
			Phone:   form.Phone,
			Address: form.Address,
		},
		Items: items,
		Summary: Summary{
			Subtotal: snapshot.Subtotal,
			Tax:      snapshot.Tax,
			Total:    snapshot.Total,
		},
		SpecialInstructions: form.SpecialInstructions,
		PaymentMethod:       method,
		PaymentStatus:       PaymentStatusPending,
	}
}

func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]LineItem, len(o.Items))
	copy(cp.Items, o.Items)
	if o.Gateway != nil {
		g := *o.Gateway
		cp.Gateway = &g
	}
	return &cp
}

// MinorUnits converts a rupee amount to paise, rounding half away from zero.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
