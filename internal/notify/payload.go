package notify

import (
	"time"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

// Payload is the JSON body the order automation flow receives.
type Payload struct {
	OrderID             string          `json:"orderId"`
	OrderDate           time.Time       `json:"orderDate"`
	Customer            PayloadCustomer `json:"customer"`
	Items               []PayloadItem   `json:"items"`
	OrderSummary        PayloadSummary  `json:"orderSummary"`
	SpecialInstructions string          `json:"specialInstructions"`
	PaymentMethod       string          `json:"paymentMethod"`
	PaymentStatus       string          `json:"paymentStatus"`
	Razorpay            *PayloadGateway `json:"razorpay,omitempty"`
}

type PayloadCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type PayloadItem struct {
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Subtotal     float64 `json:"subtotal"`
}

type PayloadSummary struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	Total      float64 `json:"total"`
	AmountPaid float64 `json:"amountPaid"`
}

type PayloadGateway struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
}

func NewPayload(order *d.Order) Payload {
	items := make([]PayloadItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = PayloadItem{
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			PricePerUnit: item.UnitPrice,
			Subtotal:     item.Subtotal,
		}
	}

	p := Payload{
		OrderID:   order.OrderID,
		OrderDate: order.OrderDate,
		Customer: PayloadCustomer{
			Name:    order.Customer.Name,
			Email:   order.Customer.Email,
			Phone:   order.Customer.Phone,
			Address: order.Customer.Address,
		},
		Items: items,
		OrderSummary: PayloadSummary{
			Subtotal: order.Summary.Subtotal,
			Tax:      order.Summary.Tax,
			Total:    order.Summary.Total,
			// the automation flow reads amountPaid as the order amount for both methods
			AmountPaid: order.Summary.Total,
		},
		SpecialInstructions: order.SpecialInstructions,
		PaymentMethod:       string(order.PaymentMethod),
		PaymentStatus:       string(order.PaymentStatus),
	}

	if order.Gateway != nil && order.Gateway.PaymentID != "" {
		p.Razorpay = &PayloadGateway{
			PaymentID: order.Gateway.PaymentID,
			OrderID:   order.Gateway.OrderID,
			Signature: order.Gateway.Signature,
		}
	}
	return p
}
