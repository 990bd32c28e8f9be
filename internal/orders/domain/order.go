package domain

import "time"

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// Order is the persisted record of a placed order, one row per checkout.
type Order struct {
	OrderID             string      `json:"order_id"`
	CustomerName        string      `json:"customer_name"`
	CustomerEmail       string      `json:"customer_email"`
	CustomerPhone       string      `json:"customer_phone"`
	DeliveryAddress     string      `json:"delivery_address"`
	SpecialInstructions string      `json:"special_instructions"`
	Items               []OrderItem `json:"items"`
	Subtotal            float64     `json:"subtotal"`
	Tax                 float64     `json:"tax"`
	Total               float64     `json:"total"`
	PaymentStatus       string      `json:"payment_status"`
	PaymentMethod       string      `json:"payment_method"`
	PaymentID           string      `json:"payment_id,omitempty"`
	WebhookSent         bool        `json:"webhook_sent"`
	CreatedAt           time.Time   `json:"created_at"`
}
