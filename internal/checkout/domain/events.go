package domain

import "time"

const EventOrderPlaced = "OrderPlaced"

// OrderPlacedEvent is published once per completed checkout.
type OrderPlacedEvent struct {
	OrderID     string    `json:"order_id"`
	Order       *Order    `json:"order"`
	WebhookSent bool      `json:"webhook_sent"`
	PlacedAt    time.Time `json:"placed_at"`
}
