package domain

import (
	"time"

	cart "github.com/bakehouse/storefront/internal/cart/domain"
)

type LineItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// CartSnapshot is the cart state captured at submission time. Totals are
// computed from the snapshot lines, never from the live cart.
type CartSnapshot struct {
	Items      []LineItem `json:"items"`
	ItemCount  int        `json:"item_count"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Total      float64    `json:"total"`
	Currency   string     `json:"currency"`
	CapturedAt time.Time  `json:"captured_at"`
}

func NewCartSnapshot(c *cart.Cart, currency string) *CartSnapshot {
	snapshot := &CartSnapshot{
		Items:      make([]LineItem, 0, len(c.Lines)),
		Currency:   currency,
		CapturedAt: time.Now().UTC(),
	}

	for _, l := range c.Lines {
		subtotal := l.Product.Price * float64(l.Quantity)
		snapshot.Items = append(snapshot.Items, LineItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.Price,
			Subtotal:    subtotal,
		})
		snapshot.ItemCount += l.Quantity
		snapshot.Subtotal += subtotal
	}

	snapshot.Tax = 0
	snapshot.Total = snapshot.Subtotal + snapshot.Tax
	return snapshot
}
