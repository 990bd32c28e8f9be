package domain

import (
	"time"

	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
)

// Cart is one browsing session's selection. Lines keep the order in which
// products were first added and hold at most one line per product id.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartLine struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"added_at"`
}

func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

func NewCart(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddToCart increments the product's line or appends a new line with quantity 1.
func (c *Cart) AddToCart(p catalog.Product) {
	if i := c.indexOf(p.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{
		Product:  p,
		Quantity: 1,
		AddedAt:  time.Now().UTC(),
	})
}

// RemoveFromCart deletes the product's line; an absent product is a no-op.
func (c *Cart) RemoveFromCart(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less removes
// the line. Unknown product ids are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(productID)
		return
	}
	if i := c.indexOf(productID); i >= 0 {
		c.Lines[i].Quantity = quantity
	}
}

func (c *Cart) ClearCart() {
	c.Lines = nil
}

// Count is the number of items, the sum of all line quantities.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, l := range c.Lines {
		sum += l.Subtotal()
	}
	return sum
}

// Total equals Subtotal: no tax or fee lines are charged.
func (c *Cart) Total() float64 {
	return c.Subtotal()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy that shares no line storage with c.
func (c *Cart) Clone() *Cart {
	cp := *c
	if c.Lines != nil {
		cp.Lines = make([]CartLine, len(c.Lines))
		copy(cp.Lines, c.Lines)
	}
	return &cp
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
