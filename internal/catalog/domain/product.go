package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryCakes        Category = "Cakes"
	CategoryPastries     Category = "Pastries"
	CategoryBreads       Category = "Breads"
	CategoryCookies      Category = "Cookies"
	CategoryCustomOrders Category = "Custom Orders"

	// CategoryAll is the browse filter that matches every category.
	CategoryAll Category = "All"
)

var Categories = []Category{
	CategoryCakes,
	CategoryPastries,
	CategoryBreads,
	CategoryCookies,
	CategoryCustomOrders,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    Category  `json:"category"`
	ImageURL    string    `json:"image_url"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var ErrInvalidProduct = errors.New("invalid product")

// Validate checks the fields an admin can edit.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case !p.Category.IsValid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	}
	return nil
}

// Matches reports whether the product passes a browse filter: the category
// must equal the selected one (or the filter is All/empty) and the query, if
// any, must occur case-insensitively in the name or the description.
func (p *Product) Matches(category Category, query string) bool {
	if category != "" && category != CategoryAll && p.Category != category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}
