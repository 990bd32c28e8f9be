package domain

import (
	"math"
	"math/rand"
	"testing"

	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	glasscake = catalog.Product{ID: "p1", Name: "Vanilla Glasscake", Price: 50, Category: catalog.CategoryCakes}
	jarcake   = catalog.Product{ID: "p2", Name: "Vanilla Jarcake", Price: 100, Category: catalog.CategoryCakes}
	muffin    = catalog.Product{ID: "p3", Name: "Vanilla Muffin", Price: 12, Category: catalog.CategoryPastries}
)

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	c := NewCart("s1")

	c.AddToCart(glasscake)
	c.AddToCart(jarcake)
	c.AddToCart(glasscake)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "p1", c.Lines[0].Product.ID)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "p2", c.Lines[1].Product.ID)
	assert.Equal(t, 1, c.Lines[1].Quantity)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, float64(200), c.Subtotal())
	assert.Equal(t, c.Subtotal(), c.Total())
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	c := NewCart("s1")
	c.AddToCart(glasscake)

	c.RemoveFromCart("missing")
	assert.Equal(t, 1, c.Count())

	c.RemoveFromCart("p1")
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Count())
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  int
		wantLines int
		wantCount int
	}{
		{"set quantity", "p1", 5, 2, 6},
		{"zero removes", "p1", 0, 1, 1},
		{"negative removes", "p2", -3, 1, 1},
		{"unknown id ignored", "p9", 4, 2, 2},
		{"unknown id with zero ignored", "p9", 0, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart("s1")
			c.AddToCart(glasscake)
			c.AddToCart(jarcake)

			c.UpdateQuantity(tt.productID, tt.quantity)

			assert.Len(t, c.Lines, tt.wantLines)
			assert.Equal(t, tt.wantCount, c.Count())
		})
	}
}

func TestUpdateQuantityZero_EqualsRemove(t *testing.T) {
	a := NewCart("s1")
	b := NewCart("s1")
	for _, c := range []*Cart{a, b} {
		c.AddToCart(glasscake)
		c.AddToCart(jarcake)
		c.AddToCart(muffin)
	}

	a.UpdateQuantity("p2", 0)
	b.RemoveFromCart("p2")

	require.Len(t, a.Lines, len(b.Lines))
	for i := range a.Lines {
		assert.Equal(t, b.Lines[i].Product.ID, a.Lines[i].Product.ID)
		assert.Equal(t, b.Lines[i].Quantity, a.Lines[i].Quantity)
	}
}

func TestClearCart(t *testing.T) {
	c := NewCart("s1")
	c.AddToCart(glasscake)
	c.AddToCart(muffin)

	c.ClearCart()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Count())
	assert.Equal(t, float64(0), c.Total())
}

func TestClone_IsIndependent(t *testing.T) {
	c := NewCart("s1")
	c.AddToCart(glasscake)

	cp := c.Clone()
	c.AddToCart(glasscake)
	c.AddToCart(jarcake)

	assert.Equal(t, 1, cp.Count())
	assert.Equal(t, float64(50), cp.Total())
}

// Random operation sequences must keep the derived values equal to a
// from-scratch recomputation and keep every line valid.
func TestRandomSequences_DerivedValuesStayConsistent(t *testing.T) {
	products := []catalog.Product{glasscake, jarcake, muffin}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		c := NewCart("s1")
		for step := 0; step < 50; step++ {
			p := products[rng.Intn(len(products))]
			switch rng.Intn(4) {
			case 0, 1:
				c.AddToCart(p)
			case 2:
				c.RemoveFromCart(p.ID)
			case 3:
				c.UpdateQuantity(p.ID, rng.Intn(6)-1)
			}

			seen := map[string]bool{}
			count := 0
			subtotal := 0.0
			for _, l := range c.Lines {
				require.GreaterOrEqual(t, l.Quantity, 1)
				require.False(t, seen[l.Product.ID], "duplicate line for %s", l.Product.ID)
				seen[l.Product.ID] = true
				count += l.Quantity
				subtotal += l.Product.Price * float64(l.Quantity)
			}
			require.Equal(t, count, c.Count())
			require.GreaterOrEqual(t, c.Count(), 0)
			require.True(t, math.Abs(subtotal-c.Subtotal()) < 1e-9)
			require.Equal(t, c.Subtotal(), c.Total())
		}
	}
}
