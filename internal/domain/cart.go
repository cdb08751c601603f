package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

var (
	ErrInvalidQuantity = errors.New("quantity must be between 0 and 999")
	ErrQuantityLimit   = errors.New("cart line is at its maximum quantity")
)

// CartLine is one aggregated cart entry. Name, price, image and category
// are captured when the product is first added and never re-synced.
type CartLine struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
	Category  string
}

// LineTotal returns price × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a session-scoped collection of lines, unique by product id.
// A line's quantity is always at least 1 while it is present.
//
// Cart is not safe for concurrent use; CartRepository.Update serializes
// access to stored carts.
type Cart struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	lines     []CartLine
}

// NewCart creates an empty cart with a fresh id.
func NewCart() *Cart {
	now := time.Now()
	return &Cart{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) indexOf(productID string) int {
	return slices.IndexFunc(c.lines, func(l CartLine) bool { return l.ProductID == productID })
}

// Add increments the line for p, or appends a new line with quantity 1.
// A line already at MaxLineQuantity is left unchanged and ErrQuantityLimit
// is returned.
func (c *Cart) Add(p *Product) error {
	if i := c.indexOf(p.ID); i >= 0 {
		if c.lines[i].Quantity >= MaxLineQuantity {
			return ErrQuantityLimit
		}
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  1,
			Image:     p.Image,
			Category:  p.Category,
		})
	}
	c.touch()
	return nil
}

// SetQuantity replaces the quantity of an existing line. Zero removes the
// line. Setting a quantity on an absent line does nothing. Quantities
// outside [0, MaxLineQuantity] return ErrInvalidQuantity.
func (c *Cart) SetQuantity(productID string, n int) error {
	if n < 0 || n > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if n == 0 {
		c.Remove(productID)
		return nil
	}
	if i := c.indexOf(productID); i >= 0 {
		c.lines[i].Quantity = n
		c.touch()
	}
	return nil
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		c.touch()
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.touch()
}

// Lines returns a copy of the lines in the order they were first added.
func (c *Cart) Lines() []CartLine {
	if len(c.lines) == 0 {
		return []CartLine{}
	}
	return slices.Clone(c.lines)
}

// Line returns the line for productID.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

func (c *Cart) LineCount() int { return len(c.lines) }

// ItemCount is the sum of all line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of price × quantity over all lines, computed on
// every call.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Clone returns a deep copy safe to hand out of a repository lock.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.lines = slices.Clone(c.lines)
	return &cp
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
