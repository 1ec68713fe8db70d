package services

import (
	"github.com/shopspring/decimal"

	"coopsite/internal/domain"
)

type CartLine struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered set of lines keyed by product id. Every quantity is >= 1.
type Cart struct {
	lines []CartLine
}

func (c *Cart) find(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart, merging with an existing line.
func (c *Cart) Add(p domain.Product) {
	if i := c.find(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: 1})
}

// UpdateQuantity ignores quantities below 1 and unknown products.
// Use Remove to drop a line.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	if qty < 1 {
		return
	}
	if i := c.find(productID); i >= 0 {
		c.lines[i].Quantity = qty
	}
}

func (c *Cart) Remove(productID string) {
	if i := c.find(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// Count is the number of units, not lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Snapshot freezes the lines into order items at current prices.
func (c *Cart) Snapshot() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, domain.Snapshot(l.Product, l.Quantity))
	}
	return items
}

// CartView is the JSON shape of a cart.
type CartView struct {
	Lines []CartLine      `json:"lines"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func (c *Cart) View() CartView {
	return CartView{Lines: c.Lines(), Count: c.Count(), Total: c.Total()}
}
