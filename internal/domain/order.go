package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// OrderItem is a snapshot of a product taken when the order was placed.
// Later product edits never reach it, so the fields are read-only.
type OrderItem struct {
	productID   string
	productName string
	quantity    int
	price       decimal.Decimal
}

// Snapshot copies the product's current name and price into an order line.
func Snapshot(p Product, quantity int) OrderItem {
	return OrderItem{productID: p.ID, productName: p.Name, quantity: quantity, price: p.Price}
}

// RestoreOrderItem rebuilds a stored line.
func RestoreOrderItem(productID, productName string, quantity int, price decimal.Decimal) OrderItem {
	return OrderItem{productID: productID, productName: productName, quantity: quantity, price: price}
}

func (i OrderItem) ProductID() string      { return i.productID }
func (i OrderItem) ProductName() string    { return i.productName }
func (i OrderItem) Quantity() int          { return i.quantity }
func (i OrderItem) Price() decimal.Decimal { return i.price }

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.price.Mul(decimal.NewFromInt(int64(i.quantity)))
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProductID   string          `json:"product_id"`
		ProductName string          `json:"product_name"`
		Quantity    int             `json:"quantity"`
		Price       decimal.Decimal `json:"price"`
	}{i.productID, i.productName, i.quantity, i.price})
}

type Order struct {
	ID        string          `json:"id"`
	Customer  Customer        `json:"customer"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt string          `json:"created_at"`
}

// Total sums price × quantity over items.
func Total(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
