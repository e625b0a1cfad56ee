// Package model holds the types shared by the catalog, the cart and checkout.
package model

import "github.com/shopspring/decimal"

// Product is a catalog entry. The cart references it by ID but does not own it.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Popular     bool            `json:"popular"`
}

// Category groups products on the menu.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LineItem is one product's entry in the cart. Price is the unit price
// captured when the product was first added.
type LineItem struct {
	ProductID int
	Quantity  int
	Price     decimal.Decimal
}

// Subtotal returns Price * Quantity without rounding.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// CloneItems returns a copy of items that shares no backing array.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// SumQuantity returns the total number of units across items.
func SumQuantity(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// SumPrice returns the exact sum of price * quantity across items.
func SumPrice(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
