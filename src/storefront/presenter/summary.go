// Package presenter turns cart contents into something a person can read.
package presenter

import (
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cart"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/shopspring/decimal"
)

// Row is one rendered cart line.
type Row struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Controls  []cart.Command  `json:"controls"`
}

// Summary is everything the cart view shows.
type Summary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
	Rows  []Row           `json:"rows"`
	Empty bool            `json:"empty"`
}

// TotalDisplay formats the total as currency, rounding to cents.
func (s Summary) TotalDisplay() string {
	return FormatMoney(s.Total)
}

// FormatMoney renders an amount as $0.00.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Summarize derives counts, the total and one row per line item whose product
// is still in the catalog. Lines with unknown products still count toward the
// totals but get no row.
func Summarize(items []model.LineItem, products []model.Product) Summary {
	byID := make(map[int]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	s := Summary{
		Count: model.SumQuantity(items),
		Total: model.SumPrice(items),
		Rows:  make([]Row, 0, len(items)),
		Empty: len(items) == 0,
	}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		s.Rows = append(s.Rows, Row{
			ProductID: it.ProductID,
			Name:      p.Name,
			Image:     p.Image,
			Category:  p.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: it.Subtotal(),
			Controls: []cart.Command{
				{Action: cart.Decrease, ProductID: it.ProductID},
				{Action: cart.Increase, ProductID: it.ProductID},
				{Action: cart.Remove, ProductID: it.ProductID},
			},
		})
	}
	return s
}
