package cart

import (
	"context"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
)

// Store persists the cart. Implementations must not fail: Load returns an
// empty list on any problem and Save swallows write errors.
type Store interface {
	Load(ctx context.Context) []model.LineItem
	Save(ctx context.Context, items []model.LineItem)
}

// Catalog resolves product ids.
type Catalog interface {
	ProductByID(id int) (model.Product, bool)
	AllProducts() []model.Product
}

// Sink redraws the cart after each mutation. It runs while the engine lock
// is held and must not call back into the Engine.
type Sink interface {
	Refresh(items []model.LineItem, products []model.Product)
}
