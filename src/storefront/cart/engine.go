// Package cart owns the shopping cart. Every mutation is one atomic step:
// change the in-memory list, persist it, then refresh the view.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/notify"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const noticeDuration = 3 * time.Second

// MaxQuantity is the largest quantity a single line may hold.
const MaxQuantity = 999

// Engine is the single owner of the cart's line items.
type Engine struct {
	mu    sync.Mutex
	items []model.LineItem

	store    Store
	catalog  Catalog
	sink     Sink
	notifier notify.Notifier

	tracer    trace.Tracer
	mutations metric.Int64Counter
	handlers  map[Action]handlerFunc
}

// NewEngine loads the persisted cart once and draws it.
func NewEngine(ctx context.Context, store Store, catalog Catalog, sink Sink, notifier notify.Notifier) *Engine {
	if notifier == nil {
		notifier = notify.Discard
	}
	mutations, err := otel.Meter("storefront/cart").Int64Counter(
		"cart.mutations",
		metric.WithDescription("Cart mutations applied, by operation"),
	)
	if err != nil {
		otel.Handle(err)
	}

	e := &Engine{
		store:     store,
		catalog:   catalog,
		sink:      sink,
		notifier:  notifier,
		tracer:    otel.Tracer("storefront/cart"),
		mutations: mutations,
	}
	e.handlers = e.handlerTable()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = store.Load(ctx)
	if e.items == nil {
		e.items = []model.LineItem{}
	}
	e.refresh()
	return e
}

// Add puts one unit of product in the cart.
func (e *Engine) Add(ctx context.Context, product model.Product) {
	e.AddItem(ctx, product, 1)
}

// AddItem adds quantity units of product. An existing line keeps the price
// captured on its first add. A non-positive quantity, or one that would take
// the line past MaxQuantity, does nothing.
func (e *Engine) AddItem(ctx context.Context, product model.Product, quantity int) {
	ctx, span := e.tracer.Start(ctx, "cart.AddItem")
	defer span.End()
	span.SetAttributes(
		attribute.Int("app.product_id", product.ID),
		attribute.Int("app.quantity", quantity),
	)
	if quantity <= 0 || quantity > MaxQuantity {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(product.ID); i >= 0 {
		if e.items[i].Quantity > MaxQuantity-quantity {
			return
		}
		e.items[i].Quantity += quantity
	} else {
		e.items = append(e.items, model.LineItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}
	e.commit(ctx, "add")
	e.notifier.Notify(fmt.Sprintf("%s added to cart", product.Name), notify.Success, noticeDuration)
}

// RemoveItem deletes the line for productID. Unknown ids are ignored.
func (e *Engine) RemoveItem(ctx context.Context, productID int) {
	ctx, span := e.tracer.Start(ctx, "cart.RemoveItem")
	defer span.End()
	span.SetAttributes(attribute.Int("app.product_id", productID))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(ctx, productID)
}

// UpdateQuantity sets the quantity for productID exactly. A non-positive
// quantity removes the line. Unknown ids and quantities above MaxQuantity
// are ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, productID, quantity int) {
	ctx, span := e.tracer.Start(ctx, "cart.UpdateQuantity")
	defer span.End()
	span.SetAttributes(
		attribute.Int("app.product_id", productID),
		attribute.Int("app.quantity", quantity),
	)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.setQuantityLocked(ctx, productID, quantity)
}

// adjustQuantity moves the quantity for productID by delta in one step.
func (e *Engine) adjustQuantity(ctx context.Context, productID, delta int) {
	ctx, span := e.tracer.Start(ctx, "cart.AdjustQuantity")
	defer span.End()
	span.SetAttributes(
		attribute.Int("app.product_id", productID),
		attribute.Int("app.delta", delta),
	)

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(productID)
	if i < 0 {
		return
	}
	e.setQuantityLocked(ctx, productID, e.items[i].Quantity+delta)
}

func (e *Engine) setQuantityLocked(ctx context.Context, productID, quantity int) {
	if quantity > MaxQuantity {
		return
	}
	if quantity <= 0 {
		e.removeLocked(ctx, productID)
		return
	}
	i := e.indexOf(productID)
	if i < 0 {
		return
	}
	e.items[i].Quantity = quantity
	e.commit(ctx, "update_quantity")
}

// Clear empties the cart.
func (e *Engine) Clear(ctx context.Context) {
	ctx, span := e.tracer.Start(ctx, "cart.Clear")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	span.SetAttributes(attribute.Int("app.items_cleared", len(e.items)))
	e.items = []model.LineItem{}
	e.commit(ctx, "clear")
	e.notifier.Notify("Cart emptied", notify.Info, noticeDuration)
}

// Items returns a snapshot of the cart.
func (e *Engine) Items() []model.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneItems(e.items)
}

// ItemQuantity returns the quantity for productID, or 0 if absent.
func (e *Engine) ItemQuantity(productID int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(productID); i >= 0 {
		return e.items[i].Quantity
	}
	return 0
}

// TotalItems is the sum of all quantities.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.SumQuantity(e.items)
}

// TotalPrice is the exact sum of price * quantity. Round only for display.
func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.SumPrice(e.items)
}

// IsEmpty reports whether the cart has no lines.
func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items) == 0
}

func (e *Engine) removeLocked(ctx context.Context, productID int) {
	i := e.indexOf(productID)
	if i < 0 {
		return
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	e.commit(ctx, "remove")

	if product, ok := e.catalog.ProductByID(productID); ok {
		e.notifier.Notify(fmt.Sprintf("%s removed from cart", product.Name), notify.Info, noticeDuration)
	}
}

// commit persists and redraws. Callers hold e.mu.
func (e *Engine) commit(ctx context.Context, op string) {
	e.store.Save(ctx, model.CloneItems(e.items))
	e.refresh()
	if e.mutations != nil {
		e.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
}

func (e *Engine) refresh() {
	if e.sink == nil {
		return
	}
	e.sink.Refresh(model.CloneItems(e.items), e.catalog.AllProducts())
}

func (e *Engine) indexOf(productID int) int {
	for i, it := range e.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
