// Package cartstore persists the cart between sessions. Storage faults are
// logged and swallowed: the in-memory cart stays authoritative.
package cartstore

import (
	"context"
	"encoding/json"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// storedItem is the persisted shape: {product_id, quantity, price}.
type storedItem struct {
	ProductID *int        `json:"product_id"`
	Quantity  *int        `json:"quantity"`
	Price     json.Number `json:"price"`
}

// Store reads and writes the cart through a Slot and never fails.
type Store struct {
	slot Slot
	log  logrus.FieldLogger
}

// NewStore constructor
func NewStore(slot Slot, log logrus.FieldLogger) *Store {
	return &Store{slot: slot, log: log}
}

// Load returns the persisted items, or an empty list when the slot is
// absent, unreadable or holds something that is not a valid cart.
func (s *Store) Load(ctx context.Context) []model.LineItem {
	data, err := s.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return []model.LineItem{}
	}
	if err != nil {
		s.log.WithError(err).Warn("cart slot unreadable, starting with an empty cart")
		return []model.LineItem{}
	}

	items, err := Decode(data)
	if err != nil {
		s.log.WithError(err).Warn("stored cart is corrupt, starting with an empty cart")
		return []model.LineItem{}
	}
	return items
}

// Save overwrites the slot with items. Write failures are logged only.
func (s *Store) Save(ctx context.Context, items []model.LineItem) {
	data, err := Encode(items)
	if err != nil {
		s.log.WithError(err).Error("failed to encode cart")
		return
	}
	if err := s.slot.Write(ctx, data); err != nil {
		s.log.WithError(err).WithField("items", len(items)).Error("failed to persist cart, keeping it in memory only")
	}
}

// Ping reports the health of the underlying slot.
func (s *Store) Ping(ctx context.Context) bool {
	return s.slot.Ping(ctx)
}

// Encode serializes items with prices as JSON numbers.
func Encode(items []model.LineItem) ([]byte, error) {
	out := make([]storedItem, 0, len(items))
	for _, it := range items {
		id, qty := it.ProductID, it.Quantity
		out = append(out, storedItem{
			ProductID: &id,
			Quantity:  &qty,
			Price:     json.Number(it.Price.String()),
		})
	}
	return json.Marshal(out)
}

// Decode parses a persisted cart and rejects anything that breaks the
// line item invariants.
func Decode(data []byte) ([]model.LineItem, error) {
	var raw []storedItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}

	items := make([]model.LineItem, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	for i, r := range raw {
		if r.ProductID == nil || r.Quantity == nil || r.Price == "" {
			return nil, errors.Errorf("item %d: missing field", i)
		}
		if *r.Quantity < 1 {
			return nil, errors.Errorf("item %d: quantity %d is not positive", i, *r.Quantity)
		}
		if seen[*r.ProductID] {
			return nil, errors.Errorf("item %d: duplicate product %d", i, *r.ProductID)
		}
		price, err := decimal.NewFromString(r.Price.String())
		if err != nil {
			return nil, errors.Wrapf(err, "item %d: price", i)
		}
		if price.IsNegative() {
			return nil, errors.Errorf("item %d: negative price", i)
		}
		seen[*r.ProductID] = true
		items = append(items, model.LineItem{
			ProductID: *r.ProductID,
			Quantity:  *r.Quantity,
			Price:     price,
		})
	}
	return items, nil
}
