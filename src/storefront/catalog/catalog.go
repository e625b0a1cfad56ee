// Package catalog provides product lookups for the cart. Products are
// fetched from the storefront API or taken from the embedded default menu.
package catalog

import (
	_ "embed"
	"encoding/json"
	"sort"
	"sync"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/pkg/errors"
)

//go:embed menu.json
var menuJSON []byte

type menu struct {
	Categories []model.Category `json:"categories"`
	Products   []model.Product  `json:"products"`
}

// DefaultMenu returns the restaurant's built-in menu.
func DefaultMenu() ([]model.Product, []model.Category, error) {
	var m menu
	if err := json.Unmarshal(menuJSON, &m); err != nil {
		return nil, nil, errors.Wrap(err, "decode embedded menu")
	}
	return m.Products, m.Categories, nil
}

// Memory is an in-memory catalog snapshot safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	products   []model.Product
	byID       map[int]model.Product
	categories []model.Category
}

// NewMemory returns a catalog holding products.
func NewMemory(products []model.Product, categories []model.Category) *Memory {
	m := &Memory{}
	m.Replace(products, categories)
	return m
}

// Replace swaps the whole snapshot.
func (m *Memory) Replace(products []model.Product, categories []model.Category) {
	byID := make(map[int]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ps := make([]model.Product, len(products))
	copy(ps, products)
	cs := make([]model.Category, len(categories))
	copy(cs, categories)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = ps
	m.byID = byID
	m.categories = cs
}

// ProductByID looks a product up. The second result is false if it is unknown.
func (m *Memory) ProductByID(id int) (model.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	return p, ok
}

// AllProducts returns a copy of the snapshot in catalog order.
func (m *Memory) AllProducts() []model.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, len(m.products))
	copy(out, m.products)
	return out
}

// ByCategory returns the products in category; "" or "all" returns everything.
func (m *Memory) ByCategory(category string) []model.Product {
	all := m.AllProducts()
	if category == "" || category == "all" {
		return all
	}
	out := all[:0]
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Popular returns the featured products ordered by ID.
func (m *Memory) Popular() []model.Product {
	var out []model.Product
	for _, p := range m.AllProducts() {
		if p.Popular {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Categories returns the known menu sections.
func (m *Memory) Categories() []model.Category {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Category, len(m.categories))
	copy(out, m.categories)
	return out
}
