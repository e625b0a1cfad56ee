package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMenu(t *testing.T) {
	products, categories, err := DefaultMenu()
	require.NoError(t, err)
	assert.Len(t, products, 13)
	assert.Len(t, categories, 4)

	m := NewMemory(products, categories)
	p, ok := m.ProductByID(4)
	require.True(t, ok)
	assert.Equal(t, "Ropa Vieja", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("16.99")))

	_, ok = m.ProductByID(99)
	assert.False(t, ok)

	assert.Len(t, m.ByCategory("bebidas"), 3)
	assert.Len(t, m.ByCategory("all"), 13)
	assert.Len(t, m.Popular(), 6)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory([]model.Product{{ID: 1, Name: "A"}}, nil)
	all := m.AllProducts()
	all[0].Name = "changed"

	p, _ := m.ProductByID(1)
	assert.Equal(t, "A", p.Name)
	assert.Equal(t, "A", m.AllProducts()[0].Name)
}

func TestClientProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products":
			assert.Equal(t, "postres", r.URL.Query().Get("category"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":11,"name":"Flan Cubano","price":6.99,"category":"postres","image":"/assets/flan.jpg"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	products, err := NewClient(srv.URL+"/", srv.Client()).Products(context.Background(), "postres")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 11, products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("6.99")))
}

func TestClientRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).Products(context.Background(), "")
	assert.Error(t, err)
}

func TestLoadFallsBackToDefaultMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	logger, hook := test.NewNullLogger()

	m, err := Load(context.Background(), NewClient(srv.URL, srv.Client()), logger)
	require.NoError(t, err)
	assert.Len(t, m.AllProducts(), 13)
	assert.Len(t, m.Categories(), 4)
	assert.NotEmpty(t, hook.Entries)
}

func TestLoadFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products":
			w.Write([]byte(`[{"id":1,"name":"Medianoche","price":11.99,"category":"sandwiches"}]`))
		case "/api/categories":
			w.Write([]byte(`[{"id":"sandwiches","name":"Sándwiches"}]`))
		}
	}))
	defer srv.Close()
	logger, _ := test.NewNullLogger()

	m, err := Load(context.Background(), NewClient(srv.URL, srv.Client()), logger)
	require.NoError(t, err)
	assert.Len(t, m.AllProducts(), 1)
	assert.Equal(t, []model.Category{{ID: "sandwiches", Name: "Sándwiches"}}, m.Categories())
}
