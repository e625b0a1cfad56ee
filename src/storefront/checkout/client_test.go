package checkout_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/checkout"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() checkout.OrderRequest {
	items := []model.LineItem{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("5.00")},
		{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("3.50")},
	}
	return checkout.OrderRequest{Items: items, Total: model.SumPrice(items), Customer: ana}
}

func TestHTTPOrderClientSubmit(t *testing.T) {
	var gotBody []byte
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/purchase", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotKey = r.Header.Get("Idempotency-Key")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"success","message":"Pedido procesado","order_id":"ASR20240101120000","total":13.5}`)
	}))
	defer srv.Close()

	client := checkout.NewHTTPOrderClient(srv.URL+"/", srv.Client())
	receipt, err := client.SubmitOrder(context.Background(), sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "ASR20240101120000", receipt.OrderID)
	assert.Equal(t, "Pedido procesado", receipt.Message)
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("13.5")))

	_, err = uuid.Parse(gotKey)
	assert.NoError(t, err, "Idempotency-Key should be a uuid")
	assert.JSONEq(t, `{
		"items": [
			{"product_id": 1, "quantity": 2, "price": 5},
			{"product_id": 2, "quantity": 1, "price": 3.5}
		],
		"total": 13.5,
		"customer_name": "Ana",
		"customer_email": "ana@example.com",
		"customer_phone": "555-0101"
	}`, string(gotBody))
}

func TestHTTPOrderClientFreshKeyPerCall(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		_ = json.NewEncoder(w).Encode(map[string]string{"order_id": "ASR1"})
	}))
	defer srv.Close()

	client := checkout.NewHTTPOrderClient(srv.URL, srv.Client())
	for i := 0; i < 2; i++ {
		_, err := client.SubmitOrder(context.Background(), sampleOrder())
		require.NoError(t, err)
	}
	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestHTTPOrderClientFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		rejected bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, rejected: true},
		{name: "bad request", status: http.StatusBadRequest, body: `{"detail":"Carrito vacío"}`, rejected: true},
		{name: "missing order id", status: http.StatusOK, body: `{"status":"success"}`, rejected: true},
		{name: "undecodable body", status: http.StatusOK, body: `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := checkout.NewHTTPOrderClient(srv.URL, srv.Client()).SubmitOrder(context.Background(), sampleOrder())
			require.Error(t, err)
			if tt.rejected {
				assert.ErrorIs(t, err, checkout.ErrOrderRejected)
			}
		})
	}
}

func TestHTTPOrderClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := checkout.NewHTTPOrderClient(url, nil).SubmitOrder(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.NotErrorIs(t, err, checkout.ErrOrderRejected)
}
