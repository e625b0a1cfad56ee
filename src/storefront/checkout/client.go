package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type purchaseItem struct {
	ProductID int         `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

type purchaseRequest struct {
	Items         []purchaseItem `json:"items"`
	Total         json.Number    `json:"total"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	CustomerPhone string         `json:"customer_phone"`
}

type purchaseResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	OrderID string          `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

// HTTPOrderClient posts orders to the storefront API.
type HTTPOrderClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPOrderClient returns a client for the API rooted at baseURL.
func NewHTTPOrderClient(baseURL string, httpClient *http.Client) *HTTPOrderClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPOrderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SubmitOrder sends POST /api/purchase once. Each call carries a fresh
// Idempotency-Key.
func (c *HTTPOrderClient) SubmitOrder(ctx context.Context, req OrderRequest) (Receipt, error) {
	body := purchaseRequest{
		Items:         make([]purchaseItem, 0, len(req.Items)),
		Total:         json.Number(req.Total.String()),
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		CustomerPhone: req.Customer.Phone,
	}
	for _, it := range req.Items {
		body.Items = append(body.Items, purchaseItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     json.Number(it.Price.String()),
		})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "encode purchase")
	}

	endpoint := c.baseURL + "/api/purchase"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, errors.Wrap(err, "build purchase request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Receipt{}, errors.Wrapf(err, "POST %s", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Receipt{}, errors.Wrapf(ErrOrderRejected, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var ack purchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return Receipt{}, errors.Wrap(err, "decode purchase response")
	}
	if ack.OrderID == "" {
		return Receipt{}, errors.Wrap(ErrOrderRejected, "response has no order_id")
	}
	return Receipt{OrderID: ack.OrderID, Message: ack.Message, Total: ack.Total}, nil
}
