package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Client reads the catalog from the storefront API.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tracer:  otel.Tracer("storefront/catalog"),
	}
}

// Products fetches GET /api/products, optionally filtered by category.
func (c *Client) Products(ctx context.Context, category string) ([]model.Product, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.Products")
	defer span.End()
	span.SetAttributes(attribute.String("app.category", category))

	endpoint := c.baseURL + "/api/products"
	if category != "" {
		endpoint += "?" + url.Values{"category": {category}}.Encode()
	}
	var products []model.Product
	if err := c.getJSON(ctx, endpoint, &products); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("app.products", len(products)))
	return products, nil
}

// Categories fetches GET /api/categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.getJSON(ctx, c.baseURL+"/api/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "GET %s", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("GET %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrapf(err, "decode %s", endpoint)
	}
	return nil
}

// Load builds a catalog from the API, falling back to the embedded menu
// when the API cannot be reached.
func Load(ctx context.Context, client *Client, log logrus.FieldLogger) (*Memory, error) {
	if client != nil {
		products, err := client.Products(ctx, "")
		if err == nil {
			categories, cerr := client.Categories(ctx)
			if cerr != nil {
				log.WithError(cerr).Warn("categories unavailable")
			}
			log.WithField("products", len(products)).Info("catalog loaded from API")
			return NewMemory(products, categories), nil
		}
		log.WithError(err).Warn("catalog API unreachable, using the built-in menu")
	}

	products, categories, err := DefaultMenu()
	if err != nil {
		return nil, err
	}
	return NewMemory(products, categories), nil
}
