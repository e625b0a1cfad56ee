// Package services exposes the kiosk cart over HTTP and its health over gRPC.
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cart"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/checkout"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/notify"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/presenter"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Catalog is what the kiosk API reads from the menu.
type Catalog interface {
	ProductByID(id int) (model.Product, bool)
	ByCategory(category string) []model.Product
}

// SummarySource provides the cart as last drawn.
type SummarySource interface {
	Summary() presenter.Summary
}

// Pinger reports whether the cart store is reachable.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// CartService serves the single kiosk cart over HTTP.
type CartService struct {
	engine  *cart.Engine
	view    SummarySource
	catalog Catalog
	flow    *checkout.Flow
	feed    *notify.Feed
	store   Pinger
	log     logrus.FieldLogger
}

// NewCartService wires the HTTP API to the engine, the view it refreshes and
// the checkout flow.
func NewCartService(engine *cart.Engine, view SummarySource, catalog Catalog, flow *checkout.Flow, feed *notify.Feed, store Pinger, log logrus.FieldLogger) *CartService {
	return &CartService{
		engine:  engine,
		view:    view,
		catalog: catalog,
		flow:    flow,
		feed:    feed,
		store:   store,
		log:     log,
	}
}

// Router returns the API handler.
func (s *CartService) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/cart", s.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", s.clearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", s.addItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id:[0-9]+}", s.updateItem).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{id:[0-9]+}", s.removeItem).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items/{id:[0-9]+}/{action}", s.runAction).Methods(http.MethodPost)
	api.HandleFunc("/checkout", s.checkout).Methods(http.MethodPost)
	api.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/notifications", s.listNotifications).Methods(http.MethodGet)
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	return requestIDMiddleware(logMiddleware(s.log, r))
}

type rowJSON struct {
	ProductID int            `json:"product_id"`
	Name      string         `json:"name"`
	Image     string         `json:"image,omitempty"`
	Quantity  int            `json:"quantity"`
	UnitPrice json.Number    `json:"unit_price"`
	LineTotal json.Number    `json:"line_total"`
	Controls  []cart.Command `json:"controls"`
}

type cartJSON struct {
	Count        int         `json:"count"`
	Total        json.Number `json:"total"`
	TotalDisplay string      `json:"total_display"`
	Empty        bool        `json:"empty"`
	Items        []rowJSON   `json:"items"`
}

func toCartJSON(sum presenter.Summary) cartJSON {
	out := cartJSON{
		Count:        sum.Count,
		Total:        json.Number(sum.Total.StringFixed(2)),
		TotalDisplay: sum.TotalDisplay(),
		Empty:        sum.Empty,
		Items:        make([]rowJSON, 0, len(sum.Rows)),
	}
	for _, r := range sum.Rows {
		out.Items = append(out.Items, rowJSON{
			ProductID: r.ProductID,
			Name:      r.Name,
			Image:     r.Image,
			Quantity:  r.Quantity,
			UnitPrice: json.Number(r.UnitPrice.StringFixed(2)),
			LineTotal: json.Number(r.LineTotal.StringFixed(2)),
			Controls:  r.Controls,
		})
	}
	return out
}

type productJSON struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
	Popular     bool        `json:"popular"`
}

func (s *CartService) getCart(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, toCartJSON(s.view.Summary()))
}

func (s *CartService) clearCart(w http.ResponseWriter, r *http.Request) {
	s.engine.Clear(r.Context())
	s.getCart(w, r)
}

type addItemRequest struct {
	ProductID int  `json:"product_id"`
	Quantity  *int `json:"quantity"`
}

func (s *CartService) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode body"))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 || qty > cart.MaxQuantity {
		s.writeError(w, http.StatusBadRequest, errors.Errorf("quantity must be between 1 and %d", cart.MaxQuantity))
		return
	}
	product, ok := s.catalog.ProductByID(req.ProductID)
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.Errorf("product %d not found", req.ProductID))
		return
	}
	if have := s.engine.ItemQuantity(product.ID); have > cart.MaxQuantity-qty {
		s.writeError(w, http.StatusBadRequest, errors.Errorf("cart already holds %d of product %d, the limit is %d", have, product.ID, cart.MaxQuantity))
		return
	}
	s.engine.AddItem(r.Context(), product, qty)
	s.getCart(w, r)
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (s *CartService) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.inCart(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode body"))
		return
	}
	if req.Quantity == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("quantity is required"))
		return
	}
	if *req.Quantity > cart.MaxQuantity {
		s.writeError(w, http.StatusBadRequest, errors.Errorf("quantity must be at most %d", cart.MaxQuantity))
		return
	}
	s.engine.UpdateQuantity(r.Context(), id, *req.Quantity)
	s.getCart(w, r)
}

func (s *CartService) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.inCart(w, r)
	if !ok {
		return
	}
	s.engine.RemoveItem(r.Context(), id)
	s.getCart(w, r)
}

func (s *CartService) runAction(w http.ResponseWriter, r *http.Request) {
	action, err := cart.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	id, ok := s.inCart(w, r)
	if !ok {
		return
	}
	if err := s.engine.Dispatch(r.Context(), cart.Command{Action: action, ProductID: id}); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.getCart(w, r)
}

// inCart parses {id} and answers 404 when the cart has no such line.
func (s *CartService) inCart(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "product id"))
		return 0, false
	}
	if s.engine.ItemQuantity(id) == 0 {
		s.writeError(w, http.StatusNotFound, errors.Errorf("product %d is not in the cart", id))
		return 0, false
	}
	return id, true
}

type receiptJSON struct {
	OrderID string      `json:"order_id"`
	Message string      `json:"message,omitempty"`
	Total   json.Number `json:"total"`
}

func (s *CartService) checkout(w http.ResponseWriter, r *http.Request) {
	var info checkout.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode body"))
		return
	}
	if err := info.Validate(); err != nil {
		var verrs checkout.ValidationErrors
		if errors.As(err, &verrs) {
			s.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"error": "invalid customer info", "fields": verrs})
			return
		}
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	receipt, err := s.flow.Checkout(r.Context(), checkout.Once(info))
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, receiptJSON{
			OrderID: receipt.OrderID,
			Message: receipt.Message,
			Total:   json.Number(receipt.Total.StringFixed(2)),
		})
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrCheckoutInProgress):
		s.writeError(w, http.StatusConflict, err)
	case errors.Is(err, checkout.ErrCheckoutCancelled):
		s.writeError(w, http.StatusRequestTimeout, err)
	default:
		s.writeError(w, http.StatusBadGateway, err)
	}
}

func (s *CartService) listProducts(w http.ResponseWriter, r *http.Request) {
	products := s.catalog.ByCategory(r.URL.Query().Get("category"))
	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, productJSON{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       json.Number(p.Price.String()),
			Category:    p.Category,
			Image:       p.Image,
			Popular:     p.Popular,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *CartService) listNotifications(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		s.writeJSON(w, http.StatusOK, []notify.Message{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.feed.Active())
}

func (s *CartService) health(w http.ResponseWriter, r *http.Request) {
	if s.store != nil && !s.store.Ping(r.Context()) {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CartService) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("write response")
	}
}

func (s *CartService) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Warn("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
