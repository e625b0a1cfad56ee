package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/notify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const successNoticeDuration = 8 * time.Second

// Cart is the part of the cart engine checkout needs.
type Cart interface {
	Items() []model.LineItem
	IsEmpty() bool
	Clear(ctx context.Context)
}

// CartView is closed after a successful order.
type CartView interface {
	CloseCart()
}

// Flow runs checkout attempts one at a time.
type Flow struct {
	mu    sync.Mutex
	state State

	cart     Cart
	view     CartView
	client   OrderClient
	notifier notify.Notifier
	log      logrus.FieldLogger

	tracer   trace.Tracer
	attempts metric.Int64Counter
}

// NewFlow constructor. view may be nil.
func NewFlow(cart Cart, view CartView, client OrderClient, notifier notify.Notifier, log logrus.FieldLogger) *Flow {
	if notifier == nil {
		notifier = notify.Discard
	}
	attempts, err := otel.Meter("storefront/checkout").Int64Counter(
		"checkout.attempts",
		metric.WithDescription("Checkout attempts, by result"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &Flow{
		state:    Idle,
		cart:     cart,
		view:     view,
		client:   client,
		notifier: notifier,
		log:      log,
		tracer:   otel.Tracer("storefront/checkout"),
		attempts: attempts,
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

// Checkout runs one attempt: collect info, submit a snapshot of the cart and
// clear the cart on success. The cart stays unlocked while the order is in
// flight, and success clears whatever it holds at that moment.
func (f *Flow) Checkout(ctx context.Context, collector InfoCollector) (Receipt, error) {
	ctx, span := f.tracer.Start(ctx, "checkout.Checkout")
	defer span.End()

	f.mu.Lock()
	if f.state.busy() {
		f.mu.Unlock()
		return Receipt{}, ErrCheckoutInProgress
	}
	if f.cart.IsEmpty() {
		f.mu.Unlock()
		f.notifier.Notify("Your cart is empty", notify.Error, notify.DefaultDuration)
		f.record(ctx, "empty")
		return Receipt{}, ErrEmptyCart
	}
	f.state = CollectingInfo
	f.mu.Unlock()

	info, err := f.collect(ctx, collector)
	if err != nil {
		f.setState(Cancelled)
		f.record(ctx, "cancelled")
		return Receipt{}, err
	}

	items := f.cart.Items()
	if len(items) == 0 {
		f.setState(Idle)
		f.notifier.Notify("Your cart is empty", notify.Error, notify.DefaultDuration)
		f.record(ctx, "empty")
		return Receipt{}, ErrEmptyCart
	}
	req := OrderRequest{
		Items:    items,
		Total:    model.SumPrice(items),
		Customer: info,
	}
	span.SetAttributes(
		attribute.Int("app.items", len(items)),
		attribute.String("app.total", req.Total.StringFixed(2)),
	)

	f.setState(Submitting)
	receipt, err := f.client.SubmitOrder(ctx, req)
	if err == nil && receipt.OrderID == "" {
		err = errors.Wrap(ErrOrderRejected, "acknowledgment has no order id")
	}
	if err != nil {
		f.setState(Failed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.log.WithError(err).Error("checkout failed, cart left intact")
		f.notifier.Notify("Error processing the order. Please try again.", notify.Error, notify.DefaultDuration)
		f.record(ctx, "failed")
		return Receipt{}, errors.Wrap(err, "submit order")
	}

	span.SetAttributes(attribute.String("app.order_id", receipt.OrderID))
	f.notifier.Notify(fmt.Sprintf("Order placed! ID: %s", receipt.OrderID), notify.Success, successNoticeDuration)
	f.cart.Clear(ctx)
	if f.view != nil {
		f.view.CloseCart()
	}
	f.setState(Succeeded)
	f.log.WithFields(logrus.Fields{
		"order_id": receipt.OrderID,
		"items":    len(items),
		"total":    req.Total.StringFixed(2),
	}).Info("order placed")
	f.record(ctx, "succeeded")
	return receipt, nil
}

// collect prompts until the customer submits valid info or dismisses the prompt.
func (f *Flow) collect(ctx context.Context, collector InfoCollector) (CustomerInfo, error) {
	var invalid error
	for {
		if ctx.Err() != nil {
			return CustomerInfo{}, errors.Wrap(ErrCheckoutCancelled, ctx.Err().Error())
		}
		c := collector.CollectInfo(ctx, invalid)
		if c.Outcome != Submitted {
			return CustomerInfo{}, ErrCheckoutCancelled
		}
		info := c.Info.Normalized()
		if invalid = info.Validate(); invalid == nil {
			return info, nil
		}
		f.log.WithError(invalid).Debug("customer info rejected, prompting again")
	}
}

func (f *Flow) record(ctx context.Context, result string) {
	if f.attempts != nil {
		f.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}
