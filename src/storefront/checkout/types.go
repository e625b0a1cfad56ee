// Package checkout turns the cart into an order: it collects the customer's
// contact details, submits the order once and clears the cart on success.
package checkout

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutCancelled  = errors.New("checkout cancelled")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrOrderRejected      = errors.New("order rejected")
)

// State is the checkout attempt's position in its lifecycle.
type State int

const (
	Idle State = iota
	CollectingInfo
	Submitting
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CollectingInfo:
		return "collecting_info"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// busy reports whether an attempt is underway.
func (s State) busy() bool {
	return s == CollectingInfo || s == Submitting
}

// CustomerInfo is collected once per attempt and never persisted.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Normalized trims surrounding whitespace from every field.
func (c CustomerInfo) Normalized() CustomerInfo {
	return CustomerInfo{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors collects every invalid field of a submission.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Validate checks the required fields. Phone is optional and free-form.
func (c CustomerInfo) Validate() error {
	c = c.Normalized()
	var errs ValidationErrors
	if c.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Reason: "is required"})
	}
	if c.Email == "" {
		errs = append(errs, ValidationError{Field: "email", Reason: "is required"})
	} else if !validEmail(c.Email) {
		errs = append(errs, ValidationError{Field: "email", Reason: "is not a valid address"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validEmail accepts a bare addr-spec whose domain has at least one dot.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// OrderRequest is the snapshot sent to the order API.
type OrderRequest struct {
	Items    []model.LineItem
	Total    decimal.Decimal
	Customer CustomerInfo
}

// Receipt is the backend's acknowledgment of an accepted order.
type Receipt struct {
	OrderID string
	Message string
	Total   decimal.Decimal
}

// OrderClient submits orders to the backend.
type OrderClient interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (Receipt, error)
}

// Outcome is how the customer resolved the info prompt.
type Outcome int

const (
	Submitted Outcome = iota + 1
	Dismissed
)

// Collected is the result of one info prompt.
type Collected struct {
	Outcome Outcome
	Info    CustomerInfo
}

// InfoCollector asks the customer for contact details. invalid is the
// problem with the previous answer, or nil on the first prompt. A cancelled
// ctx should resolve as Dismissed.
type InfoCollector interface {
	CollectInfo(ctx context.Context, invalid error) Collected
}

// CollectorFunc adapts a function to InfoCollector.
type CollectorFunc func(ctx context.Context, invalid error) Collected

func (f CollectorFunc) CollectInfo(ctx context.Context, invalid error) Collected {
	return f(ctx, invalid)
}

// Once resolves the first prompt with info and dismisses any re-prompt.
// It suits callers that validated info up front.
func Once(info CustomerInfo) InfoCollector {
	asked := false
	return CollectorFunc(func(ctx context.Context, invalid error) Collected {
		if asked || ctx.Err() != nil {
			return Collected{Outcome: Dismissed}
		}
		asked = true
		return Collected{Outcome: Submitted, Info: info}
	})
}
