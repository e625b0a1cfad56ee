package cart

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownAction is returned for commands with no registered handler.
var ErrUnknownAction = errors.New("unknown cart action")

// Action is a per-row cart control.
type Action int

const (
	Increase Action = iota + 1
	Decrease
	Remove
)

var actionNames = map[Action]string{
	Increase: "increase",
	Decrease: "decrease",
	Remove:   "remove",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction maps a control name ("increase", "decrease", "remove") to an Action.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownAction, "%q", s)
}

func (a Action) MarshalText() ([]byte, error) {
	if _, ok := actionNames[a]; !ok {
		return nil, errors.Wrapf(ErrUnknownAction, "action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Command is a control activated on one cart row.
type Command struct {
	Action    Action `json:"action"`
	ProductID int    `json:"product_id"`
}

type handlerFunc func(ctx context.Context, productID int)

func (e *Engine) handlerTable() map[Action]handlerFunc {
	return map[Action]handlerFunc{
		Increase: func(ctx context.Context, id int) { e.adjustQuantity(ctx, id, 1) },
		Decrease: func(ctx context.Context, id int) { e.adjustQuantity(ctx, id, -1) },
		Remove:   e.RemoveItem,
	}
}

// Dispatch runs the handler registered for cmd.Action.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) error {
	h, ok := e.handlers[cmd.Action]
	if !ok {
		return errors.Wrapf(ErrUnknownAction, "action %d", int(cmd.Action))
	}
	h(ctx, cmd.ProductID)
	return nil
}
