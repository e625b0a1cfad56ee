package cartstore

import (
	"context"

	"github.com/pkg/errors"
)

// DefaultSlotKey names the single cart slot a storefront session uses.
const DefaultSlotKey = "sandwich_asere_cart"

// ErrSlotEmpty is returned by Slot.Read when nothing has been written yet.
var ErrSlotEmpty = errors.New("cart slot is empty")

// Slot is one durable key/value cell holding the serialized cart.
type Slot interface {
	Initialize(ctx context.Context) error

	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error

	Ping(ctx context.Context) bool
}
