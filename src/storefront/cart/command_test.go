package cart_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.engine.AddItem(ctx, cubano, 1)

	require.NoError(t, f.engine.Dispatch(ctx, cart.Command{Action: cart.Increase, ProductID: cubano.ID}))
	assert.Equal(t, 2, f.engine.ItemQuantity(cubano.ID))

	require.NoError(t, f.engine.Dispatch(ctx, cart.Command{Action: cart.Decrease, ProductID: cubano.ID}))
	require.NoError(t, f.engine.Dispatch(ctx, cart.Command{Action: cart.Decrease, ProductID: cubano.ID}))
	assert.True(t, f.engine.IsEmpty(), "decrease below one removes the line")

	f.engine.AddItem(ctx, cafe, 3)
	require.NoError(t, f.engine.Dispatch(ctx, cart.Command{Action: cart.Remove, ProductID: cafe.ID}))
	assert.True(t, f.engine.IsEmpty())

	t.Run("increase on absent item does nothing", func(t *testing.T) {
		require.NoError(t, f.engine.Dispatch(ctx, cart.Command{Action: cart.Increase, ProductID: flan.ID}))
		assert.True(t, f.engine.IsEmpty())
	})

	t.Run("unknown action", func(t *testing.T) {
		err := f.engine.Dispatch(ctx, cart.Command{Action: cart.Action(99), ProductID: cafe.ID})
		assert.ErrorIs(t, err, cart.ErrUnknownAction)
	})
}

func TestParseAction(t *testing.T) {
	for _, a := range []cart.Action{cart.Increase, cart.Decrease, cart.Remove} {
		got, err := cart.ParseAction(" " + a.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := cart.ParseAction("explode")
	assert.ErrorIs(t, err, cart.ErrUnknownAction)
	assert.Equal(t, "unknown", cart.Action(0).String())
}

func TestCommandJSONUsesActionNames(t *testing.T) {
	raw, err := json.Marshal(cart.Command{Action: cart.Decrease, ProductID: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"decrease","product_id":4}`, string(raw))

	var cmd cart.Command
	require.NoError(t, json.Unmarshal([]byte(`{"action":"remove","product_id":9}`), &cmd))
	assert.Equal(t, cart.Command{Action: cart.Remove, ProductID: 9}, cmd)

	assert.Error(t, json.Unmarshal([]byte(`{"action":"explode","product_id":9}`), &cmd))
}
