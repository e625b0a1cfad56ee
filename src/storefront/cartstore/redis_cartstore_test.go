package cartstore

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Redis when REDIS_ADDR is set.
func TestRedisSlot(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	key := "test:" + uuid.NewString()
	t.Cleanup(func() {
		client.Del(context.Background(), key)
		client.Close()
	})

	slot := NewRedisSlotWithClient(client, key, logrus.New())
	require.NoError(t, slot.Initialize(ctx))

	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[{"product_id":1,"quantity":1,"price":3.99}]`)))
	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":1,"quantity":1,"price":3.99}]`, string(got))
}
