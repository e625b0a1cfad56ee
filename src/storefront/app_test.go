package main

import (
	"flag"
	"testing"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cartstore"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func cliContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("storefront", flag.ContinueOnError)
	for _, name := range []string{"store", "store-dir", "slot", "redis-addr", "api", "port", "health-port"} {
		set.String(name, "", "")
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("CART_STORE", "redis")
	t.Setenv("CART_SLOT_KEY", "from-env")

	cfg, err := loadConfig(cliContext(t, "--store", "memory", "--port", "9090"))
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.CartStore)
	assert.Equal(t, "from-env", cfg.CartSlotKey)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadConfigRedisAddressFromFlag(t *testing.T) {
	t.Setenv("CART_STORE", "redis")
	t.Setenv("REDIS_ADDR", "")
	_, err := loadConfig(cliContext(t))
	assert.Error(t, err)

	cfg, err := loadConfig(cliContext(t, "--redis-addr", "redis-cart"))
	require.NoError(t, err)
	assert.Equal(t, "redis-cart:6379", cfg.RedisAddr)
}

func TestNewSlot(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()

	slot, err := newSlot(config.Config{CartStore: config.StoreMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &cartstore.LocalSlot{}, slot)

	slot, err = newSlot(config.Config{CartStore: config.StoreFile, CartStoreDir: dir, CartSlotKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &cartstore.FileSlot{}, slot)

	slot, err = newSlot(config.Config{CartStore: config.StoreRedis, RedisAddr: "localhost:6379", CartSlotKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &cartstore.RedisSlot{}, slot)
	require.NoError(t, slot.(*cartstore.RedisSlot).Close())

	_, err = newSlot(config.Config{CartStore: "sqlite"}, logger)
	assert.Error(t, err)
}
