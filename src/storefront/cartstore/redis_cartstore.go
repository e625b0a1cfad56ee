package cartstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const redisCartField = "cart"

// RedisSlot keeps the blob in the "cart" field of a Redis hash named by the slot key.
type RedisSlot struct {
	client *redis.Client
	key    string
	log    logrus.FieldLogger

	maxAttempts int
	maxBackoff  time.Duration
}

// NewRedisSlot accepts a Redis connection string ("redis://..." or "host:port").
func NewRedisSlot(redisAddr, key string, log logrus.FieldLogger) *RedisSlot {
	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		// not a URL, use it as a plain address
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}

	client := redis.NewClient(opts)
	client.AddHook(redisotel.NewTracingHook())

	return NewRedisSlotWithClient(client, key, log)
}

// NewRedisSlotWithClient wraps an existing client.
func NewRedisSlotWithClient(client *redis.Client, key string, log logrus.FieldLogger) *RedisSlot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &RedisSlot{
		client:      client,
		key:         key,
		log:         log,
		maxAttempts: 10,
		maxBackoff:  30 * time.Second,
	}
}

// Initialize waits for Redis to answer a ping, backing off exponentially.
func (r *RedisSlot) Initialize(ctx context.Context) error {
	for i := 0; i < r.maxAttempts; i++ {
		if r.Ping(ctx) {
			r.log.WithField("attempt", i+1).Info("redis cart slot ready")
			return nil
		}

		backoff := time.Duration(500*(1<<uint(i))) * time.Millisecond
		if backoff > r.maxBackoff {
			backoff = r.maxBackoff
		}
		r.log.WithFields(logrus.Fields{"attempt": i + 1, "backoff": backoff}).Warn("redis not reachable yet")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Errorf("redis not reachable after %d attempts", r.maxAttempts)
}

func (r *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	val, err := r.client.HGet(ctx, r.key, redisCartField).Bytes()
	if err == redis.Nil {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis HGet")
	}
	return val, nil
}

func (r *RedisSlot) Write(ctx context.Context, data []byte) error {
	if err := r.client.HSet(ctx, r.key, redisCartField, data).Err(); err != nil {
		return errors.Wrap(err, "redis HSet")
	}
	return nil
}

// Ping checks if Redis is alive.
func (r *RedisSlot) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		r.log.WithError(err).Debug("redis ping failed")
		return false
	}
	return true
}

// Close releases the underlying connection pool.
func (r *RedisSlot) Close() error {
	return r.client.Close()
}
