// Package config reads the storefront settings from the environment.
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cartstore"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Cart store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds every setting the storefront reads at startup.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	CartStore    string `envconfig:"CART_STORE" default:"file"`
	CartStoreDir string `envconfig:"CART_STORE_DIR" default:".storefront"`
	CartSlotKey  string `envconfig:"CART_SLOT_KEY" default:"sandwich_asere_cart"`
	RedisAddr    string `envconfig:"REDIS_ADDR"`

	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:8000"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`

	Port       string `envconfig:"PORT" default:"8080"`
	HealthPort string `envconfig:"HEALTH_PORT" default:"50051"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracesStdout bool   `envconfig:"OTEL_TRACES_STDOUT" default:"false"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	c, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// FromEnv reads the environment without validating, so callers can apply
// overrides first.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.Wrap(err, "read environment")
	}
	return c, nil
}

// Validate normalizes the backend name and checks that it can be built.
func (c *Config) Validate() error {
	c.CartStore = strings.ToLower(strings.TrimSpace(c.CartStore))
	switch c.CartStore {
	case StoreMemory:
	case StoreFile:
		if c.CartStoreDir == "" {
			return errors.New("CART_STORE_DIR is required for the file store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis store")
		}
		if !strings.Contains(c.RedisAddr, ":") {
			c.RedisAddr += ":6379"
		}
	default:
		return errors.Errorf("unknown CART_STORE %q (want memory, file or redis)", c.CartStore)
	}
	if c.CartSlotKey == "" {
		c.CartSlotKey = cartstore.DefaultSlotKey
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	return nil
}

// NewLogger returns the JSON logger every component writes to.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Level = logrus.InfoLevel
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.Level = lvl
	}
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	if out == nil {
		out = os.Stderr
	}
	log.Out = out
	return log
}
