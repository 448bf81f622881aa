package justext

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "", "valkey" or "redis"
	addrs     []string
	password  string
	keyPrefix string
	usageTTL  time.Duration

	maxWords int64
	width    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey mirrors usage to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis mirrors usage to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the key prefix of the usage mirror. Default: "justext:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithUsageTTL sets how long mirrored usage keys live. Default: 30 days.
func WithUsageTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.usageTTL = ttl
	})
}

// WithMaxWords sets the per-token word quota. Default: 80000.
func WithMaxWords(n int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxWords = n
	})
}

// WithWidth sets the justification width. Default: 80.
func WithWidth(width int) Option {
	return optionFunc(func(c *clientConfig) {
		c.width = width
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
