package alumdex

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
	driver   string // "valkey", "redis" or "badger"
	addrs    []string
	password string
	path     string
	inMemory bool

	keyPrefix     string
	debounce      time.Duration
	maxSessions   int
	policies      map[string]EmptyPolicy
	importWorkers int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBadger stores records in an embedded database under dir.
func WithBadger(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.path = dir
		c.inMemory = false
	})
}

// WithInMemory keeps records in a throwaway embedded database.
func WithInMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.path = ""
		c.inMemory = true
	})
}

// WithKeyPrefix namespaces every stored key. Default: "alumdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithDebounce sets how long sessions wait after the last change before
// recomputing results. Default: 300ms.
func WithDebounce(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.debounce = d
	})
}

// WithMaxSessions caps concurrently mounted sessions. Default: unlimited.
func WithMaxSessions(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxSessions = n
	})
}

// WithEmptyPolicy overrides what a screen shows before the user types or
// selects a filter.
func WithEmptyPolicy(screen string, p EmptyPolicy) Option {
	return optionFunc(func(c *clientConfig) {
		if c.policies == nil {
			c.policies = make(map[string]EmptyPolicy)
		}
		c.policies[screen] = p
	})
}

// WithImportWorkers sets the bulk import pool size. Default: half the CPUs.
func WithImportWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.importWorkers = n
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
