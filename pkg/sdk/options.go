package docindex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/docindex/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	sqlitePath string

	driver    string // "redis", "bleve" or "none"
	addrs     []string
	password  string
	keyPrefix string
	dataDir   string

	readinessTimeout time.Duration
	searchTimeout    time.Duration
	maxBatchSize     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite stores documents in the given database file.
// Without it the database is kept in memory.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sqlitePath = path
	})
}

// WithRedis mirrors documents into a Redis instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "docindex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithBleve mirrors documents into an embedded bleve index stored under dir.
// An empty dir (the default) places the index in an "index" directory next to
// the SQLite file, or keeps it in memory when the store is in memory.
func WithBleve(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverBleve
		c.dataDir = dir
	})
}

// WithoutIndex disables the search index. Writes still succeed and
// searches report SearchPage.Unavailable.
func WithoutIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverNone
	})
}

// WithSearchTimeout bounds every index query. Default: 2s.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithReadinessTimeout bounds the wait for the index backend in New. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithMaxBatchSize sets the maximum number of items per batch operation.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
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

// toConfig maps the options onto the service configuration.
func (c *clientConfig) toConfig() config.Config {
	cfg := config.Config{
		Database: config.DatabaseConfig{Path: c.sqlitePath},
		Index: config.IndexConfig{
			Driver:           c.driver,
			Addrs:            c.addrs,
			Password:         c.password,
			KeyPrefix:        c.keyPrefix,
			DataDir:          c.dataDir,
			ReadinessTimeout: int(c.readinessTimeout / time.Second),
			SearchTimeoutMs:  int(c.searchTimeout / time.Millisecond),
			MaxBatchSize:     c.maxBatchSize,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}
