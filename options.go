package nvdb

import (
	"github.com/hupe1980/nvdb/staging"
)

type options struct {
	logger         *Logger
	metrics        MetricsCollector
	stage          staging.Store
	flushThreshold uint64
}

func defaultOptions() options {
	return options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
}

// Option configures a DB.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithStagingStore replaces the Badger staging store. The DB does not close
// an injected store.
func WithStagingStore(s staging.Store) Option {
	return func(o *options) {
		o.stage = s
	}
}

// WithFlushThreshold overrides Config.FlushThreshold. Zero keeps the
// configured value.
func WithFlushThreshold(bytes uint64) Option {
	return func(o *options) {
		o.flushThreshold = bytes
	}
}
