package registry

import (
	"time"

	"github.com/oneconcern/pkgreg/pkg/metrics"
	"github.com/oneconcern/pkgreg/pkg/model"
	"go.uber.org/zap"
)

const (
	defaultCacheSize   = 128
	defaultConcurrency = 8
)

// Option is a functor to build a registry Store with some options
type Option func(*Store)

// WithLogger injects a logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// WithMetrics collects metrics about publications
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithCacheSize sets the number of manifests kept in memory. A size of 0 disables the cache.
func WithCacheSize(size int) Option {
	return func(s *Store) {
		s.cacheSize = size
	}
}

// WithLimits enforces some limits on published packages
func WithLimits(limits model.Limits) Option {
	return func(s *Store) {
		s.limits = limits
	}
}

// WithConcurrency sets the number of objects checked in parallel during validation
func WithConcurrency(concurrency int) Option {
	return func(s *Store) {
		if concurrency > 0 {
			s.concurrency = concurrency
		}
	}
}

// WithClock sets the clock used to timestamp publications
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
