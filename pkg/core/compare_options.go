package core

import (
	"github.com/oneconcern/pkgreg/pkg/metrics"
	"go.uber.org/zap"
)

// CompareOption is a functor to compare package versions with some options
type CompareOption func(*compareOptions)

type compareOptions struct {
	against uint
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func defaultCompareOptions(opts []CompareOption) *compareOptions {
	o := &compareOptions{
		logger: zap.NewNop(),
	}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

// Against sets an explicit version to compare with.
//
// When not set, or set to 0, the previous version is used.
func Against(version uint) CompareOption {
	return func(o *compareOptions) {
		o.against = version
	}
}

// CompareWithLogger injects a logger
func CompareWithLogger(l *zap.Logger) CompareOption {
	return func(o *compareOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// CompareWithMetrics collects metrics about resolutions and diffs
func CompareWithMetrics(m *metrics.Metrics) CompareOption {
	return func(o *compareOptions) {
		o.metrics = m
	}
}
