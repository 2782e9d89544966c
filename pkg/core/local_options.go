package core

import (
	"go.uber.org/zap"
)

const defaultLocalConcurrency = 4

// LocalOption is a functor to work on a local copy of a package with some options
type LocalOption func(*localOptions)

type localOptions struct {
	clean       bool
	concurrency int
	logger      *zap.Logger
}

func defaultLocalOptions(opts []LocalOption) *localOptions {
	o := &localOptions{
		concurrency: defaultLocalConcurrency,
		logger:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

// WithClean removes files and folders which are not part of the package when downloading,
// and reports them when checking.
func WithClean(enabled bool) LocalOption {
	return func(o *localOptions) {
		o.clean = enabled
	}
}

// WithLocalConcurrency sets the number of objects downloaded concurrently
func WithLocalConcurrency(n int) LocalOption {
	return func(o *localOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// LocalWithLogger injects a logger
func LocalWithLogger(l *zap.Logger) LocalOption {
	return func(o *localOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
