// Package dlogger builds the zap loggers used across pkgreg.
//
// Loggers write JSON entries to stderr by default, so that the output of commands on stdout stays clean.
package dlogger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels understood besides the zap ones (warn, error...)
const (
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
	LogLevelNone  = "none"
)

// Option tunes a logger
type Option func(*options)

type options struct {
	service     string
	outputPaths []string
	encoding    string
}

// WithService tags every entry with a service name. An empty name disables the tag.
func WithService(name string) Option {
	return func(o *options) {
		o.service = name
	}
}

// WithOutputPaths sets where entries are written, as zap sink URLs or file paths
func WithOutputPaths(paths ...string) Option {
	return func(o *options) {
		if len(paths) > 0 {
			o.outputPaths = paths
		}
	}
}

// WithConsoleEncoding writes human readable entries rather than JSON
func WithConsoleEncoding() Option {
	return func(o *options) {
		o.encoding = "console"
	}
}

// GetLogger returns a zap logger with the specified level.
//
// The "none" level yields a no-op logger, whatever the other options.
func GetLogger(logLevel string, opts ...Option) (*zap.Logger, error) {
	o := &options{
		outputPaths: []string{"stderr"},
		encoding:    "json",
	}
	for _, apply := range opts {
		apply(o)
	}

	if logLevel == LogLevelNone {
		return zap.NewNop(), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, err
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	zapConfig.Encoding = o.encoding
	zapConfig.OutputPaths = o.outputPaths
	zapConfig.EncoderConfig.TimeKey = "time"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	if o.service != "" {
		logger = logger.With(zap.String("service", o.service))
	}
	return logger, nil
}

// MustGetLogger returns a zap logger with the specified level or panics
func MustGetLogger(logLevel string, opts ...Option) *zap.Logger {
	l, err := GetLogger(logLevel, opts...)
	if err != nil {
		panic(err)
	}
	return l
}
