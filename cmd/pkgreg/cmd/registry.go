package cmd

import (
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/oneconcern/pkgreg/pkg/dlogger"
	"github.com/oneconcern/pkgreg/pkg/metrics"
	"github.com/oneconcern/pkgreg/pkg/registry"
	"github.com/oneconcern/pkgreg/pkg/storage"
	"github.com/oneconcern/pkgreg/pkg/storage/localfs"
	"github.com/oneconcern/pkgreg/pkg/storage/sthree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// runtime holds everything a command needs to work on the registry
type runtime struct {
	logger   *zap.Logger
	store    storage.Store
	registry *registry.Store
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
}

func newStorage(cfg *CLIConfig, logger *zap.Logger) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)

	if cfg.S3.Bucket != "" {
		awsConfig := aws.NewConfig()
		if cfg.S3.Region != "" {
			awsConfig = awsConfig.WithRegion(cfg.S3.Region)
		}
		if cfg.S3.Endpoint != "" {
			awsConfig = awsConfig.WithEndpoint(cfg.S3.Endpoint).WithS3ForcePathStyle(true)
		}
		store, err = sthree.New(sthree.Bucket(cfg.S3.Bucket), sthree.AWSConfig(awsConfig))
		if err != nil {
			return nil, err
		}
	} else {
		if err = os.MkdirAll(cfg.Store, 0700); err != nil {
			return nil, fmt.Errorf("creating store folder %s: %w", cfg.Store, err)
		}
		store = localfs.New(afero.NewBasePathFs(afero.NewOsFs(), cfg.Store))
	}

	return storage.Instrument(nil, logger, store), nil
}

func newRuntime(cfg *CLIConfig) (*runtime, error) {
	logger, err := dlogger.GetLogger(cfg.LogLevel, dlogger.WithService("pkgreg"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	store, err := newStorage(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	limits, err := cfg.Limits.toLimits()
	if err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}

	rt := &runtime{
		logger: logger,
		store:  store,
	}
	if pkgregFlags.root.metrics {
		reg := prometheus.NewRegistry()
		if rt.metrics, err = metrics.New(reg); err != nil {
			return nil, err
		}
		rt.gatherer = reg
	}

	rt.registry, err = registry.New(store,
		registry.WithLogger(logger),
		registry.WithMetrics(rt.metrics),
		registry.WithCacheSize(cfg.Cache.Size),
		registry.WithLimits(limits),
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func mustRuntime() *runtime {
	rt, err := newRuntime(config)
	if err != nil {
		wrapFatalln("failed to initialize registry", err)
		return nil
	}
	return rt
}

// close flushes logs and reports collected metrics
func (rt *runtime) close() {
	if rt == nil {
		return
	}
	if rt.gatherer != nil {
		families, err := rt.gatherer.Gather()
		if err != nil {
			rt.logger.Warn("could not gather metrics", zap.Error(err))
		}
		for _, family := range families {
			for _, m := range family.GetMetric() {
				fields := []zap.Field{zap.String("metric", family.GetName())}
				for _, label := range m.GetLabel() {
					fields = append(fields, zap.String(label.GetName(), label.GetValue()))
				}
				switch {
				case m.GetCounter() != nil:
					fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
				case m.GetHistogram() != nil:
					fields = append(fields,
						zap.Uint64("count", m.GetHistogram().GetSampleCount()),
						zap.Float64("sum", m.GetHistogram().GetSampleSum()),
					)
				}
				rt.logger.Info("metrics", fields...)
			}
		}
	}
	_ = rt.logger.Sync()
}
