package core

import (
	"context"
	"errors"
	"time"

	"github.com/oneconcern/pkgreg/pkg/core/status"
	"github.com/oneconcern/pkgreg/pkg/metrics"
	"github.com/oneconcern/pkgreg/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Comparison is the outcome of comparing two versions of a package.
//
// When either side is missing, Diff is nil and the Missing flags tell which side could not be resolved.
type Comparison struct {
	PackageName  string          `json:"PackageName" yaml:"packageName"`
	OlderVersion uint            `json:"OlderVersion" yaml:"olderVersion"`
	NewerVersion uint            `json:"NewerVersion" yaml:"newerVersion"`
	OlderMissing bool            `json:"OlderMissing" yaml:"olderMissing"`
	NewerMissing bool            `json:"NewerMissing" yaml:"newerMissing"`
	Older        *model.Manifest `json:"-" yaml:"-"`
	Newer        *model.Manifest `json:"-" yaml:"-"`
	Diff         *DiffResult     `json:"Diff,omitempty" yaml:"diff,omitempty"`
}

// IsComplete tells if both sides were resolved and diffed
func (c *Comparison) IsComplete() bool {
	return c != nil && !c.OlderMissing && !c.NewerMissing && c.Diff != nil
}

// DefaultComparisonVersion yields the version a given version is compared to by default,
// that is the previous one. There is none for the first version.
func DefaultComparisonVersion(version uint) (uint, bool) {
	if version <= 1 {
		return 0, false
	}
	return version - 1, true
}

type sideResult struct {
	manifest *model.Manifest
	missing  bool
}

// Compare resolves two versions of a package concurrently, then diffs them.
//
// A version which is not found, or which fetch is interrupted by the context, is reported
// as missing and the diff is not computed. Any other resolution error is returned.
func Compare(ctx context.Context, resolver ManifestResolver, packageName string, version uint, opts ...CompareOption) (*Comparison, error) {
	o := defaultCompareOptions(opts)

	if version == 0 {
		return nil, status.ErrInvalidVersion.Wrapf("version must be positive")
	}

	against := o.against
	if against == 0 {
		var ok bool
		against, ok = DefaultComparisonVersion(version)
		if !ok {
			return nil, status.ErrNoComparisonVersion.Wrapf("package %q version %d", packageName, version)
		}
	}

	olderVersion, newerVersion := against, version
	if against > version {
		olderVersion, newerVersion = version, against
	}

	logger := o.logger.With(
		zap.String("package", packageName),
		zap.Uint("older", olderVersion),
		zap.Uint("newer", newerVersion),
	)

	var older, newer sideResult
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		older, err = resolveSide(gctx, resolver, packageName, olderVersion, logger, o.metrics)
		return err
	})
	group.Go(func() error {
		var err error
		newer, err = resolveSide(gctx, resolver, packageName, newerVersion, logger, o.metrics)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	comparison := &Comparison{
		PackageName:  packageName,
		OlderVersion: olderVersion,
		NewerVersion: newerVersion,
		OlderMissing: older.missing,
		NewerMissing: newer.missing,
		Older:        older.manifest,
		Newer:        newer.manifest,
	}
	if older.missing || newer.missing {
		logger.Info("cannot diff package versions",
			zap.Bool("olderMissing", older.missing),
			zap.Bool("newerMissing", newer.missing),
		)
		return comparison, nil
	}

	start := time.Now()
	diff := Diff(older.manifest, newer.manifest)
	o.metrics.Diffed(start, len(diff.Added), len(diff.Deleted), len(diff.Modified))
	comparison.Diff = &diff

	logger.Debug("package versions diffed",
		zap.Int("added", len(diff.Added)),
		zap.Int("deleted", len(diff.Deleted)),
		zap.Int("modified", len(diff.Modified)),
	)
	return comparison, nil
}

func resolveSide(ctx context.Context, resolver ManifestResolver, packageName string, version uint, logger *zap.Logger, m *metrics.Metrics) (sideResult, error) {
	start := time.Now()
	manifest, err := resolver.Resolve(ctx, packageName, version)
	switch {
	case err == nil && manifest != nil && ctx.Err() == nil:
		m.Resolved(start, metrics.OutcomeFound)
		return sideResult{manifest: manifest}, nil

	case err == nil && manifest == nil:
		// a resolver yielding nothing without error has not found anything
		m.Resolved(start, metrics.OutcomeMissing)
		return sideResult{missing: true}, nil

	case errors.Is(err, status.ErrNotFound):
		m.Resolved(start, metrics.OutcomeMissing)
		logger.Debug("package version not found", zap.Uint("version", version))
		return sideResult{missing: true}, nil

	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// partial results are never handed over to the diff
		m.Resolved(start, metrics.OutcomeMissing)
		cause := ctx.Err()
		if cause == nil {
			cause = err
		}
		logger.Info("package version fetch interrupted",
			zap.Uint("version", version),
			zap.NamedError("cause", status.ErrInterrupted.Wrap(cause)),
		)
		return sideResult{missing: true}, nil

	default:
		m.Resolved(start, metrics.OutcomeError)
		return sideResult{}, err
	}
}
