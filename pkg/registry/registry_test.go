package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/oneconcern/pkgreg/pkg/core"
	corestatus "github.com/oneconcern/pkgreg/pkg/core/status"
	"github.com/oneconcern/pkgreg/pkg/metrics"
	"github.com/oneconcern/pkgreg/pkg/model"
	modelstatus "github.com/oneconcern/pkgreg/pkg/model/status"
	"github.com/oneconcern/pkgreg/pkg/registry/status"
	"github.com/oneconcern/pkgreg/pkg/storage"
	"github.com/oneconcern/pkgreg/pkg/storage/localfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testPackage = "mypackage"

var testEpoch = time.Date(2020, 9, 13, 12, 26, 40, 0, time.UTC)

func newTestStore(t testing.TB, opts ...Option) *Store {
	clock := testEpoch
	var mx sync.Mutex
	opts = append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time {
			mx.Lock()
			defer mx.Unlock()
			clock = clock.Add(time.Minute)
			return clock
		}),
	}, opts...)

	s, err := New(localfs.New(afero.NewMemMapFs()), opts...)
	require.NoError(t, err)
	return s
}

// unpublished builds a manifest from path/content pairs, adding contents to the store
func unpublished(t testing.TB, s *Store, pathsAndContents ...string) *model.Manifest {
	require.Zero(t, len(pathsAndContents)%2)

	manifest := &model.Manifest{
		ManifestVersion: model.CurrentManifestVersion,
		PackageName:     testPackage,
		Files:           make([]model.File, 0, len(pathsAndContents)/2),
	}
	for i := 0; i < len(pathsAndContents); i += 2 {
		object, err := s.AddObject(context.Background(), strings.NewReader(pathsAndContents[i+1]))
		require.NoError(t, err)
		manifest.Files = append(manifest.Files, model.File{Path: pathsAndContents[i], Object: object})
	}
	manifest.Hash = model.HashManifest(manifest)
	return manifest
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	s, err := New(localfs.New(afero.NewMemMapFs()), WithCacheSize(0))
	require.NoError(t, err)
	assert.Nil(t, s.cache)
	assert.Contains(t, s.String(), "registry@localfs")
}

func TestPublishManifest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v1 := unpublished(t, s, "x.txt", "x content", "y.txt", "y content")
	published, err := s.PublishManifest(ctx, v1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), published.PackageVersion)
	assert.Equal(t, testEpoch.Add(time.Minute).Unix(), published.Published)
	assert.Equal(t, model.HashManifest(published), published.Hash)
	require.NoError(t, model.ValidatePublishedManifest(published))

	// the input is left untouched
	assert.Zero(t, v1.PackageVersion)
	assert.Zero(t, v1.Published)
	require.NoError(t, model.ValidateUnpublishedManifest(v1))

	v2 := unpublished(t, s, "x.txt", "x content", "y.txt", "y modified content", "z.txt", "z")
	published, err = s.PublishManifest(ctx, v2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), published.PackageVersion)

	// same files in another order: duplicate of version 1
	dup := unpublished(t, s, "y.txt", "y content", "x.txt", "x content")
	_, err = s.PublishManifest(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrDuplicatePackage))
	assert.Contains(t, err.Error(), "version 1")

	versions, err := s.GetVersions(ctx, testPackage)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, versions)

	latest, err := s.GetLatestVersion(ctx, testPackage)
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)

	manifest, err := s.GetManifest(ctx, testPackage, 2)
	require.NoError(t, err)
	assert.Equal(t, published, manifest)
	assert.Len(t, manifest.Files, 3)
}

func TestPublishManifestErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid manifest", func(t *testing.T) {
		s := newTestStore(t)
		manifest := unpublished(t, s, "x.txt", "x")
		manifest.Hash = "wrong"

		_, err := s.PublishManifest(ctx, manifest)
		require.Error(t, err)
		assert.True(t, errors.Is(err, modelstatus.ErrInvalidManifest))
	})

	t.Run("missing objects", func(t *testing.T) {
		s := newTestStore(t)
		manifest := unpublished(t, s, "x.txt", "x")
		manifest.Files = append(manifest.Files, model.File{Path: "y.txt", Object: model.Object{Hash: "abcdef", Size: 3}})
		manifest.Hash = model.HashManifest(manifest)

		exist, err := s.AllObjectsExist(ctx, manifest)
		require.NoError(t, err)
		assert.False(t, exist)

		_, err = s.PublishManifest(ctx, manifest)
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrMissingObjects))
	})

	t.Run("limits", func(t *testing.T) {
		s := newTestStore(t, WithLimits(model.Limits{MaxFileSize: 4}))
		manifest := unpublished(t, s, "x.txt", "too large")

		_, err := s.PublishManifest(ctx, manifest)
		require.Error(t, err)
		assert.True(t, errors.Is(err, modelstatus.ErrLimitExceeded))
	})
}

func TestAddManifest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	published, err := s.PublishManifest(ctx, unpublished(t, s, "x.txt", "x"))
	require.NoError(t, err)

	err = s.AddManifest(ctx, published)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrManifestExists))

	imported := *published
	imported.PackageName = "other"
	imported.PackageVersion = 7
	imported.Hash = model.HashManifest(&imported)
	require.NoError(t, s.AddManifest(ctx, &imported))

	names, err := s.GetNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testPackage, "other"}, names)

	versions, err := s.GetVersions(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, versions)

	err = s.AddManifest(ctx, unpublished(t, s, "y.txt", "y"))
	require.Error(t, err, "an unpublished manifest cannot be added")
	assert.True(t, errors.Is(err, modelstatus.ErrInvalidManifest))
}

func TestGetManifestNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, version := range []uint{1, 2, 3} {
		_, err := s.PublishManifest(ctx, unpublished(t, s, "x.txt", fmt.Sprintf("content %d", version)))
		require.NoError(t, err)
	}

	for _, toPin := range []struct {
		name        string
		packageName string
		version     uint
	}{
		{name: "version 5 of 3", packageName: testPackage, version: 5},
		{name: "version 0", packageName: testPackage, version: 0},
		{name: "unknown package", packageName: "unknown", version: 1},
		{name: "invalid package name", packageName: "../objects", version: 1},
	} {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			manifest, err := s.Resolve(ctx, fixture.packageName, fixture.version)
			require.Error(t, err)
			assert.Nil(t, manifest)
			assert.True(t, errors.Is(err, corestatus.ErrNotFound))
		})
	}

	versions, err := s.GetVersions(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, versions)

	_, err = s.GetLatestVersion(ctx, "unknown")
	assert.True(t, errors.Is(err, corestatus.ErrNotFound))
}

func TestCompareVersions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.PublishManifest(ctx, unpublished(t, s, "x.txt", "x", "y.txt", "y"))
	require.NoError(t, err)
	_, err = s.PublishManifest(ctx, unpublished(t, s, "x.txt", "x", "y.txt", "y2", "z.txt", "z"))
	require.NoError(t, err)
	_, err = s.PublishManifest(ctx, unpublished(t, s, "z.txt", "z"))
	require.NoError(t, err)

	comparison, err := core.Compare(ctx, s, testPackage, 2)
	require.NoError(t, err)
	require.True(t, comparison.IsComplete())
	require.Len(t, comparison.Diff.Added, 1)
	assert.Equal(t, "z.txt", comparison.Diff.Added[0].Path)
	require.Len(t, comparison.Diff.Modified, 1)
	assert.Equal(t, "y.txt", comparison.Diff.Modified[0].Old.Path)
	assert.Empty(t, comparison.Diff.Deleted)

	comparison, err = core.Compare(ctx, s, testPackage, 5, core.Against(3))
	require.NoError(t, err)
	assert.False(t, comparison.OlderMissing)
	assert.True(t, comparison.NewerMissing)
	assert.Nil(t, comparison.Diff)

	file, content, err := core.ReadFile(ctx, s, s, testPackage, 2, "y.txt")
	require.NoError(t, err)
	assert.Equal(t, "y2", string(content))
	assert.Equal(t, int64(2), file.Object.Size)
}

func TestObjects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	content := strings.Repeat("some content to be compressed ", 100)
	object, err := s.AddObject(ctx, strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), object.Size)

	expectedHash, _, err := model.HashStream(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, expectedHash, object.Hash)

	again, err := s.AddObject(ctx, strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, object, again)

	empty, err := s.AddObject(ctx, strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, empty.Size)

	stored, err := s.GetObject(ctx, object.Hash)
	require.NoError(t, err)
	assert.Equal(t, object, stored)

	buf, err := s.ReadObject(ctx, object.Hash)
	require.NoError(t, err)
	assert.Equal(t, content, string(buf))

	compressed, err := storage.ReadAll(ctx, s.Storage(), model.GetArchivePathToObject(object.Hash))
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(content))

	objects, err := s.GetObjects(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Object{object, empty}, objects)

	_, err = s.GetObject(ctx, "abcdef")
	assert.True(t, errors.Is(err, corestatus.ErrNotFound))
	_, err = s.ReadObject(ctx, "abcdef")
	assert.True(t, errors.Is(err, corestatus.ErrNotFound))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithConcurrency(2))

	_, err := s.PublishManifest(ctx, unpublished(t, s, "x.txt", "xxxx", "y.txt", "yy"))
	require.NoError(t, err)
	_, err = s.PublishManifest(ctx, unpublished(t, s, "x.txt", "xxxx", "z.txt", "z"))
	require.NoError(t, err)

	stats, err := s.Validate(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Packages: 1, Versions: 2, Objects: 3, Size: 7}, stats)

	t.Run("corrupted object", func(t *testing.T) {
		hash, _, err := model.HashStream(strings.NewReader("yy"))
		require.NoError(t, err)

		var buf bytes.Buffer
		encoder, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = encoder.Write([]byte("zz"))
		require.NoError(t, err)
		require.NoError(t, encoder.Close())
		require.NoError(t, s.Storage().Put(ctx, model.GetArchivePathToObject(hash), &buf, storage.OverWrite))

		_, err = s.Validate(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrInvalidStore))
		assert.True(t, errors.Is(err, status.ErrCorruptedObject))
	})

	t.Run("missing object", func(t *testing.T) {
		hash, _, err := model.HashStream(strings.NewReader("z"))
		require.NoError(t, err)
		require.NoError(t, s.Storage().Delete(ctx, model.GetArchivePathToObject(hash)))

		_, err = s.Validate(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrMissingObjects))
	})
}

func TestConcurrentPublish(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const publishers = 10
	manifests := make([]*model.Manifest, publishers)
	for i := range manifests {
		manifests[i] = unpublished(t, s, "x.txt", fmt.Sprintf("content %d", i))
	}

	var wg sync.WaitGroup
	published := make(chan uint, publishers)
	for _, toPin := range manifests {
		manifest := toPin
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.PublishManifest(ctx, manifest)
			if assert.NoError(t, err) {
				published <- p.PackageVersion
			}
		}()
	}
	wg.Wait()
	close(published)

	seen := make(map[uint]bool, publishers)
	for version := range published {
		assert.False(t, seen[version], "version %d assigned twice", version)
		seen[version] = true
	}
	assert.Len(t, seen, publishers)

	versions, err := s.GetVersions(ctx, testPackage)
	require.NoError(t, err)
	assert.Len(t, versions, publishers)
	assert.Equal(t, uint(publishers), versions[len(versions)-1])
}

func TestCompareMetricsOnce(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewPedanticRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	// the same collectors are handed to the registry and to the comparison, as the CLI does
	s := newTestStore(t, WithMetrics(m))
	_, err = s.PublishManifest(ctx, unpublished(t, s, "x.txt", "x"))
	require.NoError(t, err)
	_, err = s.PublishManifest(ctx, unpublished(t, s, "x.txt", "x2"))
	require.NoError(t, err)

	comparison, err := core.Compare(ctx, s, testPackage, 2, core.CompareWithMetrics(m))
	require.NoError(t, err)
	require.True(t, comparison.IsComplete())

	expected := `
# HELP pkgreg_manifest_resolves_total Number of manifest resolutions, by outcome.
# TYPE pkgreg_manifest_resolves_total counter
pkgreg_manifest_resolves_total{outcome="found"} 2
# HELP pkgreg_manifest_publications_total Number of published package versions.
# TYPE pkgreg_manifest_publications_total counter
pkgreg_manifest_publications_total 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"pkgreg_manifest_resolves_total", "pkgreg_manifest_publications_total"))
}
