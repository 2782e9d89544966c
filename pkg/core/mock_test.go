package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"sync/atomic"

	"github.com/oneconcern/pkgreg/pkg/core/status"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/stretchr/testify/mock"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, packageName string, version uint) (*model.Manifest, error) {
	args := m.Called(ctx, packageName, version)
	manifest, _ := args.Get(0).(*model.Manifest)
	return manifest, args.Error(1)
}

// memResolver serves published versions of a single package
type memResolver struct {
	packageName string
	versions    []*model.Manifest
}

func newMemResolver(packageName string, versions ...*model.Manifest) *memResolver {
	return &memResolver{packageName: packageName, versions: versions}
}

func (r *memResolver) Resolve(ctx context.Context, packageName string, version uint) (*model.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if packageName != r.packageName || version == 0 || int(version) > len(r.versions) {
		return nil, status.ErrNotFound.Wrapf("package %q version %d", packageName, version)
	}
	return r.versions[version-1], nil
}

type memObjects map[string][]byte

func (o memObjects) ReadObject(_ context.Context, hash string) ([]byte, error) {
	content, ok := o[hash]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", hash, status.ErrNotFound)
	}
	return content, nil
}

func (o memObjects) OpenObject(ctx context.Context, hash string) (io.ReadCloser, error) {
	content, err := o.ReadObject(ctx, hash)
	if err != nil {
		return nil, err
	}
	return ioutil.NopCloser(bytes.NewReader(content)), nil
}

// countingObjects counts how many times objects are opened
type countingObjects struct {
	memObjects
	opens int32
}

func (o *countingObjects) OpenObject(ctx context.Context, hash string) (io.ReadCloser, error) {
	atomic.AddInt32(&o.opens, 1)
	return o.memObjects.OpenObject(ctx, hash)
}

func (o *countingObjects) count() int {
	return int(atomic.LoadInt32(&o.opens))
}
