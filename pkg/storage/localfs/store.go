// Copyright © 2018 One Concern

package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oneconcern/pkgreg/pkg/storage"
	"github.com/oneconcern/pkgreg/pkg/storage/status"
	"github.com/spf13/afero"
)

// New creates a new local file system backed storage model
func New(fs afero.Fs) storage.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), ".pkgreg")
	}
	return &localFS{
		fs: fs,
	}
}

type localFS struct {
	fs afero.Fs
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotExists.Wrapf("key %q", key)
	}
	return l.fs.Open(key)
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader, exclusive bool) error {
	dir := filepath.Dir(key)
	if dir != "" {
		if err := l.fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("ensuring directories for %q: %w", key, err)
		}
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if exclusive {
		flag |= os.O_EXCL
	}
	target, err := l.fs.OpenFile(key, flag, 0600)
	if err != nil {
		if os.IsExist(err) {
			return status.ErrExists.Wrapf("key %q", key)
		}
		return fmt.Errorf("create record for %q: %w", key, err)
	}

	if _, err = io.Copy(target, source); err != nil {
		_ = target.Close()
		return fmt.Errorf("write record for %q: %w", key, err)
	}

	return target.Close()
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	return l.walk(".", "")
}

// KeysPrefix walks only the deepest directory enclosing the prefix
func (l *localFS) KeysPrefix(ctx context.Context, prefix string) ([]string, error) {
	root := prefix
	if !strings.HasSuffix(root, "/") {
		root = path.Dir(root)
	}
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		root = "."
	}

	fi, err := l.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	if !fi.IsDir() {
		return []string{}, nil
	}
	return l.walk(root, prefix)
}

func (l *localFS) walk(root, prefix string) ([]string, error) {
	res := make([]string, 0)
	e := afero.Walk(l.fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(pth), "/")
		if strings.HasPrefix(key, prefix) {
			res = append(res, key)
		}
		return nil
	})
	if e != nil {
		return nil, e
	}
	sort.Strings(res)
	return res, nil
}

func (l *localFS) Clear(ctx context.Context) error {
	keys, err := l.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := l.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (l *localFS) String() string {
	const localfs = "localfs"
	switch fs := l.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath("")
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}
