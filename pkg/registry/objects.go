package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	corestatus "github.com/oneconcern/pkgreg/pkg/core/status"
	"github.com/oneconcern/pkgreg/pkg/model"
	"github.com/oneconcern/pkgreg/pkg/storage"
	storagestatus "github.com/oneconcern/pkgreg/pkg/storage/status"
	"go.uber.org/zap"
)

// AddObject stores some content, compressed, and returns the object describing it.
//
// Adding content which is already present is a no-op.
func (s *Store) AddObject(ctx context.Context, reader io.Reader) (model.Object, error) {
	var compressed bytes.Buffer
	encoder, err := zstd.NewWriter(&compressed, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return model.Object{}, fmt.Errorf("error creating compressing writer: %w", err)
	}

	hasher := model.NewHasher()
	size, err := io.Copy(io.MultiWriter(encoder, hasher), reader)
	if err != nil {
		_ = encoder.Close()
		return model.Object{}, fmt.Errorf("error writing compressed object data: %w", err)
	}
	if err = encoder.Close(); err != nil {
		return model.Object{}, fmt.Errorf("error flushing compressed object data: %w", err)
	}

	object := model.Object{Hash: model.HashString(hasher), Size: size}
	exists, err := s.store.Has(ctx, model.GetArchivePathToObject(object.Hash))
	if err != nil {
		return model.Object{}, err
	}
	if exists {
		s.l.Debug("object exists already", zap.String("hash", object.Hash))
		return object, nil
	}

	// the size goes first, so that an object present in the store always has its size
	sizeKey := model.GetArchivePathToObjectSize(object.Hash)
	err = s.store.Put(ctx, sizeKey, strings.NewReader(strconv.FormatInt(size, 10)), storage.OverWrite)
	if err != nil {
		return model.Object{}, fmt.Errorf("error writing object size %s: %w", sizeKey, err)
	}

	key := model.GetArchivePathToObject(object.Hash)
	err = s.store.Put(ctx, key, &compressed, storage.NoOverWrite)
	if err != nil && !errors.Is(err, storagestatus.ErrExists) {
		return model.Object{}, fmt.Errorf("error writing object %s: %w", key, err)
	}

	s.l.Debug("object added",
		zap.String("hash", object.Hash),
		zap.Int64("size", size),
		zap.Int("compressed", compressed.Len()),
	)
	return object, nil
}

// GetObject retrieves the description of an object from its hash
func (s *Store) GetObject(ctx context.Context, hash string) (model.Object, error) {
	exists, err := s.store.Has(ctx, model.GetArchivePathToObject(hash))
	if err != nil {
		return model.Object{}, err
	}
	if !exists {
		return model.Object{}, corestatus.ErrNotFound.Wrapf("object %s", hash)
	}

	buf, err := storage.ReadAll(ctx, s.store, model.GetArchivePathToObjectSize(hash))
	if err != nil {
		return model.Object{}, fmt.Errorf("failed to read size of object %s: %w", hash, err)
	}
	size, err := strconv.ParseInt(strings.TrimSpace(string(buf)), 10, 64)
	if err != nil || size < 0 {
		return model.Object{}, fmt.Errorf("error parsing size of object %s: %q", hash, buf)
	}

	return model.Object{Hash: hash, Size: size}, nil
}

type objectReader struct {
	*zstd.Decoder
	source io.ReadCloser
}

func (r objectReader) Close() error {
	r.Decoder.Close()
	return r.source.Close()
}

// OpenObject streams the uncompressed content of an object
func (s *Store) OpenObject(ctx context.Context, hash string) (io.ReadCloser, error) {
	source, err := s.store.Get(ctx, model.GetArchivePathToObject(hash))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return nil, corestatus.ErrNotFound.Wrapf("object %s", hash)
		}
		return nil, fmt.Errorf("error opening object %s: %w", hash, err)
	}

	decoder, err := zstd.NewReader(source)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("error creating decompressing reader: %w", err)
	}
	return objectReader{Decoder: decoder, source: source}, nil
}

// ReadObject fetches the uncompressed content of an object in memory
func (s *Store) ReadObject(ctx context.Context, hash string) ([]byte, error) {
	reader, err := s.OpenObject(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return ioutil.ReadAll(reader)
}

// GetObjects lists all objects in the store
func (s *Store) GetObjects(ctx context.Context) ([]model.Object, error) {
	keys, err := s.store.KeysPrefix(ctx, model.GetArchivePathPrefixToObjects())
	if err != nil {
		return nil, fmt.Errorf("error listing objects: %w", err)
	}

	objects := make([]model.Object, 0, len(keys)/2)
	for _, key := range keys {
		apc, err := model.GetArchivePathComponents(key)
		if err != nil {
			s.l.Warn("ignoring unexpected key in objects", zap.String("key", key), zap.Error(err))
			continue
		}
		if apc.IsObjectSize {
			continue
		}
		object, err := s.GetObject(ctx, apc.ObjectHash)
		if err != nil {
			return nil, fmt.Errorf("error getting object %s: %w", apc.ObjectHash, err)
		}
		objects = append(objects, object)
	}
	return objects, nil
}

// AllObjectsExist verifies that all objects referred to by a manifest are in the store
func (s *Store) AllObjectsExist(ctx context.Context, manifest *model.Manifest) (bool, error) {
	missing, err := s.missingObjects(ctx, manifest)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (s *Store) missingObjects(ctx context.Context, manifest *model.Manifest) ([]string, error) {
	missing := make([]string, 0)
	seen := make(map[string]struct{}, len(manifest.Files))
	for _, file := range manifest.Files {
		if _, ok := seen[file.Object.Hash]; ok {
			continue
		}
		seen[file.Object.Hash] = struct{}{}

		exists, err := s.store.Has(ctx, model.GetArchivePathToObject(file.Object.Hash))
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, file.Object.Hash)
		}
	}
	return missing, nil
}
