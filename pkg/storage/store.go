// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"io/ioutil"
)

const (
	// OverWrite allows Put to replace an existing key
	OverWrite = false

	// NoOverWrite makes Put fail when the key exists already
	NoOverWrite = true
)

// Store implementations know how to write entries to a K/V model.Store.
//
// Typically this is something file system-like. Examples are S3, local FS, NFS, ...
// Implementations of this interface are assumed to be fairly simple.
//
// Keys are slash-separated, without a leading slash.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)
	Put(context.Context, string, io.Reader, bool) error
	Delete(context.Context, string) error
	Keys(context.Context) ([]string, error)
	KeysPrefix(context.Context, string) ([]string, error)
	Clear(context.Context) error
}

// ReadAll fetches a whole object in memory
func ReadAll(ctx context.Context, store Store, key string) ([]byte, error) {
	reader, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return ioutil.ReadAll(reader)
}
