package model

import (
	"encoding/hex"
	"hash"
	"io"
	"strconv"

	blake2b "github.com/minio/blake2b-simd"
)

// NewHasher returns the hasher used for all checksums in the registry
func NewHasher() hash.Hash {
	return blake2b.New256()
}

// HashString returns the current hash value as a hex string
func HashString(hasher hash.Hash) string {
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashStream calculates the hash of all the data from a reader, and the number of bytes read
func HashStream(reader io.Reader) (string, int64, error) {
	hasher := NewHasher()
	n, err := io.Copy(hasher, reader)
	if err != nil {
		return "", n, err
	}
	return HashString(hasher), n, nil
}

// HashManifest calculates the verification hash of a manifest.
//
// The hash covers the format version, the package name, version and publication date,
// then every file path, object hash and size, in order.
func HashManifest(manifest *Manifest) string {
	hasher := NewHasher()
	add := func(s string) {
		_, _ = hasher.Write(UnsafeStringToBytes(s))
		_, _ = hasher.Write([]byte{0})
	}

	add(strconv.FormatUint(uint64(manifest.ManifestVersion), 10))
	add(manifest.PackageName)
	add(strconv.FormatUint(uint64(manifest.PackageVersion), 10))
	add(strconv.FormatInt(manifest.Published, 10))

	for _, file := range manifest.Files {
		add(file.Path)
		add(file.Object.Hash)
		add(strconv.FormatInt(file.Object.Size, 10))
	}

	return HashString(hasher)
}
