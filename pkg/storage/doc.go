// Copyright © 2018 One Concern

// Package storage provides interface to handle backend storage objects.
//
// The registry keeps both manifests and content objects as keys in a Store.
//
// This package supports the following backends:
//   - S3 (AWS)
//   - local file system
package storage
