// Package model describes the base objects manipulated by the package registry.
//
// The object model is composed of:
//
//  Objects:
//    A content-addressed reference (hash and size) to stored file bytes.
//    Objects are shared across files and across versions when the content is unchanged.
//
//  Files:
//    A path within a package version, bound to an object.
//
//  Manifests:
//    The complete, ordered file listing for one published version of a package.
//    Versions are dense, monotonically increasing integers starting at 1.
//    A manifest is immutable once published.
package model
