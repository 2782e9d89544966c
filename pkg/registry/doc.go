/*
Package registry implements a package registry on top of a key-value blob store.

Published manifests are kept as JSON documents, one per package version.
Files content is kept as zstd-compressed objects addressed by the hash of their uncompressed bytes,
so that identical content is stored only once across all packages and versions.

Layout of the keys in the underlying store:

	manifests/{package name}/{version}/manifest.json
	objects/{hash[:2]}/{hash[2:]}
	objects/{hash[:2]}/{hash[2:]}.size

A registry Store is safe for concurrent use.
*/
package registry
