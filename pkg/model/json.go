package model

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON is the codec for all wire shapes exchanged by the registry
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalManifest serializes a manifest to its JSON wire shape
func MarshalManifest(manifest *Manifest) ([]byte, error) {
	return JSON.Marshal(manifest)
}

// UnmarshalManifest deserializes a manifest from its JSON wire shape.
//
// A missing file list is decoded as an empty one.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := JSON.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	if manifest.Files == nil {
		manifest.Files = []File{}
	}
	return &manifest, nil
}
