package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameOf(t *testing.T) {
	for _, toPin := range []struct {
		path     string
		expected string
	}{
		{path: "a/b/c.txt", expected: "c.txt"},
		{path: "file.txt", expected: "file.txt"},
		{path: "a/b/", expected: ""},
		{path: "/", expected: ""},
		{path: "", expected: ""},
		{path: "/root.txt", expected: "root.txt"},
		{path: "dir/my file äöü 人物.txt", expected: "my file äöü 人物.txt"},
	} {
		fixture := toPin
		t.Run(fixture.path, func(t *testing.T) {
			assert.Equal(t, fixture.expected, NameOf(fixture.path))
			assert.Equal(t, fixture.expected, File{Path: fixture.path}.Name())
		})
	}
}

func TestObjectEqual(t *testing.T) {
	assert.True(t, Object{Hash: "abc", Size: 3}.Equal(Object{Hash: "abc", Size: 3}))
	assert.True(t, Object{Hash: "abc", Size: 3}.Equal(Object{Hash: "abc", Size: 4}), "equality is on hashes only")
	assert.False(t, Object{Hash: "abc", Size: 3}.Equal(Object{Hash: "abd", Size: 3}))
}
