package model

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("testPackage/dir/subdir", 0700))
	require.NoError(t, afero.WriteFile(fs, "testPackage/dir/subdir/my file äöü 人物.txt", []byte{1, 2, 3}, 0600))
	require.NoError(t, afero.WriteFile(fs, "testPackage/empty.txt", []byte{}, 0600))

	manifest, err := GenerateManifest(fs, "foo", "testPackage")
	require.NoError(t, err)
	require.NotNil(t, manifest)

	assert.Equal(t, "foo", manifest.PackageName)
	assert.EqualValues(t, 0, manifest.PackageVersion)
	assert.EqualValues(t, 0, manifest.Published)
	require.Len(t, manifest.Files, 2)

	// walk order is lexical
	assert.Equal(t, "dir/subdir/my file äöü 人物.txt", manifest.Files[0].Path)
	assert.EqualValues(t, 3, manifest.Files[0].Object.Size)
	assert.Equal(t, "11c0e79b71c3976ccd0c02d1310e2516c08edc9d8b6f57ccd680d63a4d8e72da", manifest.Files[0].Object.Hash)

	assert.Equal(t, "empty.txt", manifest.Files[1].Path)
	assert.EqualValues(t, 0, manifest.Files[1].Object.Size)
	assert.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", manifest.Files[1].Object.Hash)

	require.NoError(t, ValidateUnpublishedManifest(manifest))
}

func TestGenerateManifestMissingFolder(t *testing.T) {
	_, err := GenerateManifest(afero.NewMemMapFs(), "foo", "nowhere")
	require.Error(t, err)
}
