package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathSupportedExtensions(t *testing.T) {
	dir := t.TempDir()

	extensions := []string{
		".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp",
		".JPG", ".Jpeg", ".PNG", ".WEBP",
	}

	for _, ext := range extensions {
		path := filepath.Join(dir, "image"+ext)
		require.NoError(t, os.WriteFile(path, []byte("pixels"), 0o644))

		got, err := ValidatePath(path)
		assert.NoError(t, err, "extension %s", ext)
		assert.Equal(t, path, got)
	}
}

func TestValidatePathUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()

	for _, ext := range []string{".gif", ".txt", ".mp4", ".jpg.bak", ""} {
		path := filepath.Join(dir, "image"+ext)
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

		_, err := ValidatePath(path)
		assert.ErrorIs(t, err, ErrInvalidFormat, "extension %q", ext)
	}
}

func TestValidatePathNotFound(t *testing.T) {
	_, err := ValidatePath(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidatePathDirectory(t *testing.T) {
	// Even with a valid image extension, a directory is not a loadable input.
	dir := filepath.Join(t.TempDir(), "photos.jpg")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := ValidatePath(dir)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
