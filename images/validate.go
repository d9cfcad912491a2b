// Package images validates and loads single image files for the detection
// pipeline.
package images

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Validation and load failures. The driver matches on these with errors.Is
// to choose the exit message.
var (
	// ErrNotFound means the path does not exist.
	ErrNotFound = errors.New("image file not found")
	// ErrInvalidInput means the path exists but is not a regular file.
	ErrInvalidInput = errors.New("path is not a file")
	// ErrInvalidFormat means the file extension is not a supported image format.
	ErrInvalidFormat = errors.New("invalid image format")
	// ErrLoadFailure means the file could not be decoded.
	ErrLoadFailure = errors.New("failed to load image")
)

// supportedExtensions is the allow-list of decodable image extensions,
// matched case-insensitively.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// ValidatePath checks that path exists, is a regular file and carries a
// supported image extension. It returns the path unchanged and has no side
// effects.
func ValidatePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(ErrNotFound, "%s", path)
	}

	if !info.Mode().IsRegular() {
		return "", errors.Wrapf(ErrInvalidInput, "%s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return "", errors.Wrapf(ErrInvalidFormat, "%q (supported: jpg, jpeg, png, bmp, tiff, webp)", ext)
	}

	return path, nil
}
