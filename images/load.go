package images

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Load decodes the file at path into a BGR Mat, the channel order the rest
// of the pipeline draws in. Every call re-reads from disk; nothing is cached.
// The caller owns the returned Mat and must Close it when err is nil.
func Load(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, errors.Wrapf(ErrLoadFailure, "%s", path)
	}
	return img, nil
}
