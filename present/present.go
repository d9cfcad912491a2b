// Package present shows annotated images in a window and writes them to
// disk. Both behaviors are best-effort: errors are returned for the caller
// to log but must never abort the pipeline.
package present

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Window size chosen for readability of annotated results.
const (
	windowWidth  = 1200
	windowHeight = 800
)

// Show renders img in a titled window and blocks until a key is pressed.
func Show(img gocv.Mat, title string) error {
	if img.Empty() {
		return errors.New("nothing to display")
	}

	window := gocv.NewWindow(title)
	defer window.Close()

	window.ResizeWindow(windowWidth, windowHeight)
	window.IMShow(img)
	window.WaitKey(0)

	return nil
}

// Save writes img under dir as "<prefix>_<stem>.jpg", creating dir and any
// parents first. The stem is taken from the final element of the requested
// output path. Save returns the path written.
func Save(img gocv.Mat, dir, prefix string) (string, error) {
	if img.Empty() {
		return "", errors.New("nothing to save")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create output directory %s", dir)
	}

	base := filepath.Base(dir)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	out := filepath.Join(dir, fmt.Sprintf("%s_%s.jpg", prefix, stem))

	if ok := gocv.IMWrite(out, img); !ok {
		return "", errors.Errorf("failed to write %s", out)
	}

	return out, nil
}
