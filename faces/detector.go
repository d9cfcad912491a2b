// Package faces detects faces in an image, classifies the gender of each and
// draws the results onto a copy of the input.
package faces

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// ssdInputSize is the fixed input resolution of the res10 face net.
	ssdInputSize = 300
	// ssdConfidenceThreshold filters out weak face candidates.
	ssdConfidenceThreshold = 0.5
)

// Detector locates faces in a BGR image, returning one box and one
// confidence per face.
type Detector interface {
	Detect(img gocv.Mat) ([]image.Rectangle, []float32, error)
}

// SSDDetector runs the pre-trained res10 single-shot face detector through
// the OpenCV DNN module.
type SSDDetector struct {
	net gocv.Net
}

// NewSSDDetector loads the Caffe weights and deploy config for the face net.
func NewSSDDetector(modelPath, configPath string) (*SSDDetector, error) {
	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load face detection model from %s", modelPath)
	}
	return &SSDDetector{net: net}, nil
}

// Detect runs one forward pass over the whole image. Box coordinates are
// scaled back to the input image's pixel space.
func (d *SSDDetector) Detect(img gocv.Mat) ([]image.Rectangle, []float32, error) {
	if img.Empty() {
		return nil, nil, errors.New("empty input image")
	}

	blob := gocv.BlobFromImage(img, 1.0, image.Pt(ssdInputSize, ssdInputSize),
		gocv.NewScalar(104, 177, 123, 0), false, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	prob := d.net.Forward("")
	defer prob.Close()

	var (
		boxes       []image.Rectangle
		confidences []float32
	)

	cols := float32(img.Cols())
	rows := float32(img.Rows())

	// The SSD output is a flat list of 7-float rows:
	// [batch, class, confidence, x1, y1, x2, y2] with normalized coordinates.
	for i := 0; i < prob.Total(); i += 7 {
		confidence := prob.GetFloatAt(0, i+2)
		if confidence < ssdConfidenceThreshold {
			continue
		}

		startX := int(prob.GetFloatAt(0, i+3) * cols)
		startY := int(prob.GetFloatAt(0, i+4) * rows)
		endX := int(prob.GetFloatAt(0, i+5) * cols)
		endY := int(prob.GetFloatAt(0, i+6) * rows)

		boxes = append(boxes, image.Rect(startX, startY, endX, endY))
		confidences = append(confidences, confidence)
	}

	return boxes, confidences, nil
}

// Close releases the underlying network.
func (d *SSDDetector) Close() error {
	return d.net.Close()
}
