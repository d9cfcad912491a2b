package objects

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/vision-lab/go-detect/render"
)

// ErrDetection wraps a whole-image object detection failure.
var ErrDetection = errors.New("object detection failed")

const boxThickness = 2

// Annotator runs whole-image object detection and delegates all drawing to
// the render helper, which owns per-class styling.
type Annotator struct {
	detector Detector
}

// NewAnnotator wraps an object detector.
func NewAnnotator(d Detector) *Annotator {
	return &Annotator{detector: d}
}

// Annotate detects objects on a copy of img and draws every box and label in
// one render call. The input Mat is never mutated; the caller owns the
// returned Mat and must Close it when err is nil.
func (a *Annotator) Annotate(img gocv.Mat) (gocv.Mat, []Detection, error) {
	out := img.Clone()

	detections, err := a.detector.Detect(out)
	if err != nil {
		out.Close()
		return gocv.Mat{}, nil, errors.Wrap(ErrDetection, err.Error())
	}

	if len(detections) == 0 {
		fmt.Println("No objects detected in the image.")
		return out, nil, nil
	}

	boxes := make([]image.Rectangle, len(detections))
	labels := make([]string, len(detections))
	confidences := make([]float32, len(detections))
	for i, det := range detections {
		boxes[i] = det.Box
		labels[i] = det.Label
		confidences[i] = det.Confidence
	}

	fmt.Printf("Found %d object(s): %v\n", len(detections), labels)

	render.DetectionBoxes(&out, boxes, labels, confidences, render.DefaultFont(), boxThickness)

	return out, detections, nil
}

// Report prints the indexed detection summary, in detection order.
func Report(detections []Detection) {
	if len(detections) == 0 {
		return
	}
	fmt.Println("\nDetailed object detection results:")
	for i, det := range detections {
		fmt.Printf("  %d. %s: %.2f%% confidence\n", i+1, det.Label, det.Confidence*100)
	}
}
