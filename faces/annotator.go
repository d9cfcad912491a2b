package faces

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrDetection wraps a whole-image face detection failure. It aborts the
// annotation pass; per-face classification failures never do.
var ErrDetection = errors.New("face detection failed")

// Outcome states for a single detected face.
const (
	// Labeled means the face was classified and its label drawn.
	Labeled Outcome = iota
	// SkippedEmptyCrop means the face box had no area inside the image, so
	// gender classification was skipped.
	SkippedEmptyCrop
	// Failed means the classifier returned an error for this face.
	Failed
)

// Outcome tags what happened for one detected face.
type Outcome int

// FaceResult records the per-face outcome of an annotation pass.
type FaceResult struct {
	Box     image.Rectangle
	Outcome Outcome
	// Label holds the drawn text, e.g. "man: 95.00%", when Outcome is Labeled.
	Label string
	// Err holds the classifier error when Outcome is Failed.
	Err error
}

const (
	boxThickness  = 2
	textThickness = 2
	textScale     = 0.9
	labelOffset   = 10
)

var (
	boxColor  = color.RGBA{0, 255, 0, 0}
	textColor = color.RGBA{0, 0, 0, 0}
)

// Annotator draws face rectangles and gender labels onto copies of images.
type Annotator struct {
	detector   Detector
	classifier Classifier
}

// NewAnnotator wires a face detector and a gender classifier together.
func NewAnnotator(d Detector, c Classifier) *Annotator {
	return &Annotator{detector: d, classifier: c}
}

// Annotate runs face detection over a copy of img, draws a rectangle per
// face, then classifies gender for each face and stamps a label near the
// box. The input Mat is never mutated; the caller owns the returned Mat and
// must Close it when err is nil.
func (a *Annotator) Annotate(img gocv.Mat) (gocv.Mat, []FaceResult, error) {
	out := img.Clone()

	boxes, _, err := a.detector.Detect(out)
	if err != nil {
		out.Close()
		return gocv.Mat{}, nil, errors.Wrap(ErrDetection, err.Error())
	}

	if len(boxes) == 0 {
		fmt.Println("No faces detected in the image.")
		return out, nil, nil
	}

	fmt.Printf("Found %d face(s)\n", len(boxes))

	// All rectangles go down first. Labels stamped in the second pass must
	// never be painted over by a later face's rectangle, so the two loops
	// stay separate.
	for _, box := range boxes {
		gocv.Rectangle(&out, box, boxColor, boxThickness)
	}

	results := make([]FaceResult, 0, len(boxes))
	for idx, box := range boxes {
		results = append(results, a.labelFace(&out, idx, box))
	}

	return out, results, nil
}

// labelFace classifies one face and stamps its label. The crop is taken from
// the already rectangle-annotated image. Failures are recorded in the
// returned FaceResult, never propagated.
func (a *Annotator) labelFace(img *gocv.Mat, idx int, box image.Rectangle) FaceResult {
	res := FaceResult{Box: box}

	roi := box.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if roi.Empty() {
		fmt.Printf("Warning: Empty face crop for face %d, skipping gender detection\n", idx+1)
		res.Outcome = SkippedEmptyCrop
		return res
	}

	crop := img.Region(roi)
	defer crop.Close()

	preds, err := a.classifier.Classify(crop)
	if err == nil && len(preds) == 0 {
		err = errors.New("classifier returned no candidates")
	}
	if err != nil {
		fmt.Printf("Warning: Gender detection failed for face %d: %v\n", idx+1, err)
		res.Outcome = Failed
		res.Err = err
		return res
	}

	best := preds[argmax(preds)]
	res.Outcome = Labeled
	res.Label = fmt.Sprintf("%s: %.2f%%", best.Label, best.Confidence*100)
	fmt.Printf("Face %d: %s\n", idx+1, res.Label)

	gocv.PutText(img, res.Label, image.Pt(box.Min.X, labelY(box.Min.Y)),
		gocv.FontHersheyDuplex, textScale, textColor, textThickness)

	return res
}

// argmax returns the index of the highest-confidence prediction, taking the
// earliest index on ties.
func argmax(preds []Prediction) int {
	best := 0
	for i, p := range preds {
		if p.Confidence > preds[best].Confidence {
			best = i
		}
	}
	return best
}

// labelY places a label 10px above the box's top edge, unless that would sit
// within 10px of the image top, in which case it goes 10px below the edge so
// the text is not clipped off-canvas.
func labelY(startY int) int {
	if startY-labelOffset > labelOffset {
		return startY - labelOffset
	}
	return startY + labelOffset
}
