package faces

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type stubDetector struct {
	boxes []image.Rectangle
	confs []float32
	err   error
}

func (s *stubDetector) Detect(gocv.Mat) ([]image.Rectangle, []float32, error) {
	return s.boxes, s.confs, s.err
}

// stubClassifier returns canned predictions/errors per call, in call order.
type stubClassifier struct {
	preds [][]Prediction
	errs  []error
	calls int
}

func (s *stubClassifier) Classify(gocv.Mat) ([]Prediction, error) {
	i := s.calls
	s.calls++

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var preds []Prediction
	if i < len(s.preds) {
		preds = s.preds[i]
	}
	return preds, err
}

// testImage is a 160x120 Mat with uniform non-zero pixels.
func testImage(t *testing.T) gocv.Mat {
	t.Helper()
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 120, 150, 0),
		120, 160, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { img.Close() })
	return img
}

func TestAnnotateNoFacesReturnsIdenticalCopy(t *testing.T) {
	img := testImage(t)
	annotator := NewAnnotator(&stubDetector{}, &stubClassifier{})

	out, results, err := annotator.Annotate(img)
	require.NoError(t, err)
	defer out.Close()

	assert.Empty(t, results)
	assert.Equal(t, img.ToBytes(), out.ToBytes(), "no detections must leave the copy pixel-identical")
}

func TestAnnotateNeverMutatesInput(t *testing.T) {
	img := testImage(t)
	before := img.ToBytes()

	detector := &stubDetector{
		boxes: []image.Rectangle{image.Rect(20, 20, 80, 80)},
		confs: []float32{0.99},
	}
	classifier := &stubClassifier{
		preds: [][]Prediction{{{Label: "man", Confidence: 0.9}, {Label: "woman", Confidence: 0.1}}},
	}

	out, _, err := NewAnnotator(detector, classifier).Annotate(img)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, before, img.ToBytes(), "caller's image must not change")
	assert.NotEqual(t, before, out.ToBytes(), "annotated copy must carry the drawing")
}

func TestAnnotateSkipsEmptyCrops(t *testing.T) {
	img := testImage(t)

	detector := &stubDetector{
		boxes: []image.Rectangle{
			image.Rect(10, 10, 10, 40),    // zero width
			image.Rect(200, 130, 250, 180), // entirely outside the image
			image.Rect(20, 20, 60, 60),    // valid
		},
		confs: []float32{0.9, 0.9, 0.9},
	}
	classifier := &stubClassifier{
		preds: [][]Prediction{{{Label: "woman", Confidence: 0.8}, {Label: "man", Confidence: 0.2}}},
	}

	out, results, err := NewAnnotator(detector, classifier).Annotate(img)
	require.NoError(t, err)
	defer out.Close()

	require.Len(t, results, 3)
	assert.Equal(t, SkippedEmptyCrop, results[0].Outcome)
	assert.Equal(t, SkippedEmptyCrop, results[1].Outcome)
	assert.Equal(t, Labeled, results[2].Outcome)
	assert.Equal(t, "woman: 80.00%", results[2].Label)
	assert.Equal(t, 1, classifier.calls, "only the valid crop reaches the classifier")
}

func TestAnnotatePerFaceFailureIsIsolated(t *testing.T) {
	img := testImage(t)

	detector := &stubDetector{
		boxes: []image.Rectangle{
			image.Rect(10, 10, 50, 50),
			image.Rect(60, 30, 110, 80),
		},
		confs: []float32{0.9, 0.9},
	}
	classifier := &stubClassifier{
		errs: []error{errors.New("model exploded"), nil},
		preds: [][]Prediction{
			nil,
			{{Label: "man", Confidence: 0.95}, {Label: "woman", Confidence: 0.05}},
		},
	}

	out, results, err := NewAnnotator(detector, classifier).Annotate(img)
	require.NoError(t, err, "one bad face must not abort the pass")
	defer out.Close()

	require.Len(t, results, 2)
	assert.Equal(t, Failed, results[0].Outcome)
	assert.Error(t, results[0].Err)
	assert.Equal(t, Labeled, results[1].Outcome)
	assert.Equal(t, "man: 95.00%", results[1].Label)
}

func TestAnnotateDetectorErrorIsFatal(t *testing.T) {
	img := testImage(t)

	detector := &stubDetector{err: errors.New("forward pass failed")}

	_, _, err := NewAnnotator(detector, &stubClassifier{}).Annotate(img)
	assert.ErrorIs(t, err, ErrDetection)
}

func TestArgmaxIsStable(t *testing.T) {
	tests := []struct {
		name  string
		preds []Prediction
		want  int
	}{
		{
			name:  "single candidate",
			preds: []Prediction{{Label: "man", Confidence: 0.4}},
			want:  0,
		},
		{
			name: "clear winner",
			preds: []Prediction{
				{Label: "man", Confidence: 0.2},
				{Label: "woman", Confidence: 0.8},
			},
			want: 1,
		},
		{
			name: "tie resolved to earliest index",
			preds: []Prediction{
				{Label: "man", Confidence: 0.3},
				{Label: "woman", Confidence: 0.7},
				{Label: "other", Confidence: 0.7},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, argmax(tt.preds))
		})
	}
}

func TestLabelYPlacement(t *testing.T) {
	tests := []struct {
		startY int
		want   int
	}{
		{startY: 5, want: 15},    // too close to the top, drop below the edge
		{startY: 20, want: 30},   // 20-10 is not strictly above the threshold
		{startY: 21, want: 11},   // first value placed above the box
		{startY: 100, want: 90},  // normal placement above the box
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, labelY(tt.startY), "startY=%d", tt.startY)
	}
}
