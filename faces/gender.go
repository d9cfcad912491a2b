package faces

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Prediction is one candidate gender label with its confidence in [0,1].
type Prediction struct {
	Label      string
	Confidence float32
}

// genderLabels matches the output ordering of the gender net.
var genderLabels = []string{"man", "woman"}

// genderInputSize is the fixed input resolution of the gender net.
const genderInputSize = 227

// Classifier predicts gender candidates for a cropped face. All candidates
// are returned; the caller selects among them.
type Classifier interface {
	Classify(crop gocv.Mat) ([]Prediction, error)
}

// CaffeClassifier runs the pre-trained gender net through the OpenCV DNN
// module.
type CaffeClassifier struct {
	net gocv.Net
}

// NewCaffeClassifier loads the Caffe weights and deploy config for the
// gender net.
func NewCaffeClassifier(modelPath, configPath string) (*CaffeClassifier, error) {
	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load gender model from %s", modelPath)
	}
	return &CaffeClassifier{net: net}, nil
}

// Classify returns one candidate prediction per known gender label.
func (c *CaffeClassifier) Classify(crop gocv.Mat) ([]Prediction, error) {
	if crop.Empty() {
		return nil, errors.New("empty face crop")
	}

	// Training mean of the gender net, subtracted per channel.
	mean := gocv.NewScalar(78.4263377603, 87.7689143744, 114.895847746, 0)

	blob := gocv.BlobFromImage(crop, 1.0, image.Pt(genderInputSize, genderInputSize),
		mean, false, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	if out.Total() < len(genderLabels) {
		return nil, errors.Errorf("unexpected gender net output size %d", out.Total())
	}

	preds := make([]Prediction, len(genderLabels))
	for i, label := range genderLabels {
		preds[i] = Prediction{Label: label, Confidence: out.GetFloatAt(0, i)}
	}
	return preds, nil
}

// Close releases the underlying network.
func (c *CaffeClassifier) Close() error {
	return c.net.Close()
}
