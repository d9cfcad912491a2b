// Package objects detects common objects in an image with a YOLO model
// served by ONNX Runtime, and draws the results through the render helper.
package objects

import (
	"image"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

const defaultInputSize = 640

// Detection is one detected object in the input image's pixel space.
type Detection struct {
	Box        image.Rectangle
	Label      string
	Confidence float32
}

// Config configures the ONNX object detector.
type Config struct {
	// ModelPath points at the YOLO ONNX weights.
	ModelPath string
	// LibraryPath optionally points at the onnxruntime shared library. When
	// empty the library's default lookup applies.
	LibraryPath string
	// InputSize is the square model input resolution. Zero means 640.
	InputSize int
	// ConfidenceThreshold filters out weak candidates before NMS.
	ConfidenceThreshold float32
	// NMSThreshold is the IoU above which overlapping boxes are suppressed.
	NMSThreshold float32
}

// Detector finds objects in a whole BGR image in one call.
type Detector interface {
	Detect(img gocv.Mat) ([]Detection, error)
}

// ONNXDetector runs a YOLO model through an ONNX Runtime session. The input
// and output tensors are allocated once and reused across calls.
type ONNXDetector struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	cfg     Config
}

// NewONNXDetector initializes the runtime environment (once per process) and
// builds a session for the model at cfg.ModelPath.
func NewONNXDetector(cfg Config) (*ONNXDetector, error) {
	if cfg.InputSize == 0 {
		cfg.InputSize = defaultInputSize
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "object detection model %s", cfg.ModelPath)
	}

	if !ort.IsInitialized() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize onnxruntime")
		}
	}

	n := cfg.InputSize
	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, int64(n), int64(n)),
		make([]float32, 3*n*n))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}

	// One output column per candidate box across the three YOLO strides.
	cells := (n/8)*(n/8) + (n/16)*(n/16) + (n/32)*(n/32)
	outputTensor, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, int64(4+len(COCOClasses)), int64(cells)))
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{"images"}, []string{"output0"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "create session for %s", cfg.ModelPath)
	}

	return &ONNXDetector{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		cfg:     cfg,
	}, nil
}

// Detect runs one inference over the whole image and returns the surviving
// detections after confidence filtering and NMS.
func (d *ONNXDetector) Detect(img gocv.Mat) ([]Detection, error) {
	if img.Empty() {
		return nil, errors.New("empty input image")
	}

	src, err := img.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert input image")
	}
	fillInput(d.input.GetData(), src, d.cfg.InputSize)

	if err := d.session.Run(); err != nil {
		return nil, errors.Wrap(err, "run inference")
	}

	size := img.Size()
	return decodeOutput(d.output.GetData(), d.cfg, size[1], size[0]), nil
}

// Close releases the session and its tensors.
func (d *ONNXDetector) Close() {
	d.session.Destroy()
	d.input.Destroy()
	d.output.Destroy()
}

// fillInput resizes src to the model's square input and writes it into data
// in CHW order with values scaled to [0,1].
func fillInput(data []float32, src image.Image, size int) {
	resized := resize.Resize(uint(size), uint(size), src, resize.Lanczos3)

	stride := size * size
	idx := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data[idx] = float32(r>>8) / 255.0
			data[idx+stride] = float32(g>>8) / 255.0
			data[idx+2*stride] = float32(b>>8) / 255.0
			idx++
		}
	}
}
