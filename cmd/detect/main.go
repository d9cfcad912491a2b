// Command detect runs pre-trained face, gender and object detectors over a
// single image, draws the results and optionally displays or saves them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/vision-lab/go-detect/faces"
	"github.com/vision-lab/go-detect/images"
	"github.com/vision-lab/go-detect/objects"
	"github.com/vision-lab/go-detect/present"
)

const defaultImage = "getting-ready-for-the-speaker-series.jpg"

type options struct {
	imagePath string
	noViz     bool
	save      bool
	outputDir string

	faceModel    string
	faceConfig   string
	genderModel  string
	genderConfig string
	objectModel  string
	ortLibrary   string
}

func main() {
	log.SetFlags(0)

	var opts options
	flag.BoolVar(&opts.noViz, "no-viz", false, "Disable visualization windows")
	flag.BoolVar(&opts.save, "save", false, "Save annotated images to disk")
	flag.StringVar(&opts.outputDir, "output-dir", "./results", "Directory to save results")
	flag.StringVar(&opts.faceModel, "face-model", "models/res10_300x300_ssd_iter_140000.caffemodel", "Caffe weights for the face detector")
	flag.StringVar(&opts.faceConfig, "face-config", "models/deploy.prototxt", "Caffe config for the face detector")
	flag.StringVar(&opts.genderModel, "gender-model", "models/gender_net.caffemodel", "Caffe weights for the gender classifier")
	flag.StringVar(&opts.genderConfig, "gender-config", "models/gender_deploy.prototxt", "Caffe config for the gender classifier")
	flag.StringVar(&opts.objectModel, "object-model", "models/yolov8n.onnx", "ONNX weights for the object detector")
	flag.StringVar(&opts.ortLibrary, "onnxruntime", "", "Path to the onnxruntime shared library (optional)")
	flag.Parse()

	opts.imagePath = flag.Arg(0)
	if opts.imagePath == "" {
		opts.imagePath = defaultImage
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, images.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "\nUsage: detect <path_to_image>\n")
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	fmt.Printf("Loading image: %s\n", opts.imagePath)

	path, err := images.ValidatePath(opts.imagePath)
	if err != nil {
		return err
	}

	img, err := images.Load(path)
	if err != nil {
		return err
	}
	defer img.Close()

	fmt.Printf("Image loaded successfully: %dx%d pixels\n", img.Cols(), img.Rows())

	// The two passes are independent: each annotator clones the freshly
	// loaded image, so neither sees the other's drawing.
	banner("STEP 1: Face and Gender Detection")
	if err := runFaces(img, opts); err != nil {
		return err
	}

	banner("STEP 2: Object Detection")
	if err := runObjects(img, opts); err != nil {
		return err
	}

	banner("Detection complete!")
	return nil
}

func runFaces(img gocv.Mat, opts options) error {
	detector, err := faces.NewSSDDetector(opts.faceModel, opts.faceConfig)
	if err != nil {
		return err
	}
	defer detector.Close()

	classifier, err := faces.NewCaffeClassifier(opts.genderModel, opts.genderConfig)
	if err != nil {
		return err
	}
	defer classifier.Close()

	fmt.Println("Detecting faces...")

	annotated, _, err := faces.NewAnnotator(detector, classifier).Annotate(img)
	if err != nil {
		return err
	}
	defer annotated.Close()

	if !opts.noViz {
		if err := present.Show(annotated, "Face and Gender Detection Results"); err != nil {
			fmt.Printf("Warning: Failed to display results: %v\n", err)
		}
	}
	if opts.save {
		persist(annotated, opts.outputDir, "faces_gender")
	}
	return nil
}

func runObjects(img gocv.Mat, opts options) error {
	detector, err := objects.NewONNXDetector(objects.Config{
		ModelPath:           opts.objectModel,
		LibraryPath:         opts.ortLibrary,
		ConfidenceThreshold: 0.5,
		NMSThreshold:        0.3,
	})
	if err != nil {
		return err
	}
	defer detector.Close()

	fmt.Println("\nDetecting common objects...")

	annotated, detections, err := objects.NewAnnotator(detector).Annotate(img)
	if err != nil {
		return err
	}
	defer annotated.Close()

	if !opts.noViz {
		if err := present.Show(annotated, "Object Detection Results"); err != nil {
			fmt.Printf("Warning: Failed to display results: %v\n", err)
		}
	}

	objects.Report(detections)

	if opts.save {
		persist(annotated, opts.outputDir, "objects")
	}
	return nil
}

// persist saves an annotated image, downgrading any failure to a warning:
// the detection results were already reported even if the write failed.
func persist(img gocv.Mat, dir, prefix string) {
	out, err := present.Save(img, dir, prefix)
	if err != nil {
		fmt.Printf("Warning: Failed to save results: %v\n", err)
		return
	}
	fmt.Printf("\nSaved result to: %s\n", out)
}

func banner(title string) {
	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n%s\n%s\n", line, title, line)
}
