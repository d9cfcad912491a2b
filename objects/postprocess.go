package objects

import (
	"image"
	"sort"

	"github.com/chewxy/math32"
)

// candidate is a detection in float space, kept through NMS before being
// converted to an image.Rectangle.
type candidate struct {
	x1, y1, x2, y2 float32
	class          int
	score          float32
}

// decodeOutput converts the raw YOLO output into detections in the original
// image's pixel space. The output layout is one column per candidate box:
// rows 0-3 are cx, cy, w, h in model input coordinates, followed by one
// score row per class.
func decodeOutput(output []float32, cfg Config, imgWidth, imgHeight int) []Detection {
	numClasses := len(COCOClasses)
	cells := len(output) / (4 + numClasses)
	if cells == 0 {
		return nil
	}

	scaleX := float32(imgWidth) / float32(cfg.InputSize)
	scaleY := float32(imgHeight) / float32(cfg.InputSize)

	var candidates []candidate
	for i := 0; i < cells; i++ {
		class, score := bestClass(output, i, cells, numClasses)
		if score < cfg.ConfidenceThreshold {
			continue
		}

		xc := output[i]
		yc := output[cells+i]
		w := output[2*cells+i]
		h := output[3*cells+i]

		candidates = append(candidates, candidate{
			x1:    (xc - w/2) * scaleX,
			y1:    (yc - h/2) * scaleY,
			x2:    (xc + w/2) * scaleX,
			y2:    (yc + h/2) * scaleY,
			class: class,
			score: score,
		})
	}

	kept := nonMaxSuppression(candidates, cfg.NMSThreshold)

	bounds := image.Rect(0, 0, imgWidth, imgHeight)
	detections := make([]Detection, 0, len(kept))
	for _, c := range kept {
		box := image.Rect(int(c.x1), int(c.y1), int(c.x2), int(c.y2)).Intersect(bounds)
		detections = append(detections, Detection{
			Box:        box,
			Label:      COCOClasses[c.class],
			Confidence: c.score,
		})
	}
	return detections
}

// bestClass is a stable argmax over the per-class scores of candidate i: the
// earliest class wins ties.
func bestClass(output []float32, i, cells, numClasses int) (int, float32) {
	best := 0
	bestScore := output[4*cells+i]
	for j := 1; j < numClasses; j++ {
		if score := output[(4+j)*cells+i]; score > bestScore {
			bestScore = score
			best = j
		}
	}
	return best, bestScore
}

// nonMaxSuppression drops any candidate whose IoU with an already kept,
// higher-scoring candidate exceeds threshold.
func nonMaxSuppression(candidates []candidate, threshold float32) []candidate {
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var kept []candidate
	suppressed := make([]bool, len(candidates))

	for i := range candidates {
		if suppressed[i] {
			continue
		}
		kept = append(kept, candidates[i])
		for j := i + 1; j < len(candidates); j++ {
			if suppressed[j] {
				continue
			}
			if iou(candidates[i], candidates[j]) > threshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// iou is the intersection-over-union of two candidate boxes.
func iou(a, b candidate) float32 {
	ix1 := math32.Max(a.x1, b.x1)
	iy1 := math32.Max(a.y1, b.y1)
	ix2 := math32.Min(a.x2, b.x2)
	iy2 := math32.Min(a.y2, b.y2)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}

	intersection := iw * ih
	union := (a.x2-a.x1)*(a.y2-a.y1) + (b.x2-b.x1)*(b.y2-b.y1) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}
