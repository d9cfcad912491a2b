package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// boxLabel is a label queued for rendering after all boxes are drawn.
type boxLabel struct {
	background image.Rectangle
	clr        color.RGBA
	text       string
	textPos    image.Point
}

// DetectionBoxes draws one rectangle per detection and a filled label above
// it reading "<label> <confidence>". The three slices are parallel. Labels
// are drawn after every rectangle so no box outline cuts through text.
func DetectionBoxes(img *gocv.Mat, boxes []image.Rectangle, labels []string,
	confidences []float32, font Font, lineThickness int) {

	pending := make([]boxLabel, 0, len(boxes))

	for i, box := range boxes {
		clr := ClassColor(labels[i])
		gocv.Rectangle(img, box, clr, lineThickness)

		text := fmt.Sprintf("%s %.2f", labels[i], confidences[i])
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		background := image.Rect(box.Min.X,
			box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			box.Min.X+textSize.X+font.LeftPad+font.RightPad,
			box.Min.Y)

		pending = append(pending, boxLabel{
			background: background,
			clr:        clr,
			text:       text,
			textPos:    image.Pt(box.Min.X+font.LeftPad, box.Min.Y-font.BottomPad),
		})
	}

	for _, l := range pending {
		gocv.Rectangle(img, l.background, l.clr, -1)
		gocv.PutText(img, l.text, l.textPos, font.Face, font.Scale, font.Color, font.Thickness)
	}
}
