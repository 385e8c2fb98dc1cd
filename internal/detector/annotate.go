package detector

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

// Annotate draws detection rectangles and payload labels on the frame and
// returns a re-encoded JPEG buffer for the live view.
func (d *Detector) Annotate(img image.Image, records []models.DetectionRecord) ([]byte, error) {
	green := color.RGBA{R: 0, G: 255, B: 0, A: 0}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %v", err)
	}
	defer mat.Close()

	// The encoder expects OpenCV's BGR channel order.
	if err := gocv.CvtColor(mat, &mat, gocv.ColorRGBToBGR); err != nil {
		return nil, fmt.Errorf("failed to convert color order: %v", err)
	}

	for _, record := range records {
		x, y, w, h := record.BoundingRect()
		rect := image.Rect(x, y, x+w, y+h)
		if err := gocv.Rectangle(&mat, rect, green, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %v", err)
		}

		label := fmt.Sprintf("%s: %s", record.Symbology, record.Payload)
		pt := image.Pt(x, y-5)
		if err := gocv.PutText(&mat, label, pt, gocv.FontHersheySimplex, 0.5, green, 1); err != nil {
			return nil, fmt.Errorf("failed to draw text: %v", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	defer buf.Close()

	annotated := make([]byte, len(buf.GetBytes()))
	copy(annotated, buf.GetBytes())

	return annotated, nil
}
