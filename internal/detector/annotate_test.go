package detector

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

func TestAnnotate_PreservesChannelOrder(t *testing.T) {
	det := NewDetector(newTestLogger(t))

	src := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	buf, err := det.Annotate(src, nil)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(buf))
	require.NoError(t, err)

	r, _, b, _ := decoded.At(16, 16).RGBA()
	assert.Greater(t, r>>8, uint32(200), "red must survive the encode round trip")
	assert.Less(t, b>>8, uint32(60), "red and blue must not be swapped")
}

func TestAnnotate_WithDetections(t *testing.T) {
	det := NewDetector(newTestLogger(t))

	src := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	records := []models.DetectionRecord{{
		Symbology: models.SymbologyQRCode,
		Payload:   "hello",
		Region:    []models.Point{{X: 20, Y: 20}, {X: 80, Y: 20}, {X: 80, Y: 80}, {X: 20, Y: 80}},
	}}

	buf, err := det.Annotate(src, records)
	require.NoError(t, err)
	assert.NotEmpty(t, buf)

	_, err = jpeg.Decode(bytes.NewReader(buf))
	assert.NoError(t, err, "annotated output must be a decodable JPEG")
}
