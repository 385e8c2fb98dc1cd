package source

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

// ImageSource yields exactly one frame decoded from a file on disk.
type ImageSource struct {
	path    string
	img     image.Image
	yielded bool
}

// NewImageSource loads and decodes the file eagerly so load errors surface
// before a session starts running.
func NewImageSource(path string) (*ImageSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperr.NewLoadError(fmt.Sprintf("image file not found: %s", path), err)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, apperr.NewLoadError(fmt.Sprintf("cannot decode image: %s", path), nil)
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return nil, apperr.NewLoadError(fmt.Sprintf("cannot convert image: %s", path), err)
	}

	return &ImageSource{path: path, img: img}, nil
}

// Next returns the single decoded frame, then ErrExhausted.
func (s *ImageSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.yielded {
		return nil, ErrExhausted
	}
	s.yielded = true
	return &Frame{Image: s.img, Timestamp: time.Now(), Seq: 1}, nil
}

// Kind implements FrameSource.
func (s *ImageSource) Kind() models.Source {
	return models.SourceImage
}

// Close implements FrameSource.
func (s *ImageSource) Close() error {
	s.img = nil
	return nil
}
