// Package source abstracts "get next frame" over image files and cameras.
package source

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

// ErrExhausted signals that a finite source has produced all of its frames.
var ErrExhausted = errors.New("frame source exhausted")

// Frame is a single captured or loaded image handed to the detector.
type Frame struct {
	Image     image.Image
	Timestamp time.Time
	Seq       uint64
}

// FrameSource yields frames until exhaustion, cancellation, or a device error.
type FrameSource interface {
	// Next blocks until the next frame is available. It returns ErrExhausted
	// when a finite source is done and honors ctx cancellation between frames.
	Next(ctx context.Context) (*Frame, error)
	// Kind reports whether frames come from a file or a camera.
	Kind() models.Source
	// Close releases the underlying resource.
	Close() error
}
