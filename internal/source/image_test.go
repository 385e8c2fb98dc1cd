package source

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "source_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	path := filepath.Join(dir, "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestImageSource_YieldsExactlyOneFrame(t *testing.T) {
	src, err := NewImageSource(writeTestImage(t))
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, models.SourceImage, src.Kind())

	frame, err := src.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, uint64(1), frame.Seq)
	assert.NotNil(t, frame.Image)

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestImageSource_MissingFile(t *testing.T) {
	_, err := NewImageSource(filepath.Join(os.TempDir(), "does-not-exist.png"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindLoad))
}

func TestImageSource_UndecodableFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "source_bad_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "not-an-image.png")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err = NewImageSource(path)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindLoad))
}

func TestImageSource_CancelledContext(t *testing.T) {
	src, err := NewImageSource(writeTestImage(t))
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
