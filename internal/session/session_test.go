package session

import (
	"context"
	"image"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/monitor"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/source"
)

// fakeSource produces a fixed number of frames (0 = unlimited) at a fixed
// interval and then reports exhaustion or a configured error.
type fakeSource struct {
	kind     models.Source
	frames   int
	interval time.Duration
	finalErr error

	produced int
	closed   bool
}

func (s *fakeSource) Next(ctx context.Context) (*source.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.frames > 0 && s.produced >= s.frames {
		if s.finalErr != nil {
			return nil, s.finalErr
		}
		return nil, source.ErrExhausted
	}
	if s.interval > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.interval):
		}
	}
	s.produced++
	return &source.Frame{
		Image:     image.NewRGBA(image.Rect(0, 0, 1, 1)),
		Timestamp: time.Now(),
		Seq:       uint64(s.produced),
	}, nil
}

func (s *fakeSource) Kind() models.Source { return s.kind }
func (s *fakeSource) Close() error        { s.closed = true; return nil }

// failingSource errors before producing any frame.
type failingSource struct{ kind models.Source }

func (s *failingSource) Next(ctx context.Context) (*source.Frame, error) {
	return nil, apperr.NewDeviceError("camera 0 disconnected", nil)
}
func (s *failingSource) Kind() models.Source { return s.kind }
func (s *failingSource) Close() error        { return nil }

// fakeDetector returns the configured records for each successive call.
type fakeDetector struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) []models.DetectionRecord
}

func (d *fakeDetector) Detect(img image.Image, src models.Source) ([]models.DetectionRecord, error) {
	d.mu.Lock()
	call := d.calls
	d.calls++
	d.mu.Unlock()
	if d.fn == nil {
		return nil, nil
	}
	return d.fn(call), nil
}

// fakeExporter counts exported records and can fail a number of times first.
type fakeExporter struct {
	mu       sync.Mutex
	exported []models.DetectionRecord
	failures int
}

func (e *fakeExporter) Export(records []models.DetectionRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failures > 0 {
		e.failures--
		return apperr.NewExportError("file locked", nil)
	}
	e.exported = append(e.exported, records...)
	return nil
}

func (e *fakeExporter) total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.exported)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	dir, err := os.MkdirTemp("", "session_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	log, err := logger.NewLogger(dir)
	require.NoError(t, err)
	t.Cleanup(log.Close)
	return log
}

func record(payload string, src models.Source) models.DetectionRecord {
	return models.DetectionRecord{
		Symbology: models.SymbologyQRCode,
		Payload:   payload,
		Timestamp: time.Now(),
		Source:    src,
	}
}

func TestRun_SingleImageReturnsToIdle(t *testing.T) {
	det := &fakeDetector{fn: func(call int) []models.DetectionRecord {
		return []models.DetectionRecord{record("payload", models.SourceImage)}
	}}
	exp := &fakeExporter{}
	ctrl := NewController(det, exp, monitor.NewMonitor(time.Hour), newTestLogger(t), Options{})

	src := &fakeSource{kind: models.SourceImage, frames: 1}
	records, err := ctrl.Run(context.Background(), src)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StateIdle, ctrl.State(), "a finite source must return the session to idle")
	assert.Equal(t, 1, exp.total())
	assert.True(t, src.closed)
}

func TestRun_DedupSuppressesWithinWindow(t *testing.T) {
	det := &fakeDetector{fn: func(call int) []models.DetectionRecord {
		return []models.DetectionRecord{record("same", models.SourceCamera)}
	}}
	exp := &fakeExporter{}
	ctrl := NewController(det, exp, monitor.NewMonitor(time.Hour), newTestLogger(t), Options{
		DedupWindow: 3 * time.Second,
		QueueSize:   16,
	})

	// The controller clock advances 1s between the first two sightings
	// (inside the window) and 10s before the third (outside).
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(1 * time.Second), base.Add(11 * time.Second)}
	var tick int
	var mu sync.Mutex
	ctrl.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := clock[tick]
		if tick < len(clock)-1 {
			tick++
		}
		return t
	}

	src := &fakeSource{kind: models.SourceCamera, frames: 3}
	_, err := ctrl.Run(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, 2, exp.total(), "one row inside the window, a second after it elapses")
}

func TestRun_StopIsObservedPromptly(t *testing.T) {
	det := &fakeDetector{}
	exp := &fakeExporter{}
	ctrl := NewController(det, exp, monitor.NewMonitor(time.Hour), newTestLogger(t), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{kind: models.SourceCamera, interval: 5 * time.Millisecond}

	done := make(chan struct{})
	go func() {
		_, err := ctrl.Run(ctx, src)
		assert.NoError(t, err, "a user stop is not an error")
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("session did not stop within the cancellation bound")
	}
	assert.Equal(t, StateStopped, ctrl.State())
}

func TestRun_ExportFailureKeepsRecordsForRetry(t *testing.T) {
	det := &fakeDetector{fn: func(call int) []models.DetectionRecord {
		if call == 0 {
			return []models.DetectionRecord{record("once", models.SourceCamera)}
		}
		return nil
	}}
	exp := &fakeExporter{failures: 1}
	ctrl := NewController(det, exp, monitor.NewMonitor(time.Hour), newTestLogger(t), Options{
		FlushInterval: 10 * time.Millisecond,
		QueueSize:     16,
	})

	src := &fakeSource{kind: models.SourceCamera, frames: 8, interval: 5 * time.Millisecond}
	_, err := ctrl.Run(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, 1, exp.total(), "the record must be exported exactly once after the retry")
}

func TestRun_ConnectFailureReturnsToIdle(t *testing.T) {
	ctrl := NewController(&fakeDetector{}, &fakeExporter{}, monitor.NewMonitor(time.Hour), newTestLogger(t), Options{})

	_, err := ctrl.Run(context.Background(), &failingSource{kind: models.SourceCamera})

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDevice))
	assert.Equal(t, StateIdle, ctrl.State(), "a failed connect must land back in idle")
}

func TestRun_DeviceErrorMidStreamStops(t *testing.T) {
	ctrl := NewController(&fakeDetector{}, &fakeExporter{}, monitor.NewMonitor(time.Hour), newTestLogger(t), Options{QueueSize: 16})

	src := &fakeSource{
		kind:     models.SourceCamera,
		frames:   2,
		finalErr: apperr.NewDeviceError("camera 0 disconnected", nil),
	}
	_, err := ctrl.Run(context.Background(), src)

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDevice))
	assert.Equal(t, StateStopped, ctrl.State())
}
