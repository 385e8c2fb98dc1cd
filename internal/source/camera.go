package source

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

// CameraConfig carries the capture geometry applied when a device opens.
type CameraConfig struct {
	Width  int
	Height int
	FPS    int
}

// DeviceInfo describes one enumerated camera device.
type DeviceInfo struct {
	Index  int
	Width  int
	Height int
	FPS    float64
}

// CameraSource streams frames from a camera device until stopped or the
// device disconnects. A failed read triggers a single reconnect attempt
// before the stream terminates with a device error.
type CameraSource struct {
	index       int
	cfg         CameraConfig
	capture     *gocv.VideoCapture
	mat         gocv.Mat
	seq         uint64
	reconnected bool
}

// OpenCamera opens the device, applies the capture geometry, and verifies it
// delivers frames.
func OpenCamera(index int, cfg CameraConfig) (*CameraSource, error) {
	capture, err := openAndProbe(index, cfg)
	if err != nil {
		return nil, err
	}

	return &CameraSource{
		index:   index,
		cfg:     cfg,
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

func openAndProbe(index int, cfg CameraConfig) (*gocv.VideoCapture, error) {
	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, apperr.NewDeviceError(fmt.Sprintf("cannot open camera %d", index), err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, apperr.NewDeviceError(fmt.Sprintf("camera %d is not available", index), nil)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))

	// Test capture before handing the device to a session.
	probe := gocv.NewMat()
	defer probe.Close()
	if ok := capture.Read(&probe); !ok || probe.Empty() {
		capture.Close()
		return nil, apperr.NewDeviceError(fmt.Sprintf("camera %d delivers no frames", index), nil)
	}

	return capture, nil
}

// Next blocks on the device for the next frame. Cancellation is checked every
// iteration so a stop request is observed within one frame interval.
func (s *CameraSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		if err := s.reconnect(); err != nil {
			return nil, err
		}
		if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
			return nil, apperr.NewDeviceError(fmt.Sprintf("camera %d disconnected", s.index), nil)
		}
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, apperr.NewDeviceError("cannot convert camera frame", err)
	}

	s.seq++
	return &Frame{Image: img, Timestamp: time.Now(), Seq: s.seq}, nil
}

// reconnect attempts to reopen the device once per source lifetime.
func (s *CameraSource) reconnect() error {
	if s.reconnected {
		return apperr.NewDeviceError(fmt.Sprintf("camera %d disconnected", s.index), nil)
	}
	s.reconnected = true

	s.capture.Close()
	capture, err := openAndProbe(s.index, s.cfg)
	if err != nil {
		return err
	}
	s.capture = capture
	return nil
}

// Kind implements FrameSource.
func (s *CameraSource) Kind() models.Source {
	return models.SourceCamera
}

// Close releases the device and the reusable frame buffer.
func (s *CameraSource) Close() error {
	s.mat.Close()
	return s.capture.Close()
}

// ListDevices probes camera indices from 0 up to probeLimit and returns the
// devices that open and deliver a frame.
func ListDevices(probeLimit int) []DeviceInfo {
	var devices []DeviceInfo

	for index := 0; index < probeLimit; index++ {
		capture, err := gocv.OpenVideoCapture(index)
		if err != nil {
			continue
		}
		if !capture.IsOpened() {
			capture.Close()
			continue
		}

		probe := gocv.NewMat()
		if ok := capture.Read(&probe); ok && !probe.Empty() {
			devices = append(devices, DeviceInfo{
				Index:  index,
				Width:  int(capture.Get(gocv.VideoCaptureFrameWidth)),
				Height: int(capture.Get(gocv.VideoCaptureFrameHeight)),
				FPS:    capture.Get(gocv.VideoCaptureFPS),
			})
		}
		probe.Close()
		capture.Close()
	}

	return devices
}
