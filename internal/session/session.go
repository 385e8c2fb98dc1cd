// Package session orchestrates frame capture, detection, deduplication,
// display, and export for one run against one frame source.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/monitor"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/repository"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/source"
)

// State is the controller lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateRunning
	StateStopped
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Detector decodes codes in a frame.
type Detector interface {
	Detect(img image.Image, src models.Source) ([]models.DetectionRecord, error)
}

// Annotator renders detections onto a frame as a JPEG buffer.
type Annotator interface {
	Annotate(img image.Image, records []models.DetectionRecord) ([]byte, error)
}

// Exporter appends records to the spreadsheet.
type Exporter interface {
	Export(records []models.DetectionRecord) error
}

// Broadcaster pushes frames and detection events to live viewers.
type Broadcaster interface {
	BroadcastFrame(jpeg []byte)
	BroadcastDetections(records []models.DetectionRecord)
}

// Options carries the tunables and optional collaborators of a Controller.
type Options struct {
	DedupWindow   time.Duration
	FlushInterval time.Duration
	QueueSize     int
	Device        int
	Sessions      repository.SessionRepository
	Detections    repository.DetectionRepository
	Broadcaster   Broadcaster
	Annotator     Annotator
}

// Controller owns the session state machine:
// Idle -> Connecting -> Running -> Stopped (or back to Idle for finite
// sources). Only the controller mutates the session's record list.
type Controller struct {
	detector Detector
	exporter Exporter
	monitor  *monitor.Monitor
	logger   *logger.Logger
	opts     Options

	mu       sync.Mutex
	state    State
	records  []models.DetectionRecord
	pending  []models.DetectionRecord
	lastSeen map[string]time.Time

	now func() time.Time
}

// NewController wires a Controller. Broadcaster, Annotator, and the history
// repositories are optional; everything else is required.
func NewController(det Detector, exp Exporter, mon *monitor.Monitor, log *logger.Logger, opts Options) *Controller {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 2
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}

	return &Controller{
		detector: det,
		exporter: exp,
		monitor:  mon,
		logger:   log,
		opts:     opts,
		state:    StateIdle,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Records returns a copy of the records collected during the active run.
func (c *Controller) Records() []models.DetectionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]models.DetectionRecord, len(c.records))
	copy(records, c.records)
	return records
}

// Run drives one full session against the source. Capture happens in a
// dedicated goroutine feeding a bounded queue with a drop-oldest policy, so
// detection always sees fresh frames and a stop request is observed within
// one frame interval. Run blocks until the source is exhausted, the context
// is canceled, or an unrecoverable source error occurs.
func (c *Controller) Run(ctx context.Context, src source.FrameSource) ([]models.DetectionRecord, error) {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StateStopped {
		c.mu.Unlock()
		return nil, fmt.Errorf("session already active (state: %s)", c.state)
	}
	c.state = StateConnecting
	c.records = nil
	c.pending = nil
	c.lastSeen = make(map[string]time.Time)
	c.mu.Unlock()
	c.monitor.Reset()

	defer src.Close()

	frames := make(chan *source.Frame, c.opts.QueueSize)
	var captureErr error

	go func() {
		defer close(frames)
		for {
			frame, err := src.Next(ctx)
			if err != nil {
				captureErr = err
				return
			}
			select {
			case frames <- frame:
			default:
				// Queue full: drop the oldest frame to keep latency bounded.
				select {
				case <-frames:
				default:
				}
				select {
				case frames <- frame:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(c.opts.FlushInterval)
	defer ticker.Stop()

	sessionID := int64(-1)
	started := false

loop:
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				break loop
			}
			if !started {
				started = true
				c.setState(StateRunning)
				sessionID = c.startHistory(src.Kind())
				c.logger.Info("Session running (source: %s)", src.Kind())
			}
			c.processFrame(frame, src.Kind(), sessionID)
		case <-ticker.C:
			c.flushExports()
		}
	}

	c.flushExports()
	c.finishHistory(sessionID)

	err := captureErr
	switch {
	case errors.Is(err, source.ErrExhausted):
		// A finite source completed normally.
		c.setState(StateIdle)
		err = nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		c.logger.Info("Session stopped")
		c.setState(StateStopped)
		err = nil
	default:
		if started {
			c.setState(StateStopped)
		} else {
			// Connecting failed before the first frame.
			c.setState(StateIdle)
		}
		c.logger.Error("Session terminated: %v", err)
	}

	return c.Records(), err
}

// processFrame runs detection on one frame and routes the results.
func (c *Controller) processFrame(frame *source.Frame, kind models.Source, sessionID int64) {
	c.monitor.RecordFrame(frame.Timestamp)

	records, err := c.detector.Detect(frame.Image, kind)
	if err != nil {
		c.logger.Warning("Detection failed on frame %d: %v", frame.Seq, err)
		return
	}

	if kind == models.SourceCamera {
		records = c.filterDuplicates(records)
	}

	if len(records) > 0 {
		c.monitor.RecordDetections(len(records))
		for _, record := range records {
			c.logger.Info("Detected %s: %s", record.Symbology, record.Payload)
		}

		c.mu.Lock()
		c.records = append(c.records, records...)
		c.pending = append(c.pending, records...)
		c.mu.Unlock()

		if sessionID >= 0 && c.opts.Detections != nil {
			if err := c.opts.Detections.InsertBatch(sessionID, records); err != nil {
				c.logger.Warning("Could not store detections: %v", err)
			}
		}
	}

	c.broadcast(frame, records)
}

// filterDuplicates drops payloads seen within the dedup window. The window
// is measured from the last accepted sighting, so a payload that stays in
// view produces a new row once per window.
func (c *Controller) filterDuplicates(records []models.DetectionRecord) []models.DetectionRecord {
	if c.opts.DedupWindow <= 0 {
		return records
	}

	now := c.now()
	var fresh []models.DetectionRecord

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, record := range records {
		if last, ok := c.lastSeen[record.Payload]; ok && now.Sub(last) < c.opts.DedupWindow {
			continue
		}
		c.lastSeen[record.Payload] = now
		fresh = append(fresh, record)
	}
	return fresh
}

// flushExports writes buffered records to the exporter. On failure the
// records stay buffered and export is retried on the next flush.
func (c *Controller) flushExports() {
	c.mu.Lock()
	pending := make([]models.DetectionRecord, len(c.pending))
	copy(pending, c.pending)
	c.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	if err := c.exporter.Export(pending); err != nil {
		c.logger.Warning("Export failed, keeping %d record(s) for retry: %v", len(pending), err)
		return
	}

	c.mu.Lock()
	c.pending = c.pending[len(pending):]
	c.mu.Unlock()
}

func (c *Controller) broadcast(frame *source.Frame, records []models.DetectionRecord) {
	if c.opts.Broadcaster == nil || c.opts.Annotator == nil {
		return
	}

	jpeg, err := c.opts.Annotator.Annotate(frame.Image, records)
	if err != nil {
		c.logger.Warning("Could not annotate frame %d: %v", frame.Seq, err)
		return
	}
	c.opts.Broadcaster.BroadcastFrame(jpeg)
	if len(records) > 0 {
		c.opts.Broadcaster.BroadcastDetections(records)
	}
}

func (c *Controller) startHistory(kind models.Source) int64 {
	if c.opts.Sessions == nil {
		return -1
	}
	id, err := c.opts.Sessions.Insert(kind, c.opts.Device, c.now())
	if err != nil {
		c.logger.Warning("Could not record session start: %v", err)
		return -1
	}
	return id
}

func (c *Controller) finishHistory(sessionID int64) {
	if sessionID < 0 || c.opts.Sessions == nil {
		return
	}
	snapshot := c.monitor.Snapshot()
	if err := c.opts.Sessions.Finish(sessionID, c.now(), snapshot.Frames, snapshot.Detections); err != nil {
		c.logger.Warning("Could not record session end: %v", err)
	}
}
