// Package monitor tracks frame rate and coarse process resource usage for
// display purposes only.
package monitor

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

const (
	// fpsWindow is how many recent frame timestamps feed the rolling FPS.
	fpsWindow = 60
	// placeholder is reported when a resource metric cannot be read.
	placeholder = -1
)

// Snapshot is a point-in-time view of session performance.
type Snapshot struct {
	FPS        float64
	CPUPercent float64
	MemoryMB   float64
	Frames     int
	Detections int
}

// Monitor keeps a rolling window of frame timestamps and polls process
// CPU/memory at a fixed interval. Failure to read a metric degrades to a
// placeholder value and never aborts the session.
type Monitor struct {
	mu           sync.Mutex
	frameTimes   []time.Time
	frames       int
	detections   int
	cpuPercent   float64
	memoryMB     float64
	proc         *process.Process
	pollInterval time.Duration
}

// NewMonitor creates a Monitor polling resource usage every pollInterval.
func NewMonitor(pollInterval time.Duration) *Monitor {
	m := &Monitor{
		frameTimes:   make([]time.Time, 0, fpsWindow),
		cpuPercent:   placeholder,
		memoryMB:     placeholder,
		pollInterval: pollInterval,
	}

	// A failed process handle leaves the placeholders in place.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		m.proc = proc
	}

	return m
}

// Run polls resource usage until the context is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	cpuPercent := float64(placeholder)
	memoryMB := float64(placeholder)

	if m.proc != nil {
		if value, err := m.proc.CPUPercent(); err == nil {
			cpuPercent = value
		}
		if info, err := m.proc.MemoryInfo(); err == nil {
			memoryMB = float64(info.RSS) / (1024 * 1024)
		}
	}

	m.mu.Lock()
	m.cpuPercent = cpuPercent
	m.memoryMB = memoryMB
	m.mu.Unlock()
}

// RecordFrame registers a frame arrival timestamp.
func (m *Monitor) RecordFrame(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frames++
	m.frameTimes = append(m.frameTimes, t)
	if len(m.frameTimes) > fpsWindow {
		m.frameTimes = m.frameTimes[len(m.frameTimes)-fpsWindow:]
	}
}

// RecordDetections adds to the cumulative detection count.
func (m *Monitor) RecordDetections(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detections += n
}

// FPS calculates the rolling average frames-per-second over the window.
func (m *Monitor) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fpsLocked()
}

func (m *Monitor) fpsLocked() float64 {
	if len(m.frameTimes) < 2 {
		return 0
	}
	span := m.frameTimes[len(m.frameTimes)-1].Sub(m.frameTimes[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(m.frameTimes)-1) / span
}

// Snapshot returns the current metrics.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		FPS:        m.fpsLocked(),
		CPUPercent: m.cpuPercent,
		MemoryMB:   m.memoryMB,
		Frames:     m.frames,
		Detections: m.detections,
	}
}

// Reset clears all counters and samples.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frameTimes = m.frameTimes[:0]
	m.frames = 0
	m.detections = 0
}
