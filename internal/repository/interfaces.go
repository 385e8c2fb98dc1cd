// Package repository defines the durable detection-history store.
package repository

import (
	"time"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

// SessionRow is one recorded detection session.
type SessionRow struct {
	ID         int64
	Source     string
	Device     int
	StartedAt  time.Time
	StoppedAt  time.Time
	Frames     int
	Detections int
}

// SymbologyCount pairs a symbology with its total detection count.
type SymbologyCount struct {
	Symbology string
	Count     int
}

// SessionRepository persists session lifecycles.
type SessionRepository interface {
	Insert(source models.Source, device int, startedAt time.Time) (int64, error)
	Finish(id int64, stoppedAt time.Time, frames, detections int) error
	Recent(limit int) ([]SessionRow, error)
}

// DetectionRepository persists individual detection records.
type DetectionRepository interface {
	InsertBatch(sessionID int64, records []models.DetectionRecord) error
	CountBySymbology() ([]SymbologyCount, error)
	TotalCount() (int, error)
}
