package sqlite

import (
	"fmt"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/repository"
)

// DetectionRepository implements repository.DetectionRepository for SQLite.
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new SQLite detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{db: db}
}

// InsertBatch adds multiple detection records in a single transaction.
func (r *DetectionRepository) InsertBatch(sessionID int64, records []models.DetectionRecord) error {
	if len(records) == 0 {
		return nil
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO detections (session_id, symbology, payload, region, detected_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.Exec(sessionID, string(record.Symbology), record.Payload, record.RegionString(), record.Timestamp); err != nil {
			return fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	return tx.Commit()
}

// CountBySymbology returns detection totals grouped by symbology.
func (r *DetectionRepository) CountBySymbology() ([]repository.SymbologyCount, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT symbology, COUNT(*) FROM detections
		GROUP BY symbology ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbology counts: %w", err)
	}
	defer rows.Close()

	var counts []repository.SymbologyCount
	for rows.Next() {
		var c repository.SymbologyCount
		if err := rows.Scan(&c.Symbology, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan symbology count: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, nil
}

// TotalCount returns the total number of stored detections.
func (r *DetectionRepository) TotalCount() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var total int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count detections: %w", err)
	}
	return total, nil
}
