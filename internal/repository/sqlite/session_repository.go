package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert records the start of a session.
func (r *SessionRepository) Insert(source models.Source, device int, startedAt time.Time) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO sessions (source, device, started_at)
		VALUES (?, ?, ?)
	`, string(source), device, startedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	return result.LastInsertId()
}

// Finish records the end of a session with its final counters.
func (r *SessionRepository) Finish(id int64, stoppedAt time.Time, frames, detections int) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`
		UPDATE sessions SET stopped_at = ?, frames = ?, detections = ?
		WHERE id = ?
	`, stoppedAt, frames, detections, id); err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	return nil
}

// Recent returns the most recently started sessions.
func (r *SessionRepository) Recent(limit int) ([]repository.SessionRow, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, source, device, started_at, stopped_at, frames, detections
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []repository.SessionRow
	for rows.Next() {
		var s repository.SessionRow
		var stoppedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.Source, &s.Device, &s.StartedAt, &stoppedAt, &s.Frames, &s.Detections); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		// A session without a stop mark is still running or was interrupted.
		s.StoppedAt = s.StartedAt
		if stoppedAt.Valid {
			s.StoppedAt = stoppedAt.Time
		}
		sessions = append(sessions, s)
	}

	return sessions, nil
}
