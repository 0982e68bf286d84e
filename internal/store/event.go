package store

import (
	"database/sql"
	"time"
)

// SignEvent represents a confirmed sign stored in the database.
type SignEvent struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Sign        string    `json:"sign"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// EventRepository provides operations on confirmed sign events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append records a confirmed sign and sets the event ID.
func (r *EventRepository) Append(e *SignEvent) error {
	result, err := r.db.Exec(
		`INSERT INTO sign_events (session_id, sign, confirmed_at) VALUES (?, ?, ?)`,
		e.SessionID, e.Sign, e.ConfirmedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// GetBySessionID retrieves all events of a session in commit order.
func (r *EventRepository) GetBySessionID(sessionID string) ([]SignEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, sign, confirmed_at
		 FROM sign_events
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SignEvent
	for rows.Next() {
		var e SignEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Sign, &e.ConfirmedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountBySign returns how many times each sign was confirmed across all sessions.
func (r *EventRepository) CountBySign() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT sign, COUNT(*) FROM sign_events GROUP BY sign`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	return counts, rows.Err()
}
