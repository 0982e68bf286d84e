package store

import (
	"database/sql"
	"errors"
	"time"
)

// SavedTranscript represents transcript text saved by the user.
type SavedTranscript struct {
	ID        string
	SessionID string
	Text      string
	Path      string
	SignCount int
	WordCount int
	SavedAt   time.Time
}

// TranscriptRepository provides operations on saved transcripts.
type TranscriptRepository struct {
	db *sql.DB
}

// Transcripts returns the transcript repository for this store.
func (s *Store) Transcripts() *TranscriptRepository {
	return &TranscriptRepository{db: s.db}
}

// Create inserts a saved transcript. SavedAt defaults to now.
func (r *TranscriptRepository) Create(t *SavedTranscript) error {
	if t.SavedAt.IsZero() {
		t.SavedAt = time.Now()
	}

	var sessionID any
	if t.SessionID != "" {
		sessionID = t.SessionID
	}

	_, err := r.db.Exec(
		`INSERT INTO transcripts (id, session_id, text, path, sign_count, word_count, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, sessionID, t.Text, t.Path, t.SignCount, t.WordCount, t.SavedAt,
	)
	return err
}

// GetByID retrieves a saved transcript by its ID.
func (r *TranscriptRepository) GetByID(id string) (*SavedTranscript, error) {
	t := &SavedTranscript{}
	var sessionID sql.NullString

	err := r.db.QueryRow(
		`SELECT id, session_id, text, path, sign_count, word_count, saved_at
		 FROM transcripts WHERE id = ?`,
		id,
	).Scan(&t.ID, &sessionID, &t.Text, &t.Path, &t.SignCount, &t.WordCount, &t.SavedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	t.SessionID = sessionID.String
	return t, nil
}

// List retrieves all saved transcripts, most recent first.
func (r *TranscriptRepository) List() ([]*SavedTranscript, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, text, path, sign_count, word_count, saved_at
		 FROM transcripts ORDER BY saved_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transcripts []*SavedTranscript
	for rows.Next() {
		t := &SavedTranscript{}
		var sessionID sql.NullString
		if err := rows.Scan(&t.ID, &sessionID, &t.Text, &t.Path, &t.SignCount, &t.WordCount, &t.SavedAt); err != nil {
			return nil, err
		}
		t.SessionID = sessionID.String
		transcripts = append(transcripts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transcripts, nil
}
