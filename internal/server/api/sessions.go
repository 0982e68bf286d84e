package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/signscribe/internal/store"
)

// SessionHandler serves the recorded recognition sessions and their
// confirmed signs.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type sessionResponse struct {
	ID         string  `json:"id"`
	StartedAt  string  `json:"started_at"`
	EndedAt    *string `json:"ended_at"`
	CooldownMs int64   `json:"cooldown_ms"`
	SignCount  int     `json:"sign_count"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type eventResponse struct {
	ID          int64  `json:"id"`
	Sign        string `json:"sign"`
	ConfirmedAt string `json:"confirmed_at"`
}

type listEventsResponse struct {
	SessionID string          `json:"session_id"`
	Events    []eventResponse `json:"events"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:         s.ID,
		StartedAt:  formatTime(s.StartedAt),
		CooldownMs: s.CooldownMs,
		SignCount:  s.SignCount,
	}
	if s.EndedAt != nil {
		ended := formatTime(*s.EndedAt)
		resp.EndedAt = &ended
	}
	return resp
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/events. All routes are read-only.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		h.list(w, r)
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch rest {
	case "":
		h.get(w, r, id)
	case "events":
		h.events(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

func (h *SessionHandler) events(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	events, err := h.store.Events().GetBySessionID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		SessionID: id,
		Events:    make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		response.Events = append(response.Events, eventResponse{
			ID:          e.ID,
			Sign:        e.Sign,
			ConfirmedAt: formatTime(e.ConfirmedAt),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// SavedHandler lists transcripts previously written to disk.
type SavedHandler struct {
	store *store.Store
}

// NewSavedHandler creates a new SavedHandler with the given store.
func NewSavedHandler(s *store.Store) *SavedHandler {
	return &SavedHandler{store: s}
}

type savedResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
	Path      string `json:"path"`
	SignCount int    `json:"sign_count"`
	WordCount int    `json:"word_count"`
	SavedAt   string `json:"saved_at"`
}

// ServeHTTP handles GET /api/transcripts.
func (h *SavedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	saved, err := h.store.Transcripts().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transcripts")
		return
	}

	response := struct {
		Transcripts []savedResponse `json:"transcripts"`
	}{Transcripts: make([]savedResponse, 0, len(saved))}

	for _, t := range saved {
		response.Transcripts = append(response.Transcripts, savedResponse{
			ID:        t.ID,
			SessionID: t.SessionID,
			Text:      t.Text,
			Path:      t.Path,
			SignCount: t.SignCount,
			WordCount: t.WordCount,
			SavedAt:   formatTime(t.SavedAt),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
