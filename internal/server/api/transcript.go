package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/plugin"
	"github.com/ayusman/signscribe/internal/transcript"
)

// TranscriptHandler exposes the live transcript of the running session and
// the editing commands that act on it.
type TranscriptHandler struct {
	app *app.App
	now func() time.Time
}

// NewTranscriptHandler creates a new TranscriptHandler for the given app.
func NewTranscriptHandler(a *app.App) *TranscriptHandler {
	return &TranscriptHandler{app: a, now: time.Now}
}

type transcriptResponse struct {
	transcript.Snapshot
	HistoryLine string `json:"history_line"`
}

type saveResponse struct {
	Path string `json:"path"`
}

// ServeHTTP routes GET /api/transcript and POST /api/transcript/{command},
// where command is one of space, backspace, clear, save or speak.
func (h *TranscriptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/transcript")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.get(w)
		return
	}

	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	sess := h.app.Session()
	switch path {
	case "space":
		sess.AppendSpace()
		h.get(w)
	case "backspace":
		sess.Backspace()
		h.get(w)
	case "clear":
		sess.Clear()
		h.get(w)
	case "save":
		h.save(w)
	case "speak":
		h.speak(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *TranscriptHandler) get(w http.ResponseWriter) {
	sess := h.app.Session()
	writeJSON(w, http.StatusOK, transcriptResponse{
		Snapshot:    sess.Transcript(),
		HistoryLine: sess.HistoryLine(),
	})
}

func (h *TranscriptHandler) save(w http.ResponseWriter) {
	path, err := h.app.Save(h.now())
	if err != nil {
		if errors.Is(err, transcript.ErrNoText) {
			writeError(w, http.StatusBadRequest, "No text to save")
			return
		}
		if path == "" {
			slog.Error("saving transcript", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save transcript")
			return
		}
		// The file exists; only the history row is missing.
		slog.Warn("transcript saved without record", "path", path, "error", err)
	}

	writeJSON(w, http.StatusCreated, saveResponse{Path: path})
}

func (h *TranscriptHandler) speak(w http.ResponseWriter, r *http.Request) {
	err := h.app.Speak(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, transcript.ErrNoText):
		writeError(w, http.StatusBadRequest, "No text to speak")
	case errors.Is(err, plugin.ErrPluginNotFound):
		writeError(w, http.StatusServiceUnavailable, "Speech plugin not installed")
	default:
		slog.Error("speaking transcript", "error", err)
		writeError(w, http.StatusBadGateway, "Speech plugin failed")
	}
}
