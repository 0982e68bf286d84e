package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/sign"
	"github.com/ayusman/signscribe/internal/store"
)

// StatusHandler handles GET /api/status.
type StatusHandler struct {
	app *app.App
}

// NewStatusHandler creates a new StatusHandler for the given app.
func NewStatusHandler(a *app.App) *StatusHandler {
	return &StatusHandler{app: a}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Status())
}

// RecognitionHandler pauses and resumes recognition.
type RecognitionHandler struct {
	app *app.App
}

// NewRecognitionHandler creates a new RecognitionHandler for the given app.
func NewRecognitionHandler(a *app.App) *RecognitionHandler {
	return &RecognitionHandler{app: a}
}

type recognitionRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles PUT /api/recognition with a body of {"enabled": bool}
// and responds with the resulting status.
func (h *RecognitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req recognitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.app.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, h.app.Status())
}

// SettingsHandler reads and updates the persisted recognition tunables.
type SettingsHandler struct {
	app *app.App
}

// NewSettingsHandler creates a new SettingsHandler for the given app.
func NewSettingsHandler(a *app.App) *SettingsHandler {
	return &SettingsHandler{app: a}
}

// ServeHTTP handles GET and PUT /api/settings. A PUT body is applied on top
// of the current settings, so omitted fields keep their values.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Settings())
	case http.MethodPut:
		settings := h.app.Settings()
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := h.app.UpdateSettings(settings); err != nil {
			if errors.Is(err, app.ErrInvalidSettings) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("updating settings", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update settings")
			return
		}
		writeJSON(w, http.StatusOK, h.app.Settings())
	default:
		methodNotAllowed(w)
	}
}

// SignHandler lists the sign vocabulary with each sign's place in the rule
// order and how often it has been confirmed.
type SignHandler struct {
	app   *app.App
	store *store.Store
}

// NewSignHandler creates a new SignHandler. The store may be nil.
func NewSignHandler(a *app.App, s *store.Store) *SignHandler {
	return &SignHandler{app: a, store: s}
}

type signResponse struct {
	Sign sign.Sign `json:"sign"`
	Kind sign.Kind `json:"kind"`
	// Rule is the sign's position in the rule order; earlier rules win.
	Rule      int `json:"rule"`
	Confirmed int `json:"confirmed"`
}

// ServeHTTP handles GET /api/signs.
func (h *SignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	classifier := h.app.Session().Classifier()
	order := make(map[sign.Sign]int)
	for i, rule := range classifier.Rules() {
		if _, seen := order[rule.Sign]; !seen {
			order[rule.Sign] = i
		}
	}

	counts := map[string]int{}
	if h.store != nil {
		c, err := h.store.Events().CountBySign()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to count signs")
			return
		}
		counts = c
	}

	response := struct {
		Signs []signResponse `json:"signs"`
	}{Signs: make([]signResponse, 0, len(sign.All))}

	for _, s := range sign.All {
		idx, ok := order[s]
		if !ok {
			idx = -1
		}
		response.Signs = append(response.Signs, signResponse{
			Sign:      s,
			Kind:      s.Kind(),
			Rule:      idx,
			Confirmed: counts[string(s)],
		})
	}

	writeJSON(w, http.StatusOK, response)
}
