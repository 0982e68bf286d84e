// Package session wires classification, hold confirmation and transcript
// assembly into a per-frame entry point that is safe to share between the
// capture loop and presentation layers.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/hold"
	"github.com/ayusman/signscribe/internal/sign"
	"github.com/ayusman/signscribe/internal/transcript"
)

// Display strings for the current-sign readout.
const (
	DisplayNoMatch = "---"
	DisplayNoHand  = "No Hand"
)

// Config holds the tunables of a recognition session.
type Config struct {
	Thresholds      sign.Thresholds
	Cooldown        time.Duration
	HistoryCapacity int
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		Thresholds:      sign.DefaultThresholds(),
		Cooldown:        hold.DefaultCooldown,
		HistoryCapacity: transcript.DefaultHistoryCapacity,
	}
}

// Event is emitted when a sign is confirmed and committed to the transcript.
type Event struct {
	SessionID string    `json:"session_id"`
	Sign      sign.Sign `json:"sign"`
	At        time.Time `json:"at"`
}

// Result describes what one frame produced.
type Result struct {
	Sign      sign.Sign     `json:"sign"`
	Confirmed bool          `json:"confirmed"`
	Progress  float64       `json:"progress"` // hold progress, 0-100
	Features  sign.Features `json:"features"`
}

// Status is the presentation view of a session.
type Status struct {
	SessionID string    `json:"session_id"`
	Enabled   bool      `json:"enabled"`
	Display   string    `json:"display"`
	Current   sign.Sign `json:"current"`
	Progress  float64   `json:"progress"`
	Cooldown  string    `json:"cooldown"`
}

// Session owns the hold state and transcript of one recognition run and
// serializes every mutation.
type Session struct {
	id         string
	classifier *sign.Classifier
	confirmer  *hold.Confirmer
	transcript *transcript.Transcript

	mu       sync.Mutex
	enabled  bool
	display  string
	progress float64

	listenersMu sync.RWMutex
	listeners   []func(Event)
}

// New creates a disabled Session with a fresh ID. Zero-valued fields of cfg
// take their defaults.
func New(cfg Config) *Session {
	if cfg.Thresholds == (sign.Thresholds{}) {
		cfg.Thresholds = sign.DefaultThresholds()
	}
	return &Session{
		id:         uuid.New().String(),
		classifier: sign.NewClassifier(cfg.Thresholds),
		confirmer:  hold.New(cfg.Cooldown),
		transcript: transcript.New(cfg.HistoryCapacity),
		display:    DisplayNoMatch,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Classifier returns the session's classifier.
func (s *Session) Classifier() *sign.Classifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classifier
}

// SetThresholds swaps in a classifier built from t for subsequent frames.
func (s *Session) SetThresholds(t sign.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	c := sign.NewClassifier(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classifier = c
	return nil
}

// OnConfirm registers fn to be called for every confirmed sign. Callbacks run
// on the goroutine that called Process, after the session lock is released.
func (s *Session) OnConfirm(fn func(Event)) {
	if fn == nil {
		return
	}
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Process runs one frame's hand through classification and hold confirmation.
// A confirmed sign is appended to the transcript. Frames are ignored while
// the session is disabled. Calls must be in frame order with non-decreasing now.
func (s *Session) Process(hand *detector.HandLandmarks, now time.Time) (Result, error) {
	if err := hand.Validate(); err != nil {
		return Result{}, fmt.Errorf("process frame: %w", err)
	}

	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return Result{}, nil
	}

	label, features := s.classifier.Explain(hand)
	res := Result{Sign: label, Features: features}

	if label.IsNone() {
		s.display = DisplayNoMatch
	} else {
		s.display = label.String()
	}

	res.Confirmed = s.confirmer.Observe(label, now)
	if res.Confirmed {
		s.transcript.AppendSign(label)
		res.Progress = 100
	} else {
		res.Progress = s.confirmer.Progress(now) * 100
	}
	s.progress = res.Progress
	s.mu.Unlock()

	if res.Confirmed {
		s.emit(Event{SessionID: s.id, Sign: label, At: now})
	}
	return res, nil
}

// NoHand records a frame without a hand. Hold state is left untouched.
func (s *Session) NoHand() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		s.display = DisplayNoHand
		s.progress = 0
	}
}

// SetEnabled pauses or resumes recognition. Pausing drops any in-progress hold
// so that resuming starts a fresh one.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled == enabled {
		return
	}
	s.enabled = enabled
	s.confirmer.Reset()
	s.display = DisplayNoMatch
	s.progress = 0
}

// Enabled reports whether recognition is running.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetCooldown changes the hold duration.
func (s *Session) SetCooldown(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmer.SetCooldown(d)
}

// Cooldown returns the hold duration.
func (s *Session) Cooldown() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmer.Cooldown()
}

// Status returns the presentation view.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		SessionID: s.id,
		Enabled:   s.enabled,
		Display:   s.display,
		Current:   s.confirmer.Current(),
		Progress:  s.progress,
		Cooldown:  s.confirmer.Cooldown().String(),
	}
}

// AppendSpace appends a space to the transcript.
func (s *Session) AppendSpace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.AppendSpace()
}

// Backspace removes the last transcript character.
func (s *Session) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Backspace()
}

// Clear empties the transcript.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Clear()
}

// Transcript returns a copy of the transcript state.
func (s *Session) Transcript() transcript.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Snapshot()
}

// HistoryLine renders the recent-sign history.
func (s *Session) HistoryLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.HistoryLine()
}

func (s *Session) emit(e Event) {
	s.listenersMu.RLock()
	listeners := make([]func(Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}
