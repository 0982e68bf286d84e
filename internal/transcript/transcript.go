// Package transcript assembles confirmed signs into text.
package transcript

import (
	"strings"
	"unicode/utf8"

	"github.com/ayusman/signscribe/internal/sign"
)

// DefaultHistoryCapacity is the number of recent signs kept in history.
const DefaultHistoryCapacity = 10

// Transcript is an append-only text buffer with a bounded recent-sign history
// and derived counters. It is not safe for concurrent use.
type Transcript struct {
	text     strings.Builder
	history  []sign.Sign
	capacity int
	signs    int
	words    int
}

// Snapshot is a read-only copy of a transcript's state.
type Snapshot struct {
	Text      string      `json:"text"`
	History   []sign.Sign `json:"history"`
	SignCount int         `json:"sign_count"`
	WordCount int         `json:"word_count"`
}

// New creates an empty Transcript keeping up to capacity recent signs.
// A non-positive capacity selects DefaultHistoryCapacity.
func New(capacity int) *Transcript {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &Transcript{
		history:  make([]sign.Sign, 0, capacity),
		capacity: capacity,
	}
}

// AppendSign appends the sign's text, records it in history and updates counters.
func (t *Transcript) AppendSign(s sign.Sign) {
	if s.IsNone() {
		return
	}
	t.text.WriteString(s.String())

	if len(t.history) == t.capacity {
		copy(t.history, t.history[1:])
		t.history = t.history[:t.capacity-1]
	}
	t.history = append(t.history, s)

	t.signs++
	t.recount()
}

// AppendSpace appends a single space.
func (t *Transcript) AppendSpace() {
	t.text.WriteByte(' ')
}

// Backspace removes the last character, if any.
func (t *Transcript) Backspace() {
	s := t.text.String()
	if s == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s)
	t.text.Reset()
	t.text.WriteString(s[:len(s)-size])
	t.recount()
}

// Clear empties the buffer and history and resets the counters.
func (t *Transcript) Clear() {
	t.text.Reset()
	t.history = t.history[:0]
	t.signs = 0
	t.words = 0
}

// Text returns the buffer contents.
func (t *Transcript) Text() string {
	return t.text.String()
}

// History returns the recent signs, oldest first.
func (t *Transcript) History() []sign.Sign {
	out := make([]sign.Sign, len(t.history))
	copy(out, t.history)
	return out
}

// HistoryLine renders the history for display.
func (t *Transcript) HistoryLine() string {
	if len(t.history) == 0 {
		return "No signs yet"
	}
	parts := make([]string, len(t.history))
	for i, s := range t.history {
		parts[i] = s.String()
	}
	return strings.Join(parts, " → ")
}

// SignCount returns the number of signs appended since the last Clear.
func (t *Transcript) SignCount() int {
	return t.signs
}

// WordCount returns the number of whitespace-delimited tokens in the buffer.
func (t *Transcript) WordCount() int {
	return t.words
}

// Capacity returns the history capacity.
func (t *Transcript) Capacity() int {
	return t.capacity
}

// Snapshot copies the current state.
func (t *Transcript) Snapshot() Snapshot {
	return Snapshot{
		Text:      t.Text(),
		History:   t.History(),
		SignCount: t.signs,
		WordCount: t.words,
	}
}

func (t *Transcript) recount() {
	t.words = len(strings.Fields(t.text.String()))
}
