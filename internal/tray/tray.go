// Package tray provides the system tray menu for SignScribe.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Callbacks are invoked from the tray's event goroutine. Nil entries are
// skipped.
type Callbacks struct {
	Toggle    func(enabled bool)
	Space     func()
	Backspace func()
	Clear     func()
	Save      func()
	Speak     func()
	Dashboard func()
	Quit      func()
}

// Tray represents the system tray application.
type Tray struct {
	callbacks Callbacks
	enabled   bool
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
	menuText   *systray.MenuItem
}

// New creates a Tray. enabled is the initial recognition state.
func New(enabled bool, callbacks Callbacks) *Tray {
	return &Tray{
		callbacks: callbacks,
		enabled:   enabled,
	}
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("SignScribe")
	systray.SetTooltip("SignScribe Sign Recognition")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Start or pause recognition")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastTitle(""), "Last confirmed sign")
	t.menuLast.Disable()
	t.menuText = systray.AddMenuItem(textTitle(""), "Current transcript")
	t.menuText.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSpace := systray.AddMenuItem("Add Space", "Append a space to the transcript")
	menuBackspace := systray.AddMenuItem("Backspace", "Delete the last character")
	menuClear := systray.AddMenuItem("Clear", "Clear the transcript")
	menuSave := systray.AddMenuItem("Save Transcript", "Save the transcript to a text file")
	menuSpeak := systray.AddMenuItem("Speak", "Read the transcript aloud")
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit SignScribe")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSpace.ClickedCh:
				call(t.callbacks.Space)
			case <-menuBackspace.ClickedCh:
				call(t.callbacks.Backspace)
			case <-menuClear.ClickedCh:
				call(t.callbacks.Clear)
			case <-menuSave.ClickedCh:
				call(t.callbacks.Save)
			case <-menuSpeak.ClickedCh:
				call(t.callbacks.Speak)
			case <-menuDashboard.ClickedCh:
				call(t.callbacks.Dashboard)
			case <-menuQuit.ClickedCh:
				call(t.callbacks.Quit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// Quit closes the tray and makes Run return. It is safe to call more than once.
func (t *Tray) Quit() {
	systray.Quit()
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// handleToggle flips the enabled state and reports it.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if t.callbacks.Toggle != nil {
		t.callbacks.Toggle(enabled)
	}
}

// SetEnabled syncs the toggle with a state change made elsewhere.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLastSign updates the last confirmed sign in the menu.
func (t *Tray) SetLastSign(label string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(label))
	}
}

// SetText updates the transcript preview in the menu.
func (t *Tray) SetText(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuText != nil {
		t.menuText.SetTitle(textTitle(text))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Recognizing"
	}
	return "○ Paused"
}

func lastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}

// maxTextRunes bounds the transcript shown in the menu; longer text keeps
// its tail.
const maxTextRunes = 32

func textTitle(text string) string {
	if text == "" {
		return "Text: (empty)"
	}
	r := []rune(text)
	if len(r) > maxTextRunes {
		return "Text: …" + string(r[len(r)-maxTextRunes:])
	}
	return "Text: " + text
}
