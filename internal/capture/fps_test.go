package capture

import (
	"testing"
	"time"
)

func TestFPSMeter(t *testing.T) {
	m := NewFPSMeter(time.Second)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := m.Rate(start); got != 0 {
		t.Errorf("Rate() with no frames = %f, want 0", got)
	}

	// 30 frames spread over one second
	for i := 0; i < 30; i++ {
		m.Tick(start.Add(time.Duration(i) * time.Second / 30))
	}
	if got := m.Rate(start.Add(999 * time.Millisecond)); got != 30 {
		t.Errorf("Rate() = %f, want 30", got)
	}

	// Frames age out of the window
	if got := m.Rate(start.Add(3 * time.Second)); got != 0 {
		t.Errorf("Rate() after a pause = %f, want 0", got)
	}
}

func TestFPSMeter_Window(t *testing.T) {
	m := NewFPSMeter(0)
	if m.window != time.Second {
		t.Errorf("window = %v, want 1s", m.window)
	}

	m = NewFPSMeter(2 * time.Second)
	now := time.Now()
	for i := 0; i < 10; i++ {
		m.Tick(now)
	}
	if got := m.Rate(now); got != 5 {
		t.Errorf("Rate() = %f, want 5", got)
	}
}
