package capture

import (
	"sync"
	"time"
)

// FPSMeter measures the processed frame rate over a sliding window.
type FPSMeter struct {
	mu     sync.Mutex
	window time.Duration
	ticks  []time.Time
}

// NewFPSMeter creates a meter averaging over window (one second when <= 0).
func NewFPSMeter(window time.Duration) *FPSMeter {
	if window <= 0 {
		window = time.Second
	}
	return &FPSMeter{window: window}
}

// Tick records a processed frame at now.
func (m *FPSMeter) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, now)
	m.trim(now)
}

// Rate returns frames per second observed in the window ending at now.
func (m *FPSMeter) Rate(now time.Time) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trim(now)
	return float64(len(m.ticks)) / m.window.Seconds()
}

func (m *FPSMeter) trim(now time.Time) {
	cutoff := now.Add(-m.window)
	i := 0
	for i < len(m.ticks) && !m.ticks[i].After(cutoff) {
		i++
	}
	m.ticks = m.ticks[i:]
}
