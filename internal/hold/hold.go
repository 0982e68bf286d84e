// Package hold debounces a stream of classified signs, confirming a sign once
// it has been held continuously for a cooldown interval.
package hold

import (
	"time"

	"github.com/ayusman/signscribe/internal/sign"
)

// DefaultCooldown is how long a sign must be held before it is confirmed.
const DefaultCooldown = 1500 * time.Millisecond

// State is the confirmer's tracking state.
type State int

const (
	// Idle means no sign is being tracked.
	Idle State = iota
	// Tracking means a sign is being held.
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Confirmer tracks the currently observed sign and how long it has been held.
// It is not safe for concurrent use; the owner serializes calls.
type Confirmer struct {
	cooldown time.Duration
	current  sign.Sign
	start    time.Time
}

// New creates a Confirmer. A non-positive cooldown selects DefaultCooldown.
func New(cooldown time.Duration) *Confirmer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Confirmer{cooldown: cooldown}
}

// Observe feeds one frame's classification taken at now and reports whether
// the tracked sign is confirmed on this frame. A confirmation re-arms the hold
// at now, so a sustained sign fires once per cooldown.
//
// Calls must come in frame order. A now earlier than the hold start restarts
// the hold at now without confirming.
func (c *Confirmer) Observe(s sign.Sign, now time.Time) bool {
	if s != c.current {
		c.current = s
		c.start = now
		return false
	}
	if s.IsNone() {
		return false
	}

	held := now.Sub(c.start)
	if held < 0 {
		c.start = now
		return false
	}
	if held >= c.cooldown {
		c.start = now
		return true
	}
	return false
}

// Progress returns the fraction of the cooldown the tracked sign has been
// held at now, clamped to [0, 1]. It is 0 when idle.
func (c *Confirmer) Progress(now time.Time) float64 {
	if c.current.IsNone() {
		return 0
	}
	p := float64(now.Sub(c.start)) / float64(c.cooldown)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Reset drops any tracked sign.
func (c *Confirmer) Reset() {
	c.current = sign.None
	c.start = time.Time{}
}

// State returns Idle or Tracking.
func (c *Confirmer) State() State {
	if c.current.IsNone() {
		return Idle
	}
	return Tracking
}

// Current returns the tracked sign, or sign.None when idle.
func (c *Confirmer) Current() sign.Sign {
	return c.current
}

// HoldStart returns when tracking of the current sign began.
func (c *Confirmer) HoldStart() time.Time {
	return c.start
}

// Cooldown returns the configured hold duration.
func (c *Confirmer) Cooldown() time.Duration {
	return c.cooldown
}

// SetCooldown changes the hold duration. Non-positive values are ignored.
func (c *Confirmer) SetCooldown(d time.Duration) {
	if d <= 0 {
		return
	}
	c.cooldown = d
}
