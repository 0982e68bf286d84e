package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	blurSize      = 21
	diffThreshold = 25

	// DefaultChangePercent is the share of changed pixels that counts as activity.
	DefaultChangePercent = 1.0
	// DefaultIdleAfter is how long a still scene must last before it is idle.
	DefaultIdleAfter = 2 * time.Second
)

// Activity tracks whether the scene in front of the camera is changing.
// The recognition loop uses it to skip landmark estimation on a still,
// empty scene; once a hand has been seen every frame is estimated so a
// motionless hold keeps counting.
type Activity struct {
	mu          sync.Mutex
	threshold   float64
	idleAfter   time.Duration
	prev        gocv.Mat
	initialized bool
	lastMotion  time.Time
	lastChange  float64
}

// NewActivity creates an Activity tracker. Non-positive arguments take the defaults.
func NewActivity(changePercent float64, idleAfter time.Duration) *Activity {
	if changePercent <= 0 {
		changePercent = DefaultChangePercent
	}
	if idleAfter <= 0 {
		idleAfter = DefaultIdleAfter
	}
	return &Activity{
		threshold: changePercent,
		idleAfter: idleAfter,
		prev:      gocv.NewMat(),
	}
}

// Observe compares frame against the previous one and returns the percentage
// of changed pixels. The first frame is a baseline and counts as motion.
func (a *Activity) Observe(frame *gocv.Mat, now time.Time) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if frame == nil || frame.Empty() {
		return 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	if !a.initialized || a.prev.Rows() != blurred.Rows() || a.prev.Cols() != blurred.Cols() {
		blurred.CopyTo(&a.prev)
		a.initialized = true
		a.lastMotion = now
		a.lastChange = 100
		return a.lastChange
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, a.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, diffThreshold, 255, gocv.ThresholdBinary)

	total := thresh.Rows() * thresh.Cols()
	a.lastChange = float64(gocv.CountNonZero(thresh)) / float64(total) * 100.0
	blurred.CopyTo(&a.prev)

	if a.lastChange > a.threshold {
		a.lastMotion = now
	}
	return a.lastChange
}

// Idle reports whether no motion has been observed for the idle period.
// A tracker that has seen no frames is not idle.
func (a *Activity) Idle(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return false
	}
	return now.Sub(a.lastMotion) >= a.idleAfter
}

// LastChange returns the change percentage of the most recent frame.
func (a *Activity) LastChange() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastChange
}

// Reset discards the baseline frame.
func (a *Activity) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.release()
}

// Close releases the baseline frame. The tracker must not be used afterwards.
func (a *Activity) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prev.Close()
	a.initialized = false
}

func (a *Activity) release() {
	if !a.prev.Empty() {
		a.prev.Close()
		a.prev = gocv.NewMat()
	}
	a.initialized = false
	a.lastChange = 0
}
