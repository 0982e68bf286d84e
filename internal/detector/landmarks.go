// Package detector provides hand landmark estimation interfaces and types for sign recognition.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrNonFiniteLandmark is returned when a landmark coordinate is NaN or infinite.
var ErrNonFiniteLandmark = errors.New("landmark coordinate is not finite")

// Point3D represents a landmark position. X and Y are normalized to [0,1]
// relative to frame width and height; Z is a relative depth estimate.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Validate reports whether every coordinate is finite. The landmark count
// is fixed by the Points array type.
func (h *HandLandmarks) Validate() error {
	for i, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return fmt.Errorf("landmark %d: %w", i, ErrNonFiniteLandmark)
		}
	}
	return nil
}

// FromSlice builds a HandLandmarks from a decoded point list.
// It fails when the list does not hold exactly NumLandmarks points.
func FromSlice(points []Point3D) (HandLandmarks, error) {
	var h HandLandmarks
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("expected %d landmarks, got %d", NumLandmarks, len(points))
	}
	copy(h.Points[:], points)
	return h, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
