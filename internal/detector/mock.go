package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]HandLandmarks(nil), m.hands...), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Pose describes a synthetic hand shape as seen in a mirrored camera frame.
// Extended is ordered thumb, index, middle, ring, pinky.
type Pose struct {
	Extended [5]bool
	// Overrides replaces individual landmarks after the base layout is built.
	Overrides map[int]Point3D
}

// fingerColumns holds the x position of the index, middle, ring and pinky columns.
var fingerColumns = [4]float64{0.44, 0.50, 0.56, 0.62}

// PoseLandmarks lays out a right hand in a horizontally flipped frame with
// the wrist at the bottom. An extended finger has its tip above its PIP joint;
// an extended thumb has its tip left of its IP joint.
func PoseLandmarks(p Pose) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	h.Points[ThumbCMC] = Point3D{X: 0.45, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.40, Y: 0.70}
	h.Points[ThumbIP] = Point3D{X: 0.36, Y: 0.66}
	if p.Extended[0] {
		h.Points[ThumbTip] = Point3D{X: 0.30, Y: 0.62}
	} else {
		h.Points[ThumbTip] = Point3D{X: 0.42, Y: 0.66, Z: -0.02}
	}

	for i, x := range fingerColumns {
		mcp := IndexMCP + i*4
		h.Points[mcp] = Point3D{X: x, Y: 0.60}
		if p.Extended[i+1] {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.50}
			h.Points[mcp+2] = Point3D{X: x, Y: 0.43}
			h.Points[mcp+3] = Point3D{X: x, Y: 0.36}
		} else {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.52, Z: -0.03}
			h.Points[mcp+2] = Point3D{X: x, Y: 0.56, Z: -0.04}
			h.Points[mcp+3] = Point3D{X: x, Y: 0.60, Z: -0.02}
		}
	}

	for idx, pt := range p.Overrides {
		if idx >= 0 && idx < NumLandmarks {
			h.Points[idx] = pt
		}
	}

	return h
}

// ThumbsUpLandmarks returns a thumbs up: thumb extended and raised above
// the curled index finger.
func ThumbsUpLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{
		Extended: [5]bool{true, false, false, false, false},
		Overrides: map[int]Point3D{
			ThumbTip: {X: 0.30, Y: 0.40},
		},
	})
}

// OpenPalmLandmarks returns an open palm with all five fingers extended and spread.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Extended: [5]bool{true, true, true, true, true}})
}

// FistLandmarks returns a closed fist with every finger curled.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{})
}
