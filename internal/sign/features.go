package sign

import (
	"math"

	"github.com/ayusman/signscribe/internal/detector"
)

// Finger positions within Fingers.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// Fingers holds one extension flag per finger, ordered thumb, index, middle, ring, pinky.
type Fingers [5]bool

// Count returns the number of extended fingers.
func (f Fingers) Count() int {
	n := 0
	for _, up := range f {
		if up {
			n++
		}
	}
	return n
}

// Only reports whether exactly the given fingers are extended.
func (f Fingers) Only(fingers ...int) bool {
	var want Fingers
	for _, i := range fingers {
		want[i] = true
	}
	return f == want
}

// String renders the flags as a 0/1 vector, e.g. "[0 1 1 1 1]".
func (f Fingers) String() string {
	b := []byte("[0 0 0 0 0]")
	for i, up := range f {
		if up {
			b[1+i*2] = '1'
		}
	}
	return string(b)
}

// FingerExtension computes which fingers are extended. The thumb test assumes
// a right hand in a horizontally flipped frame: its tip lies left of the IP
// joint. The other fingers are extended when the tip is above the PIP joint.
func FingerExtension(h *detector.HandLandmarks) Fingers {
	p := &h.Points
	return Fingers{
		p[detector.ThumbTip].X < p[detector.ThumbIP].X,
		p[detector.IndexTip].Y < p[detector.IndexPIP].Y,
		p[detector.MiddleTip].Y < p[detector.MiddlePIP].Y,
		p[detector.RingTip].Y < p[detector.RingPIP].Y,
		p[detector.PinkyTip].Y < p[detector.PinkyPIP].Y,
	}
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Angle returns the angle in degrees at vertex p2 between the rays to p1 and
// p3, folded into [0, 180]. Only x and y are used.
func Angle(p1, p2, p3 detector.Point3D) float64 {
	radians := math.Atan2(p3.Y-p2.Y, p3.X-p2.X) - math.Atan2(p1.Y-p2.Y, p1.X-p2.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360 - angle
	}
	return angle
}

// Features are the per-frame measurements the rule table is evaluated against.
type Features struct {
	Fingers     Fingers `json:"fingers"`
	ThumbIndex  float64 `json:"thumb_index"`
	ThumbMiddle float64 `json:"thumb_middle"`
	IndexMiddle float64 `json:"index_middle"`

	hand *detector.HandLandmarks
}

// Extract measures a hand once for classification.
func Extract(h *detector.HandLandmarks) Features {
	p := &h.Points
	return Features{
		Fingers:     FingerExtension(h),
		ThumbIndex:  Distance(p[detector.ThumbTip], p[detector.IndexTip]),
		ThumbMiddle: Distance(p[detector.ThumbTip], p[detector.MiddleTip]),
		IndexMiddle: Distance(p[detector.IndexTip], p[detector.MiddleTip]),
		hand:        h,
	}
}

// Point returns landmark i of the measured hand.
func (f Features) Point(i int) detector.Point3D {
	if f.hand == nil {
		return detector.Point3D{}
	}
	return f.hand.Points[i]
}
