package sign

import (
	"errors"
	"fmt"

	"github.com/ayusman/signscribe/internal/detector"
)

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds are the tuned distance and angle limits used by the rule table.
// Distances are in normalized landmark units; there is no hand-size calibration.
type Thresholds struct {
	// Touch is the distance under which two fingertips count as touching (D, F, O).
	Touch float64 `json:"touch"`
	// CurveMin and CurveMax bound the thumb-index gap of a curved C hand.
	CurveMin float64 `json:"curve_min"`
	CurveMax float64 `json:"curve_max"`
	// Spread is the index-middle gap above which the fingers form a V (K, V).
	Spread float64 `json:"spread"`
	// Together is the index-middle gap below which the fingers lie together (U).
	Together float64 `json:"together"`
	// LReach is the minimum thumb-index gap for an L.
	LReach float64 `json:"l_reach"`
	// LAngleMin and LAngleMax bound the L angle at the index MCP, in degrees.
	LAngleMin float64 `json:"l_angle_min"`
	LAngleMax float64 `json:"l_angle_max"`
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Touch:     0.08,
		CurveMin:  0.10,
		CurveMax:  0.25,
		Spread:    0.08,
		Together:  0.05,
		LReach:    0.15,
		LAngleMin: 70,
		LAngleMax: 110,
	}
}

// Validate checks that every limit is positive and that each range is ordered.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"touch": t.Touch, "curve_min": t.CurveMin, "curve_max": t.CurveMax,
		"spread": t.Spread, "together": t.Together, "l_reach": t.LReach,
		"l_angle_min": t.LAngleMin, "l_angle_max": t.LAngleMax,
	} {
		if !(v > 0) {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidThresholds, name)
		}
	}
	if t.CurveMin >= t.CurveMax {
		return fmt.Errorf("%w: curve_min must be below curve_max", ErrInvalidThresholds)
	}
	if t.LAngleMin >= t.LAngleMax || t.LAngleMax > 180 {
		return fmt.Errorf("%w: l_angle range must be ordered within 180 degrees", ErrInvalidThresholds)
	}
	return nil
}

// Rule pairs a sign with the predicate that selects it.
type Rule struct {
	Sign  Sign
	Match func(Features) bool
}

// Classifier evaluates an ordered rule table; the first matching rule wins.
// Several predicates overlap, so the order is part of the behavior.
type Classifier struct {
	thresholds Thresholds
	rules      []Rule
}

// NewClassifier creates a Classifier using the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{
		thresholds: t,
		rules:      buildRules(t),
	}
}

// Thresholds returns the tuning the classifier was built with.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	rules := make([]Rule, len(c.rules))
	copy(rules, c.rules)
	return rules
}

// Classify returns the first sign whose rule matches the hand, or None.
func (c *Classifier) Classify(h *detector.HandLandmarks) Sign {
	s, _ := c.Explain(h)
	return s
}

// Explain classifies the hand and also returns the measured features.
func (c *Classifier) Explain(h *detector.HandLandmarks) (Sign, Features) {
	f := Extract(h)
	for _, r := range c.rules {
		if r.Match(f) {
			return r.Sign, f
		}
	}
	return None, f
}

func buildRules(t Thresholds) []Rule {
	thumbAboveIndex := func(f Features) bool {
		return f.Point(detector.ThumbTip).Y < f.Point(detector.IndexTip).Y
	}
	thumbBelowIndex := func(f Features) bool {
		return f.Point(detector.ThumbTip).Y > f.Point(detector.IndexTip).Y
	}
	indexAboveWrist := func(f Features) bool {
		return f.Point(detector.IndexTip).Y < f.Point(detector.Wrist).Y
	}

	return []Rule{
		{A, func(f Features) bool { return f.Fingers.Only(Thumb) && thumbBelowIndex(f) }},
		{B, func(f Features) bool { return f.Fingers.Only(Index, Middle, Ring, Pinky) }},
		{C, func(f Features) bool {
			return f.Fingers.Count() >= 3 && f.ThumbIndex > t.CurveMin && f.ThumbIndex < t.CurveMax
		}},
		{D, func(f Features) bool { return f.Fingers.Only(Thumb, Index) && f.ThumbMiddle < t.Touch }},
		{E, func(f Features) bool { return f.Fingers.Count() == 0 }},
		{F, func(f Features) bool { return f.Fingers.Count() == 5 && f.ThumbIndex < t.Touch }},
		{I, func(f Features) bool { return f.Fingers.Only(Pinky) }},
		{K, func(f Features) bool { return f.Fingers.Only(Thumb, Index, Middle) && f.IndexMiddle > t.Spread }},
		{L, func(f Features) bool {
			if !f.Fingers.Only(Thumb, Index) || f.ThumbIndex <= t.LReach {
				return false
			}
			angle := Angle(f.Point(detector.ThumbTip), f.Point(detector.IndexMCP), f.Point(detector.IndexTip))
			return angle > t.LAngleMin && angle < t.LAngleMax
		}},
		{O, func(f Features) bool { return f.Fingers.Count() >= 3 && f.ThumbIndex < t.Touch }},
		{U, func(f Features) bool { return f.Fingers.Only(Index, Middle) && f.IndexMiddle < t.Together }},
		{V, func(f Features) bool { return f.Fingers.Only(Index, Middle) && f.IndexMiddle > t.Spread }},
		{W, func(f Features) bool { return f.Fingers.Only(Index, Middle, Ring) }},
		{Y, func(f Features) bool { return f.Fingers.Only(Thumb, Pinky) }},
		// HELLO takes every open palm, which leaves THANKS and PLEASE unreachable.
		// They stay in place so the table keeps its historical order.
		{Hello, func(f Features) bool { return f.Fingers.Count() == 5 }},
		{Thanks, func(f Features) bool { return f.Fingers.Count() == 5 && indexAboveWrist(f) }},
		{Please, func(f Features) bool { return f.Fingers.Count() == 5 }},
		// Shadowed by E.
		{Yes, func(f Features) bool { return f.Fingers.Count() == 0 && indexAboveWrist(f) }},
		{Good, func(f Features) bool { return f.Fingers.Only(Thumb) && thumbAboveIndex(f) }},
		{Help, func(f Features) bool { return f.Fingers.Only(Thumb, Index) }},
	}
}
