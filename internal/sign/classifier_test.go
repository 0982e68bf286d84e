package sign

import (
	"errors"
	"testing"

	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/testdata"
)

// pose builds a fixture from extension flags (thumb, index, middle, ring, pinky)
// and landmark overrides.
func pose(t, i, m, r, p bool, overrides map[int]detector.Point3D) detector.HandLandmarks {
	return detector.PoseLandmarks(detector.Pose{
		Extended:  [5]bool{t, i, m, r, p},
		Overrides: overrides,
	})
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Sign
	}{
		{
			name: "A thumb out below index tip",
			hand: pose(true, false, false, false, false, nil),
			want: A,
		},
		{
			name: "B four fingers up thumb tucked",
			hand: pose(false, true, true, true, true, nil),
			want: B,
		},
		{
			name: "C curved hand",
			hand: pose(true, true, true, true, true, map[int]detector.Point3D{
				detector.ThumbTip: {X: 0.33, Y: 0.48},
			}),
			want: C,
		},
		{
			name: "D thumb touching curled middle",
			hand: pose(true, true, false, false, false, map[int]detector.Point3D{
				detector.MiddleTip: {X: 0.33, Y: 0.63},
			}),
			want: D,
		},
		{
			name: "E fist",
			hand: detector.FistLandmarks(),
			want: E,
		},
		{
			name: "F thumb and index circle",
			hand: pose(true, true, true, true, true, map[int]detector.Point3D{
				detector.ThumbTip: {X: 0.34, Y: 0.38},
				detector.IndexTip: {X: 0.38, Y: 0.40},
			}),
			want: F,
		},
		{
			name: "I pinky only",
			hand: pose(false, false, false, false, true, nil),
			want: I,
		},
		{
			name: "K spread index and middle with thumb",
			hand: pose(true, true, true, false, false, map[int]detector.Point3D{
				detector.MiddleTip: {X: 0.54, Y: 0.36},
			}),
			want: K,
		},
		{
			name: "L right angle between thumb and index",
			hand: pose(true, true, false, false, false, nil),
			want: L,
		},
		{
			name: "O three fingers closed on thumb",
			hand: pose(true, true, true, false, false, map[int]detector.Point3D{
				detector.ThumbTip:  {X: 0.34, Y: 0.38},
				detector.IndexTip:  {X: 0.38, Y: 0.40},
				detector.MiddleTip: {X: 0.42, Y: 0.40},
			}),
			want: O,
		},
		{
			name: "U index and middle together",
			hand: pose(false, true, true, false, false, map[int]detector.Point3D{
				detector.MiddleTip: {X: 0.48, Y: 0.36},
			}),
			want: U,
		},
		{
			name: "V index and middle apart",
			hand: pose(false, true, true, false, false, map[int]detector.Point3D{
				detector.MiddleTip: {X: 0.54, Y: 0.36},
			}),
			want: V,
		},
		{
			name: "W three middle fingers",
			hand: pose(false, true, true, true, false, nil),
			want: W,
		},
		{
			name: "Y thumb and pinky",
			hand: pose(true, false, false, false, true, nil),
			want: Y,
		},
		{
			name: "HELLO open palm",
			hand: detector.OpenPalmLandmarks(),
			want: Hello,
		},
		{
			name: "GOOD thumbs up",
			hand: detector.ThumbsUpLandmarks(),
			want: Good,
		},
		{
			name: "HELP thumb and index without L angle",
			hand: pose(true, true, false, false, false, map[int]detector.Point3D{
				detector.ThumbTip: {X: 0.30, Y: 0.40},
			}),
			want: Help,
		},
		{
			name: "index only has no sign",
			hand: pose(false, true, false, false, false, nil),
			want: None,
		},
		{
			name: "index and middle between U and V bands has no sign",
			hand: pose(false, true, true, false, false, nil),
			want: None,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(&tt.hand); got != tt.want {
				f := Extract(&tt.hand)
				t.Errorf("Classify() = %q, want %q (fingers %s, thumb-index %.3f, index-middle %.3f)",
					got, tt.want, f.Fingers, f.ThumbIndex, f.IndexMiddle)
			}
		})
	}
}

func TestClassifier_RuleOrder(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	t.Run("C wins over W when the thumb curves toward the index", func(t *testing.T) {
		// Three fingers up satisfies both C (rule 3) and W (rule 13).
		hand := pose(false, true, true, true, false, map[int]detector.Point3D{
			detector.ThumbTip: {X: 0.40, Y: 0.50},
		})
		if got := c.Classify(&hand); got != C {
			t.Errorf("expected C, got %q", got)
		}
	})

	t.Run("C wins over HELLO for an open hand in the curve band", func(t *testing.T) {
		hand := pose(true, true, true, true, true, map[int]detector.Point3D{
			detector.ThumbTip: {X: 0.33, Y: 0.48},
		})
		if got := c.Classify(&hand); got != C {
			t.Errorf("expected C, got %q", got)
		}
	})

	t.Run("F wins over O when all five fingers are extended", func(t *testing.T) {
		hand := pose(true, true, true, true, true, map[int]detector.Point3D{
			detector.ThumbTip: {X: 0.34, Y: 0.38},
			detector.IndexTip: {X: 0.38, Y: 0.40},
		})
		f := Extract(&hand)
		if !ruleFor(t, c, O).Match(f) {
			t.Fatal("fixture should also satisfy the O predicate")
		}
		if got := c.Classify(&hand); got != F {
			t.Errorf("expected F, got %q", got)
		}
	})

	t.Run("E shadows YES for a fist below the wrist line", func(t *testing.T) {
		// Both rule 5 (E) and rule 18 (YES) hold for this fist because the
		// curled index tip sits above the wrist. E is earlier and wins.
		hand := detector.FistLandmarks()
		f := Extract(&hand)
		if !ruleFor(t, c, Yes).Match(f) {
			t.Fatal("fixture should satisfy the YES predicate")
		}
		if got := c.Classify(&hand); got != E {
			t.Errorf("expected E, got %q", got)
		}
	})

	t.Run("YES predicate rejects an index tip below the wrist", func(t *testing.T) {
		hand := pose(false, false, false, false, false, map[int]detector.Point3D{
			detector.IndexPIP: {X: 0.44, Y: 0.82},
			detector.IndexTip: {X: 0.44, Y: 0.90},
		})
		if ruleFor(t, c, Yes).Match(Extract(&hand)) {
			t.Error("YES should require the index tip above the wrist")
		}
		if got := c.Classify(&hand); got != E {
			t.Errorf("expected E, got %q", got)
		}
	})

	t.Run("HELLO shadows THANKS and PLEASE", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()
		f := Extract(&hand)
		for _, s := range []Sign{Thanks, Please} {
			if !ruleFor(t, c, s).Match(f) {
				t.Errorf("open palm should satisfy the %s predicate", s)
			}
		}
		if got := c.Classify(&hand); got != Hello {
			t.Errorf("expected HELLO, got %q", got)
		}
	})

	t.Run("table order is fixed", func(t *testing.T) {
		want := []Sign{A, B, C, D, E, F, I, K, L, O, U, V, W, Y, Hello, Thanks, Please, Yes, Good, Help}
		rules := c.Rules()
		if len(rules) != len(want) {
			t.Fatalf("expected %d rules, got %d", len(want), len(rules))
		}
		for i, r := range rules {
			if r.Sign != want[i] {
				t.Errorf("rule %d: expected %s, got %s", i+1, want[i], r.Sign)
			}
		}
	})
}

func TestClassifier_Pure(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	hand := detector.OpenPalmLandmarks()
	before := hand

	first := c.Classify(&hand)
	for i := 0; i < 10; i++ {
		if got := c.Classify(&hand); got != first {
			t.Fatalf("call %d returned %q, first call returned %q", i, got, first)
		}
	}
	if hand != before {
		t.Error("Classify should not modify its input")
	}
}

func TestClassifier_CustomThresholds(t *testing.T) {
	// Widening the U band turns the default two-finger pose into a U.
	th := DefaultThresholds()
	th.Together = 0.07
	c := NewClassifier(th)

	hand := pose(false, true, true, false, false, nil)
	if got := c.Classify(&hand); got != U {
		t.Errorf("expected U with widened band, got %q", got)
	}
	if c.Thresholds().Together != 0.07 {
		t.Errorf("expected thresholds to be retained")
	}
}

func TestClassifier_Explain(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	hand := detector.OpenPalmLandmarks()

	s, f := c.Explain(&hand)
	if s != Hello {
		t.Errorf("expected HELLO, got %q", s)
	}
	if f.Fingers.Count() != 5 {
		t.Errorf("expected 5 extended fingers, got %d", f.Fingers.Count())
	}
	if f.ThumbIndex <= 0 {
		t.Errorf("expected a positive thumb-index distance, got %f", f.ThumbIndex)
	}
}

func ruleFor(t *testing.T, c *Classifier, s Sign) Rule {
	t.Helper()
	for _, r := range c.Rules() {
		if r.Sign == s {
			return r
		}
	}
	t.Fatalf("no rule for %s", s)
	return Rule{}
}

func TestThresholds_Validate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("default thresholds invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"zero touch", func(th *Thresholds) { th.Touch = 0 }},
		{"negative spread", func(th *Thresholds) { th.Spread = -0.1 }},
		{"curve range inverted", func(th *Thresholds) { th.CurveMin = 0.3 }},
		{"angle range inverted", func(th *Thresholds) { th.LAngleMin = 120 }},
		{"angle above 180", func(th *Thresholds) { th.LAngleMax = 200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			if err := th.Validate(); !errors.Is(err, ErrInvalidThresholds) {
				t.Errorf("Validate() = %v, want ErrInvalidThresholds", err)
			}
		})
	}
}

func TestClassifier_RecordedHands(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	for name, want := range testdata.Expected {
		t.Run(name, func(t *testing.T) {
			hand, err := testdata.LoadHand(name)
			if err != nil {
				t.Fatalf("LoadHand() error = %v", err)
			}
			if got := c.Classify(&hand); got != Sign(want) {
				t.Errorf("Classify(%s) = %q, want %q", name, got, want)
			}
		})
	}
}
