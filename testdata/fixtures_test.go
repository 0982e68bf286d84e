package testdata

import "testing"

func TestFixtures(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != len(Expected) {
		t.Fatalf("got %d fixtures, want %d", len(names), len(Expected))
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			if _, ok := Expected[name]; !ok {
				t.Errorf("fixture %s has no expected sign", name)
			}
			hand, err := LoadHand(name)
			if err != nil {
				t.Fatalf("LoadHand() error = %v", err)
			}
			if err := hand.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
			if hand.Handedness != "Right" {
				t.Errorf("handedness = %q", hand.Handedness)
			}
		})
	}

	if _, err := LoadHand("missing"); err == nil {
		t.Error("expected error for a missing fixture")
	}
}
