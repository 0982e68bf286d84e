package capture

import (
	"image"
	"image/color"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestNewActivity_Defaults(t *testing.T) {
	a := NewActivity(0, 0)
	defer a.Close()

	if a.threshold != DefaultChangePercent {
		t.Errorf("threshold = %f, want %f", a.threshold, DefaultChangePercent)
	}
	if a.idleAfter != DefaultIdleAfter {
		t.Errorf("idleAfter = %v, want %v", a.idleAfter, DefaultIdleAfter)
	}
	if a.Idle(time.Now()) {
		t.Error("a tracker without frames should not be idle")
	}
}

func TestActivity_StillScene(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a := NewActivity(1.0, time.Second)
	defer a.Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := a.Observe(&frame, start); got != 100 {
		t.Errorf("baseline change = %f, want 100", got)
	}

	for i := 1; i <= 5; i++ {
		at := start.Add(time.Duration(i) * 300 * time.Millisecond)
		if got := a.Observe(&frame, at); got != 0 {
			t.Errorf("identical frame change = %f, want 0", got)
		}
	}

	if a.Idle(start.Add(900 * time.Millisecond)) {
		t.Error("should not be idle before the idle period")
	}
	if !a.Idle(start.Add(1500 * time.Millisecond)) {
		t.Error("should be idle after a still second")
	}
}

func TestActivity_Motion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a := NewActivity(1.0, time.Second)
	defer a.Close()

	dark := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer dark.Close()
	bright := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer bright.Close()
	gocv.Rectangle(&bright, image.Rect(20, 20, 140, 100), color.RGBA{255, 255, 255, 0}, -1)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.Observe(&dark, start)
	a.Observe(&dark, start.Add(2*time.Second))
	if !a.Idle(start.Add(2 * time.Second)) {
		t.Fatal("expected idle scene")
	}

	change := a.Observe(&bright, start.Add(3*time.Second))
	if change <= 1.0 {
		t.Errorf("change = %f, want > 1", change)
	}
	if a.LastChange() != change {
		t.Errorf("LastChange() = %f, want %f", a.LastChange(), change)
	}
	if a.Idle(start.Add(3 * time.Second)) {
		t.Error("motion should end the idle period")
	}
}

func TestActivity_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a := NewActivity(1.0, time.Second)
	defer a.Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	now := time.Now()
	a.Observe(&frame, now)
	a.Reset()

	if a.Idle(now.Add(time.Hour)) {
		t.Error("a reset tracker should not be idle")
	}
	if got := a.Observe(&frame, now); got != 100 {
		t.Errorf("first frame after Reset() = %f, want baseline 100", got)
	}
	if got := a.Observe(nil, now); got != 0 {
		t.Errorf("nil frame change = %f, want 0", got)
	}
}
