package main

import (
	"testing"
	"time"
)

// newTestLongPress wires a detector to recording callbacks with the default
// 500ms hold and 10px movement limit.
func newTestLongPress() (*LongPressDetector, *[]TouchPoint, *int) {
	fires := &[]TouchPoint{}
	cancels := new(int)
	d := NewLongPressDetector(500*time.Millisecond, 10,
		func(x, y float64) { *fires = append(*fires, TouchPoint{X: x, Y: y}) },
		func() { *cancels++ },
	)
	return d, fires, cancels
}

func TestLongPressFiresAtThreshold(t *testing.T) {
	d, fires, _ := newTestLongPress()
	base := time.Now()

	d.PressStart(100, 200, false, base)

	d.Update(base.Add(499 * time.Millisecond))
	if len(*fires) != 0 {
		t.Fatalf("Expected no fire before the threshold, got %d", len(*fires))
	}

	d.Update(base.Add(500 * time.Millisecond))
	if len(*fires) != 1 {
		t.Fatalf("Expected exactly one fire at the threshold, got %d", len(*fires))
	}

	// Holding longer never fires again
	d.Update(base.Add(2 * time.Second))
	if len(*fires) != 1 {
		t.Errorf("Expected no second fire, got %d", len(*fires))
	}

	if !d.PressEnd() {
		t.Error("Expected PressEnd to report the fired press")
	}
}

func TestLongPressFiresAtOriginalPosition(t *testing.T) {
	d, fires, _ := newTestLongPress()
	base := time.Now()

	d.PressStart(100, 200, false, base)
	// Wander inside the movement limit: hypot(5, 5) is about 7.07
	d.PressMove(105, 205)
	d.Update(base.Add(600 * time.Millisecond))

	if len(*fires) != 1 {
		t.Fatalf("Expected a fire despite small movement, got %d", len(*fires))
	}
	if got := (*fires)[0]; got.X != 100 || got.Y != 200 {
		t.Errorf("Expected fire at the press-down point (100, 200), got (%.1f, %.1f)", got.X, got.Y)
	}
}

func TestLongPressMoveCancel(t *testing.T) {
	d, fires, cancels := newTestLongPress()
	base := time.Now()

	d.PressStart(100, 200, false, base)

	// Exactly at the limit is still a hold
	d.PressMove(110, 200)
	if *cancels != 0 {
		t.Fatalf("Expected no cancel at exactly the movement limit, got %d", *cancels)
	}

	// One pixel past the limit cancels with a signal
	d.PressMove(111, 200)
	if *cancels != 1 {
		t.Fatalf("Expected one cancel signal, got %d", *cancels)
	}
	if d.IsActive() {
		t.Error("Expected detector inactive after cancel")
	}

	// A cancelled press never fires
	d.Update(base.Add(time.Second))
	if len(*fires) != 0 {
		t.Errorf("Expected no fire after cancel, got %d", len(*fires))
	}
}

func TestLongPressEarlyReleaseIsSilent(t *testing.T) {
	d, fires, cancels := newTestLongPress()
	base := time.Now()

	d.PressStart(100, 200, false, base)
	if d.PressEnd() {
		t.Error("Expected PressEnd before the threshold to report no fire")
	}

	d.Update(base.Add(time.Second))
	if len(*fires) != 0 {
		t.Errorf("Expected no fire after release, got %d", len(*fires))
	}
	// A short press is an ordinary click, not a cancelled hold
	if *cancels != 0 {
		t.Errorf("Expected no cancel signal on early release, got %d", *cancels)
	}
}

func TestLongPressSecondTouchCancels(t *testing.T) {
	d, _, cancels := newTestLongPress()
	base := time.Now()

	d.PressStart(100, 200, false, base)
	d.SecondTouch()
	if *cancels != 1 {
		t.Fatalf("Expected one cancel signal on second touch, got %d", *cancels)
	}

	// Idempotent once inactive
	d.SecondTouch()
	if *cancels != 1 {
		t.Errorf("Expected no further signals, got %d", *cancels)
	}
}

func TestLongPressIgnoresInteractiveTargets(t *testing.T) {
	d, fires, _ := newTestLongPress()
	base := time.Now()

	d.PressStart(100, 200, true, base)
	if d.IsActive() {
		t.Error("Expected presses on interactive controls to be ignored")
	}

	d.Update(base.Add(time.Second))
	if len(*fires) != 0 {
		t.Errorf("Expected no fire from an interactive target, got %d", len(*fires))
	}
}

func TestLongPressProgress(t *testing.T) {
	d, _, _ := newTestLongPress()
	base := time.Now()

	if got := d.Progress(base); got != 0 {
		t.Errorf("Expected progress 0 while idle, got %v", got)
	}

	d.PressStart(100, 200, false, base)

	if got := d.Progress(base.Add(250 * time.Millisecond)); !approxEqual(got, 0.5) {
		t.Errorf("Expected progress 0.5 at half the hold, got %v", got)
	}
	if got := d.Progress(base.Add(800 * time.Millisecond)); got != 1 {
		t.Errorf("Expected progress capped at 1, got %v", got)
	}

	d.Update(base.Add(600 * time.Millisecond))
	if !d.HasFired() {
		t.Fatal("Expected the press to have fired")
	}
	if got := d.Progress(base.Add(601 * time.Millisecond)); got != 1 {
		t.Errorf("Expected progress pinned at 1 after firing, got %v", got)
	}
}
