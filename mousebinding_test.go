package main

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestParseMouseString(t *testing.T) {
	mm := NewMousebindingManager(GetDefaultMousebindings(), GetDefaultMouseSettings())

	tests := []struct {
		name     string
		mouseStr string
		valid    bool
		want     MouseCombination
	}{
		{"Left click", "LeftClick", true, MouseCombination{Button: ebiten.MouseButtonLeft}},
		{"Right click", "RightClick", true, MouseCombination{Button: ebiten.MouseButtonRight}},
		{"Middle click", "MiddleClick", true, MouseCombination{Button: ebiten.MouseButtonMiddle}},
		{"Back side button", "Back", true, MouseCombination{Button: ebiten.MouseButton3}},
		{"Forward side button", "Forward", true, MouseCombination{Button: ebiten.MouseButton4}},
		{"Wheel up", "WheelUp", true, MouseCombination{IsWheel: true, WheelDeltaY: 1.0}},
		{"Wheel down", "WheelDown", true, MouseCombination{IsWheel: true, WheelDeltaY: -1.0}},
		{"Wheel left", "WheelLeft", true, MouseCombination{IsWheel: true, WheelDeltaX: -1.0}},
		{"Wheel right", "WheelRight", true, MouseCombination{IsWheel: true, WheelDeltaX: 1.0}},
		{"Double left click", "DoubleLeftClick", true, MouseCombination{Button: ebiten.MouseButtonLeft, IsDoubleClick: true}},
		{"Double right click", "DoubleRightClick", true, MouseCombination{Button: ebiten.MouseButtonRight, IsDoubleClick: true}},
		{"Ctrl modifier", "Ctrl+RightClick", true, MouseCombination{Button: ebiten.MouseButtonRight, Ctrl: true}},
		{"Shift on wheel", "Shift+WheelUp", true, MouseCombination{IsWheel: true, WheelDeltaY: 1.0, Shift: true}},
		{"Unknown wheel direction", "WheelSideways", false, MouseCombination{}},
		{"Unknown double base", "DoubleBanana", false, MouseCombination{}},
		{"Unknown action", "TripleClick", false, MouseCombination{}},
		{"Empty string", "", false, MouseCombination{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combination, ok := mm.parseMouseString(tt.mouseStr)
			if ok != tt.valid {
				t.Fatalf("parseMouseString(%q) valid = %v, want %v", tt.mouseStr, ok, tt.valid)
			}
			if !ok {
				return
			}
			if *combination != tt.want {
				t.Errorf("parseMouseString(%q) = %+v, want %+v", tt.mouseStr, *combination, tt.want)
			}
		})
	}
}

func TestDoubleClickTracker(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 300 * time.Millisecond

	t.Run("SecondClickWithinWindow", func(t *testing.T) {
		var tracker DoubleClickTracker
		if tracker.Click(ebiten.MouseButtonLeft, base, window) {
			t.Error("First click should not register as double")
		}
		if !tracker.Click(ebiten.MouseButtonLeft, base.Add(100*time.Millisecond), window) {
			t.Error("Second click within window should register as double")
		}
	})

	t.Run("ThirdClickStartsNewPair", func(t *testing.T) {
		var tracker DoubleClickTracker
		tracker.Click(ebiten.MouseButtonLeft, base, window)
		tracker.Click(ebiten.MouseButtonLeft, base.Add(100*time.Millisecond), window)
		if tracker.Click(ebiten.MouseButtonLeft, base.Add(200*time.Millisecond), window) {
			t.Error("Third click should start a new pair, not fire again")
		}
		if !tracker.Click(ebiten.MouseButtonLeft, base.Add(300*time.Millisecond), window) {
			t.Error("Fourth click should complete the second pair")
		}
	})

	t.Run("DifferentButtonResets", func(t *testing.T) {
		var tracker DoubleClickTracker
		tracker.Click(ebiten.MouseButtonLeft, base, window)
		tracker.Click(ebiten.MouseButtonRight, base.Add(50*time.Millisecond), window)
		if tracker.Click(ebiten.MouseButtonLeft, base.Add(100*time.Millisecond), window) {
			t.Error("Left click after right click should count as a first click")
		}
		if !tracker.Click(ebiten.MouseButtonLeft, base.Add(150*time.Millisecond), window) {
			t.Error("Expected double after the interrupted sequence restarted")
		}
	})

	t.Run("SlowClicksNeverFire", func(t *testing.T) {
		var tracker DoubleClickTracker
		now := base
		for i := 0; i < 4; i++ {
			if tracker.Click(ebiten.MouseButtonLeft, now, window) {
				t.Errorf("Click %d outside the window should not register as double", i)
			}
			now = now.Add(400 * time.Millisecond)
		}
	})

	t.Run("WindowBoundaryInclusive", func(t *testing.T) {
		var tracker DoubleClickTracker
		tracker.Click(ebiten.MouseButtonLeft, base, window)
		if !tracker.Click(ebiten.MouseButtonLeft, base.Add(window), window) {
			t.Error("Click exactly at the window boundary should still count")
		}
	})
}

func TestMousebindingManagerSettings(t *testing.T) {
	settings := GetDefaultMouseSettings()
	mm := NewMousebindingManager(GetDefaultMousebindings(), settings)

	if got := mm.GetSettings(); got != settings {
		t.Errorf("GetSettings() = %+v, want %+v", got, settings)
	}

	settings.WheelSensitivity = 2.5
	settings.EnableDragPan = false
	mm.UpdateSettings(settings)
	if got := mm.GetSettings(); got != settings {
		t.Errorf("After UpdateSettings, GetSettings() = %+v, want %+v", got, settings)
	}
}

func TestUpdateMousebindingsReparses(t *testing.T) {
	mm := NewMousebindingManager(nil, GetDefaultMouseSettings())
	mm.UpdateMousebindings(map[string][]string{
		"next_page": {"Forward", "WheelSideways"},
	})
	if got := mm.parsed["next_page"]; len(got) != 1 || got[0].Button != ebiten.MouseButton4 {
		t.Errorf("Expected one parsed combination for Forward, got %v", got)
	}
	if got := mm.GetMousebindings()["next_page"]; len(got) != 2 {
		t.Errorf("Raw bindings map should keep both entries, got %v", got)
	}
}

func TestGetDefaultMouseSettings(t *testing.T) {
	settings := GetDefaultMouseSettings()

	if settings.WheelSensitivity != 1.0 {
		t.Errorf("Expected wheel sensitivity 1.0, got %v", settings.WheelSensitivity)
	}
	if settings.DoubleClickTime != 300 {
		t.Errorf("Expected double click time 300ms, got %d", settings.DoubleClickTime)
	}
	if settings.DragThreshold != 5 {
		t.Errorf("Expected drag threshold 5px, got %d", settings.DragThreshold)
	}
	if !settings.EnableMouse {
		t.Error("Expected mouse input enabled by default")
	}
	if settings.WheelInverted {
		t.Error("Expected wheel not inverted by default")
	}
	if !settings.EnableDragPan {
		t.Error("Expected drag pan enabled by default")
	}
	if settings.DragSensitivity != 1.0 {
		t.Errorf("Expected drag sensitivity 1.0, got %v", settings.DragSensitivity)
	}
}

func TestDefaultMousebindingsParse(t *testing.T) {
	mm := NewMousebindingManager(nil, GetDefaultMouseSettings())
	validNames := getValidMouseActionNames()

	for action, bindings := range GetDefaultMousebindings() {
		for _, mouseStr := range bindings {
			if _, ok := mm.parseMouseString(mouseStr); !ok {
				t.Errorf("Default binding %q for %s does not parse", mouseStr, action)
			}
			if err := validateKeyString(mouseStr, validNames); err != nil {
				t.Errorf("Default binding %q for %s fails validation: %v", mouseStr, action, err)
			}
		}
	}
}
