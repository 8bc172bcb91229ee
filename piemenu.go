package main

import "math"

const (
	pieMenuInnerRadius = 20.0
	pieMenuOuterRadius = 96.0
	pieMenuLabelRadius = 62.0
)

// PieMenuItem is one slice of the radial menu. Action names match the
// action table, so selection dispatches through the shared executor.
type PieMenuItem struct {
	Action string
	Label  string
}

// PieMenu is a radial menu opened at the press position. Slices start at
// the top and run clockwise. The inner radius is a dead zone so releasing
// without moving cancels instead of selecting.
type PieMenu struct {
	open    bool
	centerX float64
	centerY float64
	items   []PieMenuItem
	hovered int
}

func NewPieMenu() *PieMenu {
	return &PieMenu{
		items: []PieMenuItem{
			{"tool_pen", "Pen"},
			{"tool_highlight", "Highlight"},
			{"tool_off", "Put away"},
			{"undo", "Undo"},
			{"redo", "Redo"},
			{"clear_annotations", "Clear"},
			{"save_annotations", "Save"},
			{"close_overlay", "Close"},
		},
		hovered: -1,
	}
}

// OpenAt opens the menu centered on the given screen position
func (pm *PieMenu) OpenAt(x, y float64) {
	pm.open = true
	pm.centerX = x
	pm.centerY = y
	pm.hovered = -1
}

func (pm *PieMenu) Close() {
	pm.open = false
	pm.hovered = -1
}

func (pm *PieMenu) IsOpen() bool {
	return pm.open
}

func (pm *PieMenu) Center() (float64, float64) {
	return pm.centerX, pm.centerY
}

func (pm *PieMenu) Items() []PieMenuItem {
	return pm.items
}

func (pm *PieMenu) Hovered() int {
	return pm.hovered
}

// UpdateHover tracks which slice the pointer is over
func (pm *PieMenu) UpdateHover(x, y float64) {
	if !pm.open {
		return
	}
	pm.hovered = pm.itemAt(x, y)
}

// SelectAt returns the action under the given position, or false when the
// position is in the dead zone so the caller can treat it as a cancel.
func (pm *PieMenu) SelectAt(x, y float64) (string, bool) {
	idx := pm.itemAt(x, y)
	if idx < 0 {
		return "", false
	}
	return pm.items[idx].Action, true
}

// itemAt maps a screen position to a slice index, -1 inside the dead zone
func (pm *PieMenu) itemAt(x, y float64) int {
	dx := x - pm.centerX
	dy := y - pm.centerY
	if math.Hypot(dx, dy) < pieMenuInnerRadius {
		return -1
	}

	n := len(pm.items)
	if n == 0 {
		return -1
	}
	sliceAngle := 2 * math.Pi / float64(n)

	// Slice 0 is centered on the top of the circle
	angle := math.Atan2(dy, dx) + math.Pi/2
	idx := int(math.Floor(angle/sliceAngle + 0.5))
	return ((idx % n) + n) % n
}

// ItemAngle returns the center angle of a slice in screen coordinates
func (pm *PieMenu) ItemAngle(idx int) float64 {
	sliceAngle := 2 * math.Pi / float64(len(pm.items))
	return -math.Pi/2 + float64(idx)*sliceAngle
}
