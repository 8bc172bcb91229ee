package main

const (
	toolbarHeight    = 44.0
	toolbarButtonGap = 6.0
)

// ToolbarButton is one clickable control. Bounds are recomputed by Layout
// whenever the window size changes.
type ToolbarButton struct {
	Action string
	Label  string
	Width  float64
	Bounds Viewport
}

// Toolbar is the control strip along the bottom edge. Pointer events inside
// it never reach the page, so presses here cannot start pans, strokes or
// long-presses.
type Toolbar struct {
	buttons []ToolbarButton
	bar     Viewport
	hovered int
}

func NewToolbar() *Toolbar {
	return &Toolbar{
		buttons: []ToolbarButton{
			{Action: "prev_page", Label: "<", Width: 36},
			{Action: "page_input", Label: "", Width: 88},
			{Action: "next_page", Label: ">", Width: 36},
			{Action: "toggle_view_mode", Label: "1|2", Width: 44},
			{Action: "tool_pen", Label: "Pen", Width: 48},
			{Action: "tool_highlight", Label: "Mark", Width: 52},
			{Action: "tool_off", Label: "Off", Width: 44},
			{Action: "undo", Label: "Undo", Width: 52},
			{Action: "redo", Label: "Redo", Width: 52},
			{Action: "clear_annotations", Label: "Clear", Width: 56},
			{Action: "save_annotations", Label: "Save", Width: 52},
			{Action: "export_pdf", Label: "PDF", Width: 48},
			{Action: "thumbnails", Label: "Grid", Width: 52},
			{Action: "help", Label: "?", Width: 36},
		},
		hovered: -1,
	}
}

// Layout positions the bar and its buttons for the given screen size
func (tb *Toolbar) Layout(screenW, screenH float64) {
	tb.bar = Viewport{Left: 0, Top: screenH - toolbarHeight, Width: screenW, Height: toolbarHeight}

	total := 0.0
	for _, b := range tb.buttons {
		total += b.Width
	}
	total += toolbarButtonGap * float64(len(tb.buttons)-1)

	x := (screenW - total) / 2
	if x < toolbarButtonGap {
		x = toolbarButtonGap
	}
	for i := range tb.buttons {
		tb.buttons[i].Bounds = Viewport{
			Left:   x,
			Top:    tb.bar.Top + 5,
			Width:  tb.buttons[i].Width,
			Height: toolbarHeight - 10,
		}
		x += tb.buttons[i].Width + toolbarButtonGap
	}
}

// Bar returns the full strip rectangle
func (tb *Toolbar) Bar() Viewport {
	return tb.bar
}

// Contains reports whether the position falls on the bar
func (tb *Toolbar) Contains(x, y float64) bool {
	return tb.bar.Contains(x, y)
}

// HitTest returns the action of the button under the position
func (tb *Toolbar) HitTest(x, y float64) (string, bool) {
	for _, b := range tb.buttons {
		if b.Bounds.Contains(x, y) {
			return b.Action, true
		}
	}
	return "", false
}

// UpdateHover tracks the button under the pointer for highlighting
func (tb *Toolbar) UpdateHover(x, y float64) {
	tb.hovered = -1
	for i, b := range tb.buttons {
		if b.Bounds.Contains(x, y) {
			tb.hovered = i
			return
		}
	}
}

func (tb *Toolbar) Hovered() int {
	return tb.hovered
}

func (tb *Toolbar) Buttons() []ToolbarButton {
	return tb.buttons
}
