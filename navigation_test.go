package main

import "testing"

type navEvent struct {
	prev      int
	next      int
	direction NavigationDirection
}

// newTestNav builds a controller over fresh state, recording page changes
func newTestNav(pageCount int, mode ViewMode, resetTransform bool) (*NavigationController, *ViewerState, *[]navEvent) {
	state := NewViewerState(pageCount)
	state.SetViewMode(mode)
	events := &[]navEvent{}
	n := NewNavigationController(state, nil, resetTransform)
	n.SetPageChangeHandler(func(prev, next int, direction NavigationDirection) {
		*events = append(*events, navEvent{prev, next, direction})
	})
	return n, state, events
}

func TestNormalizePageIndex(t *testing.T) {
	tests := []struct {
		name     string
		idx      int
		mode     ViewMode
		expected int
	}{
		{"Single mode identity", 5, ViewModeSingle, 5},
		{"Double mode even", 4, ViewModeDouble, 4},
		{"Double mode odd", 5, ViewModeDouble, 4},
		{"Double mode page one", 1, ViewModeDouble, 0},
		{"Double mode zero", 0, ViewModeDouble, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePageIndex(tt.idx, tt.mode); got != tt.expected {
				t.Errorf("normalizePageIndex(%d, %v) = %d, want %d", tt.idx, tt.mode, got, tt.expected)
			}
		})
	}
}

func TestPrevClampsAtFirstPage(t *testing.T) {
	n, state, events := newTestNav(3, ViewModeSingle, false)

	n.Prev()

	if got := state.GetCurrentPage(); got != 0 {
		t.Errorf("Expected to stay on page 0, got %d", got)
	}
	// A clamped non-move must not run the page-change lifecycle
	if len(*events) != 0 {
		t.Errorf("Expected no page-change events, got %d", len(*events))
	}
}

func TestNextClampsAtLastPage(t *testing.T) {
	n, state, events := newTestNav(3, ViewModeSingle, false)
	n.GoToPage(2)
	*events = (*events)[:0]

	n.Next()

	if got := state.GetCurrentPage(); got != 2 {
		t.Errorf("Expected to stay on the last page, got %d", got)
	}
	if len(*events) != 0 {
		t.Errorf("Expected no page-change events, got %d", len(*events))
	}
}

func TestSingleModeStepsByOne(t *testing.T) {
	n, state, events := newTestNav(5, ViewModeSingle, false)

	n.Next()
	n.Next()
	if got := state.GetCurrentPage(); got != 2 {
		t.Errorf("Expected page 2 after two nexts, got %d", got)
	}

	n.Prev()
	if got := state.GetCurrentPage(); got != 1 {
		t.Errorf("Expected page 1 after prev, got %d", got)
	}

	want := []navEvent{
		{0, 1, NavigationForward},
		{1, 2, NavigationForward},
		{2, 1, NavigationBackward},
	}
	if len(*events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(*events))
	}
	for i, ev := range want {
		if (*events)[i] != ev {
			t.Errorf("Event %d = %+v, want %+v", i, (*events)[i], ev)
		}
	}
}

func TestDoubleModeStepsBySpread(t *testing.T) {
	n, state, _ := newTestNav(6, ViewModeDouble, false)

	n.Next()
	if got := state.GetCurrentPage(); got != 2 {
		t.Errorf("Expected spread 2 after next, got %d", got)
	}
	n.Next()
	if got := state.GetCurrentPage(); got != 4 {
		t.Errorf("Expected spread 4, got %d", got)
	}

	// The last spread clamps, no wrap
	n.Next()
	if got := state.GetCurrentPage(); got != 4 {
		t.Errorf("Expected to stay on the last spread, got %d", got)
	}

	n.Prev()
	if got := state.GetCurrentPage(); got != 2 {
		t.Errorf("Expected spread 2 after prev, got %d", got)
	}
}

func TestDoubleModeOddCountClampsToLoneSpread(t *testing.T) {
	n, state, _ := newTestNav(5, ViewModeDouble, false)
	n.GoToPage(2)

	n.Next()
	if got := state.GetCurrentPage(); got != 4 {
		t.Errorf("Expected the lone final spread 4, got %d", got)
	}
	n.Next()
	if got := state.GetCurrentPage(); got != 4 {
		t.Errorf("Expected to stay on spread 4, got %d", got)
	}
}

func TestGoToPageClampsWithoutNormalizing(t *testing.T) {
	n, state, _ := newTestNav(6, ViewModeDouble, false)

	// Jump targets keep their exact index; only display normalizes
	n.GoToPage(3)
	if got := state.GetCurrentPage(); got != 3 {
		t.Errorf("Expected exact index 3, got %d", got)
	}
	pages := n.VisiblePages()
	if len(pages) != 2 || pages[0] != 2 || pages[1] != 3 {
		t.Errorf("Expected displayed spread [2 3], got %v", pages)
	}

	n.GoToPage(99)
	if got := state.GetCurrentPage(); got != 5 {
		t.Errorf("Expected clamp to 5, got %d", got)
	}
	n.GoToPage(-4)
	if got := state.GetCurrentPage(); got != 0 {
		t.Errorf("Expected clamp to 0, got %d", got)
	}
}

func TestGoToFirstAndLast(t *testing.T) {
	n, state, _ := newTestNav(8, ViewModeSingle, false)

	n.GoToLast()
	if got := state.GetCurrentPage(); got != 7 {
		t.Errorf("Expected last page 7, got %d", got)
	}
	n.GoToFirst()
	if got := state.GetCurrentPage(); got != 0 {
		t.Errorf("Expected first page 0, got %d", got)
	}
}

func TestBoundaryPredicates(t *testing.T) {
	tests := []struct {
		name      string
		pageCount int
		mode      ViewMode
		page      int
		first     bool
		last      bool
	}{
		{"Single at start", 3, ViewModeSingle, 0, true, false},
		{"Single in middle", 3, ViewModeSingle, 1, false, false},
		{"Single at end", 3, ViewModeSingle, 2, false, true},
		{"Single lone page", 1, ViewModeSingle, 0, true, true},
		{"Double at start", 6, ViewModeDouble, 1, true, false},
		{"Double mid book", 6, ViewModeDouble, 3, false, false},
		{"Double last spread", 6, ViewModeDouble, 4, false, true},
		{"Double last spread right", 6, ViewModeDouble, 5, false, true},
		{"Double lone final page", 5, ViewModeDouble, 4, false, true},
		{"Empty book", 0, ViewModeSingle, 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, state, _ := newTestNav(tt.pageCount, tt.mode, false)
			state.SetCurrentPage(tt.page)
			if got := n.IsFirstPage(); got != tt.first {
				t.Errorf("IsFirstPage() = %v, want %v", got, tt.first)
			}
			if got := n.IsLastPage(); got != tt.last {
				t.Errorf("IsLastPage() = %v, want %v", got, tt.last)
			}
		})
	}
}

func TestPageChangeResetsTransformWhenConfigured(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}

	n, state, _ := newTestNav(5, ViewModeSingle, true)
	state.SetTransform(2.0, 50, 50, vp)
	n.Next()
	if got := state.GetZoomLevel(); got != minZoomLevel {
		t.Errorf("Expected zoom reset on page change, got %v", got)
	}

	n, state, _ = newTestNav(5, ViewModeSingle, false)
	state.SetTransform(2.0, 50, 50, vp)
	n.Next()
	if got := state.GetZoomLevel(); got != 2.0 {
		t.Errorf("Expected zoom preserved on page change, got %v", got)
	}
}

func TestPageChangeSavesOutgoingSpread(t *testing.T) {
	state := NewViewerState(6)
	state.SetViewMode(ViewModeDouble)
	saver := &recordingSaver{}
	engine := NewAnnotationEngine("book", testToolConfig(), saver)
	canvas := NewPageCanvas()
	engine.BindCanvas(0, canvas)
	inkPage(engine, 0, canvas, testSnap(1))

	n := NewNavigationController(state, engine, false)
	n.Next()

	if _, ok := saver.saved[0]; !ok {
		t.Error("Expected the outgoing page's ink to be saved")
	}
}

func TestNavigationOnEmptyBook(t *testing.T) {
	n, state, events := newTestNav(0, ViewModeSingle, false)

	n.Next()
	n.Prev()
	n.GoToPage(3)

	if got := state.GetCurrentPage(); got != 0 {
		t.Errorf("Expected page 0 on an empty book, got %d", got)
	}
	if len(*events) != 0 {
		t.Errorf("Expected no events on an empty book, got %d", len(*events))
	}
}

func TestJumpDirection(t *testing.T) {
	n, _, events := newTestNav(10, ViewModeSingle, false)

	n.GoToPage(7)

	if len(*events) != 1 {
		t.Fatalf("Expected one event, got %d", len(*events))
	}
	if got := (*events)[0].direction; got != NavigationJump {
		t.Errorf("Expected NavigationJump, got %v", got)
	}
}
