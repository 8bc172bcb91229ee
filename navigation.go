package main

// normalizePageIndex maps an index to the even (left) page of its spread in
// double mode. Single mode is identity.
func normalizePageIndex(idx int, mode ViewMode) int {
	if mode == ViewModeDouble {
		return idx - idx%2
	}
	return idx
}

// NavigationController drives page changes over the viewer state. Index math
// is a pure function of (currentPage, viewMode, pageCount); the controller
// additionally runs the page-change lifecycle: outgoing annotations are
// persisted, the transform is reset when configured, and the shell hook is
// invoked so canvases and preloading follow the new position.
type NavigationController struct {
	state       *ViewerState
	annotations *AnnotationEngine

	resetTransformOnChange bool

	// onPageChange is called after currentPage moved, with the direction of
	// travel for the preloader. May be nil in tests.
	onPageChange func(prev, next int, direction NavigationDirection)
}

// NewNavigationController creates a controller over the given state
func NewNavigationController(state *ViewerState, annotations *AnnotationEngine, resetTransformOnChange bool) *NavigationController {
	return &NavigationController{
		state:                  state,
		annotations:            annotations,
		resetTransformOnChange: resetTransformOnChange,
	}
}

// SetPageChangeHandler installs the shell callback for completed page changes
func (n *NavigationController) SetPageChangeHandler(handler func(prev, next int, direction NavigationDirection)) {
	n.onPageChange = handler
}

// NormalizedIndex returns the current index normalized for the view mode
func (n *NavigationController) NormalizedIndex() int {
	return normalizePageIndex(n.state.GetCurrentPage(), n.state.GetViewMode())
}

// VisiblePages returns the page indices currently on display: one page in
// single mode, the spread pair (or a lone final page) in double mode.
func (n *NavigationController) VisiblePages() []int {
	if n.state.GetViewMode() == ViewModeSingle {
		return []int{n.state.GetCurrentPage()}
	}
	left := n.NormalizedIndex()
	if left+1 < n.state.GetPageCount() {
		return []int{left, left + 1}
	}
	return []int{left}
}

// IsFirstPage reports whether navigation backward would be a no-op
func (n *NavigationController) IsFirstPage() bool {
	return n.NormalizedIndex() == 0
}

// IsLastPage reports whether navigation forward would be a no-op
func (n *NavigationController) IsLastPage() bool {
	pageCount := n.state.GetPageCount()
	if pageCount == 0 {
		return true
	}
	if n.state.GetViewMode() == ViewModeDouble {
		return n.NormalizedIndex() >= pageCount-2
	}
	return n.state.GetCurrentPage() >= pageCount-1
}

// Next advances one page, or one spread in double mode, clamped at the end
func (n *NavigationController) Next() {
	pageCount := n.state.GetPageCount()
	if pageCount == 0 {
		return
	}
	var target int
	if n.state.GetViewMode() == ViewModeDouble {
		target = n.NormalizedIndex() + 2
		lastSpread := normalizePageIndex(pageCount-1, ViewModeDouble)
		if target > lastSpread {
			target = lastSpread
		}
	} else {
		target = n.state.GetCurrentPage() + 1
		if target > pageCount-1 {
			target = pageCount - 1
		}
	}
	n.changePage(target, NavigationForward)
}

// Prev goes back one page, or one spread in double mode, clamped at zero
func (n *NavigationController) Prev() {
	if n.state.GetPageCount() == 0 {
		return
	}
	var target int
	if n.state.GetViewMode() == ViewModeDouble {
		target = n.NormalizedIndex() - 2
	} else {
		target = n.state.GetCurrentPage() - 1
	}
	if target < 0 {
		target = 0
	}
	n.changePage(target, NavigationBackward)
}

// GoToPage jumps to an absolute index, clamped to the valid range. The index
// is not normalized; spread-aligned callers normalize before calling.
func (n *NavigationController) GoToPage(idx int) {
	pageCount := n.state.GetPageCount()
	if pageCount == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > pageCount-1 {
		idx = pageCount - 1
	}
	n.changePage(idx, NavigationJump)
}

// GoToFirst jumps to the first page
func (n *NavigationController) GoToFirst() {
	n.GoToPage(0)
}

// GoToLast jumps to the last page
func (n *NavigationController) GoToLast() {
	n.GoToPage(n.state.GetPageCount() - 1)
}

// changePage moves currentPage and runs the page-change lifecycle. A change
// that lands on the current index (clamped at a boundary) does nothing.
func (n *NavigationController) changePage(target int, direction NavigationDirection) {
	prev := n.state.GetCurrentPage()
	if target == prev {
		return
	}

	// Persist the outgoing page or spread before leaving it
	if n.annotations != nil {
		n.annotations.SaveAnnotations(prev, n.state.GetViewMode())
	}

	n.state.SetCurrentPage(target)
	if n.resetTransformOnChange {
		n.state.ResetTransform()
	}

	if n.onPageChange != nil {
		n.onPageChange(prev, n.state.GetCurrentPage(), direction)
	}
}
