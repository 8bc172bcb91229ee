package main

import "math"

// Zoom and pan constants
const (
	minZoomLevel    = 1.0 // Natural size, cannot zoom out below this
	maxZoomLevel    = 4.0
	doubleClickZoom = 1.5   // Zoom level toggled by double-click/double-tap
	panMargin       = 100.0 // Pixels of scaled content that must stay visible
	zoomKeyStep     = 1.25  // Multiplier for keyboard zoom in/out
)

// ViewMode represents the page layout mode
type ViewMode int

const (
	ViewModeSingle ViewMode = iota
	ViewModeDouble
)

// OverlayKind identifies the overlay currently covering the viewer, if any
type OverlayKind int

const (
	OverlayNone OverlayKind = iota
	OverlayHelp
	OverlayInfo
	OverlayThumbnails
	OverlayPieMenu
)

// Viewport is the bounding rectangle of the page display area in screen pixels
type Viewport struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Center returns the center point of the viewport
func (vp Viewport) Center() (float64, float64) {
	return vp.Left + vp.Width/2, vp.Top + vp.Height/2
}

// Contains reports whether the point lies inside the viewport
func (vp Viewport) Contains(x, y float64) bool {
	return x >= vp.Left && x < vp.Left+vp.Width && y >= vp.Top && y < vp.Top+vp.Height
}

// ViewerState holds the mutable display state of an open book.
// All transform writes go through SetTransform so the clamping
// invariants hold after every mutation, not just eventually:
//   - minZoomLevel <= zoomLevel <= maxZoomLevel
//   - zoomLevel == minZoomLevel implies pan == (0, 0)
//   - |panX| <= maxPanX(zoom, viewport), same for Y
type ViewerState struct {
	pageCount   int
	currentPage int
	viewMode    ViewMode
	zoomLevel   float64
	panX        float64
	panY        float64
	panning     bool
	overlay     OverlayKind
}

// NewViewerState creates viewer state for a book with the given page count
func NewViewerState(pageCount int) *ViewerState {
	if pageCount < 0 {
		pageCount = 0
	}
	return &ViewerState{
		pageCount: pageCount,
		zoomLevel: minZoomLevel,
	}
}

func (s *ViewerState) GetPageCount() int {
	return s.pageCount
}

func (s *ViewerState) GetCurrentPage() int {
	return s.currentPage
}

// SetCurrentPage clamps out-of-range requests instead of rejecting them,
// so off-by-one callers cannot break navigation
func (s *ViewerState) SetCurrentPage(idx int) {
	if s.pageCount == 0 {
		s.currentPage = 0
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > s.pageCount-1 {
		idx = s.pageCount - 1
	}
	s.currentPage = idx
}

func (s *ViewerState) GetViewMode() ViewMode {
	return s.viewMode
}

// SetViewMode switches the layout without touching currentPage; navigation
// and boundary checks re-normalize the index on their next use
func (s *ViewerState) SetViewMode(mode ViewMode) {
	s.viewMode = mode
}

func (s *ViewerState) GetZoomLevel() float64 {
	return s.zoomLevel
}

func (s *ViewerState) GetPanOffsetX() float64 {
	return s.panX
}

func (s *ViewerState) GetPanOffsetY() float64 {
	return s.panY
}

func (s *ViewerState) IsPanning() bool {
	return s.panning
}

func (s *ViewerState) SetPanning(panning bool) {
	s.panning = panning
}

func (s *ViewerState) GetActiveOverlay() OverlayKind {
	return s.overlay
}

func (s *ViewerState) SetActiveOverlay(overlay OverlayKind) {
	s.overlay = overlay
}

// SetTransform commits a zoom level and pan offset atomically. The zoom is
// clamped to its bounds first; at natural size the pan always snaps to the
// origin, otherwise the pan is clamped against the viewport.
func (s *ViewerState) SetTransform(zoom, panX, panY float64, vp Viewport) {
	zoom = clampFloat(zoom, minZoomLevel, maxZoomLevel)
	if zoom <= minZoomLevel {
		s.zoomLevel = minZoomLevel
		s.panX = 0
		s.panY = 0
		return
	}
	maxPanX, maxPanY := maxPanExtent(zoom, vp)
	s.zoomLevel = zoom
	s.panX = clampFloat(panX, -maxPanX, maxPanX)
	s.panY = clampFloat(panY, -maxPanY, maxPanY)
}

// ResetTransform returns to natural size with no pan
func (s *ViewerState) ResetTransform() {
	s.zoomLevel = minZoomLevel
	s.panX = 0
	s.panY = 0
}

// maxPanExtent returns the largest allowed |pan| per axis for a zoom level.
// At least panMargin pixels of the scaled content stay visible, so the page
// can never be panned fully off-screen.
func maxPanExtent(zoom float64, vp Viewport) (float64, float64) {
	maxX := (vp.Width*zoom-vp.Width)/2 + panMargin
	maxY := (vp.Height*zoom-vp.Height)/2 + panMargin
	return maxX, maxY
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
