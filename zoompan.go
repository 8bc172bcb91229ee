package main

import (
	"math"
	"time"
)

const wheelZoomFactor = 1.15 // Zoom multiplier per wheel notch

// GestureKind discriminates which gesture a session is tracking
type GestureKind int

const (
	GestureNone GestureKind = iota // Pointer down, not yet classified
	GesturePan
	GesturePinch
)

// CursorStyle is the pointer affordance derived from the current state
type CursorStyle int

const (
	CursorDefault CursorStyle = iota
	CursorGrab
	CursorGrabbing
	CursorCrosshair
)

// TouchPoint is one active touch position in screen pixels
type TouchPoint struct {
	X float64
	Y float64
}

// GestureSession is the ephemeral tracking state for one continuous pointer
// or touch interaction. It is created on the first event of a sequence and
// discarded when the sequence ends; it never outlives a single input.
type GestureSession struct {
	kind      GestureKind
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	lastTime  time.Time
	velocityX float64
	velocityY float64
	pinchDist float64 // Inter-touch distance of the previous frame
}

// ZoomPanEngine turns pointer, touch and wheel events over the viewport into
// zoom and pan mutations on the viewer state. Zooms preserve the pointed-at
// content (zoom-to-point) and pans are clamped so the page can never leave
// the visible area.
type ZoomPanEngine struct {
	state *ViewerState
	tools ToolState

	session *GestureSession

	wheelSensitivity float64
	dragThreshold    float64
	dragSensitivity  float64
}

// NewZoomPanEngine creates a gesture engine over the given viewer state
func NewZoomPanEngine(state *ViewerState, tools ToolState, settings MouseSettings) *ZoomPanEngine {
	return &ZoomPanEngine{
		state:            state,
		tools:            tools,
		wheelSensitivity: settings.WheelSensitivity,
		dragThreshold:    float64(settings.DragThreshold),
		dragSensitivity:  settings.DragSensitivity,
	}
}

// annotationActive reports whether single-pointer drags belong to drawing
func (e *ZoomPanEngine) annotationActive() bool {
	return e.tools != nil && e.tools.IsAnnotationActive()
}

// CanPan reports whether a single-pointer drag may pan: only above natural
// size and only while annotation mode is off.
func (e *ZoomPanEngine) CanPan() bool {
	return e.state.GetZoomLevel() > minZoomLevel && !e.annotationActive()
}

// CursorStyle derives the pointer affordance from the current state. It is
// recomputed on every read rather than kept as stored state.
func (e *ZoomPanEngine) CursorStyle() CursorStyle {
	if e.annotationActive() {
		return CursorCrosshair
	}
	if e.state.IsPanning() {
		return CursorGrabbing
	}
	if e.state.GetZoomLevel() > minZoomLevel {
		return CursorGrab
	}
	return CursorDefault
}

// ZoomAtPoint multiplies the zoom level by factor while keeping the screen
// point (px, py) visually stationary. Zooming down to natural size snaps the
// pan to the origin unconditionally.
func (e *ZoomPanEngine) ZoomAtPoint(px, py, factor float64, vp Viewport) {
	if factor <= 0 {
		return
	}
	current := e.state.GetZoomLevel()
	newZoom := clampFloat(current*factor, minZoomLevel, maxZoomLevel)
	if newZoom <= minZoomLevel {
		e.state.SetTransform(minZoomLevel, 0, 0, vp)
		return
	}

	// Solve for the pan that keeps (px, py) over the same content point
	relX := px - vp.Left - vp.Width/2
	relY := py - vp.Top - vp.Height/2
	zoomRatio := newZoom / current
	newPanX := relX - (relX-e.state.GetPanOffsetX())*zoomRatio
	newPanY := relY - (relY-e.state.GetPanOffsetY())*zoomRatio

	e.state.SetTransform(newZoom, newPanX, newPanY, vp)
}

// ZoomStep zooms by factor at the viewport center, for keyboard zoom
func (e *ZoomPanEngine) ZoomStep(factor float64, vp Viewport) {
	cx, cy := vp.Center()
	e.ZoomAtPoint(cx, cy, factor, vp)
}

// ZoomReset returns to natural size and clears the pan
func (e *ZoomPanEngine) ZoomReset() {
	e.endSession()
	e.state.ResetTransform()
}

// HandleWheel zooms at the cursor position. The wheel always zooms; it never
// conflicts with drawing, so annotation mode is not consulted.
func (e *ZoomPanEngine) HandleWheel(deltaY, x, y float64, vp Viewport) {
	if deltaY == 0 {
		return
	}
	factor := math.Pow(wheelZoomFactor, deltaY*e.wheelSensitivity)
	e.ZoomAtPoint(x, y, factor, vp)
}

// HandleDoubleClick toggles between natural size and the fixed zoomed-in
// level, zooming toward the clicked point. Clicks on interactive controls
// are ignored.
func (e *ZoomPanEngine) HandleDoubleClick(x, y float64, onControl bool, vp Viewport) {
	if onControl {
		return
	}
	if e.state.GetZoomLevel() > minZoomLevel {
		e.state.SetTransform(minZoomLevel, 0, 0, vp)
		return
	}
	e.ZoomAtPoint(x, y, doubleClickZoom/e.state.GetZoomLevel(), vp)
}

// PointerDown opens a gesture session for a primary pointer press. Presses on
// interactive controls never start a session.
func (e *ZoomPanEngine) PointerDown(x, y float64, onControl bool, now time.Time) {
	if onControl {
		return
	}
	e.session = &GestureSession{
		kind:     GestureNone,
		startX:   x,
		startY:   y,
		lastX:    x,
		lastY:    y,
		lastTime: now,
	}
}

// PointerMove classifies an unclassified session as a pan once the pointer
// leaves the drag dead zone, then applies clamped pan deltas frame by frame.
// Panning is suppressed at natural size and while annotation mode is on.
func (e *ZoomPanEngine) PointerMove(x, y float64, now time.Time, vp Viewport) {
	s := e.session
	if s == nil || s.kind == GesturePinch {
		return
	}
	if !e.CanPan() {
		return
	}

	if s.kind == GestureNone {
		if math.Hypot(x-s.startX, y-s.startY) < e.dragThreshold {
			return
		}
		s.kind = GesturePan
		s.lastX = x
		s.lastY = y
		s.lastTime = now
		e.state.SetPanning(true)
		return
	}

	dx := (x - s.lastX) * e.dragSensitivity
	dy := (y - s.lastY) * e.dragSensitivity
	e.panBy(dx, dy, vp)

	if dt := now.Sub(s.lastTime).Seconds(); dt > 0 {
		s.velocityX = (x - s.lastX) / dt
		s.velocityY = (y - s.lastY) / dt
	}
	s.lastX = x
	s.lastY = y
	s.lastTime = now
}

// PointerUp ends the current pointer sequence
func (e *ZoomPanEngine) PointerUp() {
	e.endSession()
}

// HandlePinch tracks a two-finger gesture: the distance ratio drives
// zoom-to-point at the midpoint, and midpoint movement additionally pans.
// Pinching is always permitted, even in annotation mode.
func (e *ZoomPanEngine) HandlePinch(t0, t1 TouchPoint, now time.Time, vp Viewport) {
	dist := math.Hypot(t1.X-t0.X, t1.Y-t0.Y)
	midX := (t0.X + t1.X) / 2
	midY := (t0.Y + t1.Y) / 2

	s := e.session
	if s == nil || s.kind != GesturePinch {
		// A pan that grows a second finger becomes a pinch
		e.state.SetPanning(false)
		e.session = &GestureSession{
			kind:      GesturePinch,
			startX:    midX,
			startY:    midY,
			lastX:     midX,
			lastY:     midY,
			lastTime:  now,
			pinchDist: dist,
		}
		return
	}

	if s.pinchDist > 0 && dist > 0 {
		e.ZoomAtPoint(midX, midY, dist/s.pinchDist, vp)
	}
	e.panBy(midX-s.lastX, midY-s.lastY, vp)

	if dt := now.Sub(s.lastTime).Seconds(); dt > 0 {
		s.velocityX = (midX - s.lastX) / dt
		s.velocityY = (midY - s.lastY) / dt
	}
	s.pinchDist = dist
	s.lastX = midX
	s.lastY = midY
	s.lastTime = now
}

// HandleTouchCountChange keeps the session consistent with the number of
// active touches. More than two touches discards the session outright; the
// next frame may start a fresh one. Zero touches ends the sequence.
func (e *ZoomPanEngine) HandleTouchCountChange(count int) {
	switch {
	case count == 0:
		e.endSession()
	case count > 2:
		e.session = nil
		e.state.SetPanning(false)
	}
}

// panBy applies a clamped pan delta at the current zoom level
func (e *ZoomPanEngine) panBy(dx, dy float64, vp Viewport) {
	if dx == 0 && dy == 0 {
		return
	}
	e.state.SetTransform(
		e.state.GetZoomLevel(),
		e.state.GetPanOffsetX()+dx,
		e.state.GetPanOffsetY()+dy,
		vp,
	)
}

// endSession discards the gesture session and clears the panning flag
func (e *ZoomPanEngine) endSession() {
	e.session = nil
	e.state.SetPanning(false)
}
