package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerRouter turns raw mouse and touch input into viewer interactions.
// Events are offered to the interface layers first (pie menu, help overlay,
// toolbar, thumbnail strip); only presses on the page area reach the
// long-press detector, the annotation canvas and the zoom/pan engine.
//
// Button bindings (right click, back/forward, middle click) are not handled
// here; the keybinding-style mouse action path dispatches those.
type PointerRouter struct {
	render     RenderState
	actions    InputActions
	inputState InputState

	zoomPan     *ZoomPanEngine
	longPress   *LongPressDetector
	annotations *AnnotationEngine

	doubleClick *DoubleClickTracker
	settings    MouseSettings

	mouseDown   bool
	drawingPage int // Page receiving the in-progress stroke, -1 when none
	pieFromHold bool

	touchIDs       []ebiten.TouchID
	prevTouchCount int
	lastTouchX     float64
	lastTouchY     float64
}

func NewPointerRouter(render RenderState, actions InputActions, inputState InputState,
	zoomPan *ZoomPanEngine, longPress *LongPressDetector, annotations *AnnotationEngine,
	settings MouseSettings) *PointerRouter {
	return &PointerRouter{
		render:      render,
		actions:     actions,
		inputState:  inputState,
		zoomPan:     zoomPan,
		longPress:   longPress,
		annotations: annotations,
		doubleClick: &DoubleClickTracker{},
		settings:    settings,
		drawingPage: -1,
	}
}

// Update processes one frame of pointer input. Touch and mouse are mutually
// exclusive; as long as any touch is down the mouse is ignored.
func (pr *PointerRouter) Update(now time.Time, screenW, screenH float64) {
	pr.longPress.Update(now)

	vp := viewportForScreen(screenW, screenH)

	pr.touchIDs = ebiten.AppendTouchIDs(pr.touchIDs[:0])
	if len(pr.touchIDs) > 0 || pr.prevTouchCount > 0 {
		pr.updateTouch(now, vp, screenW, screenH)
		return
	}
	pr.updateMouse(now, vp, screenW, screenH)
}

func (pr *PointerRouter) updateMouse(now time.Time, vp Viewport, screenW, screenH float64) {
	mxi, myi := ebiten.CursorPosition()
	mx, my := float64(mxi), float64(myi)

	toolbar := pr.render.GetToolbar()
	if toolbar != nil {
		toolbar.UpdateHover(mx, my)
	}
	pieMenu := pr.render.GetPieMenu()
	pieOpen := pieMenu != nil && pieMenu.IsOpen()
	if pieOpen {
		pieMenu.UpdateHover(mx, my)
	}

	// Page input is modal; the keyboard owns it
	if pr.inputState.IsInPageInputMode() {
		return
	}

	onControl := toolbar != nil && toolbar.Contains(mx, my)

	// The wheel always zooms at the cursor, regardless of tool state
	if pr.settings.EnableMouse && !pieOpen && pr.render.GetActiveOverlay() != OverlayHelp {
		if _, wy := ebiten.Wheel(); wy != 0 {
			deltaY := wy
			if pr.settings.WheelInverted {
				deltaY = -deltaY
			}
			pr.zoomPan.HandleWheel(deltaY, mx, my, vp)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		pr.pressBegin(mx, my, now, vp, screenW, screenH, true)
	} else if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && pr.mouseDown {
		pr.pressMove(mx, my, now, vp)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		pr.pressEnd(mx, my)
	}

	pr.applyCursorShape(onControl)
}

func (pr *PointerRouter) updateTouch(now time.Time, vp Viewport, screenW, screenH float64) {
	count := len(pr.touchIDs)

	positions := make([]TouchPoint, 0, 2)
	for i, id := range pr.touchIDs {
		if i >= 2 {
			break
		}
		xi, yi := ebiten.TouchPosition(id)
		positions = append(positions, TouchPoint{X: float64(xi), Y: float64(yi)})
	}
	if count >= 1 {
		pr.lastTouchX = positions[0].X
		pr.lastTouchY = positions[0].Y
	}

	pieMenu := pr.render.GetPieMenu()
	pieOpen := pieMenu != nil && pieMenu.IsOpen()
	if pieOpen && count >= 1 {
		pieMenu.UpdateHover(positions[0].X, positions[0].Y)
	}

	switch {
	case pr.prevTouchCount == 0 && count == 1:
		pr.pressBegin(positions[0].X, positions[0].Y, now, vp, screenW, screenH, false)
	case pr.prevTouchCount == 1 && count >= 2:
		// A second finger joins: the press can no longer become a long-press
		// or a stroke, and the sequence turns into a pinch
		pr.longPress.SecondTouch()
		pr.AbortActiveStroke()
	case pr.prevTouchCount >= 1 && count == 0:
		pr.touchEnd()
	}

	if count == 1 && pr.prevTouchCount == 1 && !pieOpen {
		pr.longPress.PressMove(positions[0].X, positions[0].Y)
		pr.extendStrokeAt(positions[0].X, positions[0].Y, vp)
		pr.zoomPan.PointerMove(positions[0].X, positions[0].Y, now, vp)
	}
	if count == 2 {
		pr.zoomPan.HandlePinch(positions[0], positions[1], now, vp)
	}
	pr.zoomPan.HandleTouchCountChange(count)

	pr.prevTouchCount = count
}

// pressBegin routes a fresh primary press. Interface layers take priority;
// only a press on the page area arms the long-press detector, possibly
// starts a stroke, and opens a gesture session.
func (pr *PointerRouter) pressBegin(x, y float64, now time.Time, vp Viewport, screenW, screenH float64, isMouse bool) {
	pieMenu := pr.render.GetPieMenu()
	if pieMenu != nil && pieMenu.IsOpen() {
		// A menu opened by holding selects on release instead
		if !pr.pieFromHold {
			if action, ok := pieMenu.SelectAt(x, y); ok {
				globalActionExecutor.ExecuteAction(action, pr.actions, pr.inputState)
			}
			pieMenu.Close()
		}
		return
	}

	if pr.render.GetActiveOverlay() == OverlayHelp {
		pr.actions.CloseOverlay()
		return
	}

	toolbar := pr.render.GetToolbar()
	if toolbar != nil && toolbar.Contains(x, y) {
		if action, ok := toolbar.HitTest(x, y); ok {
			globalActionExecutor.ExecuteAction(action, pr.actions, pr.inputState)
		}
		return
	}

	if pr.render.GetActiveOverlay() == OverlayThumbnails {
		strip, cells := computeThumbStrip(pr.render.GetTotalPagesCount(), pr.render.GetCurrentPage(), screenW, screenH)
		if strip.Contains(x, y) {
			for _, cell := range cells {
				if cell.Bounds.Contains(x, y) {
					pr.actions.JumpToPage(cell.Page + 1)
					return
				}
			}
			return
		}
		pr.actions.CloseOverlay()
		return
	}

	if isMouse && !pr.settings.EnableMouse {
		return
	}

	window := time.Duration(pr.settings.DoubleClickTime) * time.Millisecond
	if pr.doubleClick.Click(ebiten.MouseButtonLeft, now, window) {
		pr.zoomPan.HandleDoubleClick(x, y, false, vp)
		return
	}

	pr.mouseDown = isMouse
	pr.longPress.PressStart(x, y, false, now)
	if !isMouse || pr.settings.EnableDragPan {
		pr.zoomPan.PointerDown(x, y, false, now)
	}
	pr.beginStrokeAt(x, y, vp)
}

func (pr *PointerRouter) pressMove(x, y float64, now time.Time, vp Viewport) {
	pieMenu := pr.render.GetPieMenu()
	if pieMenu != nil && pieMenu.IsOpen() {
		return
	}

	pr.longPress.PressMove(x, y)
	pr.extendStrokeAt(x, y, vp)
	pr.zoomPan.PointerMove(x, y, now, vp)
}

func (pr *PointerRouter) pressEnd(x, y float64) {
	pieMenu := pr.render.GetPieMenu()
	if pieMenu != nil && pieMenu.IsOpen() && pr.pieFromHold {
		if action, ok := pieMenu.SelectAt(x, y); ok {
			globalActionExecutor.ExecuteAction(action, pr.actions, pr.inputState)
		}
		pieMenu.Close()
		pr.pieFromHold = false
	}

	pr.longPress.PressEnd()
	pr.finishStroke()
	pr.zoomPan.PointerUp()
	pr.mouseDown = false
}

func (pr *PointerRouter) touchEnd() {
	pieMenu := pr.render.GetPieMenu()
	if pieMenu != nil && pieMenu.IsOpen() && pr.pieFromHold {
		if action, ok := pieMenu.SelectAt(pr.lastTouchX, pr.lastTouchY); ok {
			globalActionExecutor.ExecuteAction(action, pr.actions, pr.inputState)
		}
		pieMenu.Close()
		pr.pieFromHold = false
	}

	pr.longPress.PressEnd()
	pr.finishStroke()
	// HandleTouchCountChange(0) closes the gesture session
}

// PieOpenedByHold marks the open pie menu as hold-driven, so the press that
// opened it selects on release rather than on the next click
func (pr *PointerRouter) PieOpenedByHold() {
	pr.pieFromHold = true
}

// AbortActiveStroke discards the stroke in progress without committing it
func (pr *PointerRouter) AbortActiveStroke() {
	if pr.drawingPage < 0 {
		return
	}
	if canvas := pr.render.GetPageCanvas(pr.drawingPage); canvas != nil {
		canvas.AbortStroke()
	}
	pr.drawingPage = -1
}

func (pr *PointerRouter) beginStrokeAt(x, y float64, vp Viewport) {
	tool := pr.annotations.GetActiveTool()
	if tool == ToolNone {
		return
	}
	for _, l := range pr.currentLayouts(vp) {
		if !l.Contains(x, y) {
			continue
		}
		canvas := pr.render.GetPageCanvas(l.Page)
		if canvas == nil {
			break
		}
		colorHex, width := pr.annotations.StrokeStyle()
		px, py := l.ScreenToPage(x, y)
		canvas.BeginStroke(tool, colorHex, width, px, py)
		pr.drawingPage = l.Page
		break
	}
}

func (pr *PointerRouter) extendStrokeAt(x, y float64, vp Viewport) {
	if pr.drawingPage < 0 {
		return
	}
	canvas := pr.render.GetPageCanvas(pr.drawingPage)
	if canvas == nil {
		return
	}
	if l, ok := layoutForPage(pr.currentLayouts(vp), pr.drawingPage); ok {
		px, py := l.ScreenToPage(x, y)
		canvas.ExtendStroke(clampFloat(px, 0, l.W), clampFloat(py, 0, l.H))
	}
}

// finishStroke commits the stroke in progress and records the new canvas
// state in the undo history
func (pr *PointerRouter) finishStroke() {
	if pr.drawingPage < 0 {
		return
	}
	page := pr.drawingPage
	pr.drawingPage = -1

	canvas := pr.render.GetPageCanvas(page)
	if canvas == nil {
		return
	}
	if canvas.EndStroke() {
		pr.annotations.RecordStroke(page, canvas.Snapshot())
	}
}

func (pr *PointerRouter) currentLayouts(vp Viewport) []PageLayout {
	return computeLayouts(pr.render.GetVisiblePageImages(), vp,
		pr.render.GetZoomLevel(),
		pr.render.GetPanOffsetX(),
		pr.render.GetPanOffsetY())
}

func layoutForPage(layouts []PageLayout, page int) (PageLayout, bool) {
	for _, l := range layouts {
		if l.Page == page {
			return l, true
		}
	}
	return PageLayout{}, false
}

func (pr *PointerRouter) applyCursorShape(onControl bool) {
	if onControl {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
		return
	}
	switch pr.zoomPan.CursorStyle() {
	case CursorCrosshair:
		ebiten.SetCursorShape(ebiten.CursorShapeCrosshair)
	case CursorGrab, CursorGrabbing:
		ebiten.SetCursorShape(ebiten.CursorShapeMove)
	default:
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}
