package main

import (
	"bytes"
	"fmt"
	"image/color"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorLightGray = color.RGBA{192, 192, 192, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorCyan      = color.RGBA{100, 255, 255, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128} // Light semi-transparent
	bgColorMedium = color.RGBA{0, 0, 0, 160} // Medium semi-transparent
	bgColorDark   = color.RGBA{0, 0, 0, 200} // Dark semi-transparent
)

const (
	// Gap between the pages of a spread, in page image pixels
	pageGap = 8.0

	highlightAlpha      = 0.4
	longPressRingRadius = 22.0

	thumbStripHeight = 120.0
	thumbCellWidth   = 90.0
	thumbCellGap     = 8.0
)

// PageLayout describes where a page image lands on screen. X and Y are the
// screen position of the image's top-left corner, Scale maps image pixels
// to screen pixels, W and H are the unscaled image dimensions.
type PageLayout struct {
	Page  int
	X     float64
	Y     float64
	Scale float64
	W     float64
	H     float64
}

// ScreenToPage converts a screen position to page image coordinates
func (l PageLayout) ScreenToPage(x, y float64) (float64, float64) {
	return (x - l.X) / l.Scale, (y - l.Y) / l.Scale
}

// PageToScreen converts page image coordinates to a screen position
func (l PageLayout) PageToScreen(px, py float64) (float64, float64) {
	return l.X + px*l.Scale, l.Y + py*l.Scale
}

// Contains reports whether the screen position falls on the page image
func (l PageLayout) Contains(x, y float64) bool {
	px, py := l.ScreenToPage(x, y)
	return px >= 0 && px < l.W && py >= 0 && py < l.H
}

// viewportForScreen returns the page display area for a window size.
// The toolbar strip along the bottom edge is not part of it.
func viewportForScreen(w, h float64) Viewport {
	vh := h - toolbarHeight
	if vh < 0 {
		vh = 0
	}
	return Viewport{Left: 0, Top: 0, Width: w, Height: vh}
}

// computeLayouts places the visible pages side by side, fit to the viewport
// and then scaled and shifted by the zoom and pan. At zoom 1.0 the spread
// exactly fits the viewport, so the zoom reads as "times the fitted size".
// Pure function of its inputs; update and draw both call it and agree.
func computeLayouts(pages []VisiblePage, vp Viewport, zoom, panX, panY float64) []PageLayout {
	if len(pages) == 0 || vp.Width <= 0 || vp.Height <= 0 {
		return nil
	}

	contentW := 0.0
	contentH := 0.0
	for i, p := range pages {
		if p.Image == nil {
			return nil
		}
		contentW += float64(p.Image.Bounds().Dx())
		if i > 0 {
			contentW += pageGap
		}
		if ih := float64(p.Image.Bounds().Dy()); ih > contentH {
			contentH = ih
		}
	}
	if contentW <= 0 || contentH <= 0 {
		return nil
	}

	fitScale := math.Min(vp.Width/contentW, vp.Height/contentH)
	displayScale := fitScale * zoom

	cx, cy := vp.Center()
	originX := cx - contentW*displayScale/2 + panX
	originY := cy - contentH*displayScale/2 + panY

	layouts := make([]PageLayout, 0, len(pages))
	xInContent := 0.0
	for _, p := range pages {
		iw := float64(p.Image.Bounds().Dx())
		ih := float64(p.Image.Bounds().Dy())
		layouts = append(layouts, PageLayout{
			Page:  p.Page,
			X:     originX + xInContent*displayScale,
			Y:     originY + (contentH-ih)/2*displayScale,
			Scale: displayScale,
			W:     iw,
			H:     ih,
		})
		xInContent += iw + pageGap
	}
	return layouts
}

// ThumbCell is one entry of the thumbnail strip
type ThumbCell struct {
	Page   int
	Bounds Viewport
}

// computeThumbStrip lays out the thumbnail strip above the toolbar, showing
// as many pages as fit with the current page kept in view. Shared with the
// pointer router for click-to-jump hit testing.
func computeThumbStrip(pageCount, currentPage int, screenW, screenH float64) (Viewport, []ThumbCell) {
	strip := Viewport{
		Left:   0,
		Top:    screenH - toolbarHeight - thumbStripHeight,
		Width:  screenW,
		Height: thumbStripHeight,
	}
	if pageCount <= 0 {
		return strip, nil
	}

	visible := int((screenW - thumbCellGap) / (thumbCellWidth + thumbCellGap))
	if visible < 1 {
		visible = 1
	}
	if visible > pageCount {
		visible = pageCount
	}

	first := currentPage - visible/2
	if first > pageCount-visible {
		first = pageCount - visible
	}
	if first < 0 {
		first = 0
	}

	cells := make([]ThumbCell, 0, visible)
	x := (screenW - float64(visible)*(thumbCellWidth+thumbCellGap) + thumbCellGap) / 2
	for i := 0; i < visible; i++ {
		cells = append(cells, ThumbCell{
			Page: first + i,
			Bounds: Viewport{
				Left:   x,
				Top:    strip.Top + 16,
				Width:  thumbCellWidth,
				Height: thumbStripHeight - 34,
			},
		})
		x += thumbCellWidth + thumbCellGap
	}
	return strip, cells
}

// Renderer handles all drawing operations
type Renderer struct {
	renderState    RenderState
	helpFontSource *text.GoTextFaceSource
}

// NewRenderer creates a new Renderer
func NewRenderer(renderState RenderState) *Renderer {
	// Initialize font source with lightweight goregular
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Fatal(err)
	}

	return &Renderer{
		renderState:    renderState,
		helpFontSource: s,
	}
}

// getActionDescriptions returns descriptions for each action
func getActionDescriptions() map[string]string {
	return GetActionDescriptions()
}

// getActionsList returns a sorted list of all actions that have bindings
func (r *Renderer) getActionsList() []string {
	keybindings := r.renderState.GetKeybindings()
	mousebindings := r.renderState.GetMousebindings()

	// Get sorted action list for consistent display (union of keyboard and mouse actions)
	actionSet := make(map[string]bool)
	for action := range keybindings {
		actionSet[action] = true
	}
	for action := range mousebindings {
		actionSet[action] = true
	}

	actions := make([]string, 0, len(actionSet))
	for action := range actionSet {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// Draw renders the entire screen
func (r *Renderer) Draw(screen *ebiten.Image) {
	// Clear the screen since SetScreenClearedEveryFrame(false) is enabled
	screen.Clear()

	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	vp := viewportForScreen(w, h)

	pages := r.renderState.GetVisiblePageImages()
	layouts := computeLayouts(pages, vp,
		r.renderState.GetZoomLevel(),
		r.renderState.GetPanOffsetX(),
		r.renderState.GetPanOffsetY())

	for i, l := range layouts {
		r.drawPage(screen, pages[i].Image, l)
	}
	for _, l := range layouts {
		r.drawAnnotations(screen, l)
	}
	r.drawPageMarkers(screen, layouts)

	r.drawLongPressIndicator(screen)
	r.drawToolbar(screen)

	switch r.renderState.GetActiveOverlay() {
	case OverlayThumbnails:
		r.drawThumbnailStrip(screen)
	case OverlayInfo:
		r.drawInfoDisplay(screen)
	case OverlayHelp:
		r.drawHelpOverlay(screen)
	}

	if pm := r.renderState.GetPieMenu(); pm != nil && pm.IsOpen() {
		r.drawPieMenu(screen, pm)
	}

	// Draw page input overlay if active
	if r.renderState.IsInPageInputMode() {
		r.drawPageInputOverlay(screen)
	}

	// Draw overlay message if active
	if r.renderState.GetOverlayMessage() != "" && time.Since(r.renderState.GetOverlayMessageTime()) < overlayMessageDuration {
		r.drawOverlayMessage(screen)
	}
}

func (r *Renderer) drawPage(screen *ebiten.Image, img *ebiten.Image, l PageLayout) {
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(l.Scale, l.Scale)
	op.GeoM.Translate(l.X, l.Y)
	screen.DrawImage(img, op)
}

// drawAnnotations draws the committed strokes and the stroke in progress of
// one visible page. Highlighter strokes composite on an offscreen layer so
// overlapping joints keep a uniform translucency.
func (r *Renderer) drawAnnotations(screen *ebiten.Image, l PageLayout) {
	canvas := r.renderState.GetPageCanvas(l.Page)
	if canvas == nil {
		return
	}

	strokes := canvas.Strokes()
	current := canvas.CurrentStroke()
	if len(strokes) == 0 && current == nil {
		return
	}

	var highlightLayer *ebiten.Image
	ensureLayer := func() *ebiten.Image {
		if highlightLayer == nil {
			highlightLayer = ebiten.NewImage(screen.Bounds().Dx(), screen.Bounds().Dy())
		}
		return highlightLayer
	}

	drawOne := func(stroke Stroke) {
		clr, err := parseHexColor(stroke.Color)
		if err != nil {
			clr = colorGray
		}
		pts := make([]StrokePoint, len(stroke.Points))
		for i, p := range stroke.Points {
			x, y := l.PageToScreen(p.X, p.Y)
			pts[i] = StrokePoint{X: x, Y: y}
		}
		if stroke.Tool == ToolHighlight {
			DrawPolyline(ensureLayer(), pts, stroke.Width*l.Scale, clr)
		} else {
			DrawPolyline(screen, pts, stroke.Width*l.Scale, clr)
		}
	}

	for _, stroke := range strokes {
		drawOne(stroke)
	}
	if current != nil {
		drawOne(*current)
	}

	if highlightLayer != nil {
		op := &ebiten.DrawImageOptions{}
		op.ColorScale.ScaleAlpha(highlightAlpha)
		screen.DrawImage(highlightLayer, op)
		highlightLayer.Deallocate()
	}
}

func (r *Renderer) drawLongPressIndicator(screen *ebiten.Image) {
	x, y, progress, active := r.renderState.GetLongPressIndicator()
	if !active {
		return
	}
	DrawCircleOutline(screen, x, y, longPressRingRadius, 2, withAlpha(colorWhite, 120))
	if progress > 0 {
		DrawFilledCircle(screen, x, y, longPressRingRadius*progress, withAlpha(colorCyan, 150))
	}
}

// drawPageMarkers draws media marker badges on the top-left corner of each
// visible page that has any
func (r *Renderer) drawPageMarkers(screen *ebiten.Image, layouts []PageLayout) {
	book := r.renderState.GetBook()
	if book == nil {
		return
	}

	badgeFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   12,
	}
	for _, l := range layouts {
		bx := l.X + 6
		by := l.Y + 6
		for _, m := range book.MarkersFor(l.Page) {
			label := markerBadgeLabel(m)
			tw, th := text.Measure(label, badgeFont, 0)
			DrawFilledRect(screen, bx, by, tw+10, th+6, bgColorMedium)
			DrawText(screen, label, badgeFont, bx+5, by+3, markerBadgeColor(m.Kind))
			by += th + 10
		}
	}
}

func markerBadgeLabel(m PageMarker) string {
	if m.Label != "" {
		return m.Label
	}
	switch m.Kind {
	case "audio":
		return "Audio"
	case "video":
		return "Video"
	case "activity":
		return "Activity"
	}
	return m.Kind
}

func markerBadgeColor(kind string) color.RGBA {
	switch kind {
	case "audio":
		return colorCyan
	case "video":
		return colorOrange
	case "activity":
		return colorGreen
	}
	return colorWhite
}

func (r *Renderer) drawToolbar(screen *ebiten.Image) {
	tb := r.renderState.GetToolbar()
	if tb == nil {
		return
	}

	bar := tb.Bar()
	DrawFilledRect(screen, bar.Left, bar.Top, bar.Width, bar.Height, bgColorMedium)

	buttonFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   14,
	}
	for i, b := range tb.Buttons() {
		bg := bgColorLight
		labelColor := colorLightGray
		if i == tb.Hovered() {
			bg = bgColorDark
			labelColor = colorWhite
		}
		if r.toolbarButtonActive(b.Action) {
			labelColor = colorYellow
		}
		if !r.toolbarButtonEnabled(b.Action) {
			labelColor = withAlpha(colorGray, 110)
		}
		DrawFilledRect(screen, b.Bounds.Left, b.Bounds.Top, b.Bounds.Width, b.Bounds.Height, bg)

		label := b.Label
		if b.Action == "page_input" {
			label = r.buildPageNumberString()
		}
		tw, th := text.Measure(label, buttonFont, 0)
		cx, cy := b.Bounds.Center()
		DrawText(screen, label, buttonFont, cx-tw/2, cy-th/2, labelColor)
	}
}

func (r *Renderer) toolbarButtonActive(action string) bool {
	switch action {
	case "tool_pen":
		return r.renderState.GetActiveTool() == ToolPen
	case "tool_highlight":
		return r.renderState.GetActiveTool() == ToolHighlight
	case "toggle_view_mode":
		return r.renderState.IsDoublePageMode()
	case "thumbnails":
		return r.renderState.GetActiveOverlay() == OverlayThumbnails
	case "help":
		return r.renderState.GetActiveOverlay() == OverlayHelp
	}
	return false
}

func (r *Renderer) toolbarButtonEnabled(action string) bool {
	switch action {
	case "undo":
		return r.renderState.CanUndoCurrent()
	case "redo":
		return r.renderState.CanRedoCurrent()
	}
	return true
}

func (r *Renderer) drawThumbnailStrip(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	total := r.renderState.GetTotalPagesCount()
	current := r.renderState.GetCurrentPage()
	strip, cells := computeThumbStrip(total, current, w, h)
	if len(cells) == 0 {
		return
	}

	DrawFilledRect(screen, strip.Left, strip.Top, strip.Width, strip.Height, bgColorMedium)

	book := r.renderState.GetBook()
	smallFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   11,
	}
	for _, cell := range cells {
		if img := r.renderState.GetPageImage(cell.Page); img != nil {
			iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
			scale := math.Min(cell.Bounds.Width/iw, cell.Bounds.Height/ih)
			sw, sh := iw*scale, ih*scale
			op := &ebiten.DrawImageOptions{}
			op.Filter = ebiten.FilterLinear
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(
				cell.Bounds.Left+(cell.Bounds.Width-sw)/2,
				cell.Bounds.Top+(cell.Bounds.Height-sh)/2)
			screen.DrawImage(img, op)
		}

		if cell.Page == current {
			DrawRectOutline(screen,
				cell.Bounds.Left-2, cell.Bounds.Top-2,
				cell.Bounds.Width+4, cell.Bounds.Height+4,
				2, colorYellow)
		}

		// Module boundary accent and name
		if book != nil && book.ModuleStartsAt(cell.Page) {
			DrawFilledRect(screen, cell.Bounds.Left-thumbCellGap/2-1, strip.Top+4, 2, strip.Height-8, colorCyan)
			if m, ok := book.ModuleFor(cell.Page); ok {
				DrawText(screen, m.Name, smallFont, cell.Bounds.Left, strip.Top+2, colorCyan)
			}
		}

		label := fmt.Sprintf("%d", cell.Page+1)
		tw, _ := text.Measure(label, smallFont, 0)
		DrawText(screen, label, smallFont, cell.Bounds.Left+(cell.Bounds.Width-tw)/2, cell.Bounds.Top+cell.Bounds.Height+2, colorLightGray)
	}
}

func (r *Renderer) drawPieMenu(screen *ebiten.Image, pm *PieMenu) {
	cx, cy := pm.Center()

	DrawFilledCircle(screen, cx, cy, pieMenuOuterRadius, bgColorMedium)
	DrawCircleOutline(screen, cx, cy, pieMenuOuterRadius, 2, withAlpha(colorWhite, 180))
	DrawCircleOutline(screen, cx, cy, pieMenuInnerRadius, 1, withAlpha(colorWhite, 100))

	itemFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   13,
	}
	for i, item := range pm.Items() {
		angle := pm.ItemAngle(i)
		lx := cx + math.Cos(angle)*pieMenuLabelRadius
		ly := cy + math.Sin(angle)*pieMenuLabelRadius

		labelColor := colorLightGray
		if i == pm.Hovered() {
			labelColor = colorYellow
			DrawFilledCircle(screen, lx, ly, 24, bgColorDark)
		}

		tw, th := text.Measure(item.Label, itemFont, 0)
		DrawText(screen, item.Label, itemFont, lx-tw/2, ly-th/2, labelColor)
	}
}

func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	// Calculate available space (accounting for padding)
	padding := 40.0
	availableWidth := w - padding*2
	availableHeight := h - padding*2

	// Calculate optimal font size
	optimalFontSize, canFit := r.calculateOptimalFontSize(availableWidth, availableHeight)

	// If cannot fit even with minimum font size, show Fermat's joke
	if !canFit {
		r.drawMarginTooSmallMessage(screen)
		return
	}

	// Get data needed for rendering
	actions := r.getActionsList()
	keybindings := r.renderState.GetKeybindings()
	mousebindings := r.renderState.GetMousebindings()
	configStatus := r.renderState.GetConfigStatus()

	// Semi-transparent black background (lighter for more image transparency)
	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)

	// Help text area with semi-transparent black background
	DrawFilledRect(screen, padding, padding, w-padding*2, h-padding*2, bgColorMedium)

	// Create font with dynamically calculated size
	helpFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   optimalFontSize,
	}

	// Draw title
	titleY := padding + 30
	DrawText(screen, "HELP:", helpFont, padding+20, titleY, colorWhite)

	currentY := titleY + optimalFontSize*2 // Start below title
	lineHeight := optimalFontSize * 1.5

	// Get action descriptions
	actionDescriptions := getActionDescriptions()

	// Draw input bindings title
	DrawText(screen, "Controls (Keyboard | Mouse):", helpFont, padding+20, currentY, colorWhite)
	currentY += lineHeight * 1.5

	// Calculate column widths using text measurement
	maxActionWidth := 0.0
	maxInputWidth := 0.0

	// First pass: measure text to determine column widths
	for _, action := range actions {
		keys := keybindings[action]
		mouseActions := mousebindings[action]

		// Skip if no bindings at all
		if len(keys) == 0 && len(mouseActions) == 0 {
			continue
		}

		// Measure action name width
		actionWidth, _ := text.Measure(action, helpFont, 0)
		if actionWidth > maxActionWidth {
			maxActionWidth = actionWidth
		}

		// Build combined input string (keyboard | mouse)
		var inputParts []string
		if len(keys) > 0 {
			inputParts = append(inputParts, strings.Join(keys, ", "))
		}
		if len(mouseActions) > 0 {
			inputParts = append(inputParts, strings.Join(mouseActions, ", "))
		}

		combinedInput := strings.Join(inputParts, " | ")
		inputWidth, _ := text.Measure(combinedInput, helpFont, 0)
		if inputWidth > maxInputWidth {
			maxInputWidth = inputWidth
		}
	}

	// Calculate column positions with proper spacing
	actionColumnX := padding + 40
	arrowColumnX := actionColumnX + maxActionWidth + 20 // 20px spacing
	inputColumnX := arrowColumnX + 30                   // Arrow width + spacing
	descColumnX := inputColumnX + maxInputWidth + 20    // 20px spacing after input

	// Draw each action and its input bindings on single line
	for _, action := range actions {
		keys := keybindings[action]
		mouseActions := mousebindings[action]

		// Skip if no bindings at all
		if len(keys) == 0 && len(mouseActions) == 0 {
			continue
		}

		// Get description
		description := actionDescriptions[action]
		if description == "" {
			description = "No description available"
		}

		// Draw action name (left-aligned)
		DrawText(screen, action, helpFont, actionColumnX, currentY, colorLightBlue)

		// Draw arrow
		DrawText(screen, "→", helpFont, arrowColumnX, currentY, colorWhite)

		// Draw combined input bindings with color coding
		currentInputX := inputColumnX

		// Draw keyboard bindings in yellow
		if len(keys) > 0 {
			keysList := strings.Join(keys, ", ")
			DrawText(screen, keysList, helpFont, currentInputX, currentY, colorYellow)

			keysWidth, _ := text.Measure(keysList, helpFont, 0)
			currentInputX += keysWidth
		}

		// Draw separator if both keyboard and mouse bindings exist
		if len(keys) > 0 && len(mouseActions) > 0 {
			DrawText(screen, " | ", helpFont, currentInputX, currentY, colorWhite)

			sepWidth, _ := text.Measure(" | ", helpFont, 0)
			currentInputX += sepWidth
		}

		// Draw mouse bindings in cyan
		if len(mouseActions) > 0 {
			mouseList := strings.Join(mouseActions, ", ")
			DrawText(screen, mouseList, helpFont, currentInputX, currentY, colorCyan)
		}

		// Draw description on same line
		DrawText(screen, description, helpFont, descColumnX, currentY, colorGray)

		currentY += lineHeight
	}

	// Add some spacing before config status
	currentY += lineHeight

	// Draw config status section

	// Draw section title
	DrawText(screen, "System:", helpFont, padding+20, currentY, colorWhite)
	currentY += lineHeight

	// Add config status
	statusText := fmt.Sprintf("Config Status: %s", configStatus.Status)

	statusColor := colorGreen
	if configStatus.Status == "Warning" || configStatus.Status == "Error" {
		statusColor = colorOrange
	}
	DrawText(screen, statusText, helpFont, padding+40, currentY, statusColor)
	currentY += lineHeight

	// Add warnings if any
	if len(configStatus.Warnings) > 0 {
		for i, warning := range configStatus.Warnings {
			if i >= 2 { // Limit to first 2 warnings to avoid clutter
				break
			}
			shortWarning := warning
			if len(shortWarning) > 50 {
				shortWarning = shortWarning[:47] + "..."
			}
			DrawText(screen, "• "+shortWarning, helpFont, padding+40, currentY, colorLightRed)
			currentY += lineHeight
		}
	}

}

// calculateRequiredDimensions calculates the required width and height for help content at a given font size
func (r *Renderer) calculateRequiredDimensions(fontSize float64) (float64, float64) {
	actions := r.getActionsList()
	keybindings := r.renderState.GetKeybindings()
	mousebindings := r.renderState.GetMousebindings()
	configStatus := r.renderState.GetConfigStatus()
	// Create temporary font for measurements
	tempFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   fontSize,
	}

	padding := 40.0
	lineHeight := fontSize * 1.5

	// Calculate height
	height := padding * 2      // Top and bottom padding
	height += fontSize * 2     // Title
	height += lineHeight * 1.5 // Controls title spacing

	// Count lines for actions
	actionLines := 0
	for _, action := range actions {
		keys := keybindings[action]
		mouseActions := mousebindings[action]
		// Skip if no bindings at all
		if len(keys) == 0 && len(mouseActions) == 0 {
			continue
		}
		actionLines++
	}
	height += float64(actionLines) * lineHeight

	// System section
	height += lineHeight // Spacing before system section
	height += lineHeight // "System:" title
	height += lineHeight // Config status line

	// Add warnings if any (limit to 2 like the overlay does)
	warningLines := len(configStatus.Warnings)
	if warningLines > 2 {
		warningLines = 2
	}
	height += float64(warningLines) * lineHeight

	// Calculate width
	maxWidth := 0.0

	// Check title width
	titleWidth, _ := text.Measure("HELP:", tempFont, 0)
	if titleWidth+padding*2+40 > maxWidth { // 40 for left margin
		maxWidth = titleWidth + padding*2 + 40
	}

	// Check controls title width
	controlsTitleWidth, _ := text.Measure("Controls (Keyboard | Mouse):", tempFont, 0)
	if controlsTitleWidth+padding*2+40 > maxWidth {
		maxWidth = controlsTitleWidth + padding*2 + 40
	}

	// Calculate column widths for actions
	maxActionWidth := 0.0
	maxInputWidth := 0.0
	maxDescWidth := 0.0

	actionDescriptions := getActionDescriptions()

	for _, action := range actions {
		keys := keybindings[action]
		mouseActions := mousebindings[action]

		// Skip if no bindings at all
		if len(keys) == 0 && len(mouseActions) == 0 {
			continue
		}

		// Measure action name width
		actionWidth, _ := text.Measure(action, tempFont, 0)
		if actionWidth > maxActionWidth {
			maxActionWidth = actionWidth
		}

		// Build combined input string (keyboard | mouse)
		var inputParts []string
		if len(keys) > 0 {
			inputParts = append(inputParts, strings.Join(keys, ", "))
		}
		if len(mouseActions) > 0 {
			inputParts = append(inputParts, strings.Join(mouseActions, ", "))
		}

		combinedInput := strings.Join(inputParts, " | ")
		inputWidth, _ := text.Measure(combinedInput, tempFont, 0)
		if inputWidth > maxInputWidth {
			maxInputWidth = inputWidth
		}

		// Measure description width
		description := actionDescriptions[action]
		if description == "" {
			description = "No description available"
		}
		descWidth, _ := text.Measure(description, tempFont, 0)
		if descWidth > maxDescWidth {
			maxDescWidth = descWidth
		}
	}

	// Calculate total width: left margin + action + spacing + arrow + spacing + input + spacing + description + right margin
	actionLineWidth := 40 + maxActionWidth + 20 + 30 + 20 + maxInputWidth + 20 + maxDescWidth + padding
	if actionLineWidth > maxWidth {
		maxWidth = actionLineWidth
	}

	// Check system section width
	systemTitleWidth, _ := text.Measure("System:", tempFont, 0)
	if systemTitleWidth+padding*2+40 > maxWidth {
		maxWidth = systemTitleWidth + padding*2 + 40
	}

	statusText := fmt.Sprintf("Config Status: %s", configStatus.Status)
	statusWidth, _ := text.Measure(statusText, tempFont, 0)
	if statusWidth+padding*2+80 > maxWidth { // 80 for indentation
		maxWidth = statusWidth + padding*2 + 80
	}

	// Check warning widths
	for i, warning := range configStatus.Warnings {
		if i >= 2 {
			break
		}
		shortWarning := warning
		if len(shortWarning) > 50 {
			shortWarning = shortWarning[:47] + "..."
		}
		warningWidth, _ := text.Measure("• "+shortWarning, tempFont, 0)
		if warningWidth+padding*2+80 > maxWidth {
			maxWidth = warningWidth + padding*2 + 80
		}
	}

	return maxWidth, height
}

// calculateOptimalFontSize finds the largest font size that fits within the given dimensions
func (r *Renderer) calculateOptimalFontSize(availableWidth, availableHeight float64) (float64, bool) {
	maxFontSize := r.renderState.GetFontSize()
	minFontSize := 12.0

	// Quick check: can we fit with minimum font size?
	minWidth, minHeight := r.calculateRequiredDimensions(minFontSize)
	if minWidth > availableWidth || minHeight > availableHeight {
		return minFontSize, false // Cannot fit even with minimum size
	}

	// Quick check: can we fit with maximum font size?
	maxWidth, maxHeight := r.calculateRequiredDimensions(maxFontSize)
	if maxWidth <= availableWidth && maxHeight <= availableHeight {
		return maxFontSize, true // Fits perfectly with maximum size
	}

	// Binary search for optimal font size
	low := minFontSize
	high := maxFontSize
	bestSize := minFontSize
	epsilon := 0.5 // Search precision

	for high-low > epsilon {
		mid := (low + high) / 2.0

		reqWidth, reqHeight := r.calculateRequiredDimensions(mid)

		if reqWidth <= availableWidth && reqHeight <= availableHeight {
			// This size fits, try larger
			bestSize = mid
			low = mid
		} else {
			// This size doesn't fit, try smaller
			high = mid
		}
	}

	return bestSize, true
}

// drawMarginTooSmallMessage displays Fermat's margin joke when help cannot fit
func (r *Renderer) drawMarginTooSmallMessage(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	// Semi-transparent black background
	DrawFilledRect(screen, 0, 0, float64(w), float64(h), bgColorLight)

	// Create font for the joke (16px should be readable)
	jokeFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   16.0,
	}

	// The famous quote from Fermat's Last Theorem margin note
	message := "Hanc marginis exiguitas non caperet."
	subtitle := "(This margin is too small to contain it.)"

	// Measure text for centering
	messageWidth, messageHeight := text.Measure(message, jokeFont, 0)
	subtitleWidth, _ := text.Measure(subtitle, jokeFont, 0)

	// Calculate center positions
	messageX := float64(w)/2 - messageWidth/2
	messageY := float64(h)/2 - messageHeight/2

	subtitleX := float64(w)/2 - subtitleWidth/2
	subtitleY := messageY + messageHeight + 10 // 10px spacing

	// Draw main message
	DrawText(screen, message, jokeFont, messageX, messageY, colorWhite)

	// Draw subtitle in gray
	DrawText(screen, subtitle, jokeFont, subtitleX, subtitleY, colorGray)
}

func (r *Renderer) drawPageInputOverlay(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	// Create font for page input
	inputFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   r.renderState.GetFontSize(),
	}

	// Create smaller font for range display
	rangeFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   r.renderState.GetFontSize() * 0.8,
	}

	// Get total pages for range display
	totalPages := r.renderState.GetTotalPagesCount()

	// Create display texts
	inputText := fmt.Sprintf("Go to page: %s_", r.renderState.GetPageInputBuffer())
	rangeText := fmt.Sprintf("(1-%d)", totalPages)

	// Measure text dimensions
	inputWidth, inputHeight := text.Measure(inputText, inputFont, 0)
	rangeWidth, rangeHeight := text.Measure(rangeText, rangeFont, 0)

	// Calculate box dimensions (accommodate both lines)
	maxWidth := math.Max(inputWidth, rangeWidth)
	totalHeight := inputHeight + rangeHeight + 10 // 10px gap between lines

	padding := 20
	boxWidth := maxWidth + float64(padding*2)
	boxHeight := totalHeight + float64(padding*2)
	boxX := (float64(w) - boxWidth) / 2
	boxY := (float64(h) - boxHeight) / 2

	// Semi-transparent black background
	DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, bgColorDark)

	// Draw input text (centered)
	inputTextX := boxX + (boxWidth-inputWidth)/2
	DrawText(screen, inputText, inputFont, inputTextX, boxY+float64(padding), colorWhite)

	// Draw range text (centered, below input text)
	rangeTextX := boxX + (boxWidth-rangeWidth)/2
	DrawText(screen, rangeText, rangeFont, rangeTextX, boxY+float64(padding)+inputHeight+10, colorLightGray)
}

type infoLine struct {
	text string
	clr  color.RGBA
}

func (r *Renderer) drawInfoDisplay(screen *ebiten.Image) {
	// Create font for info display (same size as help text)
	infoFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   r.renderState.GetFontSize(),
	}

	var lines []infoLine
	book := r.renderState.GetBook()
	if book != nil && book.Title != "" {
		lines = append(lines, infoLine{book.Title, colorWhite})
	}
	if book != nil {
		if m, ok := book.ModuleFor(r.renderState.GetCurrentPage()); ok {
			lines = append(lines, infoLine{m.Name, colorCyan})
		}
	}
	lines = append(lines, infoLine{r.buildPageNumberString(), colorLightGray})
	if zoom := r.renderState.GetZoomLevel(); zoom > minZoomLevel {
		lines = append(lines, infoLine{fmt.Sprintf("Zoom %d%%", int(zoom*100+0.5)), colorYellow})
	}

	// Measure the block
	maxWidth := 0.0
	totalHeight := 0.0
	heights := make([]float64, len(lines))
	for i, line := range lines {
		tw, th := text.Measure(line.text, infoFont, 0)
		if tw > maxWidth {
			maxWidth = tw
		}
		heights[i] = th
		totalHeight += th
	}
	totalHeight += float64(len(lines)-1) * 4

	// Position at bottom right corner, above the toolbar
	padding := 10.0
	textX := float64(screen.Bounds().Dx()) - maxWidth - padding
	textY := float64(screen.Bounds().Dy()) - toolbarHeight - totalHeight - padding

	// Semi-transparent background
	bgPadding := 5.0
	DrawFilledRect(screen, textX-bgPadding, textY-bgPadding, maxWidth+bgPadding*2, totalHeight+bgPadding*2, bgColorLight)

	y := textY
	for i, line := range lines {
		DrawText(screen, line.text, infoFont, textX, y, line.clr)
		y += heights[i] + 4
	}
}

func (r *Renderer) drawOverlayMessage(screen *ebiten.Image) {
	// Create font for overlay message
	messageFont := &text.GoTextFace{
		Source: r.helpFontSource,
		Size:   r.renderState.GetFontSize(),
	}

	// Measure text dimensions
	textWidth, textHeight := text.Measure(r.renderState.GetOverlayMessage(), messageFont, 0)

	// Calculate position (center of screen)
	padding := 20.0
	boxWidth := textWidth + padding*2
	boxHeight := textHeight + padding*2
	boxX := (float64(screen.Bounds().Dx()) - boxWidth) / 2
	boxY := (float64(screen.Bounds().Dy()) - boxHeight) / 2

	// Semi-transparent black background
	DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, bgColorDark)

	// Draw text
	DrawText(screen, r.renderState.GetOverlayMessage(), messageFont, boxX+padding, boxY+padding, colorWhite)
}

func (r *Renderer) buildPageNumberString() string {
	total := r.renderState.GetTotalPagesCount()
	pages := r.renderState.GetVisiblePageImages()
	if total == 0 || len(pages) == 0 {
		return "0 / 0"
	}

	first := pages[0].Page + 1
	last := pages[len(pages)-1].Page + 1
	if last > first {
		// Two pages displayed = spread
		return fmt.Sprintf("%d-%d / %d", first, last, total)
	}
	return fmt.Sprintf("%d / %d", first, total)
}
