package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// Overlay message display duration
	overlayMessageDuration = 2 * time.Second
)

// VisiblePage pairs a page index with its loaded image for this frame
type VisiblePage struct {
	Page  int
	Image *ebiten.Image
}

// RenderState provides read-only access to viewer state for the renderer
type RenderState interface {
	// Display modes
	IsDoublePageMode() bool
	IsFullscreen() bool

	// Rendering data
	GetVisiblePageImages() []VisiblePage
	GetPageImage(page int) *ebiten.Image
	GetBook() *Book
	GetCurrentPage() int

	// Viewer transform
	GetZoomLevel() float64
	GetPanOffsetX() float64
	GetPanOffsetY() float64
	IsPanning() bool

	// Annotation state
	GetPageCanvas(page int) *PageCanvas
	GetActiveTool() ToolKind
	CanUndoCurrent() bool
	CanRedoCurrent() bool
	GetLongPressIndicator() (x, y, progress float64, active bool)

	// UI state
	GetActiveOverlay() OverlayKind
	IsInPageInputMode() bool
	GetPageInputBuffer() string
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time
	GetPieMenu() *PieMenu
	GetToolbar() *Toolbar

	// Display data
	GetTotalPagesCount() int
	GetFontSize() float64
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()

	// Overlay toggles
	CloseOverlay()
	ToggleHelp()
	ToggleInfo()
	ToggleThumbnails()
	ToggleFullscreen()
	OpenPieMenu()

	// Page input
	EnterPageInputMode()
	ExitPageInputMode()
	ProcessPageInput()
	UpdatePageInputBuffer(buffer string)

	// Navigation
	NavigateNext()
	NavigatePrevious()
	JumpToPage(page int)
	ToggleViewMode()

	// Zoom
	ZoomIn()
	ZoomOut()
	ZoomReset()

	// Annotation
	SelectPen()
	SelectHighlighter()
	DeselectTool()
	Undo()
	Redo()
	ClearAnnotations()
	SaveAnnotations()
	ExportPDF()

	// Messages
	ShowOverlayMessage(message string)

	// Common data access
	GetCurrentIndex() int
	GetTotalPagesCount() int
}

// InputState provides read-only access to input-related state
type InputState interface {
	IsInPageInputMode() bool
	GetPageInputBuffer() string
}
