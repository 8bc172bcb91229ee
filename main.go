package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// debugMode enables verbose logging (cache traffic, gesture routing, preload
// activity). Set by the -debug flag.
var debugMode bool

func debugLog(format string, v ...interface{}) {
	if debugMode {
		log.Printf(format, v...)
	}
}

type exportResult struct {
	path string
	err  error
}

// Game is the viewer shell. It owns every subsystem, implements the
// RenderState, InputActions and InputState seams they talk through, and
// drives them from ebiten's update loop.
type Game struct {
	config       Config
	configResult ConfigLoadResult

	book        *Book
	state       *ViewerState
	nav         *NavigationController
	annotations *AnnotationEngine
	zoomPan     *ZoomPanEngine
	longPress   *LongPressDetector
	router      *PointerRouter
	pages       PageManager
	store       *AnnotationStore
	exporter    *PDFExporter

	input    *InputHandler
	renderer *Renderer
	pieMenu  *PieMenu
	toolbar  *Toolbar

	// Drawing surfaces, created the first time a page comes on display and
	// kept for the lifetime of the book. Strokes are vector data, so these
	// stay small.
	canvases map[int]*PageCanvas

	fullscreen bool
	savedWinW  int
	savedWinH  int
	screenW    int
	screenH    int

	inPageInputMode bool
	pageInputBuffer string

	overlayMessage     string
	overlayMessageTime time.Time

	// exportDone carries the result of a background PDF export back onto
	// the update goroutine
	exportDone chan exportResult
}

func newGame(book *Book, result ConfigLoadResult) *Game {
	config := result.Config

	g := &Game{
		config:       config,
		configResult: result,
		book:         book,
		canvases:     make(map[int]*PageCanvas),
		exportDone:   make(chan exportResult, 1),
	}

	g.pages = NewPageManagerWithPreload(config.CacheSize, config.PreloadCount, config.PreloadEnabled)
	g.pages.SetRefs(book.Refs)

	g.state = NewViewerState(len(book.Refs))
	if config.DoublePage {
		g.state.SetViewMode(ViewModeDouble)
	}

	g.store = NewAnnotationStore(config.AnnotationDir)
	g.annotations = NewAnnotationEngine(book.ID, config, g.store)
	g.annotations.Seed(g.store.LoadAll(book.ID))

	g.nav = NewNavigationController(g.state, g.annotations, config.ResetZoomOnPageChange)
	g.nav.SetPageChangeHandler(g.handlePageChanged)

	g.zoomPan = NewZoomPanEngine(g.state, g.annotations, config.Mouse)
	g.longPress = NewLongPressDetector(
		time.Duration(config.LongPressTime)*time.Millisecond,
		config.LongPressMove,
		g.handleLongPress,
		g.handleLongPressCancel,
	)

	g.pieMenu = NewPieMenu()
	g.toolbar = NewToolbar()
	g.exporter = NewPDFExporter(g.pages, book)
	g.router = NewPointerRouter(g, g, g, g.zoomPan, g.longPress, g.annotations, config.Mouse)

	keybindingManager := NewKeybindingManager(config.Keybindings)
	mousebindingManager := NewMousebindingManager(config.Mousebindings, config.Mouse)
	g.input = NewInputHandler(g, g, keybindingManager, mousebindingManager)
	g.renderer = NewRenderer(g)

	return g
}

// handlePageChanged runs after every completed page move. The outgoing
// spread's annotations were already queued for saving by the controller.
func (g *Game) handlePageChanged(prev, next int, direction NavigationDirection) {
	g.router.AbortActiveStroke()
	g.ensureVisibleCanvases()
	g.pages.StartPreload(next, direction)
	debugLog("Page %d -> %d", prev+1, next+1)
}

// handleLongPress opens the pie menu at the press position. The menu then
// selects on release, so hold-drag-release works as one gesture.
func (g *Game) handleLongPress(x, y float64) {
	debugLog("Long press fired at (%.0f, %.0f)", x, y)
	g.router.AbortActiveStroke()
	g.pieMenu.OpenAt(x, y)
	g.state.SetActiveOverlay(OverlayPieMenu)
	g.router.PieOpenedByHold()
}

func (g *Game) handleLongPressCancel() {
	debugLog("Long press canceled")
}

// ensureVisibleCanvases makes sure every page on display has a bound
// drawing surface
func (g *Game) ensureVisibleCanvases() {
	for _, page := range g.nav.VisiblePages() {
		g.GetPageCanvas(page)
	}
}

func (g *Game) viewport() Viewport {
	return viewportForScreen(float64(g.screenW), float64(g.screenH))
}

func (g *Game) saveCurrentWindowSize() {
	if g.fullscreen {
		// Save the size from before fullscreen
		if g.savedWinW > 0 && g.savedWinH > 0 {
			g.config.WindowWidth = g.savedWinW
			g.config.WindowHeight = g.savedWinH
		}
	} else {
		w, h := ebiten.WindowSize()
		g.config.WindowWidth = w
		g.config.WindowHeight = h
	}
	g.config.Fullscreen = g.fullscreen
	g.config.DoublePage = g.state.GetViewMode() == ViewModeDouble
	saveConfig(g.config)
}

func (g *Game) Update() error {
	if g.state.GetPageCount() == 0 {
		return nil
	}

	g.input.HandleInput()
	g.router.Update(time.Now(), float64(g.screenW), float64(g.screenH))

	select {
	case res := <-g.exportDone:
		if res.err != nil {
			g.ShowOverlayMessage("PDF export failed")
		} else {
			g.ShowOverlayMessage("Exported " + filepath.Base(res.path))
		}
	default:
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.screenW || outsideHeight != g.screenH {
		g.screenW = outsideWidth
		g.screenH = outsideHeight
		g.toolbar.Layout(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// RenderState implementation

func (g *Game) IsDoublePageMode() bool {
	return g.state.GetViewMode() == ViewModeDouble
}

func (g *Game) IsFullscreen() bool {
	return g.fullscreen
}

func (g *Game) GetVisiblePageImages() []VisiblePage {
	indices := g.nav.VisiblePages()
	pages := make([]VisiblePage, 0, len(indices))
	for _, idx := range indices {
		img := g.pages.GetPage(idx)
		if img == nil {
			continue
		}
		pages = append(pages, VisiblePage{Page: idx, Image: img})
	}
	return pages
}

func (g *Game) GetPageImage(page int) *ebiten.Image {
	return g.pages.GetPage(page)
}

func (g *Game) GetBook() *Book {
	return g.book
}

func (g *Game) GetCurrentPage() int {
	return g.state.GetCurrentPage()
}

func (g *Game) GetZoomLevel() float64 {
	return g.state.GetZoomLevel()
}

func (g *Game) GetPanOffsetX() float64 {
	return g.state.GetPanOffsetX()
}

func (g *Game) GetPanOffsetY() float64 {
	return g.state.GetPanOffsetY()
}

func (g *Game) IsPanning() bool {
	return g.state.IsPanning()
}

// GetPageCanvas returns the drawing surface for a page, creating and
// binding it on first use so persisted ink is restored onto it.
func (g *Game) GetPageCanvas(page int) *PageCanvas {
	if page < 0 || page >= g.state.GetPageCount() {
		return nil
	}
	canvas, ok := g.canvases[page]
	if !ok {
		canvas = NewPageCanvas()
		g.canvases[page] = canvas
		g.annotations.BindCanvas(page, canvas)
	}
	return canvas
}

func (g *Game) GetActiveTool() ToolKind {
	return g.annotations.GetActiveTool()
}

func (g *Game) CanUndoCurrent() bool {
	for _, page := range g.nav.VisiblePages() {
		if g.annotations.CanUndo(page) {
			return true
		}
	}
	return false
}

func (g *Game) CanRedoCurrent() bool {
	for _, page := range g.nav.VisiblePages() {
		if g.annotations.CanRedo(page) {
			return true
		}
	}
	return false
}

func (g *Game) GetLongPressIndicator() (float64, float64, float64, bool) {
	if !g.longPress.IsActive() {
		return 0, 0, 0, false
	}
	x, y := g.longPress.PressPosition()
	return x, y, g.longPress.Progress(time.Now()), true
}

func (g *Game) GetActiveOverlay() OverlayKind {
	return g.state.GetActiveOverlay()
}

func (g *Game) IsInPageInputMode() bool {
	return g.inPageInputMode
}

func (g *Game) GetPageInputBuffer() string {
	return g.pageInputBuffer
}

func (g *Game) GetOverlayMessage() string {
	return g.overlayMessage
}

func (g *Game) GetOverlayMessageTime() time.Time {
	return g.overlayMessageTime
}

func (g *Game) GetPieMenu() *PieMenu {
	return g.pieMenu
}

func (g *Game) GetToolbar() *Toolbar {
	return g.toolbar
}

func (g *Game) GetTotalPagesCount() int {
	return g.state.GetPageCount()
}

func (g *Game) GetFontSize() float64 {
	return g.config.HelpFontSize
}

func (g *Game) GetConfigStatus() ConfigLoadResult {
	return g.configResult
}

func (g *Game) GetKeybindings() map[string][]string {
	return g.config.Keybindings
}

func (g *Game) GetMousebindings() map[string][]string {
	return g.config.Mousebindings
}

// InputActions implementation

func (g *Game) Exit() {
	g.annotations.SaveAnnotations(g.state.GetCurrentPage(), g.state.GetViewMode())
	g.pages.StopPreload()
	g.store.Close()
	g.saveCurrentWindowSize()
	os.Exit(0)
}

func (g *Game) CloseOverlay() {
	if g.pieMenu.IsOpen() {
		g.pieMenu.Close()
		g.state.SetActiveOverlay(OverlayNone)
		return
	}
	if g.state.GetActiveOverlay() != OverlayNone {
		g.state.SetActiveOverlay(OverlayNone)
		return
	}
	if g.annotations.IsAnnotationActive() {
		g.DeselectTool()
	}
}

// toggleOverlay flips one overlay kind; opening one closes whatever else
// was open, the pie menu included.
func (g *Game) toggleOverlay(kind OverlayKind) {
	if g.pieMenu.IsOpen() {
		g.pieMenu.Close()
	}
	if g.state.GetActiveOverlay() == kind {
		g.state.SetActiveOverlay(OverlayNone)
	} else {
		g.state.SetActiveOverlay(kind)
	}
}

func (g *Game) ToggleHelp() {
	g.toggleOverlay(OverlayHelp)
}

func (g *Game) ToggleInfo() {
	g.toggleOverlay(OverlayInfo)
}

func (g *Game) ToggleThumbnails() {
	g.toggleOverlay(OverlayThumbnails)
}

func (g *Game) ToggleFullscreen() {
	g.fullscreen = !g.fullscreen
	if g.fullscreen {
		g.savedWinW, g.savedWinH = ebiten.WindowSize()
		ebiten.SetFullscreen(true)
	} else {
		ebiten.SetFullscreen(false)
		if g.savedWinW > 0 && g.savedWinH > 0 {
			ebiten.SetWindowSize(g.savedWinW, g.savedWinH)
		}
	}
}

// OpenPieMenu opens the menu at the cursor. Unlike a long press, a bound
// button opens it for click-to-select rather than release-to-select.
func (g *Game) OpenPieMenu() {
	x, y := ebiten.CursorPosition()
	g.router.AbortActiveStroke()
	g.pieMenu.OpenAt(float64(x), float64(y))
	g.state.SetActiveOverlay(OverlayPieMenu)
}

func (g *Game) EnterPageInputMode() {
	g.inPageInputMode = true
	g.pageInputBuffer = ""
}

func (g *Game) ExitPageInputMode() {
	g.inPageInputMode = false
	g.pageInputBuffer = ""
}

func (g *Game) ProcessPageInput() {
	if g.pageInputBuffer == "" {
		return
	}
	page, err := strconv.Atoi(g.pageInputBuffer)
	if err != nil {
		g.ShowOverlayMessage("Invalid page number")
		return
	}
	g.JumpToPage(page)
}

func (g *Game) UpdatePageInputBuffer(buffer string) {
	g.pageInputBuffer = buffer
}

func (g *Game) NavigateNext() {
	g.nav.Next()
}

func (g *Game) NavigatePrevious() {
	g.nav.Prev()
}

// JumpToPage takes a 1-based page number, as typed by users
func (g *Game) JumpToPage(page int) {
	g.nav.GoToPage(page - 1)
}

func (g *Game) ToggleViewMode() {
	if g.state.GetViewMode() == ViewModeDouble {
		g.state.SetViewMode(ViewModeSingle)
		g.ShowOverlayMessage("Single page view")
	} else {
		g.state.SetViewMode(ViewModeDouble)
		g.ShowOverlayMessage("Double page view")
	}
	g.ensureVisibleCanvases()
}

func (g *Game) ZoomIn() {
	g.zoomPan.ZoomStep(zoomKeyStep, g.viewport())
}

func (g *Game) ZoomOut() {
	g.zoomPan.ZoomStep(1/zoomKeyStep, g.viewport())
}

func (g *Game) ZoomReset() {
	g.zoomPan.ZoomReset()
}

func (g *Game) SelectPen() {
	g.annotations.SetActiveTool(ToolPen)
}

func (g *Game) SelectHighlighter() {
	g.annotations.SetActiveTool(ToolHighlight)
}

func (g *Game) DeselectTool() {
	g.annotations.SetActiveTool(ToolNone)
}

// Undo steps back the most recently touched visible page that has
// anything to undo
func (g *Game) Undo() {
	for _, page := range g.inkActionOrder() {
		if g.annotations.CanUndo(page) {
			g.annotations.Undo(page)
			return
		}
	}
}

func (g *Game) Redo() {
	for _, page := range g.inkActionOrder() {
		if g.annotations.CanRedo(page) {
			g.annotations.Redo(page)
			return
		}
	}
}

// inkActionOrder lists the visible pages with the last touched page first,
// so undo and redo hit where the user last drew.
func (g *Game) inkActionOrder() []int {
	pages := g.nav.VisiblePages()
	last := g.annotations.LastActivePage()
	for i, page := range pages {
		if page == last && i > 0 {
			pages[0], pages[i] = pages[i], pages[0]
			break
		}
	}
	return pages
}

func (g *Game) ClearAnnotations() {
	g.router.AbortActiveStroke()
	g.annotations.ClearAnnotations(g.state.GetCurrentPage(), g.state.GetViewMode())
}

func (g *Game) SaveAnnotations() {
	g.annotations.SaveAnnotations(g.state.GetCurrentPage(), g.state.GetViewMode())
	g.ShowOverlayMessage("Annotations saved")
}

// ExportPDF kicks off a background export of the whole book with its ink.
// The ink is snapshotted now, so drawing during the export is safe.
func (g *Game) ExportPDF() {
	if g.exporter.IsRunning() {
		g.ShowOverlayMessage("Export already in progress")
		return
	}
	snapshots := g.annotations.CurrentSnapshots()
	started := g.exporter.Export(snapshots, func(path string, err error) {
		select {
		case g.exportDone <- exportResult{path: path, err: err}:
		default:
		}
	})
	if started {
		g.ShowOverlayMessage("Exporting PDF...")
	}
}

func (g *Game) ShowOverlayMessage(message string) {
	g.overlayMessage = message
	g.overlayMessageTime = time.Now()
}

func (g *Game) GetCurrentIndex() int {
	return g.state.GetCurrentPage()
}

func main() {
	var (
		configPath = flag.String("config", "", "config file path (default ~/.kitabu.json)")
		startPage  = flag.Int("page", 0, "1-based page to open at")
		fullscreen = flag.Bool("fullscreen", false, "start in fullscreen")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()
	debugMode = *debug

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] BOOK\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(os.Stderr, "BOOK is a directory of page images, a zip/cbz/rar/cbr/7z archive, or a single image file.")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var result ConfigLoadResult
	if *configPath != "" {
		result = loadConfigFromPath(*configPath)
	} else {
		result = loadConfig()
	}
	for _, warning := range result.Warnings {
		log.Printf("Warning: %s", warning)
	}
	config := result.Config

	book, err := OpenBook(flag.Arg(0), config.SortMethod)
	if err != nil {
		log.Fatal(err)
	}
	if len(book.Refs) == 0 {
		log.Fatal("no page images found")
	}
	debugLog("Opened %s: %d pages, %d modules", book.Title, len(book.Refs), len(book.Modules))

	if err := InitGraphics(); err != nil {
		log.Fatal(err)
	}

	g := newGame(book, result)

	if *startPage > 0 {
		g.nav.GoToPage(*startPage - 1)
	}
	if *fullscreen || config.Fullscreen {
		g.fullscreen = true
		ebiten.SetFullscreen(true)
	}

	g.ensureVisibleCanvases()
	g.pages.StartPreload(g.state.GetCurrentPage(), NavigationForward)

	ebiten.SetWindowTitle(book.Title + " - kitabu")
	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
