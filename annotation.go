package main

// Canvas is the drawing surface of one displayed page, as seen by the
// annotation engine. Restores and clears act on whatever surface the shell
// bound for that page.
type Canvas interface {
	Snapshot() Snapshot
	Restore(snap Snapshot)
	Clear()
}

// AnnotationSaver persists page snapshots. Saves are fire-and-forget: the
// engine hands the snapshot over and continues without waiting.
type AnnotationSaver interface {
	SavePage(bookID string, page int, snap Snapshot)
}

// ToolState is the narrow view of annotation state the gesture engine needs
type ToolState interface {
	IsAnnotationActive() bool
}

// AnnotationEngine keeps an independent linear undo/redo history per page,
// plus tool configuration shared across pages.
//
// The history maps are sparse: an absent page key means empty history with
// cursor -1. Undo and redo only move the cursor; history is truncated solely
// by a new write, which discards everything after the cursor first (the
// standard branch-discarding linear model).
type AnnotationEngine struct {
	history      map[int][]Snapshot
	historyIndex map[int]int
	canvases     map[int]Canvas

	// lastActive is the page the most recent stroke, undo or redo touched,
	// -1 before any. With a spread on display the shell uses it to decide
	// which page an undo shortcut should hit first.
	lastActive int

	activeTool     ToolKind
	penColor       string
	penWidth       float64
	highlightColor string
	highlightWidth float64

	saver  AnnotationSaver
	bookID string
}

// NewAnnotationEngine creates an engine for one opened book. The saver may
// be nil, in which case save operations do nothing.
func NewAnnotationEngine(bookID string, config Config, saver AnnotationSaver) *AnnotationEngine {
	return &AnnotationEngine{
		history:        make(map[int][]Snapshot),
		historyIndex:   make(map[int]int),
		canvases:       make(map[int]Canvas),
		lastActive:     -1,
		penColor:       config.PenColor,
		penWidth:       config.PenWidth,
		highlightColor: config.HighlightColor,
		highlightWidth: config.HighlightWidth,
		saver:          saver,
		bookID:         bookID,
	}
}

// Seed installs previously persisted snapshots as the baseline history of
// their pages. Called once when the book opens, before any canvas is bound.
func (e *AnnotationEngine) Seed(snapshots map[int]Snapshot) {
	for page, snap := range snapshots {
		e.history[page] = []Snapshot{snap.Clone()}
		e.historyIndex[page] = 0
	}
}

// BindCanvas attaches the drawing surface for a page that came on display.
// A page with no history gets an empty baseline snapshot, so the first
// stroke on it can be undone back to a blank page. Bound canvases are
// restored to the page's current history position.
func (e *AnnotationEngine) BindCanvas(page int, canvas Canvas) {
	if canvas == nil {
		return
	}
	e.canvases[page] = canvas
	if _, ok := e.history[page]; !ok {
		e.history[page] = []Snapshot{{}}
		e.historyIndex[page] = 0
	}
	canvas.Restore(e.history[page][e.historyIndex[page]])
}

// UnbindCanvas detaches the drawing surface of a page leaving the display
func (e *AnnotationEngine) UnbindCanvas(page int) {
	delete(e.canvases, page)
}

// BoundCanvas returns the canvas bound for a page, or nil
func (e *AnnotationEngine) BoundCanvas(page int) Canvas {
	return e.canvases[page]
}

// HistoryPosition returns the history cursor and length for a page. An
// absent page reads as (-1, 0).
func (e *AnnotationEngine) HistoryPosition(page int) (index, length int) {
	entries, ok := e.history[page]
	if !ok {
		return -1, 0
	}
	return e.historyIndex[page], len(entries)
}

// CanUndo is computed from state on every call, never cached
func (e *AnnotationEngine) CanUndo(page int) bool {
	index, _ := e.HistoryPosition(page)
	return index > 0
}

// CanRedo is computed from state on every call, never cached
func (e *AnnotationEngine) CanRedo(page int) bool {
	index, length := e.HistoryPosition(page)
	return length > 0 && index < length-1
}

// LastActivePage returns the page the most recent ink operation touched,
// or -1 when nothing has been drawn yet.
func (e *AnnotationEngine) LastActivePage() int {
	return e.lastActive
}

// RecordStroke appends a snapshot to a page's history. Anything after the
// cursor (the redo-able future) is discarded first, then the cursor moves to
// the new last entry.
func (e *AnnotationEngine) RecordStroke(page int, snap Snapshot) {
	index, _ := e.HistoryPosition(page)
	entries := e.history[page]
	cut := index + 1
	if cut > len(entries) {
		cut = len(entries)
	}
	entries = append(entries[:cut:cut], snap.Clone())
	e.history[page] = entries
	e.historyIndex[page] = len(entries) - 1
	e.lastActive = page
}

// Undo steps the page's history cursor back one entry and restores that
// snapshot onto the bound canvas. Without a bound canvas, or at the bottom
// of the history, it is a guarded no-op.
func (e *AnnotationEngine) Undo(page int) {
	canvas := e.canvases[page]
	if canvas == nil {
		return
	}
	index, _ := e.HistoryPosition(page)
	if index <= 0 {
		return
	}
	e.historyIndex[page] = index - 1
	canvas.Restore(e.history[page][index-1])
	e.lastActive = page
}

// Redo steps the cursor forward one entry and restores it, with the same
// guards as Undo.
func (e *AnnotationEngine) Redo(page int) {
	canvas := e.canvases[page]
	if canvas == nil {
		return
	}
	index, length := e.HistoryPosition(page)
	if length == 0 || index >= length-1 {
		return
	}
	e.historyIndex[page] = index + 1
	canvas.Restore(e.history[page][index+1])
	e.lastActive = page
}

// ClearAnnotations wipes the drawing surface and records the empty state as
// a new history entry, so clearing is itself undoable. In double mode the
// clear fans out to both members of the current spread; their histories stay
// fully independent.
func (e *AnnotationEngine) ClearAnnotations(page int, mode ViewMode) {
	for _, target := range spreadPages(page, mode) {
		canvas := e.canvases[target]
		if canvas == nil {
			continue
		}
		canvas.Clear()
		e.RecordStroke(target, Snapshot{})
	}
}

// SaveAnnotations hands the current canvas state of the page, or of both
// spread members in double mode, to the persistence collaborator. The engine
// does not wait for completion; a failed save never rolls back in-memory
// history.
func (e *AnnotationEngine) SaveAnnotations(page int, mode ViewMode) {
	if e.saver == nil {
		return
	}
	for _, target := range spreadPages(page, mode) {
		snap, ok := e.snapshotFor(target)
		if !ok {
			continue
		}
		e.saver.SavePage(e.bookID, target, snap)
	}
}

// snapshotFor returns what should be persisted for a page: the live canvas
// contents when one is bound, otherwise the page's current history entry.
// Pages that never had strokes report nothing to save.
func (e *AnnotationEngine) snapshotFor(page int) (Snapshot, bool) {
	if canvas := e.canvases[page]; canvas != nil {
		snap := canvas.Snapshot()
		if !snap.IsEmpty() {
			return snap, true
		}
		// An empty canvas still needs saving if it undid earlier strokes
		if entries, ok := e.history[page]; ok && len(entries) > 1 {
			return snap, true
		}
		return Snapshot{}, false
	}
	entries, ok := e.history[page]
	if !ok {
		return Snapshot{}, false
	}
	snap := entries[e.historyIndex[page]]
	if snap.IsEmpty() && len(entries) == 1 {
		return Snapshot{}, false
	}
	return snap.Clone(), true
}

// CurrentSnapshots collects the visible ink of every annotated page as it
// stands right now. The snapshots are owned by the caller, so the result can
// be handed to another goroutine while editing continues.
func (e *AnnotationEngine) CurrentSnapshots() map[int]Snapshot {
	pages := make(map[int]struct{}, len(e.history)+len(e.canvases))
	for page := range e.history {
		pages[page] = struct{}{}
	}
	for page := range e.canvases {
		pages[page] = struct{}{}
	}
	out := make(map[int]Snapshot, len(pages))
	for page := range pages {
		snap, ok := e.snapshotFor(page)
		if !ok || snap.IsEmpty() {
			continue
		}
		out[page] = snap
	}
	return out
}

// spreadPages returns the pages an operation applies to: just the page in
// single mode, both members of the normalized spread in double mode.
func spreadPages(page int, mode ViewMode) []int {
	if mode != ViewModeDouble {
		return []int{page}
	}
	left := normalizePageIndex(page, ViewModeDouble)
	return []int{left, left + 1}
}

// SetActiveTool switches between pen, highlighter and off. Tool changes
// never touch history; they only affect what the next stroke looks like.
func (e *AnnotationEngine) SetActiveTool(tool ToolKind) {
	e.activeTool = tool
}

// GetActiveTool returns the current tool
func (e *AnnotationEngine) GetActiveTool() ToolKind {
	return e.activeTool
}

// IsAnnotationActive reports whether a drawing tool is engaged
func (e *AnnotationEngine) IsAnnotationActive() bool {
	return e.activeTool != ToolNone
}

// StrokeStyle returns the color and width the active tool draws with
func (e *AnnotationEngine) StrokeStyle() (colorHex string, width float64) {
	if e.activeTool == ToolHighlight {
		return e.highlightColor, e.highlightWidth
	}
	return e.penColor, e.penWidth
}

// SetPenColor changes the pen color for subsequent strokes
func (e *AnnotationEngine) SetPenColor(colorHex string) {
	e.penColor = colorHex
}

// GetPenColor returns the current pen color
func (e *AnnotationEngine) GetPenColor() string {
	return e.penColor
}
