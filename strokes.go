package main

import "math"

// Minimum movement in page pixels before a new point is sampled
const strokeSampleDistance = 1.0

// ToolKind identifies the active annotation tool
type ToolKind int

const (
	ToolNone ToolKind = iota
	ToolPen
	ToolHighlight
)

// ToolName returns the config/display name of a tool
func ToolName(tool ToolKind) string {
	switch tool {
	case ToolPen:
		return "pen"
	case ToolHighlight:
		return "highlight"
	default:
		return "none"
	}
}

// StrokePoint is one sampled point of a freehand stroke, in page-image pixels
type StrokePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous freehand line. Points are stored in page-image
// coordinates so strokes stay glued to the page through zoom, pan and window
// resizes, and serialize without any reference to the screen.
type Stroke struct {
	Tool   ToolKind      `json:"tool"`
	Color  string        `json:"color"` // Hex like "#e05252"
	Width  float64       `json:"width"`
	Points []StrokePoint `json:"points"`
}

// Clone returns a deep copy of the stroke
func (s Stroke) Clone() Stroke {
	points := make([]StrokePoint, len(s.Points))
	copy(points, s.Points)
	s.Points = points
	return s
}

// Snapshot is an opaque serialized drawing state: the full stroke list of one
// page at one moment. History entries and persisted files are snapshots.
type Snapshot struct {
	Strokes []Stroke `json:"strokes"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	strokes := make([]Stroke, len(s.Strokes))
	for i, stroke := range s.Strokes {
		strokes[i] = stroke.Clone()
	}
	return Snapshot{Strokes: strokes}
}

// IsEmpty reports whether the snapshot contains no strokes
func (s Snapshot) IsEmpty() bool {
	return len(s.Strokes) == 0
}

// PageCanvas is the drawing surface bound to one displayed page: the
// committed strokes plus the stroke currently being drawn, if any.
type PageCanvas struct {
	strokes []Stroke
	current *Stroke
}

// NewPageCanvas creates an empty canvas
func NewPageCanvas() *PageCanvas {
	return &PageCanvas{}
}

// Snapshot serializes the committed canvas contents
func (c *PageCanvas) Snapshot() Snapshot {
	return Snapshot{Strokes: c.strokes}.Clone()
}

// Restore replaces the canvas contents with the snapshot. An in-progress
// stroke is discarded.
func (c *PageCanvas) Restore(snap Snapshot) {
	restored := snap.Clone()
	c.strokes = restored.Strokes
	c.current = nil
}

// Clear removes everything from the canvas
func (c *PageCanvas) Clear() {
	c.strokes = nil
	c.current = nil
}

// Strokes returns the committed strokes for rendering
func (c *PageCanvas) Strokes() []Stroke {
	return c.strokes
}

// CurrentStroke returns the in-progress stroke for live preview, or nil
func (c *PageCanvas) CurrentStroke() *Stroke {
	return c.current
}

// BeginStroke starts a new freehand stroke at a page position
func (c *PageCanvas) BeginStroke(tool ToolKind, colorHex string, width float64, x, y float64) {
	c.current = &Stroke{
		Tool:   tool,
		Color:  colorHex,
		Width:  width,
		Points: []StrokePoint{{X: x, Y: y}},
	}
}

// ExtendStroke appends a point to the in-progress stroke. Points closer than
// the sampling distance to the previous one are dropped.
func (c *PageCanvas) ExtendStroke(x, y float64) {
	if c.current == nil {
		return
	}
	last := c.current.Points[len(c.current.Points)-1]
	if math.Hypot(x-last.X, y-last.Y) < strokeSampleDistance {
		return
	}
	c.current.Points = append(c.current.Points, StrokePoint{X: x, Y: y})
}

// EndStroke commits the in-progress stroke to the canvas. A single-point
// stroke is kept; it renders as a dot. Returns whether a stroke was
// committed.
func (c *PageCanvas) EndStroke() bool {
	if c.current == nil {
		return false
	}
	c.strokes = append(c.strokes, *c.current)
	c.current = nil
	return true
}

// AbortStroke discards the in-progress stroke without committing it, for
// when a second finger turns the gesture into a pinch.
func (c *PageCanvas) AbortStroke() {
	c.current = nil
}
