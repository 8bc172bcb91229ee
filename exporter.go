package main

import (
	"compress/flate"
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wudi/pdfkit/builder"
	"github.com/wudi/pdfkit/contentstream"
	"github.com/wudi/pdfkit/ir/semantic"
	"github.com/wudi/pdfkit/writer"
	xdraw "golang.org/x/image/draw"
)

// Longest page edge in the exported PDF, in points. Image data is stored
// uncompressed in the PDF, so larger sources are downsampled to keep the
// output manageable.
const exportMaxPageEdge = 1600.0

// Page size used when a page image cannot be decoded (A4 portrait)
const (
	exportFallbackWidth  = 595.0
	exportFallbackHeight = 842.0
)

// PDFExporter flattens a book and its ink into a single PDF file, one book
// page per PDF page, with a bookmark per module. Exports run on their own
// goroutine and at most one can be active at a time.
type PDFExporter struct {
	pages   PageManager
	book    *Book
	running atomic.Bool
}

func NewPDFExporter(pages PageManager, book *Book) *PDFExporter {
	return &PDFExporter{pages: pages, book: book}
}

// OutputPath is where the exported PDF lands: next to the book, with an
// "-annotated" suffix on the book's stem.
func (e *PDFExporter) OutputPath() string {
	root := e.book.Path
	if isArchiveExt(root) {
		root = strings.TrimSuffix(root, filepath.Ext(root))
	}
	return filepath.Clean(root) + "-annotated.pdf"
}

// IsRunning reports whether an export is currently in flight.
func (e *PDFExporter) IsRunning() bool {
	return e.running.Load()
}

// Export starts a background export of the whole book using the given
// per-page ink. It returns false when an export is already running. onDone
// is invoked from the export goroutine with the output path and the result.
func (e *PDFExporter) Export(snapshots map[int]Snapshot, onDone func(path string, err error)) bool {
	if !e.running.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer e.running.Store(false)
		start := time.Now()
		path := e.OutputPath()
		err := e.export(path, snapshots)
		if err != nil {
			log.Printf("Error: PDF export failed: %v", err)
		} else {
			log.Printf("Exported %s in %v", path, time.Since(start).Round(time.Millisecond))
		}
		if onDone != nil {
			onDone(path, err)
		}
	}()
	return true
}

func (e *PDFExporter) export(outPath string, snapshots map[int]Snapshot) error {
	pageCount := e.pages.GetPageCount()
	if pageCount == 0 {
		return fmt.Errorf("book has no pages")
	}

	b := builder.NewBuilder()
	for idx := 0; idx < pageCount; idx++ {
		src, err := e.pages.DecodePage(idx)
		if err != nil {
			log.Printf("Warning: export: page %d: %v", idx+1, err)
			addFailedPage(b, idx, err)
			continue
		}
		addBookPage(b, idx, src, snapshots[idx])
		debugLog("export: page %d/%d done", idx+1, pageCount)
	}

	for _, mod := range e.book.Modules {
		b.AddOutline(builder.Outline{Title: mod.Name, PageIndex: mod.From - 1})
	}
	b.SetInfo(&semantic.DocumentInfo{
		Title:    e.book.Title,
		Creator:  "kitabu",
		Producer: "kitabu",
	})

	doc, err := b.Build()
	if err != nil {
		return err
	}

	// Write to a scratch file first so a failed run never clobbers a
	// previous export.
	tmp := outPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := (&writer.WriterBuilder{}).Build()
	cfg := writer.Config{ContentFilter: writer.FilterFlate, Compression: flate.BestSpeed}
	if err := w.Write(context.Background(), doc, f, cfg); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, outPath)
}

// addBookPage adds one page image plus its strokes. The PDF page takes the
// image's pixel size in points, downsampled when the source is oversized;
// stroke coordinates scale by the same factor.
func addBookPage(b builder.PDFBuilder, idx int, src image.Image, snap Snapshot) {
	bounds := src.Bounds()
	iw, ih := bounds.Dx(), bounds.Dy()
	if iw <= 0 || ih <= 0 {
		addFailedPage(b, idx, fmt.Errorf("empty image"))
		return
	}

	scale := 1.0
	longest := float64(iw)
	if float64(ih) > longest {
		longest = float64(ih)
	}
	if longest > exportMaxPageEdge {
		scale = exportMaxPageEdge / longest
	}
	pageW := float64(iw) * scale
	pageH := float64(ih) * scale

	if scale < 1 {
		dst := image.NewRGBA(image.Rect(0, 0, int(pageW+0.5), int(pageH+0.5)))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
		src = dst
	}

	page := b.NewPage(pageW, pageH)
	page.DrawImage(builder.FromImage(src), 0, 0, pageW, pageH, builder.ImageOptions{})
	for _, stroke := range snap.Strokes {
		drawPDFStroke(page, stroke, scale, pageH)
	}
	page.Finish()
}

func addFailedPage(b builder.PDFBuilder, idx int, cause error) {
	b.NewPage(exportFallbackWidth, exportFallbackHeight).
		DrawText(fmt.Sprintf("Page %d could not be loaded", idx+1), 60, exportFallbackHeight/2, builder.TextOptions{FontSize: 18}).
		DrawText(cause.Error(), 60, exportFallbackHeight/2-28, builder.TextOptions{FontSize: 10}).
		Finish()
}

// drawPDFStroke converts one stroke from page-image coordinates (y down)
// to PDF user space (y up).
func drawPDFStroke(page builder.PageBuilder, stroke Stroke, scale, pageH float64) {
	if len(stroke.Points) == 0 {
		return
	}
	points := make([]contentstream.PathPoint, 0, len(stroke.Points)+1)
	for i, pt := range stroke.Points {
		kind := contentstream.PathLineTo
		if i == 0 {
			kind = contentstream.PathMoveTo
		}
		points = append(points, contentstream.PathPoint{
			X:    pt.X * scale,
			Y:    pageH - pt.Y*scale,
			Type: kind,
		})
	}
	// A dot needs a zero-length segment for the round cap to paint
	if len(points) == 1 {
		points = append(points, contentstream.PathPoint{
			X:    points[0].X,
			Y:    points[0].Y,
			Type: contentstream.PathLineTo,
		})
	}

	width := stroke.Width * scale
	if width < 0.5 {
		width = 0.5
	}
	path := &contentstream.Path{Subpaths: []contentstream.Subpath{{Points: points}}}
	page.DrawPath(path, builder.PathOptions{
		StrokeColor: pdfStrokeColor(stroke),
		LineWidth:   width,
		LineCap:     contentstream.LineCapRound,
		LineJoin:    contentstream.LineJoinRound,
		Stroke:      true,
	})
}

// pdfStrokeColor picks the paint color for a stroke. Highlights are drawn
// translucent on screen but PDF path paint has no alpha, so their color is
// blended toward white by the same factor instead.
func pdfStrokeColor(stroke Stroke) builder.Color {
	c, err := parseHexColor(stroke.Color)
	if err != nil {
		c = colorGray
	}
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	if stroke.Tool == ToolHighlight {
		r = r*highlightAlpha + 255*(1-highlightAlpha)
		g = g*highlightAlpha + 255*(1-highlightAlpha)
		b = b*highlightAlpha + 255*(1-highlightAlpha)
	}
	return builder.Color{R: r / 255, G: g / 255, B: b / 255, A: 1}
}
