package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/wudi/pdfkit/builder"
)

// stubPageManager serves pre-decoded images straight from a slice, without
// any cache or preload machinery behind it.
type stubPageManager struct {
	images []image.Image
	errs   map[int]error
}

func (s *stubPageManager) GetPage(idx int) *ebiten.Image { return nil }

func (s *stubPageManager) GetSpreadPages(idx int) (*ebiten.Image, *ebiten.Image) { return nil, nil }

func (s *stubPageManager) DecodePage(idx int) (image.Image, error) {
	if err, ok := s.errs[idx]; ok {
		return nil, err
	}
	if idx < 0 || idx >= len(s.images) {
		return nil, fmt.Errorf("page %d out of range", idx)
	}
	return s.images[idx], nil
}

func (s *stubPageManager) SetRefs(refs []PageRef) {}

func (s *stubPageManager) GetPageCount() int { return len(s.images) }

func (s *stubPageManager) StartPreload(currentIdx int, direction NavigationDirection) {}

func (s *stubPageManager) StopPreload() {}

func (s *stubPageManager) GetPreloadStats() PreloadStats { return PreloadStats{} }

func TestExportOutputPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"Directory book", "/books/algebra", "/books/algebra-annotated.pdf"},
		{"Zip archive", "/books/algebra.zip", "/books/algebra-annotated.pdf"},
		{"Comic archive", "books/term1.cbz", "books/term1-annotated.pdf"},
		{"Seven zip archive", "books/term1.cb7", "books/term1-annotated.pdf"},
		{"Trailing separator", "books/term1/", "books/term1-annotated.pdf"},
		{"Dotted directory name", "books/v1.2", "books/v1.2-annotated.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewPDFExporter(&stubPageManager{}, &Book{Path: tt.path})
			if got := e.OutputPath(); got != tt.want {
				t.Errorf("OutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFStrokeColor(t *testing.T) {
	tests := []struct {
		name   string
		stroke Stroke
		want   builder.Color
	}{
		{"Pen keeps its color", Stroke{Tool: ToolPen, Color: "#e53935"},
			builder.Color{R: 229.0 / 255, G: 57.0 / 255, B: 53.0 / 255, A: 1}},
		{"Highlight blends toward white", Stroke{Tool: ToolHighlight, Color: "#ffeb3b"},
			builder.Color{R: 1, G: 247.0 / 255, B: 176.6 / 255, A: 1}},
		{"Invalid color falls back to gray", Stroke{Tool: ToolPen, Color: "not-a-color"},
			builder.Color{R: 180.0 / 255, G: 180.0 / 255, B: 180.0 / 255, A: 1}},
		{"Invalid highlight blends the fallback", Stroke{Tool: ToolHighlight, Color: ""},
			builder.Color{R: 225.0 / 255, G: 225.0 / 255, B: 225.0 / 255, A: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pdfStrokeColor(tt.stroke)
			if !approxEqual(got.R, tt.want.R) || !approxEqual(got.G, tt.want.G) ||
				!approxEqual(got.B, tt.want.B) || !approxEqual(got.A, tt.want.A) {
				t.Errorf("pdfStrokeColor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExportRequiresPages(t *testing.T) {
	e := NewPDFExporter(&stubPageManager{}, &Book{Path: filepath.Join(t.TempDir(), "empty"), Title: "Empty"})
	if err := e.export(e.OutputPath(), nil); err == nil {
		t.Fatal("export() with no pages should fail")
	}
}

func TestExportWritesPDF(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	pages := &stubPageManager{
		images: []image.Image{img, nil},
		errs:   map[int]error{1: fmt.Errorf("corrupt data")},
	}
	book := &Book{
		Path:    filepath.Join(t.TempDir(), "workbook"),
		Title:   "Workbook",
		Modules: []Module{{Name: "Unit 1", From: 1, To: 2}},
	}
	e := NewPDFExporter(pages, book)

	snap := Snapshot{Strokes: []Stroke{
		{Tool: ToolPen, Color: "#e53935", Width: 3, Points: []StrokePoint{{X: 5, Y: 5}, {X: 30, Y: 40}}},
		{Tool: ToolHighlight, Color: "#ffeb3b", Width: 16, Points: []StrokePoint{{X: 10, Y: 20}}},
	}}
	outPath := e.OutputPath()
	if err := e.export(outPath, map[int]Snapshot{0: snap}); err != nil {
		t.Fatalf("export() error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("Exported file does not start with a PDF header")
	}
	if _, err := os.Stat(outPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Scratch file should be renamed away after a successful export")
	}
}

func TestExportRunsInBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 16))
	e := NewPDFExporter(
		&stubPageManager{images: []image.Image{img}},
		&Book{Path: filepath.Join(t.TempDir(), "mini"), Title: "Mini"},
	)

	done := make(chan error, 1)
	wantPath := e.OutputPath()
	ok := e.Export(nil, func(path string, err error) {
		if path != wantPath {
			err = fmt.Errorf("export path = %q, want %q", path, wantPath)
		}
		done <- err
	})
	if !ok {
		t.Fatal("Export() = false, want true")
	}
	if err := <-done; err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("Expected exported file at %s: %v", wantPath, err)
	}
}
