package main

import (
	"os"
	"path/filepath"
	"testing"
)

// makeBookDir creates a directory of empty page files and returns its path
func makeBookDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("Failed to create page file %s: %v", name, err)
		}
	}
	return dir
}

func TestOpenBookFromDirectory(t *testing.T) {
	dir := makeBookDir(t, "page2.png", "page10.png", "page1.png", "notes.txt")

	book, err := OpenBook(dir, SortNatural)
	if err != nil {
		t.Fatalf("OpenBook failed: %v", err)
	}

	if got := book.PageCount(); got != 3 {
		t.Fatalf("Expected 3 pages, got %d", got)
	}

	// Natural order puts page2 before page10
	want := []string{"page1.png", "page2.png", "page10.png"}
	for i, name := range want {
		if got := filepath.Base(book.Refs[i].Path); got != name {
			t.Errorf("Expected page %d to be %s, got %s", i, name, got)
		}
	}

	if got := book.Title; got != filepath.Base(dir) {
		t.Errorf("Expected directory name as title, got %q", got)
	}
	if len(book.ID) != 16 {
		t.Errorf("Expected a 16 character book ID, got %q", book.ID)
	}
}

func TestOpenBookFromSingleImage(t *testing.T) {
	dir := makeBookDir(t, "a.png", "b.png", "c.png")

	opened := filepath.Join(dir, "b.png")
	book, err := OpenBook(opened, SortNatural)
	if err != nil {
		t.Fatalf("OpenBook failed: %v", err)
	}

	// A single image opens its whole directory
	if got := book.PageCount(); got != 3 {
		t.Errorf("Expected the full directory with 3 pages, got %d", got)
	}
	if got := book.IndexOfPath(opened); got != 1 {
		t.Errorf("Expected the opened image at index 1, got %d", got)
	}
	if got := book.IndexOfPath(filepath.Join(dir, "missing.png")); got != -1 {
		t.Errorf("Expected -1 for an unknown path, got %d", got)
	}
}

func TestOpenBookErrors(t *testing.T) {
	if _, err := OpenBook(filepath.Join(t.TempDir(), "missing"), SortNatural); err == nil {
		t.Error("Expected an error for a missing path")
	}

	empty := t.TempDir()
	if _, err := OpenBook(empty, SortNatural); err == nil {
		t.Error("Expected an error for a directory without pages")
	}

	stray := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(stray, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenBook(stray, SortNatural); err == nil {
		t.Error("Expected an error for an unsupported file")
	}
}

func TestOpenBookAppliesManifest(t *testing.T) {
	dir := makeBookDir(t, "p1.png", "p2.png", "p3.png", "p4.png")
	manifest := `title: Algebra Basics
modules:
  - name: Numbers
    from: 1
    to: 2
  - name: Fractions
    from: 3
    to: 99
  - name: Backwards
    from: 4
    to: 2
markers:
  - page: 2
    kind: audio
    label: Intro narration
  - page: 99
    kind: video
  - page: 1
    kind: hologram
`
	if err := os.WriteFile(filepath.Join(dir, "book.yaml"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	book, err := OpenBook(dir, SortNatural)
	if err != nil {
		t.Fatalf("OpenBook failed: %v", err)
	}

	if got := book.Title; got != "Algebra Basics" {
		t.Errorf("Expected manifest title, got %q", got)
	}

	// The overlong range is clamped, the backwards one dropped
	if got := len(book.Modules); got != 2 {
		t.Fatalf("Expected 2 valid modules, got %d", got)
	}
	if m := book.Modules[1]; m.Name != "Fractions" || m.From != 3 || m.To != 4 {
		t.Errorf("Expected Fractions clamped to 3-4, got %+v", m)
	}

	// Only the in-range marker of a known kind survives
	markers := book.MarkersFor(1)
	if len(markers) != 1 || markers[0].Kind != "audio" {
		t.Errorf("Expected one audio marker on page index 1, got %v", markers)
	}
	if got := book.MarkersFor(0); len(got) != 0 {
		t.Errorf("Expected the unknown marker kind to be dropped, got %v", got)
	}
}

func TestOpenBookIgnoresBrokenManifest(t *testing.T) {
	dir := makeBookDir(t, "p1.png")
	if err := os.WriteFile(filepath.Join(dir, "book.yaml"), []byte(":\n  - ["), 0644); err != nil {
		t.Fatal(err)
	}

	book, err := OpenBook(dir, SortNatural)
	if err != nil {
		t.Fatalf("Expected a broken manifest to be ignored, got %v", err)
	}
	if got := book.PageCount(); got != 1 {
		t.Errorf("Expected the book to open with 1 page, got %d", got)
	}
	if len(book.Modules) != 0 {
		t.Errorf("Expected no modules from a broken manifest, got %d", len(book.Modules))
	}
}

func TestModuleLookup(t *testing.T) {
	book := &Book{
		Refs: make([]PageRef, 6),
		Modules: []Module{
			{Name: "One", From: 1, To: 2},
			{Name: "Two", From: 3, To: 3},
		},
	}

	tests := []struct {
		name     string
		page     int
		module   string
		found    bool
		startsAt bool
	}{
		{"First page of first module", 0, "One", true, true},
		{"Second page of first module", 1, "One", true, false},
		{"Single page module", 2, "Two", true, true},
		{"Past all modules", 4, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := book.ModuleFor(tt.page)
			if ok != tt.found {
				t.Fatalf("ModuleFor(%d) found = %v, want %v", tt.page, ok, tt.found)
			}
			if ok && m.Name != tt.module {
				t.Errorf("ModuleFor(%d) = %q, want %q", tt.page, m.Name, tt.module)
			}
			if got := book.ModuleStartsAt(tt.page); got != tt.startsAt {
				t.Errorf("ModuleStartsAt(%d) = %v, want %v", tt.page, got, tt.startsAt)
			}
		})
	}
}

func TestBookIDStability(t *testing.T) {
	dir := t.TempDir()

	first := bookIDForPath(dir)
	second := bookIDForPath(dir)
	if first != second {
		t.Errorf("Expected a stable ID, got %q then %q", first, second)
	}
	if len(first) != 16 {
		t.Errorf("Expected 16 hex characters, got %q", first)
	}

	other := bookIDForPath(t.TempDir())
	if first == other {
		t.Error("Expected different paths to produce different IDs")
	}
}

func TestDefaultBookTitle(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Directory", "/books/algebra-1", "algebra-1"},
		{"Zip archive", "/books/History.zip", "History"},
		{"Comic archive", "/books/art.cbz", "art"},
		{"Bare name", "reader", "reader"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultBookTitle(tt.path); got != tt.expected {
				t.Errorf("defaultBookTitle(%s) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestManifestPathFor(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		expected string
	}{
		{"Directory book", "/books/algebra", filepath.Join("/books/algebra", "book.yaml")},
		{"Archive book", "/books/algebra.cbz", "/books/algebra.yaml"},
		{"Zip book", "/books/history.zip", "/books/history.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := manifestPathFor(tt.root); got != tt.expected {
				t.Errorf("manifestPathFor(%s) = %q, want %q", tt.root, got, tt.expected)
			}
		})
	}
}

func TestClampModules(t *testing.T) {
	modules := []Module{
		{Name: "", From: 0, To: 2},
		{Name: "Tail", From: 9, To: 20},
		{Name: "Empty", From: 5, To: 4},
	}

	valid := clampModules(modules, 10)

	if len(valid) != 2 {
		t.Fatalf("Expected 2 surviving modules, got %d", len(valid))
	}
	// Nameless modules get a positional name, zero lower bounds clamp to 1
	if m := valid[0]; m.Name != "Module 1" || m.From != 1 || m.To != 2 {
		t.Errorf("Expected {Module 1, 1, 2}, got %+v", m)
	}
	if m := valid[1]; m.From != 9 || m.To != 10 {
		t.Errorf("Expected Tail clamped to 9-10, got %+v", m)
	}
}
