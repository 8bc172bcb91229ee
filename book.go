package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Module is a named span of pages from the book manifest. From and To are
// 1-based inclusive page numbers, the way authors write them.
type Module struct {
	Name string `yaml:"name"`
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
}

// PageMarker flags extra material attached to a page (an audio clip, a
// video, an activity). The viewer renders markers as small page badges.
type PageMarker struct {
	Page  int    `yaml:"page"` // 1-based
	Kind  string `yaml:"kind"` // audio, video or activity
	Label string `yaml:"label,omitempty"`
}

// BookManifest is the optional book.yaml next to the page images
type BookManifest struct {
	Title   string       `yaml:"title"`
	Modules []Module     `yaml:"modules"`
	Markers []PageMarker `yaml:"markers"`
}

// Book is one opened document: its ordered page refs plus manifest
// metadata. Immutable after OpenBook returns.
type Book struct {
	Path    string
	ID      string
	Title   string
	Refs    []PageRef
	Modules []Module
	markers map[int][]PageMarker
}

// OpenBook loads a book from a directory of images, an archive, or a single
// image file (which opens its whole directory). The manifest is optional;
// without one the book is just its sorted pages.
func OpenBook(path string, sortMethod int) (*Book, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening book %s: %w", path, err)
	}

	// A single image opens the directory around it
	root := path
	if !info.IsDir() && isSupportedExt(path) {
		root = filepath.Dir(path)
	}

	var refs []PageRef
	switch {
	case !info.IsDir() && isArchiveExt(path):
		refs, err = collectPagesFromArchive(path, sortMethod)
	case info.IsDir() || root != path:
		refs, err = collectPagesFromDir(root, sortMethod)
	default:
		return nil, fmt.Errorf("unsupported book format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no pages found in %s", root)
	}

	book := &Book{
		Path:    root,
		ID:      bookIDForPath(root),
		Title:   defaultBookTitle(root),
		Refs:    refs,
		markers: make(map[int][]PageMarker),
	}

	manifest, err := loadManifest(manifestPathFor(root))
	if err != nil {
		log.Printf("Warning: ignoring unreadable manifest for %s: %v", root, err)
	}
	if manifest != nil {
		applyManifest(book, manifest)
	}

	return book, nil
}

// PageCount returns the number of pages in the book
func (b *Book) PageCount() int {
	return len(b.Refs)
}

// IndexOfPath returns the page index whose ref matches the given file path,
// or -1. Used to start the viewer on the image the user actually opened.
func (b *Book) IndexOfPath(path string) int {
	for i, ref := range b.Refs {
		if ref.Path == path {
			return i
		}
	}
	return -1
}

// ModuleFor returns the manifest module containing a 0-based page index
func (b *Book) ModuleFor(page int) (Module, bool) {
	for _, m := range b.Modules {
		if page >= m.From-1 && page <= m.To-1 {
			return m, true
		}
	}
	return Module{}, false
}

// ModuleStartsAt reports whether a module begins on the given 0-based page.
// The thumbnail strip draws boundaries from this.
func (b *Book) ModuleStartsAt(page int) bool {
	for _, m := range b.Modules {
		if page == m.From-1 {
			return true
		}
	}
	return false
}

// MarkersFor returns the media markers of a 0-based page index
func (b *Book) MarkersFor(page int) []PageMarker {
	return b.markers[page]
}

// bookIDForPath derives a stable identifier from the absolute book path.
// Annotation files are keyed by it, so the same book reopens with its
// strokes regardless of the working directory.
func bookIDForPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:8])
}

// defaultBookTitle is the base name without the container extension
func defaultBookTitle(path string) string {
	base := filepath.Base(path)
	if isArchiveExt(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}

// manifestPathFor locates the book.yaml for a book root: inside the
// directory for directory books, next to the archive (same stem, .yaml)
// for archive books.
func manifestPathFor(root string) string {
	if isArchiveExt(root) {
		stem := strings.TrimSuffix(root, filepath.Ext(root))
		return stem + ".yaml"
	}
	return filepath.Join(root, "book.yaml")
}

// loadManifest reads and decodes a manifest file. A missing file is not an
// error; the book simply has no manifest.
func loadManifest(path string) (*BookManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var manifest BookManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &manifest, nil
}

// applyManifest merges validated manifest data into the book. Authors edit
// manifests by hand, so ranges get clamped and nonsense gets skipped with a
// warning instead of failing the whole book.
func applyManifest(book *Book, manifest *BookManifest) {
	if manifest.Title != "" {
		book.Title = manifest.Title
	}
	book.Modules = clampModules(manifest.Modules, book.PageCount())

	for _, marker := range manifest.Markers {
		if marker.Page < 1 || marker.Page > book.PageCount() {
			log.Printf("Warning: marker %q targets page %d outside 1-%d, skipping",
				marker.Kind, marker.Page, book.PageCount())
			continue
		}
		switch marker.Kind {
		case "audio", "video", "activity":
		default:
			log.Printf("Warning: unknown marker kind %q on page %d, skipping", marker.Kind, marker.Page)
			continue
		}
		idx := marker.Page - 1
		book.markers[idx] = append(book.markers[idx], marker)
	}
}

// clampModules clamps manifest page ranges into 1..pageCount and drops
// ranges that end up empty
func clampModules(modules []Module, pageCount int) []Module {
	var valid []Module
	for _, m := range modules {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("Module %d", len(valid)+1)
		}
		from, to := m.From, m.To
		if from < 1 {
			from = 1
		}
		if to > pageCount {
			to = pageCount
		}
		if from > to {
			log.Printf("Warning: module %q has empty page range %d-%d, skipping", name, m.From, m.To)
			continue
		}
		valid = append(valid, Module{Name: name, From: from, To: to})
	}
	return valid
}
