package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nwaples/rardecode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PageRef locates one page image: a plain file, or an entry inside a book
// archive.
type PageRef struct {
	Path        string    // File path, or archive:entry for archive members
	ArchivePath string    // Empty for plain files
	EntryPath   string    // Empty for plain files
	ModTime     time.Time // Drives the modification-time sort strategy
}

// NavigationDirection represents the direction of navigation
type NavigationDirection int

const (
	NavigationForward NavigationDirection = iota
	NavigationBackward
	NavigationJump
)

// PreloadRequest asks the preload worker to warm the cache around an index
type PreloadRequest struct {
	Index     int
	Direction NavigationDirection
}

// PreloadStats provides statistics about preloading
type PreloadStats struct {
	QueueSize     int
	LoadedCount   int
	FailedCount   int
	LastDirection NavigationDirection
}

func isSupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// archiveFormat maps a container extension to its base format. The
// comic-book extensions are plain renames of the same containers.
func archiveFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".cbz":
		return "zip"
	case ".rar", ".cbr":
		return "rar"
	case ".7z", ".cb7":
		return "7z"
	default:
		return ""
	}
}

func isArchiveExt(path string) bool {
	return archiveFormat(path) != ""
}

// PreloadManager manages asynchronous page preloading
type PreloadManager struct {
	requestChan chan PreloadRequest
	ctx         context.Context
	cancel      context.CancelFunc
	pages       *DefaultPageManager
	mu          sync.RWMutex
	stats       PreloadStats
	maxPreload  int
	enabled     bool
}

// NewPreloadManager creates a new PreloadManager
func NewPreloadManager(pages *DefaultPageManager, maxPreload int) *PreloadManager {
	ctx, cancel := context.WithCancel(context.Background())
	pm := &PreloadManager{
		requestChan: make(chan PreloadRequest, 100),
		ctx:         ctx,
		cancel:      cancel,
		pages:       pages,
		maxPreload:  maxPreload,
		enabled:     true,
	}

	go pm.worker()

	return pm
}

// SetEnabled enables or disables preloading
func (pm *PreloadManager) SetEnabled(enabled bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = enabled
}

// IsEnabled returns whether preloading is enabled
func (pm *PreloadManager) IsEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// GetStats returns current preload statistics
func (pm *PreloadManager) GetStats() PreloadStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.stats
}

// Stop stops the preload manager
func (pm *PreloadManager) Stop() {
	pm.cancel()
}

// StartPreload starts preloading pages from the current index in the
// specified direction
func (pm *PreloadManager) StartPreload(currentIdx int, direction NavigationDirection) {
	if !pm.IsEnabled() {
		return
	}

	// Clear the request channel to cancel any pending requests
drain:
	for {
		select {
		case <-pm.requestChan:
			// discard pending requests
		default:
			break drain
		}
	}

	// Send new preload request
	select {
	case pm.requestChan <- PreloadRequest{Index: currentIdx, Direction: direction}:
	default:
		// Channel is full, skip this request
		debugLog("Preload request channel full, skipping preload request")
	}
}

// worker runs the preload worker goroutine
func (pm *PreloadManager) worker() {
	for {
		select {
		case <-pm.ctx.Done():
			return
		case req := <-pm.requestChan:
			if pm.IsEnabled() {
				pm.processPreloadRequest(req)
			}
		}
	}
}

// processPreloadRequest processes a single preload request
func (pm *PreloadManager) processPreloadRequest(req PreloadRequest) {
	pm.mu.Lock()
	pm.stats.LastDirection = req.Direction
	pm.mu.Unlock()

	pageCount := pm.pages.GetPageCount()
	if pageCount == 0 {
		return
	}

	indices := pm.calculatePreloadIndices(req.Index, req.Direction, pageCount)
	for _, idx := range indices {
		select {
		case <-pm.ctx.Done():
			return
		default:
			pm.preloadPage(idx)
		}
	}
}

// calculatePreloadIndices calculates which page indices to preload
func (pm *PreloadManager) calculatePreloadIndices(currentIdx int, direction NavigationDirection, pageCount int) []int {
	var indices []int

	switch direction {
	case NavigationForward:
		for i := 1; i <= pm.maxPreload; i++ {
			idx := currentIdx + i
			if idx < pageCount {
				indices = append(indices, idx)
			}
		}
	case NavigationBackward:
		for i := 1; i <= pm.maxPreload; i++ {
			idx := currentIdx - i
			if idx >= 0 {
				indices = append(indices, idx)
			}
		}
	case NavigationJump:
		// Preload both directions from jump point
		half := pm.maxPreload / 2

		// Forward
		for i := 1; i <= half; i++ {
			idx := currentIdx + i
			if idx < pageCount {
				indices = append(indices, idx)
			}
		}

		// Backward
		for i := 1; i <= half; i++ {
			idx := currentIdx - i
			if idx >= 0 {
				indices = append(indices, idx)
			}
		}
	}

	return indices
}

// preloadPage loads a single page into cache if not already cached
func (pm *PreloadManager) preloadPage(idx int) {
	if idx < 0 || idx >= pm.pages.GetPageCount() {
		return
	}

	ref, ok := pm.pages.getRef(idx)
	if !ok {
		return
	}
	cacheKey := ref.Path

	// Check if already in cache
	if _, ok := pm.pages.cache.Get(cacheKey); ok {
		return // Already cached
	}

	// Load page
	img, err := loadPage(ref)
	if err != nil {
		pm.mu.Lock()
		pm.stats.FailedCount++
		pm.mu.Unlock()
		debugLog("Preload failed for [%d] %s: %v", idx+1, ref.Path, err)

		// Create error image for cache instead of skipping
		img = CreateErrorImage(400, 300, ref.Path, err.Error())
	}

	// Add to cache
	pm.pages.cache.Add(cacheKey, img)

	pm.mu.Lock()
	pm.stats.LoadedCount++
	pm.mu.Unlock()

	debugLog("Preloaded [%d] %s (cache: %d items)", idx+1, ref.Path, pm.pages.cache.Len())
}

// PageManager hands the viewer decoded page images and hides caching,
// archive access and preloading behind the page index
type PageManager interface {
	GetPage(idx int) *ebiten.Image
	GetSpreadPages(idx int) (*ebiten.Image, *ebiten.Image)
	DecodePage(idx int) (image.Image, error)
	SetRefs(refs []PageRef)
	GetPageCount() int
	StartPreload(currentIdx int, direction NavigationDirection)
	StopPreload()
	GetPreloadStats() PreloadStats
}

// DefaultPageManager implements PageManager
type DefaultPageManager struct {
	refs           []PageRef
	cache          *lru.Cache[string, *ebiten.Image]
	mu             sync.RWMutex
	preloadManager *PreloadManager
}

// newPageCache builds the LRU with eviction releasing the GPU texture
func newPageCache(cacheSize int) *lru.Cache[string, *ebiten.Image] {
	evict := func(_ string, img *ebiten.Image) {
		if img != nil {
			img.Deallocate()
		}
	}
	cache, err := lru.NewWithEvict[string, *ebiten.Image](cacheSize, evict)
	if err != nil {
		log.Printf("Error: Failed to create LRU cache: %v", err)
		cache, _ = lru.NewWithEvict[string, *ebiten.Image](16, evict)
	}
	return cache
}

// NewPageManager creates a new DefaultPageManager
func NewPageManager(cacheSize int) PageManager {
	return &DefaultPageManager{
		refs:  []PageRef{},
		cache: newPageCache(cacheSize),
	}
}

// NewPageManagerWithPreload creates a new DefaultPageManager with preload
// configuration
func NewPageManagerWithPreload(cacheSize int, preloadCount int, preloadEnabled bool) PageManager {
	manager := &DefaultPageManager{
		refs:  []PageRef{},
		cache: newPageCache(cacheSize),
	}

	manager.preloadManager = NewPreloadManager(manager, preloadCount)
	manager.preloadManager.SetEnabled(preloadEnabled)

	return manager
}

func (m *DefaultPageManager) SetRefs(refs []PageRef) {
	m.mu.Lock()
	m.refs = refs
	m.mu.Unlock()
	// No need to clear cache since we use file paths as keys
	debugLog("SetRefs: %d new refs, cache preserved (%d items)", len(refs), m.cache.Len())
}

func (m *DefaultPageManager) GetPageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.refs)
}

func (m *DefaultPageManager) StartPreload(currentIdx int, direction NavigationDirection) {
	if m.preloadManager != nil {
		m.preloadManager.StartPreload(currentIdx, direction)
	}
}

func (m *DefaultPageManager) StopPreload() {
	if m.preloadManager != nil {
		m.preloadManager.Stop()
	}
}

func (m *DefaultPageManager) GetPreloadStats() PreloadStats {
	if m.preloadManager != nil {
		return m.preloadManager.GetStats()
	}
	return PreloadStats{}
}

// GetSpreadPages returns the two pages of a left-to-right spread. Either
// side is nil when the index falls outside the book.
func (m *DefaultPageManager) GetSpreadPages(idx int) (*ebiten.Image, *ebiten.Image) {
	return m.GetPage(idx), m.GetPage(idx + 1)
}

func (m *DefaultPageManager) GetPage(idx int) *ebiten.Image {
	m.mu.RLock()
	if idx < 0 || idx >= len(m.refs) {
		m.mu.RUnlock()
		return nil
	}
	ref := m.refs[idx]
	m.mu.RUnlock()
	cacheKey := ref.Path

	// Check if page is already in cache
	img, ok := m.cache.Get(cacheKey)
	if ok {
		debugLog("Cache HIT: %s (cache: %d items)", cacheKey, m.cache.Len())
		return img
	}

	// Load page on demand
	img, err := loadPage(ref)
	if err != nil {
		log.Printf("Error: Failed to load page [%d/%d] %s: %v",
			idx+1, len(m.refs), ref.Path, err)

		// Create error image instead of returning nil
		return CreateErrorImage(400, 300, ref.Path, err.Error())
	}

	// Add to cache
	m.cache.Add(cacheKey, img)

	// Log cache miss with memory info
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	debugLog("Cache MISS: %s, loaded and cached (cache: %d items, memory: %dMB)",
		cacheKey, m.cache.Len(), mem.Alloc/1024/1024)

	return img
}

// DecodePage decodes a page to a raw image without touching the texture
// cache. The PDF exporter reads pages through this from its own goroutine.
func (m *DefaultPageManager) DecodePage(idx int) (image.Image, error) {
	ref, ok := m.getRef(idx)
	if !ok {
		return nil, fmt.Errorf("page %d out of range", idx+1)
	}
	return decodePageImage(ref)
}

// getRef safely returns the PageRef at index if available
func (m *DefaultPageManager) getRef(idx int) (PageRef, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if idx < 0 || idx >= len(m.refs) {
		return PageRef{}, false
	}
	return m.refs[idx], true
}

// cache operations are goroutine-safe via golang-lru; no extra locking needed

// Page loading functions

// readPageData returns the raw encoded bytes of a page
func readPageData(ref PageRef) ([]byte, error) {
	if ref.ArchivePath == "" {
		return os.ReadFile(ref.Path)
	}

	switch archiveFormat(ref.ArchivePath) {
	case "zip":
		return readEntryFromZip(ref.ArchivePath, ref.EntryPath)
	case "rar":
		return readEntryFromRar(ref.ArchivePath, ref.EntryPath)
	case "7z":
		return readEntryFrom7z(ref.ArchivePath, ref.EntryPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", filepath.Ext(ref.ArchivePath))
	}
}

func readEntryFromZip(archivePath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()

			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readEntryFromRar(archivePath, entryPath string) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if header.Name == entryPath {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readEntryFrom7z(archivePath, entryPath string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()

			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

// decodePageImage decodes a page to a raw image
func decodePageImage(ref PageRef) (image.Image, error) {
	data, err := readPageData(ref)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v", ref.Path, err)
	}
	return img, nil
}

// loadPage decodes a page and wraps it in a GPU texture
func loadPage(ref PageRef) (*ebiten.Image, error) {
	img, err := decodePageImage(ref)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

// Page collection functions

func extractPagesFromZip(archivePath string) ([]PageRef, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var pages []PageRef
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isSupportedExt(f.Name) {
			pages = append(pages, PageRef{
				Path:        archivePath + ":" + f.Name,
				ArchivePath: archivePath,
				EntryPath:   f.Name,
				ModTime:     f.Modified,
			})
		}
	}
	return pages, nil
}

func extractPagesFromRar(archivePath string) ([]PageRef, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var pages []PageRef
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if !header.IsDir && isSupportedExt(header.Name) {
			pages = append(pages, PageRef{
				Path:        archivePath + ":" + header.Name,
				ArchivePath: archivePath,
				EntryPath:   header.Name,
				ModTime:     header.ModificationTime,
			})
		}
	}
	return pages, nil
}

func extractPagesFrom7z(archivePath string) ([]PageRef, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var pages []PageRef
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isSupportedExt(f.Name) {
			pages = append(pages, PageRef{
				Path:        archivePath + ":" + f.Name,
				ArchivePath: archivePath,
				EntryPath:   f.Name,
				ModTime:     f.FileInfo().ModTime(),
			})
		}
	}
	return pages, nil
}

// extractArchivePages dispatches on the container format
func extractArchivePages(archivePath string) ([]PageRef, error) {
	switch archiveFormat(archivePath) {
	case "zip":
		return extractPagesFromZip(archivePath)
	case "rar":
		return extractPagesFromRar(archivePath)
	case "7z":
		return extractPagesFrom7z(archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", filepath.Ext(archivePath))
	}
}

// sortPageRefs sorts the given page refs using the specified sort strategy.
// Returns a new sorted slice without modifying the original.
func sortPageRefs(refs []PageRef, sortMethod int) []PageRef {
	strategy := GetSortStrategy(sortMethod)
	return strategy.Sort(refs)
}

// collectPagesFromDir walks a book directory gathering page images. Nested
// archives are expanded in place, so a directory of per-module archives
// still reads as one continuous book.
func collectPagesFromDir(root string, sortMethod int) ([]PageRef, error) {
	var pages []PageRef
	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		if isSupportedExt(path) {
			pages = append(pages, PageRef{
				Path:    path,
				ModTime: fi.ModTime(),
			})
		} else if isArchiveExt(path) {
			archivePages, err := extractArchivePages(path)
			if err != nil {
				log.Printf("Warning: Skipping problematic archive %s: %v", path, err)
				return nil
			}
			pages = append(pages, archivePages...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortPageRefs(pages, sortMethod), nil
}

// collectPagesFromArchive lists the page images of a single archive book
func collectPagesFromArchive(path string, sortMethod int) ([]PageRef, error) {
	pages, err := extractArchivePages(path)
	if err != nil {
		return nil, err
	}
	return sortPageRefs(pages, sortMethod), nil
}
