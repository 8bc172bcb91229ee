package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// saveRequest carries one page snapshot to the background writer
type saveRequest struct {
	BookID string
	Page   int
	Snap   Snapshot
}

// AnnotationStore persists page snapshots as JSON files under
// <dir>/<bookID>/page-NNNN.json. Writes happen on a background goroutine so
// page turns and explicit saves never block on disk.
type AnnotationStore struct {
	requestChan chan saveRequest
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	closeOnce   sync.Once
	dir         string
}

// NewAnnotationStore creates a store rooted at dir and starts its writer
func NewAnnotationStore(dir string) *AnnotationStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &AnnotationStore{
		requestChan: make(chan saveRequest, 64),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		dir:         dir,
	}

	go s.worker()

	return s
}

// SavePage queues a snapshot for writing and returns immediately. If the
// queue is full the request is dropped with a warning; the in-memory state
// is unaffected either way.
func (s *AnnotationStore) SavePage(bookID string, page int, snap Snapshot) {
	select {
	case s.requestChan <- saveRequest{BookID: bookID, Page: page, Snap: snap}:
	default:
		log.Printf("Warning: annotation save queue full, dropping save for page %d", page+1)
	}
}

// Close stops the writer after flushing queued requests. Safe to call
// more than once.
func (s *AnnotationStore) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

// worker runs the background writer goroutine
func (s *AnnotationStore) worker() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			// Flush whatever is still queued before exiting
			for {
				select {
				case req := <-s.requestChan:
					s.writeSnapshot(req)
				default:
					return
				}
			}
		case req := <-s.requestChan:
			s.writeSnapshot(req)
		}
	}
}

// writeSnapshot persists one request. An empty snapshot removes the page
// file instead, so a cleared page does not resurrect old strokes on the
// next open.
func (s *AnnotationStore) writeSnapshot(req saveRequest) {
	bookDir := filepath.Join(s.dir, req.BookID)
	path := filepath.Join(bookDir, pageFileName(req.Page))

	if req.Snap.IsEmpty() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to remove annotation file %s: %v", path, err)
		}
		return
	}

	if err := os.MkdirAll(bookDir, 0755); err != nil {
		log.Printf("Error: failed to create annotation directory %s: %v", bookDir, err)
		return
	}

	data, err := json.MarshalIndent(req.Snap, "", "  ")
	if err != nil {
		log.Printf("Error: failed to encode annotations for page %d: %v", req.Page+1, err)
		return
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Error: failed to write annotation file %s: %v", path, err)
	}
}

// LoadAll reads every persisted snapshot of a book. Missing directories and
// unreadable files are not errors; the viewer simply starts those pages
// blank.
func (s *AnnotationStore) LoadAll(bookID string) map[int]Snapshot {
	result := make(map[int]Snapshot)

	bookDir := filepath.Join(s.dir, bookID)
	entries, err := os.ReadDir(bookDir)
	if err != nil {
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		page, ok := parsePageFileName(entry.Name())
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(bookDir, entry.Name()))
		if err != nil {
			log.Printf("Warning: failed to read annotation file %s: %v", entry.Name(), err)
			continue
		}

		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			log.Printf("Warning: skipping corrupt annotation file %s: %v", entry.Name(), err)
			continue
		}
		if snap.IsEmpty() {
			continue
		}
		result[page] = snap
	}

	return result
}

// pageFileName builds the on-disk name for a page index
func pageFileName(page int) string {
	return fmt.Sprintf("page-%04d.json", page)
}

// parsePageFileName extracts the page index from a snapshot file name
func parsePageFileName(name string) (int, bool) {
	if !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	num := strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".json")
	page, err := strconv.Atoi(num)
	if err != nil || page < 0 {
		return 0, false
	}
	return page, true
}
