package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tmoravec/pastiche/internal/store"
	"github.com/tmoravec/pastiche/internal/testutil"
)

// createTestStore creates a new on-disk store in a temp dir.
func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEngine builds an engine over a fresh store with the fixed
// test catalog and sequential paste tokens.
func createTestEngine(t *testing.T, cfg Config) (*Engine, *store.Store) {
	t.Helper()
	s := createTestStore(t)
	if cfg.Tokens == nil {
		cfg.Tokens = sequentialTokens()
	}
	return New(s, testutil.Catalog(), cfg), s
}

// sequentialTokens generates "token-1", "token-2", ... without a
// fixed limit.
func sequentialTokens() TokenGenerator {
	return &countingGenerator{}
}

type countingGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *countingGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("token-%d", g.n)
}

// recordingHooks records which hooks fired for which items.
type recordingHooks struct {
	mu          sync.Mutex
	changed     []int64
	thumbnails  []int64
	sidecars    []int64
	aspects     []int64
	sidecarErr  error
}

func (h *recordingHooks) HistoryChanged(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.changed = append(h.changed, id)
}

func (h *recordingHooks) ThumbnailInvalidated(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.thumbnails = append(h.thumbnails, id)
}

func (h *recordingHooks) SyncSidecar(_ context.Context, id int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sidecars = append(h.sidecars, id)
	return h.sidecarErr
}

func (h *recordingHooks) AspectRatioChanged(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.aspects = append(h.aspects, id)
}
