package retrieval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hyperjump/docqa/internal/embedding"
)

func TestHandle_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vector_index.faiss")
	h, err := NewHandle(embedding.NewMockEmbedder(8), "memory", path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	old := h.Current()
	if err := old.AddDocuments(ctx, []string{"the sky is blue"}, "sky.txt"); err != nil {
		t.Fatal(err)
	}

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cur := h.Current()
	if cur == old {
		t.Fatal("Clear should swap in a new retriever")
	}
	if cur.Size() != 0 || len(cur.Documents()) != 0 {
		t.Error("new retriever should be empty")
	}
	for _, p := range []string{path, path + ".meta"} {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s should be removed", p)
		}
	}

	// stale references see an empty, closed retriever
	if got, err := old.Retrieve(ctx, "sky", 3); err != nil || len(got) != 0 {
		t.Errorf("old Retrieve = %v, %v", got, err)
	}
	if err := old.AddDocuments(ctx, []string{"x"}, "x.txt"); !errors.Is(err, ErrClosed) {
		t.Errorf("old AddDocuments error = %v, want ErrClosed", err)
	}

	if err := cur.AddDocuments(ctx, []string{"grass is green"}, "grass.txt"); err != nil {
		t.Fatal(err)
	}
	reopened, err := Open(embedding.NewMockEmbedder(8), "memory", path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if docs := reopened.Documents(); len(docs) != 1 || docs[0] != "grass.txt" {
		t.Errorf("documents after clear and add = %v", docs)
	}
}

func TestHandle_ClearOnEmpty(t *testing.T) {
	h, err := NewHandle(embedding.NewMockEmbedder(4), "memory", filepath.Join(t.TempDir(), "idx"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	if err := h.Clear(); err != nil {
		t.Errorf("Clear on empty: %v", err)
	}
}

func TestHandle_ConcurrentAddsKeepAlignment(t *testing.T) {
	h, err := NewHandle(embedding.NewMockEmbedder(8), "memory", filepath.Join(t.TempDir(), "idx"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i)) + ".txt"
			_ = h.Current().AddDocuments(ctx, []string{name + " one", name + " two"}, name)
		}(i)
	}
	wg.Wait()
	r := h.Current()
	if r.Size() != 16 || r.ChunkCount() != 16 {
		t.Errorf("Size=%d ChunkCount=%d, want 16", r.Size(), r.ChunkCount())
	}
	if len(r.Documents()) != 8 {
		t.Errorf("documents = %v", r.Documents())
	}
}
