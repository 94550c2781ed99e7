package retrieval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/vector"
	"go.uber.org/zap"
)

type failingEmbedder struct {
	*embedding.MockEmbedder
}

func (f failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model crashed")
}

func openTemp(t *testing.T) (*Retriever, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "vector_index.faiss")
	r, err := Open(embedding.NewMockEmbedder(8), "memory", path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, path
}

func TestRetriever_EmptyRetrieve(t *testing.T) {
	r, _ := openTemp(t)
	got, err := r.Retrieve(context.Background(), "anything", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestRetriever_AddDocuments(t *testing.T) {
	r, path := openTemp(t)
	ctx := context.Background()
	chunks := []string{"alpha chunk", "beta chunk", "gamma chunk"}
	if err := r.AddDocuments(ctx, chunks, "greek.txt"); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if r.Size() != 3 || r.ChunkCount() != 3 {
		t.Fatalf("Size=%d ChunkCount=%d, want 3", r.Size(), r.ChunkCount())
	}
	for i, m := range r.metadata {
		if m.DocName != "greek.txt" || m.ChunkIndex != i || m.Content != chunks[i] {
			t.Errorf("metadata[%d] = %+v", i, m)
		}
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("index file not written: %v", err)
	}
	if _, err := os.Stat(path + ".meta"); err != nil {
		t.Errorf("metadata file not written: %v", err)
	}
}

func TestRetriever_AddDocumentsEmptyIsNoop(t *testing.T) {
	r, path := openTemp(t)
	if err := r.AddDocuments(context.Background(), nil, "x.txt"); err != nil {
		t.Fatal(err)
	}
	if r.Size() != 0 {
		t.Errorf("Size=%d", r.Size())
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("no-op add should not write the index")
	}
}

func TestRetriever_RetrieveOrderedAndCapped(t *testing.T) {
	r, _ := openTemp(t)
	ctx := context.Background()
	if err := r.AddDocuments(ctx, []string{"one", "two", "three", "four"}, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := r.AddDocuments(ctx, []string{"five"}, "b.txt"); err != nil {
		t.Fatal(err)
	}
	got, err := r.Retrieve(ctx, "three", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	// the mock embedder maps identical text to the identical vector
	if got[0].Content != "three" || got[0].Score > 1e-6 {
		t.Errorf("best = %+v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score > got[i].Score {
			t.Errorf("results not ascending: %v", got)
		}
	}
	all, _ := r.Retrieve(ctx, "three", 50)
	if len(all) != 5 {
		t.Errorf("top_k above size: got %d results", len(all))
	}
}

func TestRetriever_FailedEmbeddingLeavesStateUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx")
	mock := embedding.NewMockEmbedder(8)
	r, err := Open(mock, "memory", path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := r.AddDocuments(ctx, []string{"kept"}, "keep.txt"); err != nil {
		t.Fatal(err)
	}
	r.embedder = failingEmbedder{mock}
	if err := r.AddDocuments(ctx, []string{"lost", "lost too"}, "fail.txt"); err == nil {
		t.Fatal("expected embedding error")
	}
	if r.Size() != 1 || r.ChunkCount() != 1 {
		t.Errorf("Size=%d ChunkCount=%d after failed add, want 1", r.Size(), r.ChunkCount())
	}
	reopened, err := Open(mock, "memory", path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Size() != 1 {
		t.Errorf("persisted size = %d, want 1", reopened.Size())
	}
}

func TestRetriever_ReopenRestoresState(t *testing.T) {
	r, path := openTemp(t)
	ctx := context.Background()
	_ = r.AddDocuments(ctx, []string{"the sky is blue"}, "sky.txt")
	_ = r.AddDocuments(ctx, []string{"grass is green", "roses are red"}, "garden.pdf")

	reopened, err := Open(embedding.NewMockEmbedder(8), "memory", path, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Size() != 3 {
		t.Errorf("Size = %d, want 3", reopened.Size())
	}
	docs := reopened.Documents()
	if len(docs) != 2 || docs[0] != "garden.pdf" || docs[1] != "sky.txt" {
		t.Errorf("Documents = %v", docs)
	}
	got, err := reopened.Retrieve(ctx, "roses are red", 1)
	if err != nil || len(got) != 1 || got[0].DocName != "garden.pdf" || got[0].ChunkIndex != 1 {
		t.Errorf("Retrieve after reopen = %+v, %v", got, err)
	}
}

func TestOpen_countMismatch(t *testing.T) {
	r, path := openTemp(t)
	_ = r.AddDocuments(context.Background(), []string{"a", "b"}, "x.txt")
	if err := saveMetadata(path+".meta", []models.ChunkMetadata{{DocName: "x.txt", Content: "a"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(embedding.NewMockEmbedder(8), "memory", path); err == nil {
		t.Error("expected error for index/metadata count mismatch")
	}
}

func TestOpen_missingMetadataWithVectors(t *testing.T) {
	r, path := openTemp(t)
	_ = r.AddDocuments(context.Background(), []string{"a"}, "x.txt")
	if err := os.Remove(path + ".meta"); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(embedding.NewMockEmbedder(8), "memory", path); err == nil {
		t.Error("expected error when metadata is missing for stored vectors")
	}
}

func TestRetriever_HasDocument(t *testing.T) {
	r, _ := openTemp(t)
	_ = r.AddDocuments(context.Background(), []string{"a"}, "x.txt")
	if !r.HasDocument("x.txt") || r.HasDocument("y.txt") {
		t.Error("HasDocument mismatch")
	}
}

// sentinelIndex reports one real neighbour and pads the rest with NoMatch, as FAISS does.
type sentinelIndex struct {
	*vector.MemoryIndex
}

func (s sentinelIndex) Search(ctx context.Context, q []float32, k int) ([]vector.Neighbor, error) {
	got, err := s.MemoryIndex.Search(ctx, q, k)
	if err != nil {
		return nil, err
	}
	for len(got) < k {
		got = append(got, vector.Neighbor{Position: vector.NoMatch, Distance: 3.4e38})
	}
	return got, nil
}

func TestRetriever_SkipsNoMatchSlots(t *testing.T) {
	mem, _ := vector.NewMemoryIndex(8)
	r := &Retriever{
		embedder: embedding.NewMockEmbedder(8),
		index:    sentinelIndex{mem},
		logger:   zap.NewNop(),
	}
	ctx := context.Background()
	if err := r.AddDocuments(ctx, []string{"only chunk"}, "one.txt"); err != nil {
		t.Fatal(err)
	}
	got, err := r.Retrieve(ctx, "only chunk", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Content != "only chunk" {
		t.Errorf("got %+v, want the single real match", got)
	}
}

func TestOpen_requiresEmbedder(t *testing.T) {
	if _, err := Open(nil, "memory", ""); err == nil {
		t.Error("expected error without embedder")
	}
}

func TestRetriever_SaveFailureKeepsChunksSearchable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	r, err := Open(embedding.NewMockEmbedder(8), "memory", filepath.Join(dir, "idx"))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	// replace the data directory with a file so that saving fails
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dir, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	err = r.AddDocuments(context.Background(), []string{"only in memory"}, "mem.txt")
	if !errors.Is(err, ErrNotPersisted) {
		t.Fatalf("err = %v, want ErrNotPersisted", err)
	}
	if errors.Is(err, ErrClosed) {
		t.Error("save failure must not look like a closed retriever")
	}
	if r.Size() != 1 || !r.HasDocument("mem.txt") {
		t.Errorf("Size=%d HasDocument=%v, want the chunk kept in memory", r.Size(), r.HasDocument("mem.txt"))
	}
}
