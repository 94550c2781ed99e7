package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/docqa/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_Uploads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	first := &models.Upload{DocName: "sky.txt", Path: "/u/sky.txt", SizeBytes: 16, Chunks: 1, CreatedAt: base}
	if err := store.RecordUpload(ctx, first); err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Error("ID should be set")
	}
	second := &models.Upload{DocName: "report.pdf", SizeBytes: 2048, Chunks: 7, CreatedAt: base.Add(time.Second)}
	if err := store.RecordUpload(ctx, second); err != nil {
		t.Fatal(err)
	}

	n, err := store.CountUploads(ctx)
	if err != nil || n != 2 {
		t.Fatalf("CountUploads = %d, %v", n, err)
	}
	list, err := store.ListUploads(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].DocName != "report.pdf" || list[1].DocName != "sky.txt" {
		t.Fatalf("ListUploads = %+v", list)
	}
	if list[1].Path != "/u/sky.txt" || list[1].Chunks != 1 || list[1].SizeBytes != 16 {
		t.Errorf("upload fields = %+v", list[1])
	}
	paged, _ := store.ListUploads(ctx, 1, 10)
	if len(paged) != 1 || paged[0].DocName != "sky.txt" {
		t.Errorf("offset 1 = %+v", paged)
	}

	if err := store.ClearUploads(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountUploads(ctx); n != 0 {
		t.Errorf("CountUploads after clear = %d", n)
	}
}

func TestSQLiteStorage_Queries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	score := 0.42
	answered := &models.QueryRecord{
		Query:     "What color is the sky?",
		Answer:    "blue",
		BestScore: &score,
		Sources:   []models.SourceSnippet{{DocName: "sky.txt", Content: "The sky is blue.", ChunkIndex: 0, Score: score}},
		CreatedAt: time.Now().Add(-time.Second),
	}
	if err := store.RecordQuery(ctx, answered); err != nil {
		t.Fatal(err)
	}
	refused := &models.QueryRecord{Query: "unknown", Answer: "Information not found in provided documents.", Refused: true}
	if err := store.RecordQuery(ctx, refused); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListQueries(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records", len(got))
	}
	if !got[0].Refused || got[0].BestScore != nil || len(got[0].Sources) != 0 {
		t.Errorf("refused record = %+v", got[0])
	}
	if got[1].Refused || got[1].BestScore == nil || *got[1].BestScore != score {
		t.Errorf("answered record = %+v", got[1])
	}
	if len(got[1].Sources) != 1 || got[1].Sources[0].DocName != "sky.txt" {
		t.Errorf("sources = %+v", got[1].Sources)
	}

	limited, _ := store.ListQueries(ctx, 1)
	if len(limited) != 1 || limited[0].Query != "unknown" {
		t.Errorf("limit 1 = %+v", limited)
	}

	// clearing uploads keeps the query log
	_ = store.ClearUploads(ctx)
	if all, _ := store.ListQueries(ctx, 10); len(all) != 2 {
		t.Errorf("queries after ClearUploads = %d", len(all))
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.RecordUpload(context.Background(), &models.Upload{DocName: "a.txt"})
	_ = store.Close()

	reopened, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if n, _ := reopened.CountUploads(context.Background()); n != 1 {
		t.Errorf("CountUploads after reopen = %d", n)
	}
}
