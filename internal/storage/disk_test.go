package storage

import (
	"os"
	"path/filepath"
	"testing"
)

// dataLayout writes an index, its sidecar, and an uploads directory, and returns their paths.
func dataLayout(t *testing.T) (index, meta, uploads string) {
	t.Helper()
	dir := t.TempDir()
	index = filepath.Join(dir, "vector_index.faiss")
	meta = index + ".meta"
	uploads = filepath.Join(dir, "uploads")
	files := []struct{ path, content string }{
		{index, "0123456789"},
		{meta, "abcd"},
		{filepath.Join(uploads, "sky.txt"), "blue"},
		{filepath.Join(uploads, "nested", "a"), "xy"},
	}
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return index, meta, uploads
}

func TestDiskUsageBytes(t *testing.T) {
	index, meta, uploads := dataLayout(t)
	missing := filepath.Join(filepath.Dir(index), "docqa.db")
	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"index file", []string{index}, 10},
		{"index and sidecar", []string{index, meta}, 14},
		{"uploads dir recursive", []string{uploads}, 6},
		{"everything", []string{index, meta, uploads}, 20},
		{"missing database skipped", []string{missing, index}, 10},
		{"empty path skipped", []string{"", meta}, 4},
		{"nothing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DiskUsageBytes = %d, want %d", got, tt.want)
			}
		})
	}
}
