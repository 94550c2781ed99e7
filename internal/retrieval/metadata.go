package retrieval

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/docqa/internal/models"
)

// saveMetadata gob-encodes meta to path, replacing any previous file.
func saveMetadata(path string, meta []models.ChunkMetadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(meta); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode metadata: %w", err)
	}
	return f.Close()
}

// loadMetadata decodes the sidecar at path. A missing file yields no records.
func loadMetadata(path string) ([]models.ChunkMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open metadata file: %w", err)
	}
	defer f.Close()
	var meta []models.ChunkMetadata
	if err := gob.NewDecoder(f).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}
