package vector

import (
	"fmt"
	"strings"
)

// IndexType names a flat L2 index implementation (vector.index_type).
type IndexType string

const (
	IndexTypeMemory IndexType = "memory"
	// IndexTypeFAISS is an IndexFlatL2 behind the FAISS C API; needs -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
)

// NewVectorIndex returns an empty index of indexType with the given dimensions.
// The empty string selects memory; names are case-insensitive.
func NewVectorIndex(indexType string, dimensions int) (VectorIndex, error) {
	switch IndexType(strings.ToLower(indexType)) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	case IndexTypeFAISS:
		return NewFAISSIndex(dimensions)
	}
	return nil, fmt.Errorf("unknown index type %q (want %s or %s)", indexType, IndexTypeMemory, IndexTypeFAISS)
}

// Resolve maps a configured index type to one this build can create. FAISS
// falls back to memory when it is not compiled in; fellBack reports that case.
// The two produce the same distances, but their files are not interchangeable.
func Resolve(indexType string) (resolved string, fellBack bool) {
	if IndexType(strings.ToLower(indexType)) == IndexTypeFAISS && !IsFAISSAvailable() {
		return string(IndexTypeMemory), true
	}
	return indexType, false
}

// IsFAISSAvailable reports whether this binary was built with FAISS support.
func IsFAISSAvailable() bool {
	idx, err := NewFAISSIndex(1)
	if err != nil {
		return false
	}
	_ = idx.Close()
	return true
}
