// Package retrieval owns the vector index and its parallel chunk metadata.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/vector"
	"go.uber.org/zap"
)

// ErrClosed is returned by AddDocuments on a Retriever that has been replaced by a clear.
var ErrClosed = errors.New("retriever closed")

// ErrNotPersisted is wrapped by AddDocuments when the chunks were added in memory
// but saving the index or metadata failed. They stay searchable until restart.
var ErrNotPersisted = errors.New("document indexed but not persisted")

// Retriever embeds chunks, stores them in a vector index alongside their metadata,
// and answers nearest-neighbour queries. Vector i always belongs to metadata[i].
type Retriever struct {
	embedder  embedding.Embedder
	index     vector.VectorIndex
	metadata  []models.ChunkMetadata
	indexType string
	indexPath string
	closed    bool
	logger    *zap.Logger
	mu        sync.RWMutex
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

// Open creates a Retriever backed by an index of indexType. If a file exists at
// indexPath, the index and its metadata sidecar (indexPath + ".meta") are loaded;
// otherwise the Retriever starts empty. An empty indexPath disables persistence.
func Open(embedder embedding.Embedder, indexType, indexPath string, opts ...Option) (*Retriever, error) {
	r, err := newEmpty(embedder, indexType, indexPath, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.load(); err != nil {
		_ = r.index.Close()
		return nil, err
	}
	r.logger.Debug("retriever opened",
		zap.String("index_type", r.index.Type()),
		zap.String("index_path", indexPath),
		zap.Int("vectors", r.index.Size()))
	return r, nil
}

func newEmpty(embedder embedding.Embedder, indexType, indexPath string, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, errors.New("retriever requires an embedder")
	}
	index, err := vector.NewVectorIndex(indexType, embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	r := &Retriever{
		embedder:  embedder,
		index:     index,
		indexType: indexType,
		indexPath: indexPath,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Retriever) load() error {
	if r.indexPath == "" {
		return nil
	}
	if _, err := os.Stat(r.indexPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat index: %w", err)
	}
	if err := r.index.Load(r.indexPath); err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	meta, err := loadMetadata(r.metadataPath())
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}
	if len(meta) != r.index.Size() {
		return fmt.Errorf("index holds %d vectors but metadata has %d records", r.index.Size(), len(meta))
	}
	r.metadata = meta
	return nil
}

func (r *Retriever) metadataPath() string {
	return r.indexPath + config.MetadataSuffix
}

// AddDocuments embeds chunks and appends them, with metadata naming docName, to the
// index, then rewrites the index and metadata files. Empty input is a no-op.
// If embedding or the index append fails, nothing is modified; if only saving
// fails, the error wraps ErrNotPersisted.
func (r *Retriever) AddDocuments(ctx context.Context, chunks []string, docName string) error {
	if len(chunks) == 0 {
		return nil
	}
	embeddings, err := r.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := r.index.Add(ctx, embeddings); err != nil {
		return fmt.Errorf("failed to index vectors: %w", err)
	}
	for i, chunk := range chunks {
		r.metadata = append(r.metadata, models.ChunkMetadata{
			DocName:    docName,
			Content:    chunk,
			ChunkIndex: i,
		})
	}
	if err := r.persist(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	r.logger.Debug("retriever added document",
		zap.String("doc_name", docName),
		zap.Int("chunks", len(chunks)),
		zap.Int("total_vectors", r.index.Size()))
	return nil
}

// persist rewrites both files. Caller holds the write lock.
func (r *Retriever) persist() error {
	if r.indexPath == "" {
		return nil
	}
	if err := r.index.Save(r.indexPath); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	if err := saveMetadata(r.metadataPath(), r.metadata); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// Retrieve returns up to topK chunks nearest to query, closest (lowest score) first.
// An empty index yields an empty result without embedding the query.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.QueryResult, error) {
	if r.Size() == 0 || topK <= 0 {
		return []models.QueryResult{}, nil
	}
	q, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return []models.QueryResult{}, nil
	}
	neighbors, err := r.index.Search(ctx, q, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	results := make([]models.QueryResult, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Position == vector.NoMatch || n.Position < 0 || n.Position >= int64(len(r.metadata)) {
			continue
		}
		results = append(results, models.QueryResult{
			ChunkMetadata: r.metadata[n.Position],
			Score:         float64(n.Distance),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	return results, nil
}

// Documents returns the sorted unique document names in the index.
func (r *Retriever) Documents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, m := range r.metadata {
		if _, ok := seen[m.DocName]; ok {
			continue
		}
		seen[m.DocName] = struct{}{}
		names = append(names, m.DocName)
	}
	sort.Strings(names)
	return names
}

// HasDocument reports whether any chunk belongs to docName.
func (r *Retriever) HasDocument(docName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.metadata {
		if m.DocName == docName {
			return true
		}
	}
	return false
}

// Size returns the number of indexed vectors.
func (r *Retriever) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return 0
	}
	return r.index.Size()
}

// ChunkCount returns the number of metadata records. It equals Size after every
// successful write.
func (r *Retriever) ChunkCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metadata)
}

// IndexType returns the type of the underlying vector index.
func (r *Retriever) IndexType() string {
	return r.index.Type()
}

// IndexPath returns the index file path ("" when not persisted).
func (r *Retriever) IndexPath() string {
	return r.indexPath
}

// removeFiles deletes the index and metadata files. Caller holds the write lock.
func (r *Retriever) removeFiles() error {
	if r.indexPath == "" {
		return nil
	}
	for _, p := range []string{r.indexPath, r.metadataPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// retire deletes the persisted files, marks r closed, calls swap while still
// holding the write lock, and releases the index. On a file error r is left as is.
func (r *Retriever) retire(swap func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.removeFiles(); err != nil {
		return err
	}
	r.closed = true
	swap()
	r.metadata = nil
	_ = r.index.Close()
	return nil
}

// Close releases the vector index. The embedder is owned by the caller.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.index.Close()
}
