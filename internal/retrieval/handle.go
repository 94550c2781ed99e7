package retrieval

import (
	"sync"
	"sync/atomic"

	"github.com/hyperjump/docqa/internal/embedding"
	"go.uber.org/zap"
)

// Handle is the owned reference to the live Retriever. Request handlers call
// Current for each operation; Clear atomically swaps in a fresh empty Retriever.
type Handle struct {
	current   atomic.Pointer[Retriever]
	embedder  embedding.Embedder
	indexType string
	indexPath string
	opts      []Option
	clearMu   sync.Mutex
	logger    *zap.Logger
}

// NewHandle opens a Retriever (loading persisted state) and wraps it in a Handle.
func NewHandle(embedder embedding.Embedder, indexType, indexPath string, logger *zap.Logger) (*Handle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []Option{WithLogger(logger)}
	r, err := Open(embedder, indexType, indexPath, opts...)
	if err != nil {
		return nil, err
	}
	h := &Handle{
		embedder:  embedder,
		indexType: indexType,
		indexPath: indexPath,
		opts:      opts,
		logger:    logger,
	}
	h.current.Store(r)
	return h, nil
}

// Current returns the live Retriever.
func (h *Handle) Current() *Retriever {
	return h.current.Load()
}

// Clear deletes the persisted index and metadata and replaces the live Retriever
// with an empty one. Operations already holding the old Retriever see it as empty;
// AddDocuments on it fails with ErrClosed.
func (h *Handle) Clear() error {
	h.clearMu.Lock()
	defer h.clearMu.Unlock()

	fresh, err := newEmpty(h.embedder, h.indexType, h.indexPath, h.opts...)
	if err != nil {
		return err
	}
	old := h.current.Load()
	if err := old.retire(func() { h.current.Store(fresh) }); err != nil {
		_ = fresh.Close()
		return err
	}
	h.logger.Debug("retriever cleared", zap.String("index_path", h.indexPath))
	return nil
}

// Close closes the live Retriever.
func (h *Handle) Close() error {
	return h.current.Load().Close()
}
