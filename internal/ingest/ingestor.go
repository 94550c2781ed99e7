package ingest

import (
	"fmt"

	"github.com/hyperjump/docqa/internal/extract"
	"go.uber.org/zap"
)

// Ingestor extracts text from files and chunks it.
type Ingestor struct {
	extractor *extract.Extractor
	chunker   *Chunker
	logger    *zap.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IngestorOption {
	return func(in *Ingestor) { in.logger = l }
}

// NewIngestor creates an ingestor. extractor may be nil, in which case a default
// extractor is used.
func NewIngestor(chunkSize, chunkOverlap int, extractor *extract.Extractor, opts ...IngestorOption) *Ingestor {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	in := &Ingestor{
		extractor: extractor,
		chunker:   NewChunker(chunkSize, chunkOverlap),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// ExtractText returns the raw text of the file at path.
// Fails with extract.ErrUnsupportedFormat for anything but .txt and .pdf.
func (in *Ingestor) ExtractText(path string) (string, error) {
	return in.extractor.Extract(path)
}

// ChunkText normalizes text and splits it into overlapping chunks.
func (in *Ingestor) ChunkText(text string) []string {
	return in.chunker.Chunk(text)
}

// ProcessFile extracts and chunks one document, returning its chunks in order.
func (in *Ingestor) ProcessFile(path string) ([]string, error) {
	text, err := in.ExtractText(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	chunks := in.ChunkText(text)
	in.logger.Debug("ingest file processed",
		zap.String("path", path),
		zap.Int("chars", len(text)),
		zap.Int("chunks", len(chunks)))
	return chunks, nil
}
