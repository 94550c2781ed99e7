package cli

import (
	"fmt"

	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/extract"
	"github.com/hyperjump/docqa/internal/generator"
	"github.com/hyperjump/docqa/internal/ingest"
	"github.com/hyperjump/docqa/internal/qa"
	"github.com/hyperjump/docqa/internal/retrieval"
	"github.com/hyperjump/docqa/internal/storage"
	"github.com/hyperjump/docqa/internal/vector"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Handle   *retrieval.Handle
	Service  *qa.Service
}

// Close releases everything that was opened.
func (c *Components) Close() {
	if c.Handle != nil {
		_ = c.Handle.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = store

	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder

	indexType, fellBack := vector.Resolve(cfg.Vector.IndexType)
	if fellBack {
		logger.Warn("FAISS not available in this build, falling back to memory index",
			zap.String("configured", cfg.Vector.IndexType))
	}
	handle, err := retrieval.NewHandle(embedder, indexType, cfg.Storage.IndexPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	c.Handle = handle
	logger.Info("vector index initialized",
		zap.String("type", indexType),
		zap.String("path", cfg.Storage.IndexPath),
		zap.Int("vectors", handle.Current().Size()))

	gen, err := generator.FromConfig(cfg.Generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	ingestor := ingest.NewIngestor(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlapOrDefault(), extract.NewExtractor(), ingest.WithLogger(logger))
	c.Service = qa.NewService(handle, ingestor, gen, qa.Config{
		UploadDir:             cfg.Server.UploadDir,
		RefusalThreshold:      cfg.Query.RefusalThresholdOrDefault(),
		HonorRequestThreshold: cfg.Query.HonorRequestThreshold,
		MaskErrors:            cfg.Generator.MaskErrorsOrDefault(),
		DefaultTopK:           cfg.Query.DefaultTopK,
	}, qa.WithLogger(logger), qa.WithStorage(store))

	ok = true
	return c, nil
}
