package embedding

import (
	"fmt"
	"path/filepath"

	"github.com/hyperjump/docqa/internal/config"
	"go.uber.org/zap"
)

// Provider names accepted in embedding.provider.
const (
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// New builds the embedder selected by cfg.Provider and wraps it in an LRU cache.
// When the ONNX model or its tokenizer cannot be loaded, New falls back to the
// OpenAI embedder if an API key is configured and fails otherwise.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var inner Embedder
	switch cfg.Provider {
	case ProviderONNX, "":
		e, err := newONNX(cfg)
		if err != nil {
			if cfg.OpenAIAPIKey == "" {
				return nil, fmt.Errorf("ONNX embedder unavailable: %w", err)
			}
			logger.Warn("ONNX embedder unavailable, using OpenAI embeddings",
				zap.String("model_path", cfg.ModelPath), zap.Error(err))
			oe, oerr := NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.Dimensions)
			if oerr != nil {
				return nil, oerr
			}
			inner = oe
		} else {
			inner = e
		}
	case ProviderOpenAI:
		e, err := NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.Dimensions)
		if err != nil {
			return nil, err
		}
		inner = e
	case ProviderMock:
		inner = NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	logger.Debug("embedder ready",
		zap.String("provider", cfg.Provider),
		zap.Int("dimensions", inner.Dimensions()),
		zap.Int("cache_size", cfg.CacheSize))
	if cfg.CacheSize > 0 {
		return NewCachedEmbedder(inner, cfg.CacheSize), nil
	}
	return inner, nil
}

// newONNX loads the tokenizer named by cfg.TokenizerPath, or the one next to the
// model, and then the model itself.
func newONNX(cfg config.EmbeddingConfig) (*ONNXEmbedder, error) {
	tokPath := cfg.TokenizerPath
	if tokPath == "" {
		p, err := FindTokenizerFile(filepath.Dir(cfg.ModelPath))
		if err != nil {
			return nil, err
		}
		tokPath = p
	}
	tok, err := NewWordPieceTokenizer(tokPath)
	if err != nil {
		return nil, err
	}
	return NewONNXEmbedder(cfg.ModelPath, tok, cfg.Dimensions, cfg.MaxTokens)
}
