// Package generator produces answers from retrieved context with a hosted or local model.
package generator

import (
	"context"
	"fmt"

	"github.com/hyperjump/docqa/internal/config"
	"go.uber.org/zap"
)

// RefusalAnswer is returned when there is no context or the local model gives no usable answer.
const RefusalAnswer = "Information not found in provided documents"

// Backend names.
const (
	BackendHosted = "hosted"
	BackendLocal  = "local"
)

// Backend is one answer generation strategy. Implementations are HostedBackend and LocalBackend.
type Backend interface {
	Name() string
	Generate(ctx context.Context, query string, contexts []string) (string, error)
}

// Generator answers questions from context chunks using the backend chosen at construction.
type Generator struct {
	backend Backend
	logger  *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New returns a Generator using backend.
func New(backend Backend, opts ...Option) *Generator {
	g := &Generator{backend: backend, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromConfig picks the backend once: hosted when cfg.Backend is "hosted" or, when
// unset, when a hosted API key is configured; local otherwise.
func FromConfig(cfg config.GeneratorConfig, logger *zap.Logger) (*Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cfg.Backend
	if name == "" {
		name = BackendLocal
		if cfg.Hosted.APIKey != "" {
			name = BackendHosted
		}
	}
	var backend Backend
	switch name {
	case BackendHosted:
		b, err := NewHostedBackend(cfg.Hosted)
		if err != nil {
			return nil, err
		}
		backend = b
	case BackendLocal:
		backend = NewLocalBackend(NewCompletionModel(cfg.Local), cfg.Local.MaxNewTokens)
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.Backend)
	}
	logger.Info("generator backend selected", zap.String("backend", backend.Name()))
	return New(backend, WithLogger(logger)), nil
}

// Backend returns the name of the selected backend.
func (g *Generator) Backend() string {
	return g.backend.Name()
}

// GenerateAnswer answers query from contexts. With no contexts it returns
// RefusalAnswer without calling the backend. Backend failures are returned as
// *BackendError; nothing is retried.
func (g *Generator) GenerateAnswer(ctx context.Context, query string, contexts []string) (string, error) {
	if len(contexts) == 0 {
		return RefusalAnswer, nil
	}
	answer, err := g.backend.Generate(ctx, query, contexts)
	if err != nil {
		g.logger.Error("answer generation failed", zap.String("backend", g.backend.Name()), zap.Error(err))
		return "", &BackendError{Backend: g.backend.Name(), Err: err}
	}
	g.logger.Debug("answer generated",
		zap.String("backend", g.backend.Name()),
		zap.Int("contexts", len(contexts)),
		zap.Int("answer_len", len(answer)))
	return answer, nil
}
