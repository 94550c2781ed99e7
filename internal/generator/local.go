package generator

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/hyperjump/docqa/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// LocalModel is a text-generation model. Generate returns the prompt followed by
// the model's greedy continuation of at most maxNewTokens tokens.
type LocalModel interface {
	Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error)
}

// LocalBackend answers with a small local model and the strict LocalPrompt.
type LocalBackend struct {
	model        LocalModel
	maxNewTokens int
}

// NewLocalBackend wraps model. maxNewTokens <= 0 uses the default of 128.
func NewLocalBackend(model LocalModel, maxNewTokens int) *LocalBackend {
	if maxNewTokens <= 0 {
		maxNewTokens = config.DefaultMaxNewTokens
	}
	return &LocalBackend{model: model, maxNewTokens: maxNewTokens}
}

// Name returns "local".
func (l *LocalBackend) Name() string { return BackendLocal }

// Generate runs the model and extracts its answer. Answers shorter than five
// characters are treated as a refusal; others get the local answer prefix.
func (l *LocalBackend) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	prompt := LocalPrompt(query, contexts)
	generated, err := l.model.Generate(ctx, prompt, l.maxNewTokens)
	if err != nil {
		return "", err
	}
	answer := extractAnswer(generated, prompt)
	if utf8.RuneCountInString(answer) < minAnswerLen {
		return RefusalAnswer, nil
	}
	return localPrefix + answer, nil
}

// CompletionModel is a LocalModel served by an OpenAI-compatible completion
// endpoint, such as llama.cpp's server or Ollama.
type CompletionModel struct {
	client *openai.Client
	model  string
}

// NewCompletionModel creates a client for cfg.BaseURL. Local servers ignore the API key.
func NewCompletionModel(cfg config.LocalConfig) *CompletionModel {
	clientCfg := openai.DefaultConfig("local")
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &CompletionModel{client: openai.NewClientWithConfig(clientCfg), model: cfg.Model}
}

// Generate requests a greedy completion and returns prompt + completion text.
func (m *CompletionModel) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	resp, err := m.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       m.model,
		Prompt:      prompt,
		MaxTokens:   maxNewTokens,
		Temperature: zeroTemperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return prompt + resp.Choices[0].Text, nil
}
