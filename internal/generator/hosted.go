package generator

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/hyperjump/docqa/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// zeroTemperature stands in for temperature 0, which the client omits from the request.
const zeroTemperature = math.SmallestNonzeroFloat32

// HostedBackend answers with a remote chat-completion model.
type HostedBackend struct {
	client *openai.Client
	model  string
}

// NewHostedBackend creates a chat-completion backend. An API key is required.
func NewHostedBackend(cfg config.HostedConfig) (*HostedBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("hosted generator requires an API key")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultHostedModel
	}
	return &HostedBackend{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Name returns "hosted".
func (h *HostedBackend) Name() string { return BackendHosted }

// Generate sends HostedPrompt as one user message with deterministic decoding and
// returns the trimmed reply.
func (h *HostedBackend) Generate(ctx context.Context, query string, contexts []string) (string, error) {
	resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: h.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: HostedPrompt(query, contexts)},
		},
		Temperature: zeroTemperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
