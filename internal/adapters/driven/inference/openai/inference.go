// Package openai provides an inference service adapter for the
// OpenAI API and compatible servers (LM Studio, llama.cpp server).
package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
)

// Ensure InferenceService implements the interface.
var _ driven.InferenceService = (*InferenceService)(nil)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 120 * time.Second

// Config holds configuration for the OpenAI inference service.
type Config struct {
	// APIKey is the API key (required for api.openai.com, often a
	// placeholder for local compatible servers).
	APIKey string

	// BaseURL overrides the API base URL. Empty means api.openai.com.
	BaseURL string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// InferenceService provides embedding, chat, and completion
// operations through an OpenAI-compatible API.
type InferenceService struct {
	client *openai.Client
}

// NewInferenceService creates a new OpenAI inference service.
func NewInferenceService(cfg Config) (*InferenceService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &InferenceService{client: openai.NewClientWithConfig(clientCfg)}, nil
}

// Embed generates one vector per input string, order-preserved.
func (s *InferenceService) Embed(ctx context.Context, model string, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(model),
		Input: inputs,
	})
	if err != nil {
		return nil, mapErr("create embeddings", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(inputs))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float64, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Chat sends a message sequence to the chat-completions endpoint and
// returns the reply content.
func (s *InferenceService) Chat(ctx context.Context, model string, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	wireMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		wireMessages[i] = openai.ChatCompletionMessage{
			Role:    wireRole(msg.Role),
			Content: msg.Content,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    wireMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		return "", mapErr("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Generate produces a single-turn completion by sending the prompt as
// one user message. TopK is not part of the OpenAI API and is
// ignored.
func (s *InferenceService) Generate(ctx context.Context, model, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
	})
	if err != nil {
		return "", mapErr("completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ListModels returns the models the server can serve.
func (s *InferenceService) ListModels(ctx context.Context) ([]driven.ModelInfo, error) {
	list, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, mapErr("list models", err)
	}

	models := make([]driven.ModelInfo, len(list.Models))
	for i, m := range list.Models {
		models[i] = driven.ModelInfo{Name: m.ID}
	}
	return models, nil
}

// Ping validates the service is reachable by listing models.
func (s *InferenceService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *InferenceService) Close() error {
	return nil
}

// mapErr classifies transport timeouts as the domain timeout error so
// callers can decide retryability.
func mapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRequestTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRequestTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wireRole translates a domain role to the OpenAI role vocabulary.
func wireRole(role domain.Role) string {
	if role == domain.RoleModel {
		return openai.ChatMessageRoleAssistant
	}
	return string(role)
}
