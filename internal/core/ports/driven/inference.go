// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/esgdev/amaranth/internal/core/domain"
)

// InferenceService is the language-model inference capability the
// core consumes. It is always external; the core never implements it.
//
// Implementations may include:
//   - Ollama (local models, the default)
//   - OpenAI-compatible servers (LM Studio, llama.cpp server)
type InferenceService interface {
	// Embed generates one vector per input string, order-preserved.
	// The call is atomic: any failure yields no results at all.
	Embed(ctx context.Context, model string, inputs []string) ([][]float64, error)

	// Chat sends an ordered message sequence to the chat-completion
	// endpoint and returns the reply content. A non-success status
	// from the service is an error, never an empty reply.
	Chat(ctx context.Context, model string, messages []ChatMessage, opts ChatOptions) (string, error)

	// Generate produces a single-turn completion from a prompt.
	// Used by topic classification.
	Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error)

	// ListModels returns the models the service can serve.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage is one turn in a chat-completion request.
type ChatMessage struct {
	// Role is one of the domain roles (system, user, model).
	// Adapters translate to their wire vocabulary where it differs.
	Role domain.Role

	// Content is the message text.
	Content string
}

// ChatOptions configures a chat-completion call.
type ChatOptions struct {
	// MaxTokens caps the generated output length. Zero means the
	// service default.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// GenerateOptions configures a single-turn completion call.
type GenerateOptions struct {
	// MaxTokens caps the generated output length.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// TopK restricts sampling to the k most likely tokens.
	TopK int

	// TopP restricts sampling to the smallest nucleus with mass p.
	TopP float64
}

// ModelInfo describes one model the inference service can serve.
type ModelInfo struct {
	// Name is the model identifier used in requests.
	Name string

	// Family is the model architecture family, when reported.
	Family string
}
