// Package driving provides interfaces for use-case entrypoints (primary/inbound ports).
package driving

import (
	"context"

	"github.com/esgdev/amaranth/internal/core/domain"
)

// ChatClient is the conversational surface consumed by the CLI.
type ChatClient interface {
	// SendChatRequest assembles and dispatches one chat-completion
	// request: optional topic classification and retrieval-augmented
	// context, projected history, and bounded retry on timeout.
	// The supplied topic is used as-is when non-empty; otherwise the
	// user message is classified when chat context is enabled.
	SendChatRequest(ctx context.Context, systemPrompt, userMessage, topic string, useChatContext, useKnowledgeContext bool) (string, error)

	// AddChatEntry appends a turn to the chat history and then
	// persists its embedding. The append survives an embedding
	// failure; the failure is still reported.
	AddChatEntry(ctx context.Context, turn domain.ChatTurn) error

	// ProcessText ingests free text into the knowledge embedding
	// store, chunked and embedded.
	ProcessText(ctx context.Context, text string) error

	// GetChatHistory returns a snapshot of the current conversation.
	GetChatHistory() []domain.ChatTurn
}
