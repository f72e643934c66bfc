package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
	"github.com/esgdev/amaranth/internal/core/ports/driving"
	"github.com/esgdev/amaranth/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatClient = (*ChatService)(nil)

// Default orchestration parameters.
const (
	DefaultMaxRetries          = 3
	DefaultBaseRetryInterval   = 2 * time.Second
	DefaultRequestTimeout      = 120 * time.Second
	DefaultMinSimilarity       = 0.2
	DefaultChatCandidates      = 10
	DefaultKnowledgeCandidates = 3
)

// ChatConfig configures the conversation orchestrator.
type ChatConfig struct {
	// ChatModel is the completion model used for chat requests.
	ChatModel string

	// MaxRetries is the total number of attempts for a completion
	// call that keeps timing out.
	MaxRetries int

	// BaseRetryInterval is the first backoff delay; it doubles on
	// every further attempt.
	BaseRetryInterval time.Duration

	// RequestTimeout bounds each individual completion attempt.
	RequestTimeout time.Duration

	// MinSimilarity is the threshold a chat-context hit must reach to
	// contribute a context line. Knowledge context is unfiltered.
	MinSimilarity float64

	// ChatCandidates is how many conversation chunks to retrieve
	// before threshold filtering.
	ChatCandidates int

	// KnowledgeCandidates is how many knowledge chunks to retrieve.
	KnowledgeCandidates int
}

func (c ChatConfig) withDefaults() ChatConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseRetryInterval <= 0 {
		c.BaseRetryInterval = DefaultBaseRetryInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MinSimilarity == 0 {
		c.MinSimilarity = DefaultMinSimilarity
	}
	if c.ChatCandidates <= 0 {
		c.ChatCandidates = DefaultChatCandidates
	}
	if c.KnowledgeCandidates <= 0 {
		c.KnowledgeCandidates = DefaultKnowledgeCandidates
	}
	return c
}

// ChatService orchestrates retrieval-augmented chat requests: it
// classifies topics, retrieves similar prior content, assembles the
// message sequence, dispatches it with bounded retry on timeout, and
// keeps the conversational embedding memory up to date.
type ChatService struct {
	cfg         ChatConfig
	inference   driven.InferenceService
	history     *ChatHistory
	textManager *TextEmbeddingManager
	chatManager *ChatEmbeddingManager
	classifier  *TopicClassifier
	settings    driven.SettingsStore

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(time.Duration)
}

// NewChatService creates the conversation orchestrator.
func NewChatService(
	cfg ChatConfig,
	inference driven.InferenceService,
	history *ChatHistory,
	textManager *TextEmbeddingManager,
	chatManager *ChatEmbeddingManager,
	classifier *TopicClassifier,
	settings driven.SettingsStore,
) *ChatService {
	return &ChatService{
		cfg:         cfg.withDefaults(),
		inference:   inference,
		history:     history,
		textManager: textManager,
		chatManager: chatManager,
		classifier:  classifier,
		settings:    settings,
		sleep:       time.Sleep,
	}
}

// History returns the conversation history owned by this service.
func (s *ChatService) History() *ChatHistory {
	return s.history
}

// GetChatHistory returns a snapshot of the current conversation.
func (s *ChatService) GetChatHistory() []domain.ChatTurn {
	return s.history.Snapshot()
}

// SendChatRequest implements the request state machine described on
// the driving port: history projection, optional system-prompt
// priming, optional retrieval-augmented context, dispatch with
// bounded exponential backoff on timeout, and unconditional
// persistence of the user turn's embedding.
func (s *ChatService) SendChatRequest(
	ctx context.Context, systemPrompt, userMessage, topic string, useChatContext, useKnowledgeContext bool,
) (string, error) {
	logger.Section("Chat Request")
	logger.Debug("Message: %q (chatContext=%t knowledgeContext=%t)", userMessage, useChatContext, useKnowledgeContext)

	var messages []driven.ChatMessage

	// System-prompt priming: one completion call whose first returned
	// message conditions the model but is never shown to the user.
	if strings.TrimSpace(systemPrompt) != "" {
		priming, err := s.completeWithRetry(ctx, []driven.ChatMessage{
			{Role: domain.RoleSystem, Content: systemPrompt},
		})
		if err != nil {
			return "", fmt.Errorf("priming system prompt: %w", err)
		}
		messages = append(messages, driven.ChatMessage{Role: domain.RoleModel, Content: priming})
	}

	var contextLines []string

	if useChatContext {
		resolved, lines := s.chatContext(ctx, userMessage, topic)
		topic = resolved
		contextLines = append(contextLines, lines...)
	}

	if useKnowledgeContext {
		contextLines = append(contextLines, s.knowledgeContext(ctx, userMessage)...)
	}

	if len(contextLines) > 0 {
		messages = append(messages, driven.ChatMessage{
			Role:    domain.RoleSystem,
			Content: "Topic: " + topic + "\nRelevant information:\n" + strings.Join(contextLines, "\n"),
		})
		logger.Debug("Injected %d context line(s)", len(contextLines))
	}

	for _, t := range s.history.Snapshot() {
		messages = append(messages, driven.ChatMessage{Role: t.Role, Content: t.Text})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: userMessage})

	// Conversational memory accumulates for every accepted user turn,
	// even when context retrieval is disabled for this call.
	userTurn := domain.ChatTurn{
		Text:      userMessage,
		Role:      domain.RoleUser,
		Topic:     topic,
		CreatedAt: time.Now(),
	}
	if err := s.ProcessChatEntry(ctx, userTurn); err != nil {
		logger.Warn("Failed to persist user turn embedding: %v", err)
	}

	response, err := s.completeWithRetry(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return response, nil
}

// chatContext classifies the user message when no topic was supplied
// and retrieves similar prior conversation chunks above the minimum
// similarity threshold. Returns the resolved topic and the context
// lines.
func (s *ChatService) chatContext(ctx context.Context, userMessage, topic string) (string, []string) {
	if topic == "" {
		classified, err := s.classifier.Classify(ctx, userMessage)
		if err != nil {
			// Service-level classification failure: skip enrichment
			// rather than failing the whole request.
			logger.Warn("Topic classification failed, skipping chat context: %v", err)
			return topic, nil
		}
		topic = classified
	}

	query := domain.ChatTurn{Text: userMessage, Role: domain.RoleUser, Topic: topic, CreatedAt: time.Now()}
	records, err := s.chatManager.GenerateEmbeddings(ctx, query)
	if err != nil || len(records) == 0 {
		logger.Warn("Chat context embedding failed: %v", err)
		return topic, nil
	}

	hits := s.chatManager.FindSimilar(ctx, records[0], s.cfg.ChatCandidates)
	var lines []string
	for _, hit := range hits {
		if hit.Similarity < s.cfg.MinSimilarity {
			continue
		}
		lines = append(lines, "chat history: "+hit.Chunk)
	}
	logger.Debug("Chat context: %d hit(s), %d above threshold %.2f", len(hits), len(lines), s.cfg.MinSimilarity)
	return topic, lines
}

// knowledgeContext retrieves the nearest knowledge chunks for the
// user message. No similarity threshold applies here.
func (s *ChatService) knowledgeContext(ctx context.Context, userMessage string) []string {
	records, err := s.textManager.GenerateEmbeddings(ctx, userMessage)
	if err != nil || len(records) == 0 {
		logger.Warn("Knowledge context embedding failed: %v", err)
		return nil
	}

	hits := s.textManager.FindSimilar(ctx, records[0], s.cfg.KnowledgeCandidates)
	lines := make([]string, 0, len(hits))
	for _, hit := range hits {
		lines = append(lines, "knowledge: "+hit.Chunk)
	}
	logger.Debug("Knowledge context: %d hit(s)", len(lines))
	return lines
}

// completeWithRetry dispatches one chat completion with bounded
// exponential backoff. Only timeout-class failures are retried; any
// other failure, including an empty response payload, is terminal.
func (s *ChatService) completeWithRetry(ctx context.Context, messages []driven.ChatMessage) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		content, err := s.inference.Chat(callCtx, s.cfg.ChatModel, messages, driven.ChatOptions{})
		cancel()

		if err == nil {
			if strings.TrimSpace(content) == "" {
				return "", domain.ErrEmptyResponse
			}
			return content, nil
		}
		if !domain.IsRetryable(err) {
			return "", err
		}

		lastErr = err
		if attempt < s.cfg.MaxRetries {
			delay := s.cfg.BaseRetryInterval * (1 << (attempt - 1))
			logger.Warn("Attempt %d/%d timed out, retrying in %s", attempt, s.cfg.MaxRetries, delay)
			s.sleep(delay)
		}
	}

	return "", fmt.Errorf("all %d attempts timed out: %w", s.cfg.MaxRetries, lastErr)
}

// AddChatEntry appends a turn to the history, then generates and
// persists its embedding. History is never unwound when embedding
// fails; the failure is surfaced to the caller instead.
func (s *ChatService) AddChatEntry(ctx context.Context, turn domain.ChatTurn) error {
	s.history.Append(turn)
	if err := s.ProcessChatEntry(ctx, turn); err != nil {
		return fmt.Errorf("chat entry kept in history, embedding not persisted: %w", err)
	}
	return nil
}

// ProcessChatEntry generates and persists conversation chunk
// embeddings for a turn.
func (s *ChatService) ProcessChatEntry(ctx context.Context, turn domain.ChatTurn) error {
	records, err := s.chatManager.GenerateEmbeddings(ctx, turn)
	if err != nil {
		return err
	}
	if !s.chatManager.SaveEmbeddings(ctx, records) {
		return fmt.Errorf("saving chat chunk embeddings: store reported failure")
	}
	return nil
}

// ProcessText ingests free text into the knowledge embedding store.
func (s *ChatService) ProcessText(ctx context.Context, text string) error {
	records, err := s.textManager.GenerateEmbeddings(ctx, text)
	if err != nil {
		return err
	}
	if !s.textManager.SaveEmbeddings(ctx, records) {
		return fmt.Errorf("saving text embeddings: store reported failure")
	}
	return nil
}

// SaveSystemPrompt persists the free-text system prompt across
// sessions. Returns false when the settings store reports failure.
func (s *ChatService) SaveSystemPrompt(prompt string) bool {
	return s.settings.SaveValue(driven.SettingSystemPrompt, prompt)
}

// SystemPrompt returns the persisted system prompt, if any.
func (s *ChatService) SystemPrompt() string {
	value, _ := s.settings.GetValue(driven.SettingSystemPrompt)
	return value
}
