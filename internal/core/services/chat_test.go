package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esgdev/amaranth/internal/adapters/driven/storage/memory"
	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
)

type chatFixture struct {
	service   *ChatService
	inference *mockInference
	textStore *memory.EmbeddingStore[domain.TextEmbedding]
	chatStore *memory.EmbeddingStore[domain.ChatChunkEmbedding]
}

func newChatFixture(t *testing.T, mock *mockInference) *chatFixture {
	t.Helper()

	chunking := mustChunkingConfig(t, 512, 128)
	textStore := memory.NewTextEmbeddingStore()
	chatStore := memory.NewChatChunkEmbeddingStore()

	svc := NewChatService(
		ChatConfig{
			ChatModel:         "chat-model",
			BaseRetryInterval: time.Millisecond,
		},
		mock,
		NewChatHistory(10),
		NewTextEmbeddingManager(textStore, mock, chunking, "embedder"),
		NewChatEmbeddingManager(chatStore, mock, chunking, "embedder"),
		newTestClassifier(mock),
		memory.NewSettingsStore(),
	)
	svc.sleep = func(time.Duration) {}

	return &chatFixture{service: svc, inference: mock, textStore: textStore, chatStore: chatStore}
}

func TestSendChatRequest_Success(t *testing.T) {
	f := newChatFixture(t, &mockInference{chatResponses: []string{"hello back"}})

	got, err := f.service.SendChatRequest(context.Background(), "", "hello", "", false, false)
	require.NoError(t, err)
	assert.Equal(t, "hello back", got)

	// The dispatched sequence ends with the new user message.
	require.Len(t, f.inference.chatCalls, 1)
	call := f.inference.chatCalls[0]
	require.NotEmpty(t, call)
	assert.Equal(t, domain.RoleUser, call[len(call)-1].Role)
	assert.Equal(t, "hello", call[len(call)-1].Content)
}

func TestSendChatRequest_ProjectsHistory(t *testing.T) {
	f := newChatFixture(t, &mockInference{chatResponses: []string{"reply"}})

	f.service.History().Append(domain.ChatTurn{Text: "earlier question", Role: domain.RoleUser})
	f.service.History().Append(domain.ChatTurn{Text: "earlier answer", Role: domain.RoleModel})

	_, err := f.service.SendChatRequest(context.Background(), "", "follow-up", "", false, false)
	require.NoError(t, err)

	call := f.inference.chatCalls[0]
	require.Len(t, call, 3)
	assert.Equal(t, "earlier question", call[0].Content)
	assert.Equal(t, domain.RoleModel, call[1].Role)
	assert.Equal(t, "follow-up", call[2].Content)
}

func TestSendChatRequest_SystemPromptPriming(t *testing.T) {
	f := newChatFixture(t, &mockInference{chatResponses: []string{"primed", "reply"}})

	got, err := f.service.SendChatRequest(context.Background(), "you are terse", "hi", "", false, false)
	require.NoError(t, err)
	assert.Equal(t, "reply", got)

	// First call is the priming request; its response is prepended to
	// the real dispatch as a model message.
	require.Len(t, f.inference.chatCalls, 2)
	priming := f.inference.chatCalls[0]
	require.Len(t, priming, 1)
	assert.Equal(t, domain.RoleSystem, priming[0].Role)

	dispatch := f.inference.chatCalls[1]
	assert.Equal(t, domain.RoleModel, dispatch[0].Role)
	assert.Equal(t, "primed", dispatch[0].Content)
}

func TestSendChatRequest_RetriesOnTimeout(t *testing.T) {
	var delays []time.Duration
	f := newChatFixture(t, &mockInference{
		chatErrs:      []error{domain.ErrRequestTimeout, domain.ErrRequestTimeout, nil},
		chatResponses: []string{"", "", "third time lucky"},
	})
	f.service.sleep = func(d time.Duration) { delays = append(delays, d) }

	got, err := f.service.SendChatRequest(context.Background(), "", "hi", "", false, false)
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", got)

	// Two timeouts, then success on the third attempt; never a fourth.
	assert.Len(t, f.inference.chatCalls, 3)

	// Exponential backoff: base, then double.
	require.Len(t, delays, 2)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestSendChatRequest_TimeoutExhaustsRetries(t *testing.T) {
	f := newChatFixture(t, &mockInference{
		chatErrs: []error{domain.ErrRequestTimeout},
	})

	_, err := f.service.SendChatRequest(context.Background(), "", "hi", "", false, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRequestTimeout)
	assert.Len(t, f.inference.chatCalls, DefaultMaxRetries)
}

func TestSendChatRequest_NonTimeoutFailureIsTerminal(t *testing.T) {
	f := newChatFixture(t, &mockInference{
		chatErrs: []error{errors.New("status 500")},
	})

	_, err := f.service.SendChatRequest(context.Background(), "", "hi", "", false, false)
	require.Error(t, err)
	assert.Len(t, f.inference.chatCalls, 1, "non-timeout failures are never retried")
}

func TestSendChatRequest_EmptyResponseIsTerminal(t *testing.T) {
	f := newChatFixture(t, &mockInference{chatResponses: []string{"   "}})

	_, err := f.service.SendChatRequest(context.Background(), "", "hi", "", false, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	assert.Len(t, f.inference.chatCalls, 1)
}

func TestSendChatRequest_PersistsUserTurnWithoutContext(t *testing.T) {
	f := newChatFixture(t, &mockInference{chatResponses: []string{"reply"}})

	_, err := f.service.SendChatRequest(context.Background(), "", "remember me", "", false, false)
	require.NoError(t, err)

	// Conversational memory accumulates even with retrieval disabled.
	all := f.chatStore.GetAll(context.Background())
	require.Len(t, all, 1)
	assert.Equal(t, "remember me", all[0].Chunk)
	assert.Equal(t, domain.RoleUser, all[0].Role)
}

func TestSendChatRequest_ChatContext(t *testing.T) {
	mock := &mockInference{
		chatResponses:    []string{"reply"},
		generateResponse: "technology",
		embedFn:          func(string) []float64 { return []float64{1, 0} },
	}
	f := newChatFixture(t, mock)

	// Seed two similar technology chunks and one dissimilar chunk.
	ctx := context.Background()
	seed := func(chunk string, vector []float64) domain.ChatChunkEmbedding {
		return domain.ChatChunkEmbedding{
			TextEmbedding: domain.TextEmbedding{
				Chunk:          chunk,
				Embedding:      vector,
				EmbeddingModel: "embedder",
			},
			Topic: "technology",
			Role:  domain.RoleUser,
		}
	}
	require.True(t, f.chatStore.Add(ctx, []domain.ChatChunkEmbedding{
		seed("we discussed compilers", []float64{1, 0}),
		seed("we discussed databases", []float64{0.9, 0.1}),
		seed("unrelated gardening", []float64{-0.1, 1}),
	}))

	_, err := f.service.SendChatRequest(ctx, "", "tell me about technology", "", true, false)
	require.NoError(t, err)

	dispatch := f.inference.chatCalls[len(f.inference.chatCalls)-1]
	var contextMsg *driven.ChatMessage
	for i := range dispatch {
		if dispatch[i].Role == domain.RoleSystem {
			contextMsg = &dispatch[i]
			break
		}
	}
	require.NotNil(t, contextMsg, "expected an injected context message")

	assert.True(t, strings.HasPrefix(contextMsg.Content, "Topic: technology\nRelevant information:\n"))
	assert.Contains(t, contextMsg.Content, "chat history: we discussed compilers")
	assert.Contains(t, contextMsg.Content, "chat history: we discussed databases")
	assert.NotContains(t, contextMsg.Content, "gardening", "below-threshold hits are dropped")

	// Descending similarity order.
	first := strings.Index(contextMsg.Content, "compilers")
	second := strings.Index(contextMsg.Content, "databases")
	assert.Less(t, first, second)
}

func TestSendChatRequest_NoContextWhenDisabled(t *testing.T) {
	mock := &mockInference{chatResponses: []string{"reply"}}
	f := newChatFixture(t, mock)

	ctx := context.Background()
	require.True(t, f.chatStore.Add(ctx, []domain.ChatChunkEmbedding{{
		TextEmbedding: domain.TextEmbedding{
			Chunk:          "seeded chunk",
			Embedding:      []float64{1, 0, 0},
			EmbeddingModel: "embedder",
		},
	}}))

	_, err := f.service.SendChatRequest(ctx, "", "hello", "", false, false)
	require.NoError(t, err)

	for _, msg := range f.inference.chatCalls[0] {
		assert.NotEqual(t, domain.RoleSystem, msg.Role, "no context block without context flags")
	}
}

func TestSendChatRequest_KnowledgeContextUnfiltered(t *testing.T) {
	mock := &mockInference{
		chatResponses: []string{"reply"},
		embedFn:       func(string) []float64 { return []float64{1, 0} },
	}
	f := newChatFixture(t, mock)

	ctx := context.Background()
	require.True(t, f.textStore.Add(ctx, []domain.TextEmbedding{
		{Chunk: "fact one", Embedding: []float64{1, 0}, EmbeddingModel: "embedder"},
		{Chunk: "barely related", Embedding: []float64{0.01, 1}, EmbeddingModel: "embedder"},
	}))

	_, err := f.service.SendChatRequest(ctx, "", "question", "", false, true)
	require.NoError(t, err)

	dispatch := f.inference.chatCalls[0]
	var content string
	for _, msg := range dispatch {
		if msg.Role == domain.RoleSystem {
			content = msg.Content
		}
	}
	require.NotEmpty(t, content)

	// No similarity threshold applies to knowledge context.
	assert.Contains(t, content, "knowledge: fact one")
	assert.Contains(t, content, "knowledge: barely related")
}

func TestAddChatEntry_AppendsAndPersists(t *testing.T) {
	f := newChatFixture(t, &mockInference{})
	ctx := context.Background()

	err := f.service.AddChatEntry(ctx, domain.ChatTurn{
		Text:           "hello there",
		ConversationID: "conv-1",
		UserID:         "user-1",
		Role:           domain.RoleUser,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, f.service.GetChatHistory(), 1)

	all := f.chatStore.GetAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "hello there", all[0].Chunk)
	assert.Equal(t, "conv-1", all[0].ConversationID)
}

func TestAddChatEntry_EmbeddingFailureKeepsHistory(t *testing.T) {
	f := newChatFixture(t, &mockInference{embedErr: errors.New("connection refused")})

	err := f.service.AddChatEntry(context.Background(), domain.ChatTurn{Text: "hi", Role: domain.RoleUser})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingGeneration)

	// The turn stays in history despite the embedding failure.
	assert.Len(t, f.service.GetChatHistory(), 1)
	assert.Empty(t, f.chatStore.GetAll(context.Background()))
}

func TestProcessText_ChunksAndPersists(t *testing.T) {
	mock := &mockInference{}
	chunking := mustChunkingConfig(t, 8, 2)
	textStore := memory.NewTextEmbeddingStore()
	chatStore := memory.NewChatChunkEmbeddingStore()

	svc := NewChatService(
		ChatConfig{ChatModel: "chat-model"},
		mock,
		NewChatHistory(10),
		NewTextEmbeddingManager(textStore, mock, chunking, "embedder"),
		NewChatEmbeddingManager(chatStore, mock, chunking, "embedder"),
		newTestClassifier(mock),
		memory.NewSettingsStore(),
	)

	err := svc.ProcessText(context.Background(), "a long text that spans several chunks")
	require.NoError(t, err)

	all := textStore.GetAll(context.Background())
	assert.Greater(t, len(all), 1, "long text is chunked")
	for _, rec := range all {
		assert.Equal(t, "embedder", rec.EmbeddingModel)
		assert.NotEmpty(t, rec.Embedding)
	}
}

func TestSystemPromptPersistence(t *testing.T) {
	f := newChatFixture(t, &mockInference{})

	assert.Empty(t, f.service.SystemPrompt())
	require.True(t, f.service.SaveSystemPrompt("answer briefly"))
	assert.Equal(t, "answer briefly", f.service.SystemPrompt())
}
