package cli

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/logger"
)

var (
	chatTopic          string
	chatNoChatCtx      bool
	chatNoKnowledgeCtx bool
	chatSystemPrompt   string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts an interactive chat session against the configured inference
service. Each user turn is embedded and persisted; prior conversation
chunks and ingested knowledge above the similarity threshold are
injected as context.

Session commands: /history shows the current window, /clear empties
it, /quit exits.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatTopic, "topic", "", "fix the topic instead of classifying each message")
	chatCmd.Flags().BoolVar(&chatNoChatCtx, "no-chat-context", false, "disable conversational context retrieval")
	chatCmd.Flags().BoolVar(&chatNoKnowledgeCtx, "no-knowledge-context", false, "disable knowledge context retrieval")
	chatCmd.Flags().StringVar(&chatSystemPrompt, "system-prompt", "", "system prompt for this session (overrides the saved one)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	systemPrompt := chatSystemPrompt
	if systemPrompt == "" {
		systemPrompt = chatService.SystemPrompt()
	}

	conversationID := uuid.NewString()
	userID := os.Getenv("USER")
	if userID == "" {
		userID = "local"
	}

	chatService.History().Subscribe(func(turns []domain.ChatTurn) {
		logger.Debug("History window now holds %d turns", len(turns))
	})

	cmd.Println("amaranth chat. /quit to exit.")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return scanner.Err()
		case "/history":
			printHistory(cmd)
			continue
		case "/clear":
			chatService.History().Clear()
			cmd.Println("History cleared.")
			continue
		}

		reply, err := chatService.SendChatRequest(ctx, systemPrompt, line, chatTopic, !chatNoChatCtx, !chatNoKnowledgeCtx)

		// The user turn enters the history window whether or not the
		// request succeeded, so a retried follow-up still carries it.
		now := time.Now()
		chatService.History().Append(domain.ChatTurn{
			Text:           line,
			ConversationID: conversationID,
			UserID:         userID,
			Role:           domain.RoleUser,
			Topic:          chatTopic,
			CreatedAt:      now,
		})

		if err != nil {
			cmd.PrintErrf("Request failed: %v\n", err)
			continue
		}

		cmd.Println(reply)

		if err := chatService.AddChatEntry(ctx, domain.ChatTurn{
			Text:           reply,
			ConversationID: conversationID,
			UserID:         userID,
			Role:           domain.RoleModel,
			Topic:          chatTopic,
			CreatedAt:      time.Now(),
		}); err != nil {
			cmd.PrintErrf("Warning: %v\n", err)
		}
	}

	return scanner.Err()
}

func printHistory(cmd *cobra.Command) {
	turns := chatService.GetChatHistory()
	if len(turns) == 0 {
		cmd.Println("History is empty.")
		return
	}
	for _, turn := range turns {
		cmd.Printf("[%s] %s\n", turn.Role, turn.Text)
	}
}
