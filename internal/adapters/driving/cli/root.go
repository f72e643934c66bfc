// Package cli provides the cobra command-line interface.
package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/esgdev/amaranth/internal/adapters/driven/config/file"
	"github.com/esgdev/amaranth/internal/adapters/driven/inference/ollama"
	"github.com/esgdev/amaranth/internal/adapters/driven/inference/openai"
	"github.com/esgdev/amaranth/internal/adapters/driven/storage/sqlite"
	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
	"github.com/esgdev/amaranth/internal/core/services"
	"github.com/esgdev/amaranth/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "amaranth",
	Short: "Retrieval-augmented chat client for local language models",
	Long: `Amaranth is a retrieval-augmented conversational client. It keeps a
bounded chat history, embeds conversation turns and ingested text into
a local vector store, and enriches each chat request with semantically
similar prior content before sending it to the inference service.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.amaranth)")
}

// Services wired by ensureServices. Tests may inject their own before
// running a command.
var (
	configStore      *configfile.ConfigStore
	store            *sqlite.Store
	inferenceService driven.InferenceService
	textManager      *services.TextEmbeddingManager
	chatManager      *services.ChatEmbeddingManager
	classifier       *services.TopicClassifier
	chatService      *services.ChatService
)

var (
	wireOnce sync.Once
	wireErr  error
)

// ensureServices builds the full service graph on first use. Commands
// that only print metadata never pay the wiring cost.
func ensureServices() error {
	if chatService != nil {
		return nil
	}
	wireOnce.Do(func() { wireErr = initServices() })
	return wireErr
}

func initServices() error {
	var err error
	configStore, err = configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg := configStore.Config()

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	switch cfg.Provider {
	case "openai":
		inferenceService, err = openai.NewInferenceService(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.Host,
			Timeout: timeout,
		})
		if err != nil {
			return fmt.Errorf("configuring openai provider: %w", err)
		}
	default:
		inferenceService = ollama.NewInferenceService(ollama.Config{
			BaseURL:           cfg.Host,
			Timeout:           timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	chunking, err := domain.NewChunkingConfig(cfg.ChunkSize, cfg.Overlap)
	if err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}

	settings := store.Settings()

	// Settings saved from a previous session override the file config.
	chatModel := cfg.ChatModel
	if v, ok := settings.GetValue(driven.SettingChatModel); ok {
		chatModel = v
	}
	taggingModel := cfg.TaggingModel
	if v, ok := settings.GetValue(driven.SettingTaggingModel); ok {
		taggingModel = v
	}

	textManager = services.NewTextEmbeddingManager(store.TextEmbeddings(), inferenceService, chunking, cfg.EmbeddingModel)
	chatManager = services.NewChatEmbeddingManager(store.ChatEmbeddings(), inferenceService, chunking, cfg.EmbeddingModel)

	classifier = services.NewTopicClassifier(inferenceService, domain.NewTopicSet(cfg.Topics), taggingModel, services.TopicSamplingConfig{
		Temperature: cfg.Temperature,
		TopK:        cfg.TopK,
		TopP:        cfg.TopP,
	})

	chatService = services.NewChatService(services.ChatConfig{
		ChatModel:         chatModel,
		MaxRetries:        cfg.MaxRetries,
		BaseRetryInterval: time.Duration(cfg.BaseRetryIntervalMs) * time.Millisecond,
		RequestTimeout:    timeout,
		MinSimilarity:     cfg.MinSimilarity,
	}, inferenceService, services.NewChatHistory(cfg.ChatHistorySize), textManager, chatManager, classifier, settings)

	return nil
}

func closeServices() {
	if inferenceService != nil {
		inferenceService.Close() //nolint:errcheck
	}
	if store != nil {
		store.Close() //nolint:errcheck
	}
}

// Execute runs the root command and releases resources afterwards.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}
