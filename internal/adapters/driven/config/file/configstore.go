package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every user-tunable setting, persisted as TOML.
type Config struct {
	// Provider selects the inference backend: "ollama" (default) or
	// "openai" for OpenAI-compatible servers.
	Provider string `toml:"provider"`

	// Host is the inference service base URL.
	Host string `toml:"host"`

	// APIKey authenticates against OpenAI-compatible providers.
	// Unused for Ollama.
	APIKey string `toml:"api_key,omitempty"`

	// EmbeddingModel generates vectors for chunks and turns.
	EmbeddingModel string `toml:"embedding_model"`

	// ChatModel answers chat-completion requests.
	ChatModel string `toml:"chat_model"`

	// TaggingModel classifies message topics.
	TaggingModel string `toml:"tagging_model"`

	// RequestTimeoutSeconds bounds each inference request.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`

	// RequestsPerSecond throttles requests to the inference service.
	// Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`

	// ChunkSize and Overlap drive the sliding-window chunker.
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`

	// Sampling parameters for topic classification.
	Temperature float64 `toml:"temperature"`
	TopK        int     `toml:"top_k"`
	TopP        float64 `toml:"top_p"`

	// MinSimilarity filters chat-context retrieval hits.
	MinSimilarity float64 `toml:"min_similarity"`

	// Retry policy for timed-out completion requests.
	MaxRetries          int `toml:"max_retries"`
	BaseRetryIntervalMs int `toml:"base_retry_interval_ms"`

	// ChatHistorySize bounds the in-memory conversation window.
	ChatHistorySize int `toml:"chat_history_size"`

	// Topics is the closed classification vocabulary.
	Topics []string `toml:"topics"`

	// DataDir overrides the default database location.
	DataDir string `toml:"data_dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Provider:              "ollama",
		Host:                  "http://localhost:11434",
		EmbeddingModel:        "nomic-embed-text:latest",
		ChatModel:             "gemma3:1b",
		TaggingModel:          "gemma3:1b",
		RequestTimeoutSeconds: 120,
		ChunkSize:             512,
		Overlap:               128,
		Temperature:           0.1,
		TopK:                  5,
		TopP:                  0.9,
		MinSimilarity:         0.2,
		MaxRetries:            3,
		BaseRetryIntervalMs:   2000,
		ChatHistorySize:       10,
		Topics: []string{
			"technology", "science", "sports", "politics", "finance", "health",
		},
	}
}

// ConfigStore is a file-based configuration store using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      Config
}

// NewConfigStore creates a TOML-based config store. If configDir is
// empty, defaults to ~/.amaranth/config.toml. A missing file yields
// the defaults; it is written on first Save.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".amaranth")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		cfg:      DefaultConfig(),
	}

	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Config returns a copy of the current configuration.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to the configuration and persists the result.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.cfg)
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file. Keys absent from the
// file keep their default values.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.cfg = cfg
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
