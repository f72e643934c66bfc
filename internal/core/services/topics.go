package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/esgdev/amaranth/internal/core/domain"
	"github.com/esgdev/amaranth/internal/core/ports/driven"
	"github.com/esgdev/amaranth/internal/logger"
)

// defaultTopicPrompt embeds the text and the topic vocabulary and
// instructs single-word output.
const defaultTopicPrompt = `You are a topic analyst. Classify the text into one of the following topics: %s. Respond with a single word.
Text: %s
Topic:`

// topicOutputMargin is added to the longest topic label to cap the
// classifier's output length and prevent runaway generation.
const topicOutputMargin = 10

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// TopicSamplingConfig holds the sampling parameters for
// classification calls.
type TopicSamplingConfig struct {
	Temperature float64
	TopK        int
	TopP        float64
}

// TopicClassifier assigns a single topic label from a fixed
// vocabulary to free text via one zero-shot completion call.
type TopicClassifier struct {
	inference driven.InferenceService
	topics    domain.TopicSet
	model     string
	sampling  TopicSamplingConfig
	prompt    string
}

// NewTopicClassifier creates a classifier using the given tagging
// model and sampling parameters.
func NewTopicClassifier(
	inference driven.InferenceService,
	topics domain.TopicSet,
	model string,
	sampling TopicSamplingConfig,
) *TopicClassifier {
	return &TopicClassifier{
		inference: inference,
		topics:    topics,
		model:     model,
		sampling:  sampling,
		prompt:    defaultTopicPrompt,
	}
}

// SetPrompt overrides the classification prompt template. The
// template must accept the topic vocabulary and the text, in that
// order.
func (c *TopicClassifier) SetPrompt(prompt string) {
	c.prompt = prompt
}

// Topics returns the classifier's topic vocabulary.
func (c *TopicClassifier) Topics() domain.TopicSet {
	return c.topics
}

// Classify returns the topic label for text, or the "error" sentinel
// when the model's output is not in the vocabulary. A service-level
// failure is returned as an error, distinguishable from the sentinel.
func (c *TopicClassifier) Classify(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(c.prompt, c.topics.Join(), text)

	raw, err := c.inference.Generate(ctx, c.model, prompt, driven.GenerateOptions{
		MaxTokens:   c.topics.LongestLabel() + topicOutputMargin,
		Temperature: c.sampling.Temperature,
		TopK:        c.sampling.TopK,
		TopP:        c.sampling.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClassification, err)
	}

	sanitised := strings.ToLower(nonAlphanumeric.ReplaceAllString(strings.TrimSpace(raw), ""))
	logger.Debug("Topic response %q sanitised to %q", raw, sanitised)

	if c.topics.Contains(sanitised) {
		return sanitised, nil
	}
	return domain.TopicError, nil
}
