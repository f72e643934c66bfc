package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingGeneration indicates the inference service failed to
	// produce embeddings. The call is all-or-nothing; no partial
	// results accompany this error.
	ErrEmbeddingGeneration = errors.New("embedding generation failed")

	// ErrClassification indicates the topic classification call failed
	// at the service level. This is distinct from the "error" sentinel
	// label, which means the model answered with an unknown topic.
	ErrClassification = errors.New("topic classification failed")

	// ErrRequestTimeout indicates an inference call exceeded its
	// deadline. This is the only retryable failure class.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrEmptyResponse indicates the inference service returned a
	// response with no content. This is a protocol violation and is
	// never retried.
	ErrEmptyResponse = errors.New("empty model response")
)

// IsRetryable reports whether err is a timeout-class failure that the
// chat orchestrator may retry with backoff. Everything else is
// terminal on first occurrence.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRequestTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return true
	}
	return false
}
