package services

import (
	"context"

	"github.com/esgdev/amaranth/internal/core/ports/driven"
)

// mockInference implements driven.InferenceService for testing.
type mockInference struct {
	// Embed behaviour: embedFn maps each input to a vector. When nil,
	// a constant unit vector is returned per input.
	embedFn  func(input string) []float64
	embedErr error

	// Chat behaviour: responses/errors are consumed per call, the
	// last entry repeating. chatCalls records every message sequence.
	chatResponses []string
	chatErrs      []error
	chatCalls     [][]driven.ChatMessage

	// Generate behaviour.
	generateResponse   string
	generateErr        error
	lastGeneratePrompt string
	lastGenerateOpts   driven.GenerateOptions

	models []driven.ModelInfo
}

func (m *mockInference) Embed(_ context.Context, _ string, inputs []string) ([][]float64, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float64, len(inputs))
	for i, in := range inputs {
		if m.embedFn != nil {
			out[i] = m.embedFn(in)
		} else {
			out[i] = []float64{1, 0, 0}
		}
	}
	return out, nil
}

func (m *mockInference) Chat(_ context.Context, _ string, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	call := len(m.chatCalls)
	m.chatCalls = append(m.chatCalls, messages)

	if len(m.chatErrs) > 0 {
		idx := call
		if idx >= len(m.chatErrs) {
			idx = len(m.chatErrs) - 1
		}
		if err := m.chatErrs[idx]; err != nil {
			return "", err
		}
	}

	if len(m.chatResponses) == 0 {
		return "", nil
	}
	idx := call
	if idx >= len(m.chatResponses) {
		idx = len(m.chatResponses) - 1
	}
	return m.chatResponses[idx], nil
}

func (m *mockInference) Generate(_ context.Context, _, prompt string, opts driven.GenerateOptions) (string, error) {
	m.lastGeneratePrompt = prompt
	m.lastGenerateOpts = opts
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.generateResponse, nil
}

func (m *mockInference) ListModels(_ context.Context) ([]driven.ModelInfo, error) {
	return m.models, nil
}

func (m *mockInference) Ping(_ context.Context) error { return nil }

func (m *mockInference) Close() error { return nil }
