package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/siherrmann/herbrag/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type MockLLM struct {
	response string
	err      error
	options  llms.CallOptions
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, option := range options {
		option(&m.options)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: m.response},
		},
	}, nil
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestNewCompleter(t *testing.T) {
	t.Run("Returns the model answer", func(t *testing.T) {
		llm := &MockLLM{response: "Ginger helps."}
		completer := NewCompleter(llm)

		answer, err := completer(context.Background(), "Which herb helps?", CompletionOptions{Temperature: 0.3, MaxTokens: 1000})

		require.NoError(t, err, "Expected no error from completer")
		assert.Equal(t, "Ginger helps.", answer, "Expected answer of the model")
		assert.Equal(t, 0.3, llm.options.Temperature, "Expected temperature to be passed")
		assert.Equal(t, 1000, llm.options.MaxTokens, "Expected max tokens to be passed")
	})

	t.Run("Wraps provider errors as unavailable", func(t *testing.T) {
		completer := NewCompleter(&MockLLM{err: errors.New("503 service unavailable")})

		_, err := completer(context.Background(), "prompt", CompletionOptions{})

		require.Error(t, err, "Expected error from failing provider")
		assert.ErrorIs(t, err, helper.ErrCollaboratorUnavailable, "Expected collaborator unavailable error")
	})
}

func TestWithTimeout(t *testing.T) {
	t.Run("Cancels slow calls", func(t *testing.T) {
		slow := func(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
			<-ctx.Done()
			return "", helper.Unavailable("completer", ctx.Err())
		}

		_, err := WithTimeout(slow, 10*time.Millisecond)(context.Background(), "prompt", CompletionOptions{})

		require.Error(t, err, "Expected timeout error")
		assert.ErrorIs(t, err, context.DeadlineExceeded, "Expected deadline exceeded")
	})
}

func TestDefaultCompleter(t *testing.T) {
	t.Run("Nil configuration", func(t *testing.T) {
		_, err := DefaultCompleter(nil)
		assert.Error(t, err, "Expected error for nil configuration")
	})

	t.Run("Unsupported provider", func(t *testing.T) {
		_, err := DefaultCompleter(&helper.LLMConfiguration{Provider: "ollama", APIKey: "key"})
		require.Error(t, err, "Expected error for unsupported provider")
		assert.Contains(t, err.Error(), "ollama", "Expected error to name the provider")
	})

	t.Run("Mistral client", func(t *testing.T) {
		completer, err := DefaultCompleter(&helper.LLMConfiguration{Provider: "mistral", Model: "mistral-small-latest", APIKey: "key", Timeout: time.Second})
		require.NoError(t, err, "Expected mistral client to be created")
		assert.NotNil(t, completer, "Expected completer")
	})

	t.Run("OpenAI client", func(t *testing.T) {
		completer, err := DefaultCompleter(&helper.LLMConfiguration{Provider: "openai", Model: "gpt-4o-mini", APIKey: "key", BaseURL: "http://localhost:1234/v1"})
		require.NoError(t, err, "Expected openai client to be created")
		assert.NotNil(t, completer, "Expected completer")
	})
}
