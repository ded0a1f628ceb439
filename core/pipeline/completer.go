package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/herbrag/helper"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewCompleter adapts a langchaingo model to a CompleteFunc.
// Provider failures are wrapped as helper.ErrCollaboratorUnavailable.
func NewCompleter(llm llms.Model) CompleteFunc {
	return func(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
		callOptions := []llms.CallOption{}
		if options.Temperature > 0 {
			callOptions = append(callOptions, llms.WithTemperature(options.Temperature))
		}
		if options.MaxTokens > 0 {
			callOptions = append(callOptions, llms.WithMaxTokens(options.MaxTokens))
		}

		response, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt, callOptions...)
		if err != nil {
			return "", helper.Unavailable("completer", err)
		}
		return response, nil
	}
}

// DefaultCompleter creates a completer for the configured provider (mistral or openai).
func DefaultCompleter(config *helper.LLMConfiguration) (CompleteFunc, error) {
	if config == nil {
		return nil, helper.NewError("create completer", fmt.Errorf("llm configuration is nil"))
	}

	var llm llms.Model
	var err error
	switch config.Provider {
	case "mistral":
		opts := []mistral.Option{
			mistral.WithAPIKey(config.APIKey),
			mistral.WithModel(config.Model),
		}
		if config.BaseURL != "" {
			opts = append(opts, mistral.WithEndpoint(config.BaseURL))
		}
		llm, err = mistral.New(opts...)
	case "openai":
		opts := []openai.Option{
			openai.WithToken(config.APIKey),
			openai.WithModel(config.Model),
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		return nil, helper.NewError("create completer", fmt.Errorf("unsupported provider %q", config.Provider))
	}
	if err != nil {
		return nil, helper.NewError(fmt.Sprintf("create %s client", config.Provider), err)
	}

	completer := NewCompleter(llm)
	if config.Timeout <= 0 {
		return completer, nil
	}
	return WithTimeout(completer, config.Timeout), nil
}

// WithTimeout bounds every call of completer by timeout.
func WithTimeout(completer CompleteFunc, timeout time.Duration) CompleteFunc {
	return func(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return completer(ctx, prompt, options)
	}
}
