package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

func init() {
	RegisterProviderFactory("openai", func(config BackendConfig) (CoreModel, error) {
		return NewOpenAIProvider(config)
	})
}

// OpenAIProvider implements CoreModel for the OpenAI chat completion API.
type OpenAIProvider struct {
	BaseProvider
	client     *openai.Client
	classifier ErrorClassifier
}

// NewOpenAIProvider creates an OpenAI-backed provider from configuration.
func NewOpenAIProvider(config BackendConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if err := ValidateBaseURL(config.BaseURL); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		BaseProvider: NewBaseProvider(config.Model),
		client:       openai.NewClientWithConfig(clientConfig),
		classifier:   ErrorClassifier{Provider: "openai"},
	}, nil
}

// DoGenerate sends a chat completion request and returns the response text
// with token usage.
func (p *OpenAIProvider) DoGenerate(
	ctx context.Context,
	prompt string,
	options map[string]any,
) (string, int, int, error) {
	opts, err := ParseRequestOptions(options, p.GetModel())
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid request options: %w", err)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if opts.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opts.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:     opts.Model,
		Messages:  messages,
		MaxTokens: opts.MaxTokens,
	}
	if opts.Temperature != nil {
		req.Temperature = SafeFloat32(*opts.Temperature)
	}
	if opts.TopP != nil {
		req.TopP = SafeFloat32(*opts.TopP)
	}
	if opts.RepetitionPenalty != nil {
		// OpenAI exposes an additive frequency penalty in [-2, 2] rather
		// than a multiplicative repetition penalty, so shift around 1.0.
		req.FrequencyPenalty = SafeFloat32(ClampFloat64(*opts.RepetitionPenalty-1.0, -2, 2))
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if ctxErr := p.classifier.ClassifyContextError(err); ctxErr != nil {
			return "", 0, 0, ctxErr
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", 0, 0, p.classifier.ClassifyHTTPError(apiErr.HTTPStatusCode, apiErr.Message, err)
		}
		return "", 0, 0, &ProviderError{
			Type:         ErrorTypeUnknown,
			Provider:     "openai",
			Message:      err.Error(),
			WrappedError: err,
		}
	}

	if len(resp.Choices) == 0 {
		return "", 0, 0, ErrNoResponseChoice
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	return content, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil
}
