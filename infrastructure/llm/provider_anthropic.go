package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func init() {
	RegisterProviderFactory("anthropic", func(config BackendConfig) (CoreModel, error) {
		return NewAnthropicProvider(config)
	})
}

// AnthropicProvider implements CoreModel for the Anthropic Messages API.
type AnthropicProvider struct {
	BaseProvider
	client     anthropic.Client
	classifier ErrorClassifier
}

// NewAnthropicProvider creates an Anthropic-backed provider from
// configuration.
func NewAnthropicProvider(config BackendConfig) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if err := ValidateBaseURL(config.BaseURL); err != nil {
		return nil, err
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicProvider{
		BaseProvider: NewBaseProvider(config.Model),
		client:       anthropic.NewClient(clientOpts...),
		classifier:   ErrorClassifier{Provider: "anthropic"},
	}, nil
}

// DoGenerate sends a Messages API request and returns the response text
// with token usage.
func (p *AnthropicProvider) DoGenerate(
	ctx context.Context,
	prompt string,
	options map[string]any,
) (string, int, int, error) {
	opts, err := ParseRequestOptions(options, p.GetModel())
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid request options: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model),
		MaxTokens: int64(opts.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(*opts.Temperature)
	}
	if opts.TopP != nil {
		params.TopP = anthropic.Float(*opts.TopP)
	}
	if opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.SystemPrompt}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		if ctxErr := p.classifier.ClassifyContextError(err); ctxErr != nil {
			return "", 0, 0, ctxErr
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", 0, 0, p.classifier.ClassifyHTTPError(apiErr.StatusCode, apiErr.Error(), err)
		}
		return "", 0, 0, &ProviderError{
			Type:         ErrorTypeUnknown,
			Provider:     "anthropic",
			Message:      err.Error(),
			WrappedError: err,
		}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	content := sb.String()
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	return content, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens), nil
}
