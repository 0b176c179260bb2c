package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func init() {
	RegisterProviderFactory("google", func(config BackendConfig) (CoreModel, error) {
		return NewGoogleProvider(config)
	})
}

// GoogleProvider implements CoreModel for the Gemini API.
type GoogleProvider struct {
	BaseProvider
	client     *genai.Client
	classifier ErrorClassifier
}

// NewGoogleProvider creates a Gemini-backed provider from configuration.
func NewGoogleProvider(config BackendConfig) (*GoogleProvider, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GoogleProvider{
		BaseProvider: NewBaseProvider(config.Model),
		client:       client,
		classifier:   ErrorClassifier{Provider: "google"},
	}, nil
}

// DoGenerate sends a GenerateContent request and returns the response text
// with token usage.
func (p *GoogleProvider) DoGenerate(
	ctx context.Context,
	prompt string,
	options map[string]any,
) (string, int, int, error) {
	opts, err := ParseRequestOptions(options, p.GetModel())
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid request options: %w", err)
	}

	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: SafeInt32(opts.MaxTokens),
	}
	if opts.Temperature != nil {
		genConfig.Temperature = genai.Ptr(SafeFloat32(*opts.Temperature))
	}
	if opts.TopP != nil {
		genConfig.TopP = genai.Ptr(SafeFloat32(*opts.TopP))
	}
	if opts.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, opts.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		genConfig)
	if err != nil {
		if ctxErr := p.classifier.ClassifyContextError(err); ctxErr != nil {
			return "", 0, 0, ctxErr
		}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", 0, 0, p.classifier.ClassifyHTTPError(apiErr.Code, apiErr.Message, err)
		}
		return "", 0, 0, &ProviderError{
			Type:         ErrorTypeUnknown,
			Provider:     "google",
			Message:      err.Error(),
			WrappedError: err,
		}
	}

	content := resp.Text()
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	var tokensIn, tokensOut int
	if resp.UsageMetadata != nil {
		tokensIn = int(resp.UsageMetadata.PromptTokenCount)
		tokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return content, tokensIn, tokensOut, nil
}
