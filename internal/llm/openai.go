package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// OpenAIProviderName is the provider identifier.
	OpenAIProviderName = "openai"
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "gpt-4o"
)

// OpenAI polishes Markdown through the OpenAI chat completion API. A custom
// Endpoint makes it work against any OpenAI-compatible server.
type OpenAI struct {
	apiKey    string
	model     string
	maxTokens int
	client    *openai.Client
}

// NewOpenAI creates the OpenAI polish provider.
func NewOpenAI(cfg ProviderConfig) *OpenAI {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	return &OpenAI{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    openai.NewClientWithConfig(clientCfg),
	}
}

// Name returns the provider identifier.
func (o *OpenAI) Name() string {
	return OpenAIProviderName
}

// Validate checks if the provider is properly configured.
func (o *OpenAI) Validate() error {
	if o.apiKey == "" {
		return errors.New("OpenAI API key not configured (set OPENAI_API_KEY or provide via config)")
	}
	return nil
}

// Polish implements the Provider interface.
func (o *OpenAI) Polish(ctx context.Context, markdown string, opts PolishOptions) (*PolishResult, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	model := o.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := o.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: float32(opts.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(opts)},
			{Role: openai.ChatMessageRoleUser, Content: markdown},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai API request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai API returned no choices")
	}

	return &PolishResult{
		Markdown: resp.Choices[0].Message.Content,
		Model:    resp.Model,
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}
