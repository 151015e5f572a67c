package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ProviderConfig holds the shared provider settings. Empty fields fall back
// to the provider's environment variable and defaults.
type ProviderConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Endpoint  string // custom base URL where the SDK supports one
}

const (
	// AnthropicProviderName is the provider identifier.
	AnthropicProviderName = "anthropic"
	// DefaultAnthropicModel is used when no model is configured.
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
)

// Anthropic polishes Markdown through the Anthropic Messages API.
type Anthropic struct {
	apiKey    string
	model     string
	maxTokens int
	client    anthropic.Client
}

// NewAnthropic creates the Anthropic polish provider.
func NewAnthropic(cfg ProviderConfig) *Anthropic {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &Anthropic{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name returns the provider identifier.
func (a *Anthropic) Name() string {
	return AnthropicProviderName
}

// Validate checks if the provider is properly configured.
func (a *Anthropic) Validate() error {
	if a.apiKey == "" {
		return errors.New("Anthropic API key not configured (set ANTHROPIC_API_KEY or provide via config)")
	}
	return nil
}

// Polish implements the Provider interface.
func (a *Anthropic) Polish(ctx context.Context, markdown string, opts PolishOptions) (*PolishResult, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	model := a.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := a.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(opts)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(markdown)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API request failed: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, errors.New("anthropic API returned no text content")
	}

	return &PolishResult{
		Markdown: text,
		Model:    string(msg.Model),
		Usage: TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}
