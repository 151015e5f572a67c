package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const (
	// GeminiProviderName is the provider identifier.
	GeminiProviderName = "gemini"
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Gemini polishes Markdown through the Google Gemini API. The SDK client
// needs a context, so it is created per request rather than up front.
type Gemini struct {
	apiKey    string
	model     string
	maxTokens int
}

// NewGemini creates the Gemini polish provider.
func NewGemini(cfg ProviderConfig) *Gemini {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &Gemini{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Name returns the provider identifier.
func (g *Gemini) Name() string {
	return GeminiProviderName
}

// Validate checks if the provider is properly configured.
func (g *Gemini) Validate() error {
	if g.apiKey == "" {
		return errors.New("Gemini API key not configured (set GOOGLE_API_KEY or provide via config)")
	}
	return nil
}

// Polish implements the Provider interface.
func (g *Gemini) Polish(ctx context.Context, markdown string, opts PolishOptions) (*PolishResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	model := g.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := g.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	temperature := float32(opts.Temperature)
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(markdown), &genai.GenerateContentConfig{
		Temperature:       &temperature,
		MaxOutputTokens:   int32(maxTokens),
		SystemInstruction: genai.NewContentFromText(systemPrompt(opts), genai.RoleUser),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini API returned no text content")
	}

	usage := TokenUsage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &PolishResult{
		Markdown: text,
		Model:    model,
		Usage:    usage,
	}, nil
}
