// Package llm provides the provider interface and registry for the optional
// Markdown polish stage that runs before transpiling.
package llm

import "context"

// Provider is the interface that all polish providers must implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Polish takes raw Markdown and returns a cleaned-up version that keeps
	// the document's structure and language intact.
	Polish(ctx context.Context, markdown string, opts PolishOptions) (*PolishResult, error)

	// Validate checks if the provider is properly configured.
	Validate() error
}

// PolishOptions contains options for the polish call.
type PolishOptions struct {
	Model       string  `json:"model,omitempty"`       // override the provider default
	MaxTokens   int     `json:"max_tokens,omitempty"`  // maximum tokens for response
	Temperature float64 `json:"temperature,omitempty"` // creativity level (0.0 - 1.0)
	Prompt      string  `json:"prompt,omitempty"`      // custom system prompt
}

// PolishResult contains the result of a polish call.
type PolishResult struct {
	Markdown string     `json:"markdown"`
	Usage    TokenUsage `json:"usage"`
	Model    string     `json:"model"`
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// DefaultPolishOptions returns the default polish options.
func DefaultPolishOptions() PolishOptions {
	return PolishOptions{
		MaxTokens:   4096,
		Temperature: 0.3,
	}
}

// defaultSystemPrompt instructs the model to tidy Markdown without changing
// its structure; the transpiler depends on the structural subset staying
// intact.
const defaultSystemPrompt = `你是一名公众号推文排版助手。请整理下面的 Markdown 文稿：
- 修正明显的标点、空格与换行问题；
- 保持标题层级、列表缩进、表格与代码块原样，不要增删任何结构；
- 不要翻译，不要改写内容，不要添加任何说明。
只输出整理后的 Markdown 正文。`

// systemPrompt returns the effective system prompt for a polish call.
func systemPrompt(opts PolishOptions) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	return defaultSystemPrompt
}
