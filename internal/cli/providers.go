package cli

import (
	"fmt"
	"strings"

	"github.com/roboco-io/md2wechat/internal/config"
	"github.com/roboco-io/md2wechat/internal/llm"
)

// newProvider resolves the polish provider named in config or on the command
// line through the provider registry. Providers are registered lazily with
// their settings from the providers section of the config.
func newProvider(name string, cfg *config.Config) (llm.Provider, error) {
	if name == "" {
		return nil, fmt.Errorf("未指定 LLM 提供商（用 --provider 或配置 default_provider）")
	}

	registerProviders(cfg)

	provider, err := llm.Get(name)
	if err != nil {
		supported := strings.Join(llm.List(), ", ")
		return nil, fmt.Errorf("不支持的提供商：%s（支持：%s）", name, supported)
	}
	return provider, nil
}

// registerProviders fills the default registry from the config. Already
// registered names are left as is, so repeated calls are cheap.
func registerProviders(cfg *config.Config) {
	providerCfg := func(name string) llm.ProviderConfig {
		if p, ok := cfg.GetProvider(name); ok {
			return llm.ProviderConfig{
				APIKey:    p.APIKey,
				Model:     p.Model,
				MaxTokens: p.MaxTokens,
				Endpoint:  p.Endpoint,
			}
		}
		return llm.ProviderConfig{}
	}

	register := func(p llm.Provider) {
		if !llm.DefaultRegistry.Has(p.Name()) {
			_ = llm.Register(p)
		}
	}

	register(llm.NewAnthropic(providerCfg(llm.AnthropicProviderName)))
	register(llm.NewOpenAI(providerCfg(llm.OpenAIProviderName)))
	register(llm.NewGemini(providerCfg(llm.GeminiProviderName)))
}
