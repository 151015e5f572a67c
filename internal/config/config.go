// Package config manages application configuration.
package config

// Config represents the application configuration.
type Config struct {
	TemplatesDir    string              `yaml:"templates_dir,omitempty"` // empty = bundled template set
	Workers         int                 `yaml:"workers"`
	DefaultProvider string              `yaml:"default_provider"`
	Providers       map[string]Provider `yaml:"providers"`
	SMTP            SMTPConfig          `yaml:"smtp"`
	Remote          RemoteConfig        `yaml:"remote"`
}

// Provider represents an LLM provider configuration for the polish stage.
type Provider struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Endpoint  string `yaml:"endpoint,omitempty"` // for custom endpoints
}

// SMTPConfig contains the admin notification mail settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	ToAdmin  string `yaml:"to_admin"`
	ReplyTo  string `yaml:"reply_to,omitempty"`
}

// RemoteConfig contains the submission API settings.
type RemoteConfig struct {
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"token"`
	VerifySSL *bool  `yaml:"verify_ssl,omitempty"` // nil = verify
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:         4,
		DefaultProvider: "anthropic",
		Providers: map[string]Provider{
			"openai": {
				APIKey:    "${OPENAI_API_KEY}",
				Model:     "gpt-4o-mini",
				MaxTokens: 4096,
			},
			"anthropic": {
				APIKey:    "${ANTHROPIC_API_KEY}",
				Model:     "claude-3-5-sonnet-20241022",
				MaxTokens: 4096,
			},
			"gemini": {
				APIKey:    "${GOOGLE_API_KEY}",
				Model:     "gemini-1.5-flash",
				MaxTokens: 4096,
			},
		},
		SMTP: SMTPConfig{
			Port: 465,
		},
		Remote: RemoteConfig{
			Token: "${MD2WECHAT_API_TOKEN}",
		},
	}
}

// GetProvider returns the provider configuration by name.
func (c *Config) GetProvider(name string) (*Provider, bool) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetDefaultProvider returns the default provider configuration.
func (c *Config) GetDefaultProvider() (*Provider, bool) {
	return c.GetProvider(c.DefaultProvider)
}

// ShouldVerifySSL reports whether the remote client should verify
// certificates. Unset means verify.
func (r *RemoteConfig) ShouldVerifySSL() bool {
	return r.VerifySSL == nil || *r.VerifySSL
}

// IsComplete reports whether every field required for sending mail is set.
func (s *SMTPConfig) IsComplete() bool {
	return s.Host != "" && s.Port != 0 && s.Username != "" &&
		s.Password != "" && s.ToAdmin != ""
}

// FromAddr returns the sender address, defaulting to the username.
func (s *SMTPConfig) FromAddr() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

// ReplyToAddr returns the reply-to address, defaulting to the sender.
func (s *SMTPConfig) ReplyToAddr() string {
	if s.ReplyTo != "" {
		return s.ReplyTo
	}
	return s.FromAddr()
}
