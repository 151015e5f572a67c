package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Workers)
	}
	if cfg.DefaultProvider != "anthropic" {
		t.Errorf("expected default provider 'anthropic', got %q", cfg.DefaultProvider)
	}
	for _, name := range []string{"openai", "anthropic", "gemini"} {
		if _, ok := cfg.GetProvider(name); !ok {
			t.Errorf("expected provider %q in defaults", name)
		}
	}
	if cfg.SMTP.Port != 465 {
		t.Errorf("expected default SMTP port 465, got %d", cfg.SMTP.Port)
	}
}

func TestGetDefaultProvider(t *testing.T) {
	cfg := DefaultConfig()

	p, ok := cfg.GetDefaultProvider()
	if !ok {
		t.Fatal("expected default provider to resolve")
	}
	if p.Model == "" {
		t.Error("expected default provider to have a model")
	}

	cfg.DefaultProvider = "nonexistent"
	if _, ok := cfg.GetDefaultProvider(); ok {
		t.Error("expected unknown default provider to fail resolution")
	}
}

func TestLoader_MissingFileReturnsDefaults(t *testing.T) {
	l := NewLoaderWithPath(filepath.Join(t.TempDir(), "config.yaml"))

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultProvider != "anthropic" {
		t.Errorf("expected defaults for missing file, got provider %q", cfg.DefaultProvider)
	}
	if l.Exists() {
		t.Error("Exists() must be false for a missing file")
	}
}

func TestLoader_LoadExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
workers: 2
templates_dir: /opt/templates
remote:
  base_url: https://api.example.com
  token: ${MD2WECHAT_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	os.Setenv("MD2WECHAT_TEST_TOKEN", "secret-token")
	defer os.Unsetenv("MD2WECHAT_TEST_TOKEN")

	cfg, err := NewLoaderWithPath(path).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Workers)
	}
	if cfg.TemplatesDir != "/opt/templates" {
		t.Errorf("unexpected templates dir: %q", cfg.TemplatesDir)
	}
	if cfg.Remote.Token != "secret-token" {
		t.Errorf("expected expanded token, got %q", cfg.Remote.Token)
	}
}

func TestLoader_LoadRawSkipsExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "remote:\n  token: ${MD2WECHAT_TEST_TOKEN}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	os.Setenv("MD2WECHAT_TEST_TOKEN", "secret-token")
	defer os.Unsetenv("MD2WECHAT_TEST_TOKEN")

	cfg, err := NewLoaderWithPath(path).LoadRaw()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Remote.Token != "${MD2WECHAT_TEST_TOKEN}" {
		t.Errorf("LoadRaw must keep the placeholder, got %q", cfg.Remote.Token)
	}
}

func TestLoader_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	l := NewLoaderWithPath(path)

	cfg := DefaultConfig()
	cfg.Workers = 8
	cfg.Remote.BaseURL = "https://submit.example.com"

	if err := l.Save(cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !l.Exists() {
		t.Fatal("Exists() must be true after save")
	}

	loaded, err := l.LoadRaw()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", loaded.Workers)
	}
	if loaded.Remote.BaseURL != "https://submit.example.com" {
		t.Errorf("unexpected base URL: %q", loaded.Remote.BaseURL)
	}
}

func TestLoader_InitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	l := NewLoaderWithPath(path)

	if err := l.Init(); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := l.Init(); err == nil {
		t.Error("second init must fail for an existing file")
	}
}

func TestExpandEnvVars_UnsetBecomesEmpty(t *testing.T) {
	os.Unsetenv("MD2WECHAT_DEFINITELY_UNSET")
	got := expandEnvVars("token: ${MD2WECHAT_DEFINITELY_UNSET}")
	if got != "token: " {
		t.Errorf("unset variable must expand to empty, got %q", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			key := "MD2WECHAT_TEST_BOOL"
			if tc.value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, tc.value)
				defer os.Unsetenv(key)
			}
			if got := GetEnvBool(key); got != tc.want {
				t.Errorf("GetEnvBool(%q=%q) = %v, want %v", key, tc.value, got, tc.want)
			}
		})
	}
}

func TestSMTPConfig_Helpers(t *testing.T) {
	s := SMTPConfig{
		Host:     "smtp.example.com",
		Port:     465,
		Username: "bot@example.com",
		Password: "pw",
		ToAdmin:  "admin@example.com",
	}
	if !s.IsComplete() {
		t.Error("expected complete config")
	}
	if s.FromAddr() != "bot@example.com" {
		t.Errorf("FromAddr must default to username, got %q", s.FromAddr())
	}
	if s.ReplyToAddr() != "bot@example.com" {
		t.Errorf("ReplyToAddr must default to sender, got %q", s.ReplyToAddr())
	}

	s.From = "noreply@example.com"
	if s.FromAddr() != "noreply@example.com" {
		t.Errorf("unexpected FromAddr: %q", s.FromAddr())
	}

	s.Password = ""
	if s.IsComplete() {
		t.Error("missing password must fail completeness")
	}

	if !strings.Contains(ConfigDirName, "md2wechat") {
		t.Errorf("unexpected config dir name: %q", ConfigDirName)
	}
}
