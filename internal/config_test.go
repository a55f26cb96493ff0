package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/quicknote/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestAuthConfig_EmptyUser(t *testing.T) {
	cfg := AuthConfig{Tokens: map[string]string{"secret-token": " "}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty user id should fail")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Errorf("error leaks the token: %v", err)
	}
}

func TestAuthConfig_EmptyToken(t *testing.T) {
	cfg := AuthConfig{Tokens: map[string]string{"": "u1"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty token should fail")
	}
}

func TestSuggestConfig_HostedNeedsKey(t *testing.T) {
	cfg := SuggestConfig{Provider: "openai"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("openai without api_key should fail")
	}
	cfg.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("openai with key: %v", err)
	}
}

func TestSuggestConfig_InvalidProvider(t *testing.T) {
	cfg := SuggestConfig{Provider: "magic"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid provider should fail validation")
	}
}

func TestSuggestConfig_BaseURL(t *testing.T) {
	cfg := SuggestConfig{BaseURL: "not a url"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("relative base_url should fail")
	}
}

func TestClientConfig_RequiresServerURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Client.ServerURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch client error")
	}
}

func TestMCPConfig_RequiresOwner(t *testing.T) {
	var cfg MCPConfig
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty owner should fail")
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Setenv("QUICKNOTE_TEST_KEY", "sk-from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
  http:
    port: 9090
sqlite:
  path: /tmp/notes.db
auth:
  tokens:
    tok1: alice
  tokens_file: /etc/quicknote/tokens.yaml
suggest:
  provider: openai
  api_key: ${QUICKNOTE_TEST_KEY}
  rate_limit:
    rps: 1
    burst: 2
client:
  server_url: http://notes.local:9090
  debounce: 750ms
mcp:
  owner: alice
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Address() != ":9090" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
	if cfg.Auth.Tokens["tok1"] != "alice" || cfg.Auth.TokensFile == "" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Suggest.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q, want env expansion", cfg.Suggest.APIKey)
	}
	if cfg.Suggest.MaxTags != 5 {
		t.Errorf("max_tags default lost: %d", cfg.Suggest.MaxTags)
	}
	if cfg.Client.Debounce != 750*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Client.Debounce)
	}
	if cfg.MCP.Owner != "alice" {
		t.Errorf("owner = %q", cfg.MCP.Owner)
	}
}
