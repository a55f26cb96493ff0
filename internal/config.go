package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quicknote/internal/notesync"
	"github.com/starford/quicknote/internal/suggest"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Suggest SuggestConfig     `yaml:"suggest"`
	Client  ClientConfig      `yaml:"client"`
	MCP     MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Suggest.Validate(); err != nil {
		return fmt.Errorf("suggest: %w", err)
	}
	return c.Client.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig maps bearer tokens to user ids.
//
// Tokens are listed inline, in TokensFile, or both. The file has the same
// shape as the inline section (a "tokens" map) and is reloaded when it
// changes. With no tokens at all every API request is rejected.
type AuthConfig struct {
	Tokens     map[string]string `yaml:"tokens"`
	TokensFile string            `yaml:"tokens_file"`
}

// Validate rejects empty tokens and empty user ids.
func (c *AuthConfig) Validate() error {
	for token, user := range c.Tokens {
		if strings.TrimSpace(token) == "" {
			return errors.New("empty token")
		}
		if strings.TrimSpace(user) == "" {
			return fmt.Errorf("token %s…: empty user id", redact(token))
		}
	}
	return nil
}

// SuggestConfig selects the tag suggestion provider.
type SuggestConfig struct {
	Provider  string          `yaml:"provider"`
	Model     string          `yaml:"model"`
	APIKey    string          `yaml:"api_key"`
	BaseURL   string          `yaml:"base_url"`
	MaxTags   int             `yaml:"max_tags"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig bounds suggestion requests per user.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Validate validates the suggestion configuration.
func (c *SuggestConfig) Validate() error {
	hosted := c.Provider == suggest.ProviderOpenAI || c.Provider == suggest.ProviderGemini
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.In(suggest.ProviderHeuristic, suggest.ProviderOpenAI, suggest.ProviderGemini)),
		validation.Field(&c.APIKey, validation.When(hosted, validation.Required.Error("is required for hosted providers"))),
		validation.Field(&c.BaseURL, validation.By(absoluteURL)),
		validation.Field(&c.MaxTags, validation.Min(0), validation.Max(20)),
	)
}

// Options converts the section into provider options.
func (c *SuggestConfig) Options() suggest.Config {
	return suggest.Config{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
		MaxTags:  c.MaxTags,
	}
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	ServerURL string        `yaml:"server_url"`
	Token     string        `yaml:"token"`
	Debounce  time.Duration `yaml:"debounce"`
}

// Validate validates the client configuration.
func (c *ClientConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// MCPConfig configures the stdio MCP server.
type MCPConfig struct {
	// Owner is the user whose notes the MCP tools operate on.
	Owner string `yaml:"owner"`
}

// Validate validates the MCP configuration. It is only checked when the MCP
// server is started.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Owner, validation.Required),
	)
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

func redact(token string) string {
	if len(token) <= 4 {
		return ""
	}
	return token[:4]
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./quicknote.db",
		},
		Suggest: SuggestConfig{
			Provider: suggest.ProviderHeuristic,
			MaxTags:  suggest.DefaultMaxTags,
			RateLimit: RateLimitConfig{
				RPS:   0.5,
				Burst: 5,
			},
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:8080",
			Debounce:  notesync.DefaultDebounce,
		},
	}
}
