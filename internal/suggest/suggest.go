// Package suggest proposes tags for note content. Providers are a local
// keyword heuristic and two hosted models (OpenAI-compatible and Gemini).
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/quicknote/internal/tagset"
)

// Provider names accepted in configuration.
const (
	ProviderHeuristic = "heuristic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// DefaultMaxTags caps the number of suggestions returned.
const DefaultMaxTags = 5

// Suggester proposes tags for a piece of text. An empty result is valid.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	MaxTags  int
}

// New builds the configured provider.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Suggester, error) {
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = DefaultMaxTags
	}
	switch cfg.Provider {
	case "", ProviderHeuristic:
		return NewHeuristic(cfg.MaxTags), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg, logger), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("suggest: unknown provider %q", cfg.Provider)
	}
}

const systemPrompt = `You label short personal notes with tags.
Reply with a JSON array of at most %d short lowercase tags, most relevant first.
Use single words or hyphenated phrases. Reply with [] when nothing fits.`

func prompt(maxTags int) string {
	return fmt.Sprintf(systemPrompt, maxTags)
}

// finish normalizes tags and truncates them to limit.
func finish(tags []string, limit int) []string {
	out := tagset.Normalize(tags)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func truncateForLog(s string) string {
	const limit = 200
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
