package suggest

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/starford/quicknote/internal/parser"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini asks a Gemini model for tags.
type Gemini struct {
	client  *genai.Client
	model   string
	maxTags int
	logger  *slog.Logger
}

// NewGemini creates a Gemini client authenticated with cfg.APIKey.
func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger) (*Gemini, error) {
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("suggest: create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	maxTags := cfg.MaxTags
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Gemini{client: client, model: model, maxTags: maxTags, logger: logger}, nil
}

// Suggest implements Suggester.
func (g *Gemini) Suggest(ctx context.Context, text string) ([]string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt(g.maxTags)+"\n\nNote:\n"+text), nil)
	if err != nil {
		return nil, fmt.Errorf("suggest: gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("suggest: gemini returned no candidates")
	}

	reply := resp.Candidates[0].Content.Parts[0].Text
	g.logger.Debug("gemini tag reply", slog.String("model", g.model), slog.String("reply", truncateForLog(reply)))
	return finish(parser.ParseTagList(reply), g.maxTags), nil
}
