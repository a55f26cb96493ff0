package suggest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/starford/quicknote/internal/parser"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI asks an OpenAI-compatible chat completions endpoint for tags.
type OpenAI struct {
	client  openai.Client
	model   string
	maxTags int
	logger  *slog.Logger
}

// NewOpenAI creates a client for cfg. BaseURL may point at any compatible
// server.
func NewOpenAI(cfg Config, logger *slog.Logger) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	maxTags := cfg.MaxTags
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   model,
		maxTags: maxTags,
		logger:  logger,
	}
}

// Suggest implements Suggester.
func (o *OpenAI) Suggest(ctx context.Context, text string) ([]string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt(o.maxTags)),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("suggest: openai returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	o.logger.Debug("openai tag reply", slog.String("model", o.model), slog.String("reply", truncateForLog(reply)))
	return finish(parser.ParseTagList(reply), o.maxTags), nil
}
