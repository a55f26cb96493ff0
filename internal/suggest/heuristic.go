package suggest

import (
	"context"
	"strings"

	"github.com/starford/quicknote/internal/parser"
)

// Heuristic suggests the tags a note declares itself (frontmatter and
// #hashtags) followed by its most frequent keywords. It needs no network.
type Heuristic struct {
	maxTags int
}

// NewHeuristic creates a heuristic suggester returning at most maxTags tags.
func NewHeuristic(maxTags int) *Heuristic {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Heuristic{maxTags: maxTags}
}

// Suggest implements Suggester.
func (h *Heuristic) Suggest(_ context.Context, text string) ([]string, error) {
	res := parser.Parse(text)
	candidates := make([]string, 0, len(res.Tags)+len(res.Keywords))
	for _, t := range res.Tags {
		candidates = append(candidates, strings.ToLower(t))
	}
	candidates = append(candidates, res.Keywords...)
	return finish(candidates, h.maxTags), nil
}
