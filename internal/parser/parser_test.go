package parser

import (
	"slices"
	"strings"
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	r := Parse("---\ntitle: Hello\ntags:\n  - go\n  - sqlite\n---\n# Hello\nBody text.\n")
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if !slices.Equal(r.Tags, []string{"go", "sqlite"}) {
		t.Errorf("tags = %v, want [go sqlite]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r := Parse("# Just a heading\nSome text.\n")
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r := Parse("---\n: invalid: yaml: {{{\n---\nBody\n")
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{"tags": []any{"alpha"}}
	tags := extractTags("Some text #beta and #alpha again.", fm)
	if !slices.Equal(tags, []string{"alpha", "beta"}) {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestExtractTags_CommaSeparatedFrontmatter(t *testing.T) {
	tags := extractTags("", map[string]any{"tags": "work, ideas ,"})
	if !slices.Equal(tags, []string{"work", "ideas"}) {
		t.Errorf("tags = %v", tags)
	}
}

func TestExtractKeywords_RankedByFrequency(t *testing.T) {
	kw := extractKeywords("Postgres index tuning. The index on postgres was slow, so the INDEX got rebuilt. #db")
	if len(kw) < 2 || kw[0] != "index" || kw[1] != "postgres" {
		t.Errorf("keywords = %v, want index, postgres first", kw)
	}
	if slices.Contains(kw, "the") || slices.Contains(kw, "db") {
		t.Errorf("stopwords or hashtags leaked: %v", kw)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	title := deriveTitle(map[string]any{"title": "FM Title"}, "# H1 Title\ntext")
	if title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestParseTagList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"json array", `["Go", "concurrency", "go"]`, []string{"go", "concurrency"}},
		{"fenced json", "```json\n[\"db\"]\n```", []string{"db"}},
		{"comma separated", "go, testing , #tdd", []string{"go", "testing", "tdd"}},
		{"bullets", "- travel\n* japan\n1. food", []string{"travel", "japan", "food"}},
		{"empty", "  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTagList(tt.reply)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseTagList(%q) = %v, want %v", tt.reply, got, tt.want)
			}
		})
	}
}

func TestDeriveTitle_FirstLineFallback(t *testing.T) {
	if got := deriveTitle(nil, "\n  Buy milk  \nand eggs"); got != "Buy milk" {
		t.Errorf("title = %q, want %q", got, "Buy milk")
	}
	long := strings.Repeat("é", maxTitleRunes+5)
	if got := deriveTitle(nil, long); len([]rune(got)) != maxTitleRunes+1 {
		t.Errorf("long title not cut: %d runes", len([]rune(got)))
	}
}
