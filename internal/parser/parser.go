// Package parser pulls tag candidates out of note text and out of free-form
// model replies.
package parser

import (
	"cmp"
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	tagRe  = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	wordRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+#-]{2,}`)
)

// Result holds the output of parsing a note.
type Result struct {
	Frontmatter map[string]any
	Body        string
	// Tags are written explicitly by the author: frontmatter tags, then #tags.
	Tags []string
	// Keywords are body words ranked by frequency, stopwords removed.
	Keywords []string
	Title    string
}

// Parse extracts frontmatter, explicit tags, keywords and a title from note
// content. Content that is not valid frontmatter is treated as body.
func Parse(content string) Result {
	fm, body := splitFrontmatter(content)
	return Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(body, fm),
		Keywords:    extractKeywords(body),
		Title:       deriveTitle(fm, body),
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. If no frontmatter is found the entire content is body.
func splitFrontmatter(content string) (map[string]any, string) {
	const delim = "---"
	trimmed := strings.TrimLeft(content, "\n\r")
	if !strings.HasPrefix(trimmed, delim) {
		return nil, content
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, content
	}
	block := rest[:idx]
	body := strings.TrimLeft(rest[idx+1+len(delim):], "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, content
	}
	return fm, body
}

// extractTags collects frontmatter "tags" (list or comma separated string)
// followed by inline #tags, without duplicates.
func extractTags(body string, fm map[string]any) []string {
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}

	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// extractKeywords ranks lowercase words of body by frequency, then by first
// appearance. Hashtags are skipped because they are already explicit tags.
func extractKeywords(body string) []string {
	body = tagRe.ReplaceAllString(body, " ")
	counts := make(map[string]int)
	var order []string
	for _, w := range wordRe.FindAllString(body, -1) {
		w = strings.ToLower(strings.Trim(w, "-"))
		if len(w) < 3 || stopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	return order
}

// maxTitleRunes bounds titles taken from the first line of a note.
const maxTitleRunes = 80

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise the first non-empty line cut to maxTitleRunes.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	first := ""
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
		if first == "" {
			first = trimmed
		}
	}
	if r := []rune(first); len(r) > maxTitleRunes {
		return string(r[:maxTitleRunes]) + "…"
	}
	return first
}

// ParseTagList reads the tags out of a model reply. It accepts a JSON array
// of strings, or items separated by commas or newlines, optionally written as
// bullets or #hashtags. Tags are lowercased, and duplicates and empties are
// dropped.
func ParseTagList(reply string) []string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var items []string
	if err := json.Unmarshal([]byte(reply), &items); err != nil {
		items = strings.FieldsFunc(reply, func(r rune) bool { return r == ',' || r == '\n' })
	}

	out := []string{}
	for _, it := range items {
		t := strings.TrimSpace(it)
		t = strings.TrimLeftFunc(t, func(r rune) bool {
			return r == '-' || r == '*' || r == '#' || r == '.' || unicode.IsDigit(r) || unicode.IsSpace(r)
		})
		t = strings.Trim(t, `"'`+"`")
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true, "have": true,
	"this": true, "that": true, "with": true, "from": true, "they": true, "will": true,
	"would": true, "there": true, "their": true, "what": true, "about": true, "which": true,
	"when": true, "make": true, "like": true, "time": true, "just": true, "know": true,
	"take": true, "into": true, "your": true, "some": true, "could": true, "them": true,
	"than": true, "then": true, "also": true, "only": true, "very": true, "more": true,
	"should": true, "need": true, "been": true, "were": true, "does": true, "did": true,
	"its": true, "how": true, "why": true, "who": true, "get": true, "got": true,
	"use": true, "using": true, "used": true, "these": true, "those": true, "over": true,
	"after": true, "before": true, "while": true, "where": true, "each": true, "other": true,
	"note": true, "notes": true, "todo": true, "yes": true, "let": true, "via": true,
}
