// Package tagset implements the ordered, duplicate-free tag lists attached to notes.
package tagset

import (
	"slices"
	"strings"
)

// Add returns tags with tag appended. The tag is trimmed first; empty tags and
// tags already present are ignored. The input slice is never modified.
func Add(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	out := slices.Clone(tags)
	if out == nil {
		out = []string{}
	}
	if tag == "" || slices.Contains(out, tag) {
		return out
	}
	return append(out, tag)
}

// Remove returns tags without any element equal to tag.
func Remove(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// Normalize folds every element of tags through Add, in order.
func Normalize(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		out = Add(out, t)
	}
	return out
}

// Equal reports whether a and b hold the same tags in the same order.
// A nil slice equals an empty one.
func Equal(a, b []string) bool {
	return slices.Equal(a, b)
}
