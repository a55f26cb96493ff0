// Package testutil provides shared test helpers for setting up databases and services.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/quicknote/internal/noteservice"
	"github.com/starford/quicknote/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "quicknote-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SuggestFunc adapts a function to the suggest.Suggester interface.
type SuggestFunc func(ctx context.Context, text string) ([]string, error)

// Suggest calls f.
func (f SuggestFunc) Suggest(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

// EchoSuggester suggests every word of the text that starts with '#'.
var EchoSuggester = SuggestFunc(func(_ context.Context, text string) ([]string, error) {
	var tags []string
	for _, w := range strings.Fields(text) {
		if t, ok := strings.CutPrefix(w, "#"); ok && t != "" {
			tags = append(tags, t)
		}
	}
	return tags, nil
})

// TestService creates a note service over a temporary database.
func TestService(t *testing.T, opts ...noteservice.Option) (*noteservice.Service, *store.DB) {
	t.Helper()
	db := TestDB(t)
	opts = append([]noteservice.Option{noteservice.WithLogger(DiscardLogger())}, opts...)
	return noteservice.NewService(db, EchoSuggester, opts...), db
}
