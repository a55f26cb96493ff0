// Package auth maps bearer tokens to user ids. Tokens come from the config
// file and, optionally, from a separate tokens file that is reloaded when it
// changes on disk.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry resolves bearer tokens to user ids. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	static   map[string]string
	fromFile map[string]string
}

// NewRegistry creates a registry seeded with static token → user id pairs.
func NewRegistry(static map[string]string) *Registry {
	r := &Registry{static: make(map[string]string, len(static))}
	for tok, user := range static {
		if tok != "" && user != "" {
			r.static[tok] = user
		}
	}
	return r
}

// Lookup returns the user the token belongs to.
func (r *Registry) Lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := match(r.fromFile, token); ok {
		return user, true
	}
	return match(r.static, token)
}

// match compares token against every entry in constant time.
func match(tokens map[string]string, token string) (string, bool) {
	var found string
	for tok, user := range tokens {
		if subtle.ConstantTimeCompare([]byte(tok), []byte(token)) == 1 {
			found = user
		}
	}
	return found, found != ""
}

// Len returns the number of known tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.static) + len(r.fromFile)
}

type tokensFile struct {
	Tokens map[string]string `yaml:"tokens"`
}

// LoadFile replaces the file-sourced tokens with those in path. A missing
// file clears them.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		r.setFileTokens(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth: read tokens file: %w", err)
	}

	var tf tokensFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("auth: parse tokens file: %w", err)
	}
	r.setFileTokens(tf.Tokens)
	return nil
}

func (r *Registry) setFileTokens(tokens map[string]string) {
	clean := make(map[string]string, len(tokens))
	for tok, user := range tokens {
		if tok != "" && user != "" {
			clean[tok] = user
		}
	}
	r.mu.Lock()
	r.fromFile = clean
	r.mu.Unlock()
}

type ctxKey struct{}

// WithUser returns a context carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the authenticated user id, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
