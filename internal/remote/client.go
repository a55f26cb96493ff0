// Package remote talks to the quicknote HTTP API on behalf of the sync client.
// It implements the note store, tag suggester and session interfaces the
// controller depends on. Calls are never retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/quicknote/internal/apperr"
	"github.com/starford/quicknote/internal/models"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 15 * time.Second

// Client is an authenticated API client for one user.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API at baseURL, authenticating with token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the caller's notes, most recently created first.
func (c *Client) List(ctx context.Context) ([]models.Note, error) {
	var out models.NoteList
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, err
	}
	if out.Notes == nil {
		out.Notes = []models.Note{}
	}
	return out.Notes, nil
}

// Create persists a new note.
func (c *Client) Create(ctx context.Context, content string, tags []string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPost, "/api/notes", models.NoteInput{Content: content, Tags: nonNil(tags)}, &n)
	return n, err
}

// Update replaces content and tags of the note id.
func (c *Client) Update(ctx context.Context, id, content string, tags []string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), models.NoteInput{Content: content, Tags: nonNil(tags)}, &n)
	return n, err
}

// Delete removes the note id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

// Suggest asks the server for tags matching text.
func (c *Client) Suggest(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("content is required")
	}
	var out models.SuggestResponse
	if err := c.do(ctx, http.MethodPost, "/api/suggest-tags", models.SuggestRequest{Content: text}, &out); err != nil {
		return nil, err
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out.Tags, nil
}

// CurrentUserID resolves the user the token belongs to. Without a token, or
// when the server rejects it, it returns apperr.ErrUnauthenticated.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	if c.token == "" {
		return "", apperr.ErrUnauthenticated
	}
	var s models.Session
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &s); err != nil {
		return "", err
	}
	if s.UserID == "" {
		return "", apperr.ErrUnauthenticated
	}
	return s.UserID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperr.Transport(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.Transport(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp)
		c.logger.Debug("api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("error", err.Error()))
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Transport(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// statusError maps a non-2xx response to the error taxonomy.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var eb models.ErrorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", apperr.ErrUnauthenticated, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, msg)
	case http.StatusBadRequest:
		return apperr.Validation(msg)
	case http.StatusTooManyRequests:
		return apperr.Transport(fmt.Errorf("%w: %s", apperr.ErrRateLimited, msg))
	default:
		return apperr.Transport(errors.New("bad status " + resp.Status + ": " + msg))
	}
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
