// Package noteservice implements the owner-scoped note operations behind the
// HTTP API and the MCP tools.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/quicknote/internal/apperr"
	"github.com/starford/quicknote/internal/models"
	"github.com/starford/quicknote/internal/store"
	"github.com/starford/quicknote/internal/suggest"
	"github.com/starford/quicknote/internal/tagset"
)

// Limits applied to note input.
const (
	MaxContentLength = 100_000
	MaxTagLength     = 64
	MaxTags          = 32
)

// ErrSuggestionFailed wraps any error returned by the suggestion provider.
var ErrSuggestionFailed = errors.New("suggestion provider failed")

// Event kinds passed to the event callback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventFunc is called after a note was changed successfully.
type EventFunc func(kind string, n models.Note)

// Service coordinates the repository and the suggestion provider.
type Service struct {
	repo      store.NoteRepository
	suggester suggest.Suggester
	logger    *slog.Logger
	now       func() time.Time
	onEvent   EventFunc
}

// Option configures a Service.
type Option func(*Service)

// WithEventFunc registers fn to receive note change events.
func WithEventFunc(fn EventFunc) Option {
	return func(s *Service) { s.onEvent = fn }
}

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new note service. suggester may be nil, in which case
// SuggestTags always fails.
func NewService(repo store.NoteRepository, suggester suggest.Suggester, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		suggester: suggester,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListNotes returns the notes of owner, most recently created first.
func (s *Service) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	return s.repo.ListNotes(ctx, owner)
}

// GetNote returns the note id of owner.
func (s *Service) GetNote(ctx context.Context, owner, id string) (models.Note, error) {
	return s.repo.GetNote(ctx, owner, id)
}

// CreateNote stores a new note for owner.
func (s *Service) CreateNote(ctx context.Context, owner string, in models.NoteInput) (models.Note, error) {
	in, err := prepare(in)
	if err != nil {
		return models.Note{}, err
	}

	now := s.now().UTC()
	n := models.Note{
		ID:        uuid.NewString(),
		Owner:     owner,
		Content:   in.Content,
		Tags:      in.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertNote(ctx, n); err != nil {
		return models.Note{}, err
	}
	s.emit(EventCreated, n)
	return n, nil
}

// UpdateNote replaces content and tags of an existing note. The creation time
// is kept and the update time recomputed.
func (s *Service) UpdateNote(ctx context.Context, owner, id string, in models.NoteInput) (models.Note, error) {
	in, err := prepare(in)
	if err != nil {
		return models.Note{}, err
	}

	n, err := s.repo.GetNote(ctx, owner, id)
	if err != nil {
		return models.Note{}, err
	}
	n.Content = in.Content
	n.Tags = in.Tags
	n.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateNote(ctx, n); err != nil {
		return models.Note{}, err
	}
	s.emit(EventUpdated, n)
	return n, nil
}

// DeleteNote removes the note id of owner.
func (s *Service) DeleteNote(ctx context.Context, owner, id string) error {
	if err := s.repo.DeleteNote(ctx, owner, id); err != nil {
		return err
	}
	s.emit(EventDeleted, models.Note{ID: id, Owner: owner})
	return nil
}

// SuggestTags asks the provider for tags describing content.
func (s *Service) SuggestTags(ctx context.Context, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("content is required")
	}
	if s.suggester == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrSuggestionFailed)
	}
	tags, err := s.suggester.Suggest(ctx, content)
	if err != nil {
		s.logger.Warn("tag suggestion failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrSuggestionFailed, err)
	}
	return tagset.Normalize(tags), nil
}

// Ready reports whether the repository is reachable.
func (s *Service) Ready(_ context.Context) error {
	return s.repo.Ping()
}

func (s *Service) emit(kind string, n models.Note) {
	if s.onEvent != nil {
		s.onEvent(kind, n)
	}
}

// prepare normalizes tags and validates the input.
func prepare(in models.NoteInput) (models.NoteInput, error) {
	in.Tags = tagset.Normalize(in.Tags)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Content,
			validation.Required.Error("content is required"),
			validation.By(notBlank),
			validation.RuneLength(0, MaxContentLength),
		),
		validation.Field(&in.Tags,
			validation.Length(0, MaxTags),
			validation.Each(validation.RuneLength(1, MaxTagLength)),
		),
	)
	if err != nil {
		return in, fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
	}
	return in, nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("content is required")
	}
	return nil
}
