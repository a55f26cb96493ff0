package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quicknote/internal/models"
)

// NoteRequest is the request body for creating or updating a note.
type NoteRequest struct {
	Content string   `json:"content" example:"Buy milk" validate:"required"`
	Tags    []string `json:"tags" example:"errands,home"`
}

// Validate rejects blank content. Tag rules, including the count limit, are
// applied by the service after normalization.
func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.By(notBlank)),
	)
}

func (r NoteRequest) input() models.NoteInput {
	return models.NoteInput{Content: r.Content, Tags: r.Tags}
}

// SuggestTagsRequest is the request body of POST /api/suggest-tags.
type SuggestTagsRequest struct {
	Content string `json:"content" example:"Meeting notes about the Go rewrite" validate:"required"`
}

// Validate rejects blank content.
func (r SuggestTagsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.By(notBlank)),
	)
}

// NoteListResponse wraps note listings.
type NoteListResponse = models.NoteList

// SuggestTagsResponse carries suggested tags.
type SuggestTagsResponse = models.SuggestResponse

// SessionResponse identifies the caller.
type SessionResponse = models.Session

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}
