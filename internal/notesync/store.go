package notesync

//go:generate go run go.uber.org/mock/mockgen@latest -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"context"

	"github.com/starford/quicknote/internal/models"
)

// NoteStore is the remote note backend. The owner is implied by the session
// the store was built with. Failures are categorized with apperr.
type NoteStore interface {
	List(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, content string, tags []string) (models.Note, error)
	Update(ctx context.Context, id, content string, tags []string) (models.Note, error)
	Delete(ctx context.Context, id string) error
}

// Suggester proposes tags for a piece of text. Callers never pass blank text.
type Suggester interface {
	Suggest(ctx context.Context, text string) ([]string, error)
}

// Session resolves the signed-in user. It returns apperr.ErrUnauthenticated
// when nobody is signed in.
type Session interface {
	CurrentUserID(ctx context.Context) (string, error)
}
