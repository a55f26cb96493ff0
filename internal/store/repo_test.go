package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/starford/quicknote/internal/apperr"
	"github.com/starford/quicknote/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "quicknote-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func mkNote(id, owner string, created time.Time, tags ...string) models.Note {
	return models.Note{ID: id, Owner: owner, Content: "content of " + id, Tags: tags, CreatedAt: created, UpdatedAt: created}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	n := mkNote("a", "u1", base, "go", "db")
	if err := db.InsertNote(ctx, n); err != nil {
		t.Fatalf("InsertNote: %v", err)
	}

	got, err := db.GetNote(ctx, "u1", "a")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Content != n.Content || !slices.Equal(got.Tags, n.Tags) {
		t.Errorf("GetNote = %+v, want %+v", got, n)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, base)
	}
}

func TestGetNote_OtherOwnerIsNotFound(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.InsertNote(ctx, mkNote("a", "u1", base))

	if _, err := db.GetNote(ctx, "u2", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNotes_NewestFirstAndScoped(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.InsertNote(ctx, mkNote("old", "u1", base))
	_ = db.InsertNote(ctx, mkNote("new", "u1", base.Add(time.Hour)))
	_ = db.InsertNote(ctx, mkNote("mid", "u1", base.Add(time.Minute)))
	_ = db.InsertNote(ctx, mkNote("theirs", "u2", base.Add(2*time.Hour)))

	notes, err := db.ListNotes(ctx, "u1")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	var ids []string
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	if want := []string{"new", "mid", "old"}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestListNotes_EmptyIsNonNil(t *testing.T) {
	db := testDB(t)
	notes, err := db.ListNotes(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if notes == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestUpdateNote(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.InsertNote(ctx, mkNote("a", "u1", base))

	n := mkNote("a", "u1", base, "x")
	n.Content = "changed"
	n.UpdatedAt = base.Add(time.Minute)
	if err := db.UpdateNote(ctx, n); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	got, _ := db.GetNote(ctx, "u1", "a")
	if got.Content != "changed" || !slices.Equal(got.Tags, []string{"x"}) {
		t.Errorf("got %+v", got)
	}
	if !got.UpdatedAt.Equal(base.Add(time.Minute)) || !got.CreatedAt.Equal(base) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestUpdateNote_Missing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.InsertNote(ctx, mkNote("a", "u1", base))

	if err := db.UpdateNote(ctx, mkNote("a", "u2", base)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other owner: err = %v, want ErrNotFound", err)
	}
	if err := db.UpdateNote(ctx, mkNote("zzz", "u1", base)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing id: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.InsertNote(ctx, mkNote("a", "u1", base))

	if err := db.DeleteNote(ctx, "u2", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete by other owner: err = %v", err)
	}
	if err := db.DeleteNote(ctx, "u1", "a"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := db.DeleteNote(ctx, "u1", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
