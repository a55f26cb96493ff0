package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/quicknote/internal/apperr"
	"github.com/starford/quicknote/internal/models"
)

// Timestamps are stored as fixed-width UTC text so that they sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// NoteRepository defines the persistence operations the note service needs.
// Consumers should depend on this interface rather than the concrete *DB type.
type NoteRepository interface {
	ListNotes(ctx context.Context, owner string) ([]models.Note, error)
	GetNote(ctx context.Context, owner, id string) (models.Note, error)
	InsertNote(ctx context.Context, n models.Note) error
	UpdateNote(ctx context.Context, n models.Note) error
	DeleteNote(ctx context.Context, owner, id string) error
	Ping() error
	Close() error
}

// Verify *DB satisfies NoteRepository at compile time.
var _ NoteRepository = (*DB)(nil)

// ListNotes returns every note of owner, most recently created first.
func (db *DB) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, owner, content, tags, created_at, updated_at
		FROM notes
		WHERE owner = ?
		ORDER BY created_at DESC, rowid DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNote returns the note id when it belongs to owner.
func (db *DB) GetNote(ctx context.Context, owner, id string) (models.Note, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, owner, content, tags, created_at, updated_at
		FROM notes
		WHERE id = ? AND owner = ?
	`, id, owner)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, apperr.ErrNotFound
	}
	return n, err
}

// InsertNote stores a new note.
func (db *DB) InsertNote(ctx context.Context, n models.Note) error {
	tagsJSON, err := json.Marshal(nonNilTags(n.Tags))
	if err != nil {
		return fmt.Errorf("store: encode tags: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO notes (id, owner, content, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.Owner, n.Content, string(tagsJSON), formatTime(n.CreatedAt), formatTime(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert note: %w", err)
	}
	return nil
}

// UpdateNote overwrites content, tags and updated_at of an existing note.
// It returns apperr.ErrNotFound when no note with that id belongs to n.Owner.
func (db *DB) UpdateNote(ctx context.Context, n models.Note) error {
	tagsJSON, err := json.Marshal(nonNilTags(n.Tags))
	if err != nil {
		return fmt.Errorf("store: encode tags: %w", err)
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE notes SET content = ?, tags = ?, updated_at = ?
		WHERE id = ? AND owner = ?
	`, n.Content, string(tagsJSON), formatTime(n.UpdatedAt), n.ID, n.Owner)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	return expectOneRow(res)
}

// DeleteNote removes the note id of owner.
func (db *DB) DeleteNote(ctx context.Context, owner, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (models.Note, error) {
	var (
		n                    models.Note
		tagsJSON             string
		createdAt, updatedAt string
	)
	if err := s.Scan(&n.ID, &n.Owner, &n.Content, &tagsJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return n, err
		}
		return n, fmt.Errorf("store: scan note: %w", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return n, fmt.Errorf("store: decode tags of %s: %w", n.ID, err)
	}
	n.Tags = nonNilTags(n.Tags)

	var err error
	if n.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return n, fmt.Errorf("store: parse created_at of %s: %w", n.ID, err)
	}
	if n.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return n, fmt.Errorf("store: parse updated_at of %s: %w", n.ID, err)
	}
	return n, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
