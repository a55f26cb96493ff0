// Package models defines the domain types for quicknote.
package models

import (
	"slices"
	"time"
)

// Note is a single user note.
type Note struct {
	ID        string    `json:"id"`
	Owner     string    `json:"user_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no slices with n.
func (n Note) Clone() Note {
	n.Tags = slices.Clone(n.Tags)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n
}
