// Package cache holds the client-side collection of notes the UI renders from.
//
// A Cache is not safe for concurrent use. The sync controller confines it to a
// single event-loop goroutine.
package cache

import (
	"slices"

	"github.com/starford/quicknote/internal/models"
)

// Cache maps note ids to notes and remembers the order callers inserted them in.
type Cache struct {
	order []string
	byID  map[string]models.Note
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{byID: make(map[string]models.Note)}
}

// Len returns the number of cached notes.
func (c *Cache) Len() int {
	return len(c.order)
}

// Get returns a copy of the note with the given id.
func (c *Cache) Get(id string) (models.Note, bool) {
	n, ok := c.byID[id]
	if !ok {
		return models.Note{}, false
	}
	return n.Clone(), true
}

// All returns copies of every note in cache order.
func (c *Cache) All() []models.Note {
	out := make([]models.Note, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// Upsert replaces the note with the same id in place, or appends it.
func (c *Cache) Upsert(n models.Note) {
	if _, ok := c.byID[n.ID]; !ok {
		c.order = append(c.order, n.ID)
	}
	c.byID[n.ID] = n.Clone()
}

// Prepend inserts n at the front. An existing entry with the same id is moved.
func (c *Cache) Prepend(n models.Note) {
	c.removeFromOrder(n.ID)
	c.order = slices.Insert(c.order, 0, n.ID)
	c.byID[n.ID] = n.Clone()
}

// Replace swaps the entry oldID for n, keeping its position. It reports false
// and changes nothing when oldID is not cached.
func (c *Cache) Replace(oldID string, n models.Note) bool {
	i := slices.Index(c.order, oldID)
	if i < 0 {
		return false
	}
	delete(c.byID, oldID)
	if n.ID != oldID {
		c.removeFromOrder(n.ID)
		i = slices.Index(c.order, oldID)
	}
	c.order[i] = n.ID
	c.byID[n.ID] = n.Clone()
	return true
}

// Remove deletes the note with the given id. Removing an absent id is a no-op.
func (c *Cache) Remove(id string) {
	if _, ok := c.byID[id]; !ok {
		return
	}
	delete(c.byID, id)
	c.removeFromOrder(id)
}

// ReplaceAll discards the cache content and loads notes in the given order.
// Later duplicates of an id overwrite earlier ones.
func (c *Cache) ReplaceAll(notes []models.Note) {
	c.order = c.order[:0]
	c.byID = make(map[string]models.Note, len(notes))
	for _, n := range notes {
		c.Upsert(n)
	}
}

func (c *Cache) removeFromOrder(id string) {
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}
