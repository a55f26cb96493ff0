package cache

import (
	"slices"

	"github.com/starford/quicknote/internal/models"
)

// Checkpoint records the state of one entry so a speculative change to it can
// be undone without disturbing unrelated entries changed in the meantime.
type Checkpoint struct {
	id      string
	note    models.Note
	present bool
	// index of the entry before the checkpoint, or -1.
	index int
}

// Checkpoint captures the current state of the entry id.
func (c *Cache) Checkpoint(id string) Checkpoint {
	n, ok := c.byID[id]
	return Checkpoint{
		id:      id,
		note:    n.Clone(),
		present: ok,
		index:   slices.Index(c.order, id),
	}
}

// Restore puts the entry back to its checkpointed state. An entry that did not
// exist is removed; a removed entry is reinserted at its former position.
func (c *Cache) Restore(cp Checkpoint) {
	if !cp.present {
		c.Remove(cp.id)
		return
	}
	if _, ok := c.byID[cp.id]; ok {
		c.byID[cp.id] = cp.note.Clone()
		return
	}
	i := min(max(cp.index, 0), len(c.order))
	c.order = slices.Insert(c.order, i, cp.id)
	c.byID[cp.id] = cp.note.Clone()
}
