package notesync

import (
	"slices"

	"github.com/starford/quicknote/internal/models"
)

// Snapshot is an immutable view of the controller state. The UI renders from
// snapshots and never reaches into the controller.
type Snapshot struct {
	UserID        string
	Loading       bool
	Error         string
	Notes         []models.Note
	SelectedID    string
	EditedContent string
	EditedTags    []string
	Status        SaveStatus
	Suggesting    bool
	SuggestedTags []string
}

// Selected returns the cached record of the selected note.
func (s Snapshot) Selected() (models.Note, bool) {
	if s.SelectedID == "" {
		return models.Note{}, false
	}
	for _, n := range s.Notes {
		if n.ID == s.SelectedID {
			return n, true
		}
	}
	return models.Note{}, false
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		UserID:        c.userID,
		Loading:       c.loading,
		Error:         c.loadErr,
		Notes:         c.notes.All(),
		SelectedID:    c.selectedID,
		EditedContent: c.editedContent,
		EditedTags:    slices.Clone(c.editedTags),
		Status:        c.status,
		Suggesting:    c.suggestions.requesting,
		SuggestedTags: slices.Clone(c.suggestions.tags),
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	var s Snapshot
	if err := c.do(func() { s = c.snapshot() }); err != nil {
		return Snapshot{Status: StatusIdle}
	}
	return s
}

// Subscribe returns a channel that receives a snapshot after every state
// change. A slow reader only sees the latest state. The channel is closed by
// the returned cancel func or by Close.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	if err := c.do(func() {
		c.subscribers[ch] = struct{}{}
		ch <- c.snapshot()
	}); err != nil {
		close(ch)
		return ch, func() {}
	}

	cancel := func() {
		_ = c.do(func() {
			if _, ok := c.subscribers[ch]; ok {
				delete(c.subscribers, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

func (c *Controller) publish() {
	if len(c.subscribers) == 0 {
		return
	}
	s := c.snapshot()
	for ch := range c.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
