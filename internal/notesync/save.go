package notesync

import (
	"log/slog"
	"strings"

	"github.com/starford/quicknote/internal/cache"
	"github.com/starford/quicknote/internal/models"
)

// saveSelected pushes the editor state of the selected note. At most one save
// is in flight at any time.
func (c *Controller) saveSelected() {
	if c.selectedID == "" || c.userID == "" || c.saving {
		return
	}
	c.cancelDebounce()

	id := c.selectedID
	content := c.editedContent
	tags := c.editedTags
	draft := IsDraft(id)

	if strings.TrimSpace(content) == "" {
		if draft {
			c.notify("Cannot Save", "Write something before saving the note.", true)
			return
		}
		c.status = StatusError
		c.changed()
		c.notify("Error", "Note content cannot be empty.", true)
		return
	}

	prev, ok := c.notes.Get(id)
	if !ok {
		return
	}
	cp := c.notes.Checkpoint(id)

	optimistic := prev
	optimistic.Content = content
	optimistic.Tags = tags
	optimistic.UpdatedAt = c.clock.Now()
	c.notes.Upsert(optimistic)

	c.saving = true
	c.status = StatusSyncing
	c.changed()
	c.logger.Debug("saving note", slog.String("note_id", id), slog.Bool("draft", draft))

	ctx := c.ctx
	if draft {
		go func() {
			n, err := c.store.Create(ctx, content, tags)
			c.post(func() { c.createDone(id, cp, n, err) })
		}()
		return
	}
	go func() {
		n, err := c.store.Update(ctx, id, content, tags)
		c.post(func() { c.updateDone(id, prev, cp, n, err) })
	}()
}

// createDone promotes a draft to the note the server created for it.
func (c *Controller) createDone(draftID string, cp cache.Checkpoint, n models.Note, err error) {
	c.saving = false
	c.changed()
	if err == nil {
		err = c.checkOwner(n)
	}

	if err != nil {
		c.logger.Warn("create note failed", slog.String("note_id", draftID), slog.String("error", err.Error()))
		if _, ok := c.notes.Get(draftID); ok {
			c.notes.Restore(cp)
		}
		c.notify("Error", "Could not save the new note.", true)
		if c.isSelected(draftID) {
			c.status = StatusError
		} else {
			c.scheduleAfterSave()
		}
		return
	}

	if !c.notes.Replace(draftID, n) {
		// The draft was deleted while its create was in flight.
		c.logger.Warn("created note has no draft anymore", slog.String("draft_id", draftID), slog.String("note_id", n.ID))
		c.scheduleAfterSave()
		return
	}

	if c.isSelected(draftID) {
		c.selectedID = n.ID
		c.status = StatusSaved
		c.suggestions.clear()
		c.notify("Note Saved", "Your new note has been saved.", false)
	}
	c.logger.Debug("draft promoted", slog.String("draft_id", draftID), slog.String("note_id", n.ID))
	c.scheduleAfterSave()
}

// updateDone applies the server's answer to an update, or rolls back the
// optimistic change and the editor when it failed.
func (c *Controller) updateDone(id string, prev models.Note, cp cache.Checkpoint, n models.Note, err error) {
	c.saving = false
	c.changed()
	if err == nil {
		err = c.checkOwner(n)
	}

	if err != nil {
		c.logger.Warn("update note failed", slog.String("note_id", id), slog.String("error", err.Error()))
		if _, ok := c.notes.Get(id); ok {
			c.notes.Restore(cp)
		}
		if c.isSelected(id) {
			c.cancelDebounce()
			c.editedContent = prev.Content
			c.editedTags = prev.Tags
			c.status = StatusError
			c.suggestions.clear()
		} else {
			c.scheduleAfterSave()
		}
		c.notify("Error", "Could not save note.", true)
		return
	}

	if _, ok := c.notes.Get(id); ok {
		c.notes.Replace(id, n)
	}
	if c.isSelected(id) {
		c.status = StatusSaved
	}
	c.notify("Note Saved", "Your changes have been saved.", false)
	c.scheduleAfterSave()
}

// scheduleAfterSave re-arms the debounce for edits made while a save was in
// flight.
func (c *Controller) scheduleAfterSave() {
	if c.selectedID == "" {
		return
	}
	c.scheduleIfModified()
}

// deleteNote removes id. Drafts never reached the server and are dropped
// locally. Persisted notes are removed optimistically; when the server call
// fails the cache is refreshed from the server, or restored if that fails too.
func (c *Controller) deleteNote(id string) {
	if _, ok := c.notes.Get(id); !ok {
		return
	}
	if IsDraft(id) {
		c.notes.Remove(id)
		if c.isSelected(id) {
			c.selectNote("")
		}
		c.changed()
		return
	}
	if c.userID == "" {
		return
	}

	cp := c.notes.Checkpoint(id)
	c.notes.Remove(id)
	if c.isSelected(id) {
		c.selectNote("")
	}
	c.changed()

	ctx := c.ctx
	go func() {
		err := c.store.Delete(ctx, id)
		if err == nil {
			c.post(func() { c.deleteDone(id) })
			return
		}
		notes, listErr := c.store.List(ctx)
		c.post(func() { c.deleteFailed(id, cp, err, notes, listErr) })
	}()
}

func (c *Controller) deleteDone(id string) {
	c.logger.Debug("note deleted", slog.String("note_id", id))
	c.notify("Note Deleted", "The note has been successfully deleted.", false)
}

func (c *Controller) deleteFailed(id string, cp cache.Checkpoint, err error, notes []models.Note, listErr error) {
	c.logger.Warn("delete note failed", slog.String("note_id", id), slog.String("error", err.Error()))
	if listErr != nil {
		c.logger.Warn("refresh after failed delete failed", slog.String("error", listErr.Error()))
		c.notes.Restore(cp)
		c.changed()
	} else {
		c.reconcile(notes)
	}
	c.notify("Error", "Could not delete note.", true)
}
