package notesync

import (
	"log/slog"
	"strings"

	"github.com/starford/quicknote/internal/tagset"
)

// suggestionSession is the transient list of AI-proposed tags for the
// selected note. epoch changes whenever the session is cleared so that a
// response to an older request can be recognized and dropped.
type suggestionSession struct {
	requesting bool
	tags       []string
	epoch      uint64
}

func (s *suggestionSession) clear() {
	s.requesting = false
	s.tags = nil
	s.epoch++
}

// RequestSuggestions asks the suggestion service for tags matching the edited
// content of the selected note.
func (c *Controller) RequestSuggestions() error {
	return c.do(c.requestSuggestions)
}

func (c *Controller) requestSuggestions() {
	if c.selectedID == "" || strings.TrimSpace(c.editedContent) == "" {
		c.notify("Cannot Suggest Tags", "Note content is empty. Write something to get suggestions.", true)
		return
	}
	if c.suggestions.requesting {
		return
	}

	c.suggestions.requesting = true
	c.suggestions.tags = nil
	c.changed()

	epoch := c.suggestions.epoch
	text := c.editedContent
	ctx := c.ctx
	go func() {
		tags, err := c.suggester.Suggest(ctx, text)
		c.post(func() { c.suggestDone(epoch, tags, err) })
	}()
}

func (c *Controller) suggestDone(epoch uint64, tags []string, err error) {
	if epoch != c.suggestions.epoch {
		c.logger.Debug("discarding stale tag suggestions")
		return
	}
	c.suggestions.requesting = false
	c.changed()

	if err != nil {
		c.logger.Warn("suggest tags failed", slog.String("error", err.Error()))
		c.notify("AI Suggestion Error", "Could not fetch tag suggestions. Please try again.", true)
		return
	}
	c.suggestions.tags = tagset.Normalize(tags)
	if len(c.suggestions.tags) == 0 {
		c.notify("AI Suggestions", "No specific tags suggested. Try adding more content.", false)
	}
}

// AcceptSuggestion adds tag to the selected note and ends the suggestion
// session.
func (c *Controller) AcceptSuggestion(tag string) error {
	return c.do(func() {
		c.addTag(tag)
		c.suggestions.clear()
		c.changed()
	})
}

// ClearSuggestions ends the suggestion session.
func (c *Controller) ClearSuggestions() error {
	return c.do(func() {
		c.suggestions.clear()
		c.changed()
	})
}
