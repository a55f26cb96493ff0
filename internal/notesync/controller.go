// Package notesync keeps a local note collection in step with the remote note
// store while the user edits.
//
// Concurrency model: a single event loop goroutine owns every piece of mutable
// state (cache, edit session, save status, suggestion session, subscribers).
// Commands, debounce timer fires and I/O completions are all closures run on
// that loop, so they interleave but never overlap. Remote calls run on their
// own goroutines and post their completion back to the loop.
package notesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quicknote/internal/apperr"
	"github.com/starford/quicknote/internal/cache"
	"github.com/starford/quicknote/internal/models"
	"github.com/starford/quicknote/internal/tagset"
)

// DraftPrefix marks ids generated locally for notes the server has not seen.
// Server ids are bare UUIDs and never carry it.
const DraftPrefix = "draft-"

// DefaultDebounce is the quiet period after the last edit before auto-save.
const DefaultDebounce = 1500 * time.Millisecond

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("notesync: controller closed")

// IsDraft reports whether id belongs to a note that was never persisted.
func IsDraft(id string) bool {
	return strings.HasPrefix(id, DraftPrefix)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithDebounce sets the auto-save quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithNotifier routes user-facing notices to n instead of the log.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// Controller owns the editing session for one signed-in user.
type Controller struct {
	store     NoteStore
	suggester Suggester
	session   Session
	clock     Clock
	debounce  time.Duration
	logger    *slog.Logger
	notifier  Notifier

	ctx    context.Context
	cancel context.CancelFunc

	events  chan func()
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	// Everything below is owned by the event loop.
	notes         *cache.Cache
	userID        string
	loading       bool
	loadErr       string
	selectedID    string
	editedContent string
	editedTags    []string
	status        SaveStatus
	saving        bool
	timer         Timer
	timerGen      uint64
	suggestions   suggestionSession
	subscribers   map[chan Snapshot]struct{}
	dirty         bool
}

// New creates a controller and starts its event loop. Call Load to sign in
// and fetch notes, and Close to tear it down.
func New(store NoteStore, suggester Suggester, session Session, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		store:       store,
		suggester:   suggester,
		session:     session,
		clock:       realClock{},
		debounce:    DefaultDebounce,
		logger:      slog.Default(),
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan func(), 64),
		stopCh:      make(chan struct{}),
		stopped:     make(chan struct{}),
		notes:       cache.New(),
		editedTags:  []string{},
		status:      StatusIdle,
		subscribers: make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = logNotifier{logger: c.logger}
	}

	go c.run()
	return c
}

func (c *Controller) run() {
	defer close(c.stopped)

	for {
		select {
		case <-c.stopCh:
			c.cancelDebounce()
			for ch := range c.subscribers {
				close(ch)
			}
			c.subscribers = nil
			return

		case fn := <-c.events:
			fn()
			if c.dirty {
				c.dirty = false
				c.publish()
			}
		}
	}
}

// post queues fn on the event loop without waiting for it.
func (c *Controller) post(fn func()) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.events <- fn:
		return true
	case <-c.stopped:
		return false
	}
}

// do runs fn on the event loop and waits for it to finish.
func (c *Controller) do(fn func()) error {
	done := make(chan struct{})
	if !c.post(func() {
		defer close(done)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-c.stopped:
		return ErrClosed
	}
}

// Close cancels any pending auto-save, stops the event loop and closes every
// subscription. In-flight requests are abandoned.
func (c *Controller) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	<-c.stopped
	c.cancel()
}

func (c *Controller) changed() {
	c.dirty = true
}

func (c *Controller) notify(title, description string, destructive bool) {
	c.notifier.Notify(Notice{Title: title, Description: description, Destructive: destructive})
}

// Load resolves the signed-in user and replaces the cache with their notes.
// An unauthenticated session clears all state.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.do(func() {
		c.loading = true
		c.loadErr = ""
		c.changed()
	}); err != nil {
		return err
	}

	userID, err := c.session.CurrentUserID(ctx)
	if err != nil {
		_ = c.do(func() { c.loadFailed(err) })
		return fmt.Errorf("resolve session: %w", err)
	}

	notes, err := c.store.List(ctx)
	if err != nil {
		_ = c.do(func() { c.loadFailed(err) })
		return fmt.Errorf("list notes: %w", err)
	}

	return c.do(func() {
		if c.userID != userID {
			c.resetSession()
			c.userID = userID
		}
		c.loading = false
		c.reconcile(notes)
		c.logger.Debug("notes loaded", slog.String("user_id", userID), slog.Int("count", c.notes.Len()))
	})
}

func (c *Controller) loadFailed(err error) {
	c.loading = false
	c.changed()
	if isUnauthenticated(err) {
		c.logger.Info("session is not authenticated")
		c.resetSession()
		return
	}
	c.logger.Warn("load notes failed", slog.String("error", err.Error()))
	c.loadErr = "Failed to load notes."
	c.notify("Error", "Could not load your notes.", true)
}

// resetSession forgets the user and everything held for them.
func (c *Controller) resetSession() {
	c.userID = ""
	c.notes.ReplaceAll(nil)
	c.selectNote("")
}

// reconcile replaces the persisted part of the cache with notes, keeping local
// drafts at the front. A selected note that disappeared is deselected.
func (c *Controller) reconcile(notes []models.Note) {
	var drafts []models.Note
	for _, n := range c.notes.All() {
		if IsDraft(n.ID) {
			drafts = append(drafts, n)
		}
	}
	c.notes.ReplaceAll(c.owned(notes))
	for _, d := range slices.Backward(drafts) {
		c.notes.Prepend(d)
	}
	if _, ok := c.notes.Get(c.selectedID); c.selectedID != "" && !ok {
		c.selectNote("")
	}
	c.changed()
}

// owned drops notes that do not belong to the signed-in user.
func (c *Controller) owned(notes []models.Note) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if n.Owner != c.userID {
			c.logger.Warn("dropping note owned by another user", slog.String("note_id", n.ID))
			continue
		}
		out = append(out, n)
	}
	return out
}

func (c *Controller) checkOwner(n models.Note) error {
	if n.Owner != c.userID {
		return fmt.Errorf("note %s returned for another user", n.ID)
	}
	return nil
}

// Select makes id the note being edited. An empty or unknown id clears the
// selection. Unsaved edits of the previous note are discarded.
func (c *Controller) Select(id string) error {
	return c.do(func() { c.selectNote(id) })
}

func (c *Controller) selectNote(id string) {
	c.cancelDebounce()
	n, ok := c.notes.Get(id)
	if id == "" || !ok {
		c.selectedID = ""
		c.editedContent = ""
		c.editedTags = []string{}
	} else {
		c.selectedID = id
		c.editedContent = n.Content
		c.editedTags = n.Tags
	}
	c.status = StatusIdle
	c.suggestions.clear()
	c.changed()
}

// CreateNote inserts an empty draft at the front of the collection and selects
// it. Nothing is sent to the server until the first save. It returns the
// draft id, or an empty string when nobody is signed in.
func (c *Controller) CreateNote() (string, error) {
	var id string
	err := c.do(func() {
		if c.userID == "" {
			return
		}
		now := c.clock.Now()
		id = DraftPrefix + uuid.NewString()
		c.notes.Prepend(models.Note{
			ID:        id,
			Owner:     c.userID,
			Tags:      []string{},
			CreatedAt: now,
			UpdatedAt: now,
		})
		c.selectNote(id)
		c.notify("New Note Created", "Start typing and save your note.", false)
	})
	return id, err
}

// SetContent replaces the edited content of the selected note.
func (c *Controller) SetContent(text string) error {
	return c.do(func() {
		if c.selectedID == "" {
			return
		}
		c.editedContent = text
		c.afterEdit()
	})
}

// AddTag adds a trimmed, non-empty tag to the edited tag set.
func (c *Controller) AddTag(tag string) error {
	return c.do(func() { c.addTag(tag) })
}

func (c *Controller) addTag(tag string) {
	if c.selectedID == "" {
		return
	}
	c.editedTags = tagset.Add(c.editedTags, tag)
	c.afterEdit()
}

// RemoveTag removes tag from the edited tag set.
func (c *Controller) RemoveTag(tag string) error {
	return c.do(func() {
		if c.selectedID == "" {
			return
		}
		c.editedTags = tagset.Remove(c.editedTags, tag)
		c.afterEdit()
	})
}

func (c *Controller) afterEdit() {
	c.changed()
	if c.saving {
		// Picked up once the in-flight save completes.
		return
	}
	c.scheduleIfModified()
}

// scheduleIfModified restarts the debounce when the editor differs from the
// cached record of the selected note, and cancels it otherwise.
func (c *Controller) scheduleIfModified() {
	c.cancelDebounce()
	n, ok := c.notes.Get(c.selectedID)
	if !ok || (n.Content == c.editedContent && tagset.Equal(n.Tags, c.editedTags)) {
		return
	}
	if c.status == StatusSaved || c.status == StatusError {
		c.status = StatusIdle
		c.changed()
	}

	c.timerGen++
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.debounce, func() {
		c.post(func() { c.debounceFired(gen) })
	})
}

func (c *Controller) cancelDebounce() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	// Invalidates a fire that was already queued on the loop.
	c.timerGen++
}

func (c *Controller) debounceFired(gen uint64) {
	if gen != c.timerGen {
		return
	}
	c.timer = nil
	if IsDraft(c.selectedID) && strings.TrimSpace(c.editedContent) == "" {
		c.logger.Debug("skipping auto-save for empty draft", slog.String("note_id", c.selectedID))
		return
	}
	c.saveSelected()
}

// Save pushes the selected note now. It is a no-op while a save is in flight.
func (c *Controller) Save() error {
	return c.do(c.saveSelected)
}

// Retry re-attempts a save after a failure.
func (c *Controller) Retry() error {
	return c.Save()
}

// Delete removes a note. Drafts are dropped locally; persisted notes are
// removed optimistically and reconciled against the server on failure.
func (c *Controller) Delete(id string) error {
	return c.do(func() { c.deleteNote(id) })
}

func (c *Controller) isSelected(id string) bool {
	return c.selectedID != "" && c.selectedID == id
}

func isUnauthenticated(err error) bool {
	return err != nil && errors.Is(err, apperr.ErrUnauthenticated)
}
