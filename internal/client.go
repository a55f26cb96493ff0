package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/quicknote/internal/apperr"
	"github.com/starford/quicknote/internal/notesync"
	"github.com/starford/quicknote/internal/parser"
	"github.com/starford/quicknote/internal/remote"
)

const clientHelp = `commands:
  ls                 list notes
  new                start a new note
  sel <n|id>         select a note by list number or id prefix
  edit <text>        replace the content of the selected note (\n for newlines)
  append <text>      add a line to the selected note
  tag <t>            add a tag
  untag <t>          remove a tag
  suggest            ask for tag suggestions
  accept <t>         accept a suggested tag
  clear              dismiss suggestions
  save               save now
  retry              save again after a failure
  rm [n|id]          delete a note (default: the selected one)
  status             show the selected note and its save state
  reload             fetch notes from the server again
  quit               leave
`

// RunClient edits the notes of the configured user against a running server
// from a line-based terminal session.
func RunClient(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if app.in == nil {
		app.in = os.Stdin
	}
	if app.out == nil {
		app.out = os.Stdout
	}

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	rc := remote.New(cfg.Client.ServerURL, cfg.Client.Token, remote.WithLogger(logger))
	term := &terminal{out: app.out}

	ctrl := notesync.New(rc, rc, rc,
		notesync.WithDebounce(cfg.Client.Debounce),
		notesync.WithLogger(logger),
		notesync.WithNotifier(notesync.NotifierFunc(term.notice)),
	)
	defer ctrl.Close()

	return runClient(ctx, ctrl, app.in, term)
}

func runClient(ctx context.Context, ctrl *notesync.Controller, in io.Reader, term *terminal) error {
	if err := ctrl.Load(ctx); err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			term.printf("not signed in: set client.token to a token the server knows\n")
		}
		if errors.Is(err, notesync.ErrClosed) {
			return err
		}
	}

	snaps, unsubscribe := ctrl.Subscribe()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		term.watch(gCtx, snaps)
		return nil
	})
	g.Go(func() error {
		defer unsubscribe()
		return repl(gCtx, ctrl, in, term)
	})
	return g.Wait()
}

func repl(ctx context.Context, ctrl *notesync.Controller, in io.Reader, term *terminal) error {
	scanner := bufio.NewScanner(in)
	term.printf("quicknote client, type help for commands\n")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := dispatch(ctx, ctrl, term, cmd, arg); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, ctrl *notesync.Controller, term *terminal, cmd, arg string) error {
	snap := ctrl.Snapshot()
	switch cmd {
	case "help":
		term.printf("%s", clientHelp)
	case "ls":
		term.list(snap)
	case "status":
		term.status(snap)
	case "reload":
		if err := ctrl.Load(ctx); errors.Is(err, notesync.ErrClosed) {
			return err
		}
	case "new":
		id, err := ctrl.CreateNote()
		if err != nil {
			return err
		}
		if id == "" {
			term.printf("not signed in\n")
		}
	case "sel":
		id, ok := resolveNote(snap, arg)
		if !ok {
			term.printf("no note matches %q\n", arg)
			return nil
		}
		return ctrl.Select(id)
	case "edit":
		if !term.requireSelection(snap) {
			return nil
		}
		return ctrl.SetContent(strings.ReplaceAll(arg, `\n`, "\n"))
	case "append":
		if !term.requireSelection(snap) {
			return nil
		}
		content := snap.EditedContent
		if content != "" {
			content += "\n"
		}
		return ctrl.SetContent(content + arg)
	case "tag":
		if !term.requireSelection(snap) {
			return nil
		}
		return ctrl.AddTag(arg)
	case "untag":
		if !term.requireSelection(snap) {
			return nil
		}
		return ctrl.RemoveTag(arg)
	case "suggest":
		return ctrl.RequestSuggestions()
	case "accept":
		return ctrl.AcceptSuggestion(arg)
	case "clear":
		return ctrl.ClearSuggestions()
	case "save":
		return ctrl.Save()
	case "retry":
		return ctrl.Retry()
	case "rm":
		id := snap.SelectedID
		if arg != "" {
			var ok bool
			if id, ok = resolveNote(snap, arg); !ok {
				term.printf("no note matches %q\n", arg)
				return nil
			}
		}
		if id == "" {
			term.printf("nothing selected\n")
			return nil
		}
		return ctrl.Delete(id)
	default:
		term.printf("unknown command %q, type help for commands\n", cmd)
	}
	return nil
}

// resolveNote finds a note by its 1-based list position, exact id or unique
// id prefix.
func resolveNote(snap notesync.Snapshot, arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(snap.Notes) {
			return snap.Notes[n-1].ID, true
		}
		return "", false
	}
	match := ""
	for _, note := range snap.Notes {
		if note.ID == arg {
			return note.ID, true
		}
		if strings.HasPrefix(note.ID, arg) {
			if match != "" {
				return "", false
			}
			match = note.ID
		}
	}
	return match, match != ""
}

// terminal serializes output from the command loop, the snapshot watcher and
// the controller's notices.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintf(t.out, format, args...); err != nil {
		slog.Debug("terminal write failed", slog.String("error", err.Error()))
	}
}

func (t *terminal) notice(n notesync.Notice) {
	mark := "*"
	if n.Destructive {
		mark = "!"
	}
	t.printf("%s %s: %s\n", mark, n.Title, n.Description)
}

func (t *terminal) requireSelection(snap notesync.Snapshot) bool {
	if snap.SelectedID == "" {
		t.printf("nothing selected, use new or sel first\n")
		return false
	}
	return true
}

// watch reports save status changes and arriving suggestions until snaps is
// closed.
func (t *terminal) watch(ctx context.Context, snaps <-chan notesync.Snapshot) {
	var prev notesync.Snapshot
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-snaps:
			if !ok {
				return
			}
			if !first {
				t.transition(prev, s)
			}
			prev, first = s, false
		}
	}
}

func (t *terminal) transition(prev, s notesync.Snapshot) {
	if s.Status != prev.Status && s.Status != notesync.StatusIdle {
		t.printf("[%s]\n", s.Status.Label())
	}
	if len(s.SuggestedTags) > 0 && !slices.Equal(s.SuggestedTags, prev.SuggestedTags) {
		t.printf("suggested: %s\n", strings.Join(s.SuggestedTags, ", "))
	}
}

func (t *terminal) list(snap notesync.Snapshot) {
	if snap.UserID == "" {
		t.printf("not signed in\n")
		return
	}
	if len(snap.Notes) == 0 {
		t.printf("no notes, use new to start one\n")
		return
	}
	var b strings.Builder
	for i, n := range snap.Notes {
		mark := " "
		if n.ID == snap.SelectedID {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s%3d  %-8s  %s%s\n", mark, i+1, shortID(n.ID), noteTitle(n.Content), hashtags(n.Tags))
	}
	t.printf("%s", b.String())
}

func (t *terminal) status(snap notesync.Snapshot) {
	if snap.Error != "" {
		t.printf("error: %s\n", snap.Error)
	}
	if snap.SelectedID == "" {
		t.printf("nothing selected\n")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "note %s [%s]\n", shortID(snap.SelectedID), snap.Status.Label())
	fmt.Fprintf(&b, "tags:%s\n", hashtags(snap.EditedTags))
	if snap.Suggesting {
		b.WriteString("suggestions: loading\n")
	} else if len(snap.SuggestedTags) > 0 {
		fmt.Fprintf(&b, "suggestions: %s\n", strings.Join(snap.SuggestedTags, ", "))
	}
	b.WriteString("---\n")
	b.WriteString(snap.EditedContent)
	b.WriteString("\n---\n")
	t.printf("%s", b.String())
}

func shortID(id string) string {
	if notesync.IsDraft(id) {
		return "draft"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func noteTitle(content string) string {
	if title := parser.Parse(content).Title; title != "" {
		return title
	}
	return "(empty)"
}

func hashtags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "  #" + strings.Join(tags, " #")
}
