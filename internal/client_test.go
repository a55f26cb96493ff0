package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/starford/quicknote/internal/api"
	"github.com/starford/quicknote/internal/auth"
	"github.com/starford/quicknote/internal/models"
	"github.com/starford/quicknote/internal/notesync"
	"github.com/starford/quicknote/internal/remote"
	"github.com/starford/quicknote/internal/testutil"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type clientEnv struct {
	t     *testing.T
	ctrl  *notesync.Controller
	in    *io.PipeWriter
	out   *lockedBuffer
	notes func() []models.Note
	done  chan error
}

func startClient(t *testing.T, token string) *clientEnv {
	t.Helper()
	svc, _ := testutil.TestService(t)
	router := chi.NewRouter()
	router.Mount("/api", api.NewRouter(svc, auth.NewRegistry(map[string]string{"tok": "alice"}), nil, nil))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	rc := remote.New(srv.URL, token, remote.WithLogger(testutil.DiscardLogger()))
	out := &lockedBuffer{}
	term := &terminal{out: out}
	ctrl := notesync.New(rc, rc, rc,
		notesync.WithDebounce(200*time.Millisecond),
		notesync.WithLogger(testutil.DiscardLogger()),
		notesync.WithNotifier(notesync.NotifierFunc(term.notice)),
	)

	pr, pw := io.Pipe()
	env := &clientEnv{
		t:    t,
		ctrl: ctrl,
		in:   pw,
		out:  out,
		notes: func() []models.Note {
			notes, err := svc.ListNotes(context.Background(), "alice")
			require.NoError(t, err)
			return notes
		},
		done: make(chan error, 1),
	}
	go func() { env.done <- runClient(context.Background(), ctrl, pr, term) }()
	t.Cleanup(func() {
		pw.Close()
		<-env.done
		ctrl.Close()
	})
	return env
}

func (e *clientEnv) send(lines ...string) {
	e.t.Helper()
	for _, l := range lines {
		_, err := fmt.Fprintln(e.in, l)
		require.NoError(e.t, err)
	}
}

func (e *clientEnv) waitOutput(substr string) {
	e.t.Helper()
	require.Eventually(e.t, func() bool { return strings.Contains(e.out.String(), substr) },
		2*time.Second, 10*time.Millisecond, "output never contained %q:\n%s", substr, e.out.String())
}

func TestClient_CreateEditSave(t *testing.T) {
	env := startClient(t, "tok")
	env.waitOutput("type help")

	env.send("new", `edit Groceries\nmilk`, "tag errands", "save")
	env.waitOutput("* Note Saved: Your new note has been saved.")

	require.Eventually(t, func() bool {
		notes := env.notes()
		return len(notes) == 1 && notes[0].Content == "Groceries\nmilk" && slices.Equal(notes[0].Tags, []string{"errands"})
	}, 2*time.Second, 10*time.Millisecond)

	env.send("ls")
	env.waitOutput("Groceries  #errands")

	// Auto-save after editing a persisted note.
	env.send("append eggs")
	env.waitOutput("Your changes have been saved.")
	require.Eventually(t, func() bool {
		notes := env.notes()
		return len(notes) == 1 && notes[0].Content == "Groceries\nmilk\neggs"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_SuggestAndAccept(t *testing.T) {
	env := startClient(t, "tok")
	env.waitOutput("type help")

	env.send("new", "edit plan the #launch", "suggest")
	env.waitOutput("suggested: launch")

	env.send("accept launch", "status")
	env.waitOutput("tags:  #launch")
}

func TestClient_Delete(t *testing.T) {
	env := startClient(t, "tok")
	env.waitOutput("type help")

	env.send("new", "edit temporary", "save")
	env.waitOutput("Your new note has been saved.")
	env.send("rm 1")
	env.waitOutput("* Note Deleted: The note has been successfully deleted.")
	require.Empty(t, env.notes())
}

func TestClient_Unauthenticated(t *testing.T) {
	env := startClient(t, "wrong")
	env.waitOutput("not signed in: set client.token")

	env.send("new", "ls")
	env.waitOutput("not signed in\nnot signed in\n")
}

func TestClient_UnknownCommandAndSelection(t *testing.T) {
	env := startClient(t, "tok")
	env.waitOutput("type help")

	env.send("frobnicate", "edit x", "sel 7")
	env.waitOutput(`unknown command "frobnicate"`)
	env.waitOutput("nothing selected, use new or sel first")
	env.waitOutput(`no note matches "7"`)
}

func TestResolveNote(t *testing.T) {
	snap := notesync.Snapshot{Notes: []models.Note{
		{ID: "abc123"}, {ID: "abd456"}, {ID: "draft-1"},
	}}
	cases := []struct {
		arg  string
		want string
		ok   bool
	}{
		{"1", "abc123", true},
		{"3", "draft-1", true},
		{"4", "", false},
		{"abc", "abc123", true},
		{"ab", "", false},
		{"draft-1", "draft-1", true},
		{"zzz", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := resolveNote(snap, tc.arg)
		if got != tc.want || ok != tc.ok {
			t.Errorf("resolveNote(%q) = %q, %v; want %q, %v", tc.arg, got, ok, tc.want, tc.ok)
		}
	}
}
