package cache

import (
	"testing"

	"github.com/starford/quicknote/internal/models"
)

func note(id, content string) models.Note {
	return models.Note{ID: id, Owner: "u1", Content: content, Tags: []string{}}
}

func ids(c *Cache) []string {
	var out []string
	for _, n := range c.All() {
		out = append(out, n.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUpsertInsertsAndReplaces(t *testing.T) {
	c := New()
	c.Upsert(note("a", "one"))
	c.Upsert(note("b", "two"))
	c.Upsert(note("a", "uno"))

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || got.Content != "uno" {
		t.Errorf("Get(a) = %+v, %v", got, ok)
	}
	if !equalIDs(ids(c), []string{"a", "b"}) {
		t.Errorf("order = %v", ids(c))
	}
}

func TestPrependPutsDraftFirst(t *testing.T) {
	c := New()
	c.ReplaceAll([]models.Note{note("a", ""), note("b", "")})
	c.Prepend(note("draft-1", ""))
	if !equalIDs(ids(c), []string{"draft-1", "a", "b"}) {
		t.Errorf("order = %v", ids(c))
	}
}

func TestReplaceKeepsPosition(t *testing.T) {
	c := New()
	c.ReplaceAll([]models.Note{note("a", ""), note("draft-1", "x"), note("b", "")})
	if !c.Replace("draft-1", note("srv-9", "x")) {
		t.Fatal("Replace returned false")
	}
	if !equalIDs(ids(c), []string{"a", "srv-9", "b"}) {
		t.Errorf("order = %v", ids(c))
	}
	if _, ok := c.Get("draft-1"); ok {
		t.Error("draft entry should be gone")
	}
}

func TestReplaceMissing(t *testing.T) {
	c := New()
	if c.Replace("nope", note("x", "")) {
		t.Error("Replace of missing id should report false")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c := New()
	c.Upsert(note("a", ""))
	c.Remove("zzz")
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c := New()
	n := note("a", "")
	n.Tags = []string{"x"}
	c.Upsert(n)

	got, _ := c.Get("a")
	got.Tags[0] = "mutated"
	again, _ := c.Get("a")
	if again.Tags[0] != "x" {
		t.Errorf("cache shared tag slice with caller: %v", again.Tags)
	}
}

func TestCheckpointRestoreModified(t *testing.T) {
	c := New()
	c.ReplaceAll([]models.Note{note("a", "A"), note("b", "B")})
	cp := c.Checkpoint("a")

	c.Upsert(note("a", "speculative"))
	c.Prepend(note("draft-2", ""))
	c.Restore(cp)

	got, _ := c.Get("a")
	if got.Content != "A" {
		t.Errorf("content = %q, want A", got.Content)
	}
	if _, ok := c.Get("draft-2"); !ok {
		t.Error("unrelated entry lost on restore")
	}
}

func TestCheckpointRestoreRemoved(t *testing.T) {
	c := New()
	c.ReplaceAll([]models.Note{note("a", ""), note("b", ""), note("c", "")})
	cp := c.Checkpoint("b")
	c.Remove("b")
	c.Restore(cp)
	if !equalIDs(ids(c), []string{"a", "b", "c"}) {
		t.Errorf("order = %v", ids(c))
	}
}

func TestCheckpointRestoreAbsent(t *testing.T) {
	c := New()
	cp := c.Checkpoint("ghost")
	c.Upsert(note("ghost", "boo"))
	c.Restore(cp)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
