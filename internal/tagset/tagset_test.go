package tagset

import (
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestAddTrimsAndIgnoresEmpty(t *testing.T) {
	got := Add(nil, "  go  ")
	if !slices.Equal(got, []string{"go"}) {
		t.Fatalf("Add = %v, want [go]", got)
	}
	got = Add(got, "   ")
	if !slices.Equal(got, []string{"go"}) {
		t.Errorf("blank tag should be ignored, got %v", got)
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	in := make([]string, 1, 4)
	in[0] = "a"
	out := Add(in, "b")
	if len(in) != 1 {
		t.Errorf("input modified: %v", in)
	}
	if !slices.Equal(out, []string{"a", "b"}) {
		t.Errorf("out = %v", out)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	in := []string{"a", "b"}
	got := Remove(in, "c")
	if !slices.Equal(got, in) {
		t.Errorf("Remove absent = %v, want %v", got, in)
	}
}

func TestRemoveExactMatchOnly(t *testing.T) {
	got := Remove([]string{"Go", "go"}, "go")
	if !slices.Equal(got, []string{"Go"}) {
		t.Errorf("Remove = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{" b", "a", "b ", "", "a"})
	if !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Normalize = %v", got)
	}
}

func TestEqualNilAndEmpty(t *testing.T) {
	if !Equal(nil, []string{}) {
		t.Error("nil should equal empty")
	}
	if Equal([]string{"a", "b"}, []string{"b", "a"}) {
		t.Error("order matters")
	}
}

func tagGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[ ]{0,2}[a-z]{0,6}[ ]{0,2}`)
}

// Property: adding a tag twice yields the same set as adding it once.
func testAdd_Idempotent_Properties(t *rapid.T) {
	base := rapid.SliceOf(tagGenerator()).Draw(t, "base")
	tag := tagGenerator().Draw(t, "tag")

	set := Normalize(base)
	once := Add(set, tag)
	twice := Add(once, tag)
	if !slices.Equal(once, twice) {
		t.Fatalf("Add not idempotent: once=%v twice=%v", once, twice)
	}

	seen := map[string]bool{}
	for _, x := range twice {
		if seen[x] {
			t.Fatalf("duplicate %q in %v", x, twice)
		}
		if x == "" || x != strings.TrimSpace(x) {
			t.Fatalf("untrimmed or empty tag %q", x)
		}
		seen[x] = true
	}
}

func TestAdd_Idempotent_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testAdd_Idempotent_Properties)
}

// Property: removing a tag that is not present returns an equal set.
func testRemove_Absent_Properties(t *rapid.T) {
	set := Normalize(rapid.SliceOf(tagGenerator()).Draw(t, "base"))
	tag := rapid.StringMatching(`[A-Z]{1,4}`).Draw(t, "absent")
	if got := Remove(set, tag); !slices.Equal(got, set) {
		t.Fatalf("Remove(%q) = %v, want %v", tag, got, set)
	}
}

func TestRemove_Absent_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testRemove_Absent_Properties)
}

func FuzzAdd_Idempotent_Properties(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testAdd_Idempotent_Properties))
}
