package index

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/filecab/filecab"
)

func TestBind(t *testing.T) {
	var (
		idx = New()
		d1  = filecab.Blob("content one").Digest()
		d2  = filecab.Blob("content two").Digest()
	)

	if err := idx.Bind("a", d1); err != nil {
		t.Fatal(err)
	}
	if err := idx.Bind("b", d1); err != nil {
		t.Fatal(err)
	}
	if err := idx.Bind("c", d2); err != nil {
		t.Fatal(err)
	}

	got, ok := idx.Digest("a")
	if !ok {
		t.Fatal(`alias "a" not bound`)
	}
	if got != d1 {
		t.Errorf("got %s, want %s", got, d1)
	}

	if _, ok := idx.Digest("nope"); ok {
		t.Error(`alias "nope" unexpectedly bound`)
	}

	if diff := cmp.Diff([]string{"a", "b"}, idx.Aliases(d1)); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}

	if idx.Len() != 3 {
		t.Errorf("got Len %d, want 3", idx.Len())
	}
}

func TestBindAliasInUse(t *testing.T) {
	var (
		idx = New()
		d1  = filecab.Blob("content one").Digest()
		d2  = filecab.Blob("content two").Digest()
	)

	if err := idx.Bind("a", d1); err != nil {
		t.Fatal(err)
	}

	// Rebinding is an error even to the same digest.
	if err := idx.Bind("a", d1); !errors.Is(err, filecab.ErrAliasInUse) {
		t.Errorf("got %v, want ErrAliasInUse", err)
	}
	if err := idx.Bind("a", d2); !errors.Is(err, filecab.ErrAliasInUse) {
		t.Errorf("got %v, want ErrAliasInUse", err)
	}

	// The original binding survives.
	got, ok := idx.Digest("a")
	if !ok || got != d1 {
		t.Errorf("got %s (bound=%v), want %s", got, ok, d1)
	}
}

func TestBindInvalidAlias(t *testing.T) {
	var (
		idx = New()
		d   = filecab.Blob("some content").Digest()
	)

	// Aliases that would collide with the durable text form's
	// separators, or that Parse would trim or drop, are rejected
	// up front.
	for _, alias := range []string{
		"bad\nalias",
		"bad\ralias",
		"a, b",
		"nocomma,",
		" padded",
		"padded ",
		"\t",
		"   ",
	} {
		if err := idx.Bind(alias, d); !errors.Is(err, filecab.ErrInvalidAlias) {
			t.Errorf("Bind(%q): got %v, want ErrInvalidAlias", alias, err)
		}
	}

	if err := idx.Bind("", d); !errors.Is(err, filecab.ErrEmptyAlias) {
		t.Errorf(`Bind(""): got %v, want ErrEmptyAlias`, err)
	}

	if idx.Len() != 0 {
		t.Errorf("got Len %d, want 0", idx.Len())
	}

	// Colons and interior whitespace are fine, and survive a round
	// trip through the text form.
	for _, alias := range []string{"dir/file: v2", "two words"} {
		if err := idx.Bind(alias, d); err != nil {
			t.Fatalf("Bind(%q): %v", alias, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := idx.Dump(buf); err != nil {
		t.Fatal(err)
	}
	got, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(bindings(idx), bindings(got)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	var (
		idx = New()
		d1  = filecab.Blob("content one").Digest()
		d2  = filecab.Blob("content two").Digest()
	)
	if err := idx.Bind("a", d1); err != nil {
		t.Fatal(err)
	}

	clone := idx.Clone()
	if err := clone.Bind("b", d2); err != nil {
		t.Fatal(err)
	}

	// The clone is independent of the original.
	if idx.Len() != 1 {
		t.Errorf("got Len %d after mutating clone, want 1", idx.Len())
	}
	if _, ok := idx.Digest("b"); ok {
		t.Error(`alias "b" leaked into the original`)
	}
	if diff := cmp.Diff(map[string]string{"a": d1.String(), "b": d2.String()}, bindings(clone)); diff != "" {
		t.Errorf("clone bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpParse(t *testing.T) {
	var (
		idx = New()
		d1  = filecab.Blob("a very long string1").Digest()
		d2  = filecab.Blob("a very long string3").Digest()
	)
	for alias, d := range map[string]filecab.Digest{
		"filename1": d1,
		"filename2": d1,
		"filename3": d2,
	} {
		if err := idx.Bind(alias, d); err != nil {
			t.Fatal(err)
		}
	}

	buf := new(bytes.Buffer)
	if err := idx.Dump(buf); err != nil {
		t.Fatal(err)
	}

	got, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(bindings(idx), bindings(got)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpStable(t *testing.T) {
	idx := New()
	for _, alias := range []string{"zebra", "apple", "mango"} {
		if err := idx.Bind(alias, filecab.Blob(alias).Digest()); err != nil {
			t.Fatal(err)
		}
	}

	first := new(bytes.Buffer)
	if err := idx.Dump(first); err != nil {
		t.Fatal(err)
	}
	second := new(bytes.Buffer)
	if err := idx.Dump(second); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("dumps differ:\n%s\nvs:\n%s", first, second)
	}
}

func TestParseBlankLines(t *testing.T) {
	d := filecab.Blob("some content").Digest()
	text := "\n" + d.String() + " : a, b\n\n\n"

	idx, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Errorf("got Len %d, want 2", idx.Len())
	}
	got, ok := idx.Digest("b")
	if !ok || got != d {
		t.Errorf("got %s (bound=%v), want %s", got, ok, d)
	}
}

func TestParseEmpty(t *testing.T) {
	idx, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 0 {
		t.Errorf("got Len %d, want 0", idx.Len())
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []string{
		"no separator here",
		"f00 : shortdigest",
		filecab.Blob("x").Digest().String() + " : a\n" + filecab.Blob("y").Digest().String() + " : a",
	}
	for _, text := range cases {
		if _, err := Parse(strings.NewReader(text)); err == nil {
			t.Errorf("Parse(%q): got nil error", text)
		}
	}
}

func TestMerge(t *testing.T) {
	var (
		d1 = filecab.Blob("content one").Digest()
		d2 = filecab.Blob("content two").Digest()

		a = New()
		b = New()
	)

	if err := a.Bind("a1", d1); err != nil {
		t.Fatal(err)
	}
	if err := b.Bind("a1", d1); err != nil { // shared binding
		t.Fatal(err)
	}
	if err := b.Bind("b1", d1); err != nil {
		t.Fatal(err)
	}
	if err := b.Bind("b2", d2); err != nil {
		t.Fatal(err)
	}

	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"a1": d1.String(),
		"b1": d1.String(),
		"b2": d2.String(),
	}
	if diff := cmp.Diff(want, bindings(a)); diff != "" {
		t.Errorf("merged bindings mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeConflict(t *testing.T) {
	a := New()
	b := New()

	if err := a.Bind("shared", filecab.Blob("one thing").Digest()); err != nil {
		t.Fatal(err)
	}
	if err := b.Bind("shared", filecab.Blob("another thing").Digest()); err != nil {
		t.Fatal(err)
	}

	if err := a.Merge(b); !errors.Is(err, filecab.ErrAliasInUse) {
		t.Errorf("got %v, want ErrAliasInUse", err)
	}
}

func bindings(idx *Index) map[string]string {
	m := make(map[string]string)
	idx.Each(func(alias string, d filecab.Digest) error {
		m[alias] = d.String()
		return nil
	})
	return m
}
