package script

import (
	"testing"

	"github.com/textpetgo/msgarc/arcenc"
	"github.com/textpetgo/msgarc/bytestream"
	"github.com/textpetgo/msgarc/command"
)

// TestReadRespectsBudget covers spec.md §4.7 step 4: a bounded script's text
// run must never read past its own region into what follows, even when the
// following bytes decode cleanly as more text with no command matches to
// stop at. Before this was fixed, readMaximalTextRun scanned the whole
// underlying buffer and swallowed both scripts' bytes into a single
// TextElement.
func TestReadRespectsBudget(t *testing.T) {
	db := command.NewCommandDatabase("test", arcenc.ASCII)
	rd := NewReader(command.NewCommandReader(db))

	r := bytestream.New([]byte("ABCD"))

	first, err := rd.Read(r, 2)
	if err != nil {
		t.Fatalf("Read (bounded): %v", err)
	}
	if got := textOf(t, first); got != "AB" {
		t.Fatalf("first script: got %q, want %q", got, "AB")
	}
	if r.Pos() != 2 {
		t.Fatalf("expected stream positioned at 2 after the bounded script, got %d", r.Pos())
	}

	second, err := rd.Read(r, budgetUnbounded)
	if err != nil {
		t.Fatalf("Read (unbounded): %v", err)
	}
	if got := textOf(t, second); got != "CD" {
		t.Fatalf("second script: got %q, want %q", got, "CD")
	}
	if r.Pos() != 4 {
		t.Fatalf("expected stream fully consumed, got pos %d", r.Pos())
	}
}

func textOf(t *testing.T, s *Script) string {
	t.Helper()
	if len(s.Elements) != 1 {
		t.Fatalf("expected exactly one element, got %d: %#v", len(s.Elements), s.Elements)
	}
	te, ok := s.Elements[0].(TextElement)
	if !ok {
		t.Fatalf("expected a TextElement, got %T", s.Elements[0])
	}
	return te.Text
}
