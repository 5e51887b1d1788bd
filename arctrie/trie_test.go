package arctrie

import (
	"testing"

	"github.com/textpetgo/msgarc/arccore"
)

func path(bytes ...byte) []arccore.MaskedByte {
	out := make([]arccore.MaskedByte, len(bytes))
	for i, b := range bytes {
		out[i] = arccore.Full(b)
	}
	return out
}

// TestPriorityMatch is scenario D from spec.md §8: two definitions whose
// bases are both prefixes of AA BB CC. D2's base is longer, so AA BB CC
// should resolve to D2 while AA CC resolves to D1. The trie itself only
// needs to expose both live candidates; scenario-level priority resolution
// is the command reader's job (see package command), but this test checks
// the trie surfaces exactly the candidates the reader needs.
func TestPriorityMatch(t *testing.T) {
	tr := &Trie[string]{}
	tr.Add(path(0xAA), "D1")
	tr.Add(path(0xAA, 0xBB), "D2")

	w := tr.NewWalker()
	if !w.Step(0xAA) {
		t.Fatalf("expected AA to be accepted")
	}
	if !w.AtValue() {
		t.Fatalf("expected a value at depth 1 (D1)")
	}
	if got := w.Values(); len(got) != 1 || got[0] != "D1" {
		t.Fatalf("expected [D1], got %v", got)
	}

	if !w.Step(0xBB) {
		t.Fatalf("expected BB to be accepted")
	}
	if got := w.Values(); len(got) != 1 || got[0] != "D2" {
		t.Fatalf("expected [D2] at depth 2, got %v", got)
	}
	if !w.AtEnd() {
		t.Fatalf("expected AtEnd after AA BB (no further edges registered)")
	}

	// A separate walk for "AA CC ..." must fail to step into D2's branch and
	// fall back to D1 at depth 1.
	w2 := tr.NewWalker()
	if !w2.Step(0xAA) {
		t.Fatalf("expected AA to be accepted")
	}
	if w2.Step(0xCC) {
		t.Fatalf("expected CC to be rejected (no AA CC branch)")
	}
}

func TestOverlappingMasksExploreAllBranches(t *testing.T) {
	tr := &Trie[string]{}
	tr.Add([]arccore.MaskedByte{{Value: 0xA0, Mask: 0xF0}}, "high-nibble-A")
	tr.Add([]arccore.MaskedByte{{Value: 0x0F, Mask: 0x0F}}, "low-nibble-F")

	w := tr.NewWalker()
	if !w.Step(0xAF) {
		t.Fatalf("expected 0xAF to match at least one branch")
	}
	values := w.Values()
	if len(values) != 2 {
		t.Fatalf("expected both overlapping branches to stay live, got %v", values)
	}
}
