package command

import (
	"testing"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/arcenc"
	"github.com/textpetgo/msgarc/bytestream"
)

func newTestDB(t *testing.T) *CommandDatabase {
	t.Helper()
	return NewCommandDatabase("test", arcenc.ASCII)
}

// TestMinimalCommandRoundTrip is spec.md §8 scenario A: a command whose
// base is a single byte 0x08 with EndType Always and zero parameters.
func TestMinimalCommandRoundTrip(t *testing.T) {
	db := newTestDB(t)
	def := &CommandDefinition{
		Name:    "End",
		Base:    []arccore.MaskedByte{arccore.Full(0x08)},
		EndType: EndAlways,
	}
	if err := db.Add(def); err != nil {
		t.Fatal(err)
	}

	r := bytestream.New([]byte{0x08})
	cr := NewCommandReader(db)
	cmd, err := cr.Read(r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !cmd.EndsScript() {
		t.Fatalf("expected EndsScript true for EndAlways")
	}
	if r.Len() != 0 {
		t.Fatalf("expected all bytes consumed, %d remain", r.Len())
	}

	cw := NewCommandWriter(db)
	out, err := cw.Write(cmd)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(out) != 1 || out[0] != 0x08 {
		t.Fatalf("expected [0x08], got %v", out)
	}
}

// TestJumpEndsScript is spec.md §8 scenario E: a command with one jump
// parameter whose JumpContinueValues={0}; value 0 continues the script,
// any other value ends it.
func TestJumpEndsScript(t *testing.T) {
	db := newTestDB(t)
	jumpDef := &ParameterDefinition{
		Name: "target", Offset: 1, Bits: 8, IsJump: true,
		JumpContinueValues: map[int64]struct{}{0: {}},
	}
	def := &CommandDefinition{
		Name:     "Jump",
		Base:     []arccore.MaskedByte{arccore.Full(0x20)},
		EndType:  EndDefault,
		Elements: []*CommandElementDefinition{NewSingleElement(jumpDef)},
	}
	if err := db.Add(def); err != nil {
		t.Fatal(err)
	}

	cr := NewCommandReader(db)

	continuing, err := cr.Read(bytestream.New([]byte{0x20, 0x00}))
	if err != nil {
		t.Fatal(err)
	}
	if continuing.EndsScript() {
		t.Fatalf("value 0 is in JumpContinueValues, expected EndsScript() == false")
	}

	ending, err := cr.Read(bytestream.New([]byte{0x20, 0x05}))
	if err != nil {
		t.Fatal(err)
	}
	if !ending.EndsScript() {
		t.Fatalf("value 5 is not in JumpContinueValues, expected EndsScript() == true")
	}
}

// TestNoMatchRestoresPosition checks that a failed Read leaves the stream
// positioned where it started, so callers can retry with a different
// decoding strategy (spec.md §4.6).
func TestNoMatchRestoresPosition(t *testing.T) {
	db := newTestDB(t)
	def := &CommandDefinition{Name: "Only", Base: []arccore.MaskedByte{arccore.Full(0xAA)}, EndType: EndAlways}
	if err := db.Add(def); err != nil {
		t.Fatal(err)
	}

	r := bytestream.New([]byte{0xBB, 0xCC})
	cr := NewCommandReader(db)
	if _, err := cr.Read(r); err == nil {
		t.Fatalf("expected no-match error")
	}
	if r.Pos() != 0 {
		t.Fatalf("expected position restored to 0, got %d", r.Pos())
	}
}

// TestInsufficientBytesIsNoMatch covers spec.md §4.1 stop condition (b) /
// §7's NoMatch row ("trie exhausted / EOF mid-match"): with a one-byte
// definition and a two-byte definition sharing the same first byte, a
// stream holding only that first byte must not resolve to the shorter
// definition, since a longer, more specific definition sharing the prefix
// never got the chance to rule itself in or out.
func TestInsufficientBytesIsNoMatch(t *testing.T) {
	db := newTestDB(t)
	short := &CommandDefinition{Name: "Short", Base: []arccore.MaskedByte{arccore.Full(0xA0)}, EndType: EndAlways}
	long := &CommandDefinition{Name: "Long", Base: []arccore.MaskedByte{arccore.Full(0xA0), arccore.Full(0xB0)}, EndType: EndAlways}
	if err := db.Add(short); err != nil {
		t.Fatal(err)
	}
	if err := db.Add(long); err != nil {
		t.Fatal(err)
	}

	r := bytestream.New([]byte{0xA0})
	cr := NewCommandReader(db)
	if _, err := cr.Read(r); err == nil {
		t.Fatalf("expected no-match error for a prefix that could still extend into a longer definition")
	}
	if r.Pos() != 0 {
		t.Fatalf("expected position restored to 0, got %d", r.Pos())
	}

	// The same short definition alone, with no byte-0xB0-extendable sibling,
	// must still match on a single byte (no false negative introduced).
	soloDB := NewCommandDatabase("solo", arcenc.ASCII)
	if err := soloDB.Add(&CommandDefinition{Name: "Short", Base: []arccore.MaskedByte{arccore.Full(0xA0)}, EndType: EndAlways}); err != nil {
		t.Fatal(err)
	}
	soloCR := NewCommandReader(soloDB)
	if _, err := soloCR.Read(bytestream.New([]byte{0xA0})); err != nil {
		t.Fatalf("expected a standalone single-byte definition to still match: %v", err)
	}

	// A trailing byte that rules out Long (dead end, not EOF) must still
	// resolve to Short: the walker's AtEnd() break is a different stop
	// condition than running out of input, and must not be treated as
	// NoMatch.
	deadEnd, err := cr.Read(bytestream.New([]byte{0xA0, 0xC0}))
	if err != nil {
		t.Fatalf("expected a dead-end prefix to still resolve to the shorter definition: %v", err)
	}
	if deadEnd.Def.Name != "Short" {
		t.Fatalf("expected Short to match, got %q", deadEnd.Def.Name)
	}
}
