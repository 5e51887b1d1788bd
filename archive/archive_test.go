package archive

import (
	"bytes"
	"testing"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/arcenc"
	"github.com/textpetgo/msgarc/command"
	"github.com/textpetgo/msgarc/script"
)

func minimalDB(t *testing.T) *command.CommandDatabase {
	t.Helper()
	db := command.NewCommandDatabase("min", arcenc.ASCII)
	if err := db.Add(&command.CommandDefinition{
		Name:    "End",
		Base:    []arccore.MaskedByte{arccore.Full(0x08)},
		EndType: command.EndAlways,
	}); err != nil {
		t.Fatal(err)
	}
	return db
}

// TestMinimalArchiveRoundTrip is spec.md §8 scenario A.
func TestMinimalArchiveRoundTrip(t *testing.T) {
	db := minimalDB(t)
	input := []byte{0x02, 0x00, 0x08}

	rd := script.NewReader(command.NewCommandReader(db))
	a, err := Read(input, rd, ReadOptions{Identifier: "test", FixedSize: len(input)})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(a.Scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(a.Scripts))
	}
	if len(a.Scripts[0].Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(a.Scripts[0].Elements))
	}

	cw := command.NewCommandWriter(db)
	out, err := Write(a, cw)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatalf("roundtrip mismatch: want % X, got % X", input, out)
	}
}

// TestPointerSyncTolerance is spec.md §8 scenario F: declared offsets
// [4, 8] claim a 4-byte budget for script 0, but it actually ends (via its
// EndAlways command) after a single byte; strict mode must fail on the
// resulting desync, loose mode repositions to offsets[1] and parses script 1.
func TestPointerSyncTolerance(t *testing.T) {
	db := minimalDB(t)
	// Header: 2 scripts => offsets[0]==4. offsets = [4, 8].
	input := []byte{
		0x04, 0x00, // offsets[0] = 4
		0x08, 0x00, // offsets[1] = 8
		0x08,             // script 0: ends immediately, leaving 3 bytes of its declared budget unconsumed
		0xFF, 0xFF, 0xFF, // padding between the scripts
		0x08, // script 1
	}

	rd := script.NewReader(command.NewCommandReader(db))

	if _, err := Read(input, rd, ReadOptions{FixedSize: len(input)}); err == nil {
		t.Fatalf("expected strict mode to fail on pointer desync")
	}

	a, err := Read(input, rd, ReadOptions{FixedSize: len(input), IgnorePointerSyncErrors: true})
	if err != nil {
		t.Fatalf("loose mode Read: %v", err)
	}
	if len(a.Scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(a.Scripts))
	}
}
