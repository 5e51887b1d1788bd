package container

import (
	"bytes"
	"testing"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/arcenc"
	"github.com/textpetgo/msgarc/archive"
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

// TestSizeHeaderRoundTrip is spec.md §8 scenario B.
func TestSizeHeaderRoundTrip(t *testing.T) {
	db := minimalDB(t)
	rd := script.NewReader(command.NewCommandReader(db))
	cw := command.NewCommandWriter(db)

	a := archive.New("", 1, db.Name)
	a.Scripts[0].Append(command.NewCommand(db.Definitions[0]))

	entry := NewFileIndexEntry(0, 0, false, true)
	file, result, _, err := WriteArchive(nil, entry, a, cw, 0, Options{})
	if err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	// Archive is: pointer table [2,0] (1 script) + 1 byte 0x08 == 3 bytes.
	// Size header declares total length 3+4 = 7 => 00 07 00 00.
	want := []byte{0x00, 0x07, 0x00, 0x00, 0x02, 0x00, 0x08}
	if !bytes.Equal(file[:result.Size], want) {
		t.Fatalf("want % X, got % X", want, file[:result.Size])
	}

	entry.Size = result.Size
	got, err := ReadArchive(file, entry, rd, Options{})
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(got.Scripts) != 1 || len(got.Scripts[0].Elements) != 1 {
		t.Fatalf("unexpected archive shape: %+v", got)
	}
}

// TestPointerFixup is spec.md §8 scenario C.
func TestPointerFixup(t *testing.T) {
	file := make([]byte, 0x104)
	// 0xAB123456 little-endian at offset 0x100.
	file[0x100], file[0x101], file[0x102], file[0x103] = 0x56, 0x34, 0x12, 0xAB

	if err := fixupPointer(file, 0x100, 0x200000); err != nil {
		t.Fatal(err)
	}
	got := []byte{file[0x100], file[0x101], file[0x102], file[0x103]}
	want := []byte{0x00, 0x00, 0x20, 0xAA}
	if !bytes.Equal(got, want) {
		t.Fatalf("want % X, got % X", want, got)
	}
}

// TestCompressedRoundTrip exercises the LZ77 compressed path end to end:
// a repeated pattern archive compresses with real back-references and
// decodes back to the identical scripts.
func TestCompressedRoundTrip(t *testing.T) {
	db := minimalDB(t)
	rd := script.NewReader(command.NewCommandReader(db))
	cw := command.NewCommandWriter(db)

	a := archive.New("", 4, db.Name)
	for _, s := range a.Scripts {
		s.Append(command.NewCommand(db.Definitions[0]))
	}

	entry := NewFileIndexEntry(0, 0, true, false)
	file, result, _, err := WriteArchive(nil, entry, a, cw, 0, Options{})
	if err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	entry.Size = result.Size

	got, err := ReadArchive(file, entry, rd, Options{})
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(got.Scripts) != len(a.Scripts) {
		t.Fatalf("expected %d scripts, got %d", len(a.Scripts), len(got.Scripts))
	}
}

// TestFileIndexIdempotency is spec.md §8 property 6.
func TestFileIndexIdempotency(t *testing.T) {
	fi := NewFileIndex()
	e1 := NewFileIndexEntry(0x100, 0x20, true, false)
	e1.AddPointer(0x10)
	e1.AddPointer(0x40)
	fi.Add(e1)
	fi.Add(NewFileIndexEntry(0x200, 0x10, false, true))

	text := Serialize(fi)
	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	again := Serialize(parsed)
	if text != again {
		t.Fatalf("not idempotent:\n%q\nvs\n%q", text, again)
	}

	got, ok := parsed.Get(0x100)
	if !ok {
		t.Fatalf("missing entry at 0x100")
	}
	if got.Size != 0x20 || !got.Compressed || got.SizeHeader {
		t.Fatalf("entry mismatch: %+v", got)
	}
	if len(got.Pointers) != 2 {
		t.Fatalf("expected 2 pointers, got %d", len(got.Pointers))
	}
}

func TestFileIndexParseComments(t *testing.T) {
	text := `
// a leading comment
100:&%20=10,40 ; trailing comment
/* a block
   comment */
200:10=
`
	fi, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fi.Entries()) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(fi.Entries()))
	}
}

// TestOverlapLaw is spec.md §8 property 4.
func TestOverlapLaw(t *testing.T) {
	a := NewFileIndexEntry(0x10, 0x10, false, false) // [0x10, 0x20)
	b := NewFileIndexEntry(0x18, 0x10, false, false) // [0x18, 0x28)
	c := NewFileIndexEntry(0x20, 0x10, false, false) // [0x20, 0x30)

	if !a.Overlaps(b) {
		t.Fatalf("expected a and b to overlap")
	}
	if a.Overlaps(c) {
		t.Fatalf("expected a and c (touching, not overlapping) to not overlap")
	}
}
