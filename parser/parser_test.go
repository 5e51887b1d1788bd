package parser

import (
	"testing"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/arcenc"
	"github.com/textpetgo/msgarc/command"
	"github.com/textpetgo/msgarc/container"
	"github.com/textpetgo/msgarc/script"
)

func TestParseMultipleEntries(t *testing.T) {
	db := command.NewCommandDatabase("min", arcenc.ASCII)
	if err := db.Add(&command.CommandDefinition{
		Name:    "End",
		Base:    []arccore.MaskedByte{arccore.Full(0x08)},
		EndType: command.EndAlways,
	}); err != nil {
		t.Fatal(err)
	}
	rd := script.NewReader(command.NewCommandReader(db))

	// Two minimal one-script archives back to back: each is
	// [02 00 08] (pointer table [2], then one End command).
	file := []byte{0x02, 0x00, 0x08, 0x02, 0x00, 0x08}

	fi := container.NewFileIndex()
	fi.Add(container.NewFileIndexEntry(0, 3, false, false))
	fi.Add(container.NewFileIndexEntry(3, 3, false, false))

	res, err := Parse(file, fi, rd, Config{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Archives) != 2 {
		t.Fatalf("expected 2 archives, got %d (failed: %v)", len(res.Archives), res.Failed)
	}
	if a, ok := res.Archives["000000"]; !ok || len(a.Scripts) != 1 {
		t.Fatalf("missing or malformed archive at 000000: %+v", a)
	}
	if a, ok := res.Archives["000003"]; !ok || len(a.Scripts) != 1 {
		t.Fatalf("missing or malformed archive at 000003: %+v", a)
	}
}

func TestParseRecordsFailures(t *testing.T) {
	db := command.NewCommandDatabase("min", arcenc.ASCII)
	if err := db.Add(&command.CommandDefinition{
		Name:    "End",
		Base:    []arccore.MaskedByte{arccore.Full(0x08)},
		EndType: command.EndAlways,
	}); err != nil {
		t.Fatal(err)
	}
	rd := script.NewReader(command.NewCommandReader(db))

	file := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	fi := container.NewFileIndex()
	fi.Add(container.NewFileIndexEntry(0, 4, false, false))

	res, err := Parse(file, fi, rd, Config{})
	if err == nil {
		t.Fatalf("expected an error since the only entry fails to decode")
	}
	if len(res.Failed) != 1 {
		t.Fatalf("expected 1 failed entry, got %d", len(res.Failed))
	}
}
