package dbfile

import (
	"testing"

	"github.com/textpetgo/msgarc/bytestream"
	"github.com/textpetgo/msgarc/command"
)

const sampleDB = `{
  "name": "demo",
  "encoding": "ascii",
  "commands": [
    {
      "name": "End",
      "base": ["08"],
      "endType": "always"
    },
    {
      "name": "Jump",
      "base": ["20"],
      "elements": [
        {
          "single": {
            "name": "target",
            "offset": 1,
            "bits": 8,
            "isJump": true,
            "jumpContinueValues": [0]
          }
        }
      ]
    }
  ]
}`

func TestDecodeAndUse(t *testing.T) {
	db, err := Decode([]byte(sampleDB))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if db.Name != "demo" {
		t.Fatalf("expected name demo, got %q", db.Name)
	}
	if len(db.Definitions) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(db.Definitions))
	}

	cr := command.NewCommandReader(db)
	r := bytestream.New([]byte{0x20, 0x00})
	cmd, err := cr.Read(r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cmd.EndsScript() {
		t.Fatalf("jump value 0 should continue the script")
	}
}

func TestDecodeRejectsUnknownEncoding(t *testing.T) {
	_, err := Decode([]byte(`{"name":"x","encoding":"shiftjis","commands":[]}`))
	if err == nil {
		t.Fatalf("expected an error for an encoding the built-in loader can't resolve")
	}
}
