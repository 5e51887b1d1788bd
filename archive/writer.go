// This file implements the text archive writer, spec.md §4.7 "Writer".

package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/command"
	"github.com/textpetgo/msgarc/script"
)

// Write encodes a's scripts in order: a 2*len(a.Scripts)-byte pointer table
// followed by every script (including empty ones — the standard writer
// never skips scripts; only the separate extract tooling, out of scope
// here, does that), per spec.md §4.7.
func Write(a *TextArchive, cw *command.CommandWriter) ([]byte, error) {
	count := len(a.Scripts)
	out := make([]byte, 2*count)
	offsets := make([]int, count)

	for i, s := range a.Scripts {
		offsets[i] = len(out)
		b, err := script.Write(s, cw)
		if err != nil {
			return nil, fmt.Errorf("archive writer: script %d: %w", i, err)
		}
		out = append(out, b...)
	}

	for i, off := range offsets {
		if off > 0xFFFF {
			return nil, fmt.Errorf("%w: script %d offset 0x%X exceeds 16-bit pointer range", arccore.ErrOutOfRange, i, off)
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(off))
	}

	return out, nil
}

// ExtractNonEmptyScripts returns the scripts of a that are not empty,
// alongside their original index. It is a convenience for the extract-style
// collaborators (out of scope for this spec's core): it does not affect
// Write, which always emits every script so the pointer table stays valid.
func ExtractNonEmptyScripts(a *TextArchive) (scripts []*script.Script, indices []int) {
	for i, s := range a.Scripts {
		if !s.Empty() {
			scripts = append(scripts, s)
			indices = append(indices, i)
		}
	}
	return scripts, indices
}
