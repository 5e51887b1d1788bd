// This file implements the command reader, spec.md §4.4, component C5.

package command

import (
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/bytestream"
)

// CommandReader greedily matches and decodes one command from r against db.
type CommandReader struct {
	DB   *CommandDatabase
	Mode StringReadMode
}

// NewCommandReader creates a reader for db, decoding strings conservatively.
func NewCommandReader(db *CommandDatabase) *CommandReader {
	return &CommandReader{DB: db, Mode: Conservative}
}

// Read matches and decodes one command at r's current position. On any
// failure (no match, malformed input, insufficient bytes, unresolved label,
// non-zero fallback count, or a base mismatch) it restores r to the
// position it had on entry and returns an error; arccore.ErrNoMatch
// specifically means "try a different decoding strategy at this position",
// per spec.md §4.6.
func (cr *CommandReader) Read(r *bytestream.Reader) (*Command, error) {
	start := r.Pos()
	cmd, err := cr.read(r)
	if err != nil {
		r.SeekAbs(start)
		return nil, err
	}
	return cmd, nil
}

func (cr *CommandReader) read(r *bytestream.Reader) (*Command, error) {
	walker := cr.DB.Walker()
	var matched []byte

	var priorityIdx = -1
	priorityAmbiguous := false
	terminalIdx := -1
	exhausted := false

	for {
		b, err := r.ReadByte()
		if err != nil {
			// Stream exhausted before the trie was done walking (spec.md
			// §4.1 stop condition (b)): per spec.md §7's NoMatch row, this
			// is always "no match", even if a candidate was already seen.
			// A longer, more specific definition sharing this prefix never
			// got the chance to rule itself in or out.
			exhausted = true
			break
		}
		if !walker.Step(b) {
			r.Unread(1)
			break
		}
		matched = append(matched, b)

		if walker.AtValue() {
			for _, idx := range walker.Values() {
				def := cr.DB.DefinitionAt(idx)
				if def.PriorityLength > 0 && len(matched) >= int(def.PriorityLength) {
					switch {
					case priorityIdx == -1:
						priorityIdx = idx
					case priorityIdx != idx:
						priorityAmbiguous = true
					}
				}
				if !def.LookAhead {
					terminalIdx = idx
				}
			}
		}
		if walker.AtEnd() {
			break
		}
	}

	if exhausted {
		return nil, arccore.ErrNoMatch
	}

	var chosenIdx int
	switch {
	case priorityIdx != -1 && !priorityAmbiguous:
		chosenIdx = priorityIdx
	case terminalIdx != -1:
		chosenIdx = terminalIdx
	default:
		return nil, arccore.ErrNoMatch
	}

	def := cr.DB.DefinitionAt(chosenIdx)

	// Base verification + rewind of anything matched past the base length
	// (spec.md §4.4 step 2).
	extra := len(matched) - len(def.Base)
	if extra > 0 {
		if err := r.Unread(extra); err != nil {
			return nil, fmt.Errorf("%w: could not rewind past-base bytes", arccore.ErrIO)
		}
	} else if extra < 0 {
		return nil, fmt.Errorf("%w: matched fewer bytes than command base", arccore.ErrMalformed)
	}
	for i, mb := range def.Base {
		if !mb.Accepts(matched[i]) {
			return nil, fmt.Errorf("%w: base byte %d mismatch for command %q", arccore.ErrMalformed, i, def.Name)
		}
	}

	afterBase := r.Pos()
	cmd, err := cr.readWithDef(r, def, matched[:len(def.Base)])
	if err != nil {
		// Try alternatives sharing this exact base pattern, in registration
		// order, per spec.md §4.1 collision rule. Each one starts reading
		// right after the base again.
		for _, alt := range cr.DB.Alternatives(def) {
			if err := r.SeekAbs(afterBase); err != nil {
				return nil, fmt.Errorf("%w: could not reposition after base", arccore.ErrIO)
			}
			if altCmd, altErr := cr.readWithDef(r, alt, matched[:len(alt.Base)]); altErr == nil {
				return altCmd, nil
			}
		}
		return nil, err
	}
	return cmd, nil
}

// readWithDef reads def's elements starting from baseBytes (already
// consumed from r) and continuing to pull bytes from r as needed.
func (cr *CommandReader) readWithDef(r *bytestream.Reader, def *CommandDefinition, baseBytes []byte) (*Command, error) {
	cmdBuf := append([]byte(nil), baseBytes...)
	labels := make(map[string]int)
	cmd := NewCommand(def)

	for _, elDef := range def.Elements {
		ce := &CommandElement{Def: elDef}

		if elDef.HasMultipleDataEntries() {
			n, newBuf, err := cr.readLengthParam(cmdBuf, r, elDef.Length, labels)
			cmdBuf = newBuf
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: command %q element %q has negative entry count", arccore.ErrMalformed, def.Name, elDef.Name())
			}

			ce.Entries = make([]DataEntry, n)
			for i := range ce.Entries {
				ce.Entries[i] = make(DataEntry)
			}

			for _, group := range elDef.DataGroups() {
				for i := 0; i < n; i++ {
					for _, pdef := range group {
						var p Parameter
						var err error
						cmdBuf, p, err = cr.readParam(cmdBuf, r, pdef, labels)
						if err != nil {
							return nil, err
						}
						ce.Entries[i][pdef.Name] = p
					}
				}
			}
		} else {
			var p Parameter
			var err error
			cmdBuf, p, err = cr.readParam(cmdBuf, r, elDef.Single, labels)
			if err != nil {
				return nil, err
			}
			ce.Entries = []DataEntry{{elDef.Single.Name: p}}
		}

		cmd.Elements[elDef.Name()] = ce
	}

	if def.Rewind > 0 {
		if err := r.Unread(int(def.Rewind)); err != nil {
			return nil, fmt.Errorf("%w: command %q rewind of %d overruns stream", arccore.ErrMalformed, def.Name, def.Rewind)
		}
	}

	return cmd, nil
}

// readLengthParam reads a multi-entry element's length parameter and
// records its label, returning the decoded (possibly negative, caller
// checks) count.
func (cr *CommandReader) readLengthParam(cmdBuf []byte, r *bytestream.Reader, def *ParameterDefinition, labels map[string]int) (int, []byte, error) {
	cmdBuf, p, err := cr.readParam(cmdBuf, r, def, labels)
	if err != nil {
		return 0, cmdBuf, err
	}
	return int(p.Number()), cmdBuf, nil
}

// readParam reads one parameter (numeric or string), resolving its base
// offset, extending cmdBuf from r as needed, and recording its label.
func (cr *CommandReader) readParam(cmdBuf []byte, r *bytestream.Reader, def *ParameterDefinition, labels map[string]int) ([]byte, Parameter, error) {
	baseOffset, err := resolveBaseOffset(def.OffsetType, def.RelativeLabel, len(cmdBuf), labels)
	if err != nil {
		return cmdBuf, Parameter{}, err
	}

	if def.IsString() {
		var text string
		cmdBuf, text, err = cr.readStringParam(cmdBuf, r, def, baseOffset)
		if err != nil {
			return cmdBuf, Parameter{}, err
		}
		recordLabel(labels, def, baseOffset)
		return cmdBuf, NewStringParam(def, text), nil
	}

	needed := baseOffset + def.Offset + def.MinBytes()
	cmdBuf, err = extendBuf(cmdBuf, r, needed)
	if err != nil {
		return cmdBuf, Parameter{}, fmt.Errorf("%w: reading parameter %q: %v", arccore.ErrIO, def.Name, err)
	}
	v, err := ReadParamValue(cmdBuf, def, baseOffset)
	if err != nil {
		return cmdBuf, Parameter{}, err
	}
	recordLabel(labels, def, baseOffset)
	return cmdBuf, NewNumberParam(def, v), nil
}

// readStringParam implements spec.md §4.3 for the command reader: it first
// reads the paired variable-length numeric sub-field (if def.Bits > 0),
// then decodes the string content, which always starts at
// def.StringDef.Offset from the *command* start (offset 0), regardless of
// the length field's own OffsetType.
func (cr *CommandReader) readStringParam(cmdBuf []byte, r *bytestream.Reader, def *ParameterDefinition, lengthBaseOffset int) ([]byte, string, error) {
	sdef := def.StringDef

	var varLen int64
	if def.Bits > 0 {
		needed := lengthBaseOffset + def.Offset + def.MinBytes()
		var err error
		cmdBuf, err = extendBuf(cmdBuf, r, needed)
		if err != nil {
			return cmdBuf, "", fmt.Errorf("%w: reading string length field %q: %v", arccore.ErrIO, def.Name, err)
		}
		varLen, err = ReadParamValue(cmdBuf, def, lengthBaseOffset)
		if err != nil {
			return cmdBuf, "", err
		}
	}

	length := sdef.effectiveLength(varLen)
	start := sdef.Offset

	if sdef.Unit == StringUnitByte {
		n := int(length)
		needed := start + n
		var err error
		cmdBuf, err = extendBuf(cmdBuf, r, needed)
		if err != nil {
			return cmdBuf, "", fmt.Errorf("%w: reading string %q: %v", arccore.ErrIO, def.Name, err)
		}
		s, fallbacks := decodeFullBuffer(cmdBuf[start:start+n], cr.DB.Encoding)
		if cr.Mode == Conservative && fallbacks != 0 {
			return cmdBuf, "", fmt.Errorf("%w: string %q had %d unmappable byte(s)", arccore.ErrEncoding, def.Name, fallbacks)
		}
		return cmdBuf, s, nil
	}

	// StringUnitChar: length is unknown in bytes ahead of time, so grow the
	// buffer one code point's worth at a time.
	var out []byte
	pos := start
	var charsRead uint32
	enc := cr.DB.Encoding
	for charsRead < length {
		target := pos + enc.MaxBytesPerChar()
		cmdBuf, _ = extendBufBestEffort(cmdBuf, r, target)
		if pos >= len(cmdBuf) {
			if cr.Mode == Conservative {
				return cmdBuf, "", fmt.Errorf("%w: string %q ran out of input before %d chars", arccore.ErrIO, def.Name, length)
			}
			break
		}
		chars, used, ok := enc.TryReadCodePoint(cmdBuf[pos:])
		if !ok {
			if cr.Mode == Conservative {
				return cmdBuf, "", fmt.Errorf("%w: invalid code point in string %q at offset %d", arccore.ErrEncoding, def.Name, pos)
			}
			out = append(out, "�"...)
			pos++
			charsRead++
			continue
		}
		out = append(out, cmdBuf[pos:pos+used]...)
		pos += used
		charsRead += uint32(chars)
	}
	return cmdBuf, string(out), nil
}

// extendBuf grows cmdBuf by reading from r until it has at least n bytes.
func extendBuf(cmdBuf []byte, r *bytestream.Reader, n int) ([]byte, error) {
	for len(cmdBuf) < n {
		b, err := r.ReadByte()
		if err != nil {
			return cmdBuf, err
		}
		cmdBuf = append(cmdBuf, b)
	}
	return cmdBuf, nil
}

// extendBufBestEffort is extendBuf but stops silently (returning what it
// has) instead of propagating an EOF, since the caller decides leniency.
func extendBufBestEffort(cmdBuf []byte, r *bytestream.Reader, n int) ([]byte, error) {
	cmdBuf, err := extendBuf(cmdBuf, r, n)
	if err != nil {
		return cmdBuf, nil
	}
	return cmdBuf, nil
}
