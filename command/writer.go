// This file implements the command writer, spec.md §4.5, component C6.

package command

import "fmt"

// CommandWriter produces the encoded byte buffer for a Command.
type CommandWriter struct {
	DB *CommandDatabase
}

// NewCommandWriter creates a writer for db.
func NewCommandWriter(db *CommandDatabase) *CommandWriter {
	return &CommandWriter{DB: db}
}

// Write encodes cmd per spec.md §4.5: the command buffer starts as
// cmd.Def.Base copied in (padded to base length for any don't-care bits),
// each element is written in order updating labels as it goes, and the
// final output is the buffer truncated by cmd.Def.Rewind bytes.
func (cw *CommandWriter) Write(cmd *Command) ([]byte, error) {
	def := cmd.Def
	buf := make([]byte, len(def.Base))
	for i, mb := range def.Base {
		buf[i] = mb.Value
	}
	labels := make(map[string]int)

	for _, elDef := range def.Elements {
		ce := cmd.Elements[elDef.Name()]
		if ce == nil {
			return nil, fmt.Errorf("command writer: command %q is missing element %q", def.Name, elDef.Name())
		}

		if elDef.HasMultipleDataEntries() {
			n := len(ce.Entries)
			var err error
			buf, err = cw.writeParam(buf, elDef.Length, labels, int64(n))
			if err != nil {
				return nil, err
			}

			for _, group := range elDef.DataGroups() {
				for i := 0; i < n; i++ {
					entry := ce.Entries[i]
					for _, pdef := range group {
						p, ok := entry[pdef.Name]
						if !ok {
							return nil, fmt.Errorf("command writer: command %q element %q entry %d missing parameter %q",
								def.Name, elDef.Name(), i, pdef.Name)
						}
						buf, err = cw.writeParamValue(buf, pdef, labels, p)
						if err != nil {
							return nil, err
						}
					}
				}
			}
		} else {
			if len(ce.Entries) != 1 {
				return nil, fmt.Errorf("command writer: command %q element %q must have exactly one entry", def.Name, elDef.Name())
			}
			p, ok := ce.Entries[0][elDef.Single.Name]
			if !ok {
				return nil, fmt.Errorf("command writer: command %q element %q missing parameter %q", def.Name, elDef.Name(), elDef.Single.Name)
			}
			var err error
			buf, err = cw.writeParamValue(buf, elDef.Single, labels, p)
			if err != nil {
				return nil, err
			}
		}
	}

	rewind := int(def.Rewind)
	if rewind > len(buf) {
		// Per spec.md §9 design notes, the teacher's writer truncates
		// unconditionally and silently discards data on an oversize
		// rewind; we preserve that documented (if questionable) behavior
		// rather than guessing a stricter one, since it is an explicit
		// open question.
		return []byte{}, nil
	}
	return buf[:len(buf)-rewind], nil
}

// writeParamValue dispatches to the numeric or string writer based on def.
func (cw *CommandWriter) writeParamValue(buf []byte, def *ParameterDefinition, labels map[string]int, p Parameter) ([]byte, error) {
	if def.IsString() {
		return cw.writeStringParam(buf, def, labels, p.String())
	}
	return cw.writeParam(buf, def, labels, p.Number())
}

// writeParam resolves def's base offset, writes v, and records the label.
func (cw *CommandWriter) writeParam(buf []byte, def *ParameterDefinition, labels map[string]int, v int64) ([]byte, error) {
	baseOffset, err := resolveBaseOffset(def.OffsetType, def.RelativeLabel, len(buf), labels)
	if err != nil {
		return buf, err
	}
	buf, err = WriteParamValue(buf, def, baseOffset, v)
	if err != nil {
		return buf, err
	}
	recordLabel(labels, def, baseOffset)
	return buf, nil
}

// writeStringParam implements spec.md §4.5's string splice: the string is
// encoded first (so its length is known), the paired length sub-field (if
// any) is written using the normal numeric writer, and the encoded bytes
// are spliced into buf at def.StringDef.Offset (always relative to command
// start).
func (cw *CommandWriter) writeStringParam(buf []byte, def *ParameterDefinition, labels map[string]int, s string) ([]byte, error) {
	sdef := def.StringDef
	encoded, varLen, err := WriteString(s, sdef, cw.DB.Encoding)
	if err != nil {
		return buf, err
	}

	if def.Bits > 0 {
		baseOffset, err := resolveBaseOffset(def.OffsetType, def.RelativeLabel, len(buf), labels)
		if err != nil {
			return buf, err
		}
		buf, err = WriteParamValue(buf, def, baseOffset, varLen)
		if err != nil {
			return buf, err
		}
		recordLabel(labels, def, baseOffset)
	}

	start := sdef.Offset
	buf = ensureLen(buf, start+len(encoded))
	copy(buf[start:start+len(encoded)], encoded)
	return buf, nil
}
