// This file implements the Start/End/Label base-offset resolution shared by
// the command reader and writer (spec.md §4.4/§4.5 "Offset resolution").

package command

import (
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
)

// resolveBaseOffset returns the base offset a parameter's Offset is
// relative to, given the command buffer's current length (for OffsetEnd)
// and the labels recorded so far (for OffsetLabel).
func resolveBaseOffset(offType OffsetType, relativeLabel string, bufLen int, labels map[string]int) (int, error) {
	switch offType {
	case OffsetStart:
		return 0, nil
	case OffsetEnd:
		return bufLen, nil
	case OffsetLabel:
		v, ok := labels[relativeLabel]
		if !ok {
			return 0, fmt.Errorf("%w: label %q not yet recorded", arccore.ErrUnknownLabel, relativeLabel)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: unknown offset type %v", arccore.ErrMalformed, offType)
	}
}

// recordLabel stores base_offset + def.Offset under def.Name, per spec.md
// §4.4 "After resolving, record labels[par.name] = base_offset + par.offset".
func recordLabel(labels map[string]int, def *ParameterDefinition, baseOffset int) {
	labels[def.Name] = baseOffset + def.Offset
}
