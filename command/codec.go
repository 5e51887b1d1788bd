// This file implements the parameter bit codec, spec.md §4.2, component C3.

package command

import (
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
)

// ReadParamValue reads def's numeric value out of bytes, anchored at
// baseOffset (the resolved Start/End/Label position), per spec.md §4.2.
// bytes must already contain every byte the parameter spans; callers
// (package command's reader) are responsible for extending the read buffer
// first.
func ReadParamValue(bytes []byte, def *ParameterDefinition, baseOffset int) (int64, error) {
	offset := baseOffset + def.Offset + int(def.Shift/8)
	inShift := def.Shift % 8
	bits := def.Bits
	var outShift uint
	var value uint64

	for bits > 0 {
		if offset < 0 || offset >= len(bytes) {
			return 0, fmt.Errorf("%w: parameter %q reads past end of buffer", arccore.ErrIO, def.Name)
		}
		n := 8 - inShift
		if n > bits {
			n = bits
		}
		mask := uint64(1)<<n - 1
		value |= ((uint64(bytes[offset]) >> inShift) & mask) << outShift
		bits -= n
		outShift += n
		inShift = 0
		offset++
	}

	return int64(value) + def.Add, nil
}

// WriteParamValue writes v into bytes at the position def.Offset resolves
// to (anchored at baseOffset), growing bytes as needed and preserving every
// bit outside the parameter's span, per spec.md §4.2 ("Write is the
// symmetric operation, preserving untouched bits in the destination byte").
// It returns the (possibly reallocated) buffer.
func WriteParamValue(bytes []byte, def *ParameterDefinition, baseOffset int, v int64) ([]byte, error) {
	if !def.InRange(v) {
		return nil, fmt.Errorf("%w: parameter %q value %d outside [%d, %d]",
			arccore.ErrOutOfRange, def.Name, v, def.Minimum(), def.Maximum())
	}

	raw := uint64(v - def.Add)
	offset := baseOffset + def.Offset + int(def.Shift/8)
	inShift := def.Shift % 8
	bits := def.Bits
	var inOffset uint

	needed := offset
	if bits > 0 {
		needed = offset + int((inShift+bits+7)/8)
	}
	bytes = ensureLen(bytes, needed)

	for bits > 0 {
		if offset < 0 {
			return nil, fmt.Errorf("%w: parameter %q writes before start of buffer", arccore.ErrMalformed, def.Name)
		}
		n := 8 - inShift
		if n > bits {
			n = bits
		}
		mask := byte(uint64(1)<<n - 1)
		chunk := byte((raw >> inOffset) & uint64(mask))
		bytes[offset] = (bytes[offset] &^ (mask << inShift)) | (chunk << inShift)

		bits -= n
		inOffset += n
		inShift = 0
		offset++
	}

	return bytes, nil
}

// ensureLen grows bytes with zero padding so that indices up to n-1 are
// valid, returning the (possibly new) slice.
func ensureLen(bytes []byte, n int) []byte {
	if len(bytes) >= n {
		return bytes
	}
	grown := make([]byte, n)
	copy(grown, bytes)
	return grown
}
