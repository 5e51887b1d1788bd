// This file implements the string sub-codec, spec.md §4.3, component C4.

package command

import (
	"fmt"
	"strings"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/arcenc"
)

// StringReadMode selects between the two decode modes spec.md §6 defines
// for the character-encoding contract.
type StringReadMode int

const (
	// Conservative never consumes a partial code point; an unreadable
	// prefix is a hard failure.
	Conservative StringReadMode = iota
	// IgnoreFallback decodes replacing unmappable bytes with a sentinel
	// and does not fail on them; the fallback count is not reported.
	IgnoreFallback
)

// textDecoder is implemented by Encodings that can decode a full byte slice
// to text directly (both shipped implementations do); the command reader's
// byte-unit string path (readStringParam, via decodeFullBuffer) uses it to get a fallback count in one call instead of
// decoding code point by code point.
type textDecoder interface {
	arcenc.Encoding
	DecodeFull(b []byte) (s string, fallbacks int)
}

func decodeFullBuffer(b []byte, enc arcenc.Encoding) (string, int) {
	if td, ok := enc.(textDecoder); ok {
		return td.DecodeFull(b)
	}
	// Fallback: decode code point by code point using TryReadCodePoint.
	var sb strings.Builder
	fallbacks := 0
	pos := 0
	for pos < len(b) {
		_, used, ok := enc.TryReadCodePoint(b[pos:])
		if !ok {
			sb.WriteRune('�')
			fallbacks++
			pos++
			continue
		}
		sb.Write(b[pos : pos+used])
		pos += used
	}
	return sb.String(), fallbacks
}

// WriteString encodes s per def, returning the encoded bytes and the
// variable-length value that must be written into the paired numeric
// field. It fails if encoding produces any fallback (spec.md §4.5 "Errors:
// ... unencodable string") or if the string does not fit FixedLength: a
// byte-unit string must encode to exactly FixedLength bytes, a char-unit
// string may have at most FixedLength chars.
func WriteString(s string, def *StringSubDefinition, enc arcenc.Encoding) (encoded []byte, varLen int64, err error) {
	encoded, fallbacks := enc.GetBytes(s)
	if fallbacks != 0 {
		return nil, 0, fmt.Errorf("%w: string %q had %d unencodable character(s)", arccore.ErrEncoding, s, fallbacks)
	}

	switch def.Unit {
	case StringUnitByte:
		if def.FixedLength != 0 && uint32(len(encoded)) != def.FixedLength {
			return nil, 0, fmt.Errorf("%w: string %q encodes to %d bytes, fixed length requires exactly %d",
				arccore.ErrEncoding, s, len(encoded), def.FixedLength)
		}
		return encoded, int64(len(encoded)), nil
	default: // StringUnitChar
		runeCount := int64(len([]rune(s)))
		if def.FixedLength != 0 && uint32(runeCount) > def.FixedLength {
			return nil, 0, fmt.Errorf("%w: string %q has %d chars, exceeds fixed length %d",
				arccore.ErrEncoding, s, runeCount, def.FixedLength)
		}
		return encoded, runeCount, nil
	}
}
