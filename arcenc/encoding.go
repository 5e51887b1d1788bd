// Package arcenc defines the character-encoding contract spec.md §6
// specifies as an external collaborator: the core only ever consumes this
// interface, never a concrete charset's internals.
package arcenc

// Encoding decodes/encodes the game-specific character set used inside a
// command database's string parameters (spec.md §6, §4.3).
//
// Implementations must be stateless and safe for concurrent use by multiple
// readers/writers, the same way golang.org/x/text/encoding.Encoding values
// (e.g. korean.EUCKR) are: a single Encoding is shared across every command
// in a database.
type Encoding interface {
	// MaxBytesPerChar is the maximum number of bytes a single code point can
	// occupy in this encoding.
	MaxBytesPerChar() int

	// MaxCharsPerBytes is the maximum number of code points that can be
	// decoded from a single byte (usually 1; some encodings fold multiple
	// display characters into one stored byte via shift sequences, but that
	// is the rare case this upper bound exists for).
	MaxCharsPerBytes() int

	// TryReadCodePoint attempts to decode exactly one code point from the
	// front of buf. It returns the number of runes the code point expands
	// to when rendered (usually 1), the number of bytes consumed, and
	// whether decoding succeeded. Implementations must never consume a
	// partial code point: ok=false must leave the caller free to treat the
	// bytes as unconsumed.
	TryReadCodePoint(buf []byte) (chars, bytesUsed int, ok bool)

	// GetBytes encodes s into this encoding's byte representation. Runes
	// that cannot be mapped are replaced with a sentinel rather than
	// causing an error; fallbacks reports how many were substituted, per
	// spec.md's "fallback count" contract.
	GetBytes(s string) (b []byte, fallbacks int)
}
