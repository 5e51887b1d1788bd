// This file adapts any golang.org/x/text/encoding.Encoding (Shift-JIS,
// EUC-KR, the single-byte charmaps, ...) to the arcenc.Encoding contract.
//
// It generalizes repparser.koreanString from the teacher, which special-cased
// exactly one charset (EUC-KR) and one direction (decode only) via
// transform.String(korean.EUCKR.NewDecoder(), ...). Here any x/text Encoding
// can back a command database's string parameters in either direction, and
// GetBytes additionally implements the spec's "fallback count" contract,
// which the teacher never needed because replay strings are always decoded,
// never re-encoded.
package arcenc

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

// maxXTextBytesPerChar bounds how many bytes XTextEncoding.TryReadCodePoint
// will attempt to decode as a single code point before giving up. 4 covers
// every multi-byte charset x/text ships (Shift-JIS and EUC-KR both top out
// at 2).
const maxXTextBytesPerChar = 4

// XTextEncoding adapts enc to the Encoding contract.
type XTextEncoding struct {
	enc         encoding.Encoding
	replacement byte
}

// NewXText wraps enc. replacement is the byte written by GetBytes in place
// of any rune enc cannot represent (fallback counting).
func NewXText(enc encoding.Encoding, replacement byte) *XTextEncoding {
	return &XTextEncoding{enc: enc, replacement: replacement}
}

func (x *XTextEncoding) MaxBytesPerChar() int  { return maxXTextBytesPerChar }
func (x *XTextEncoding) MaxCharsPerBytes() int { return 1 }

// TryReadCodePoint decodes the shortest prefix of buf (up to
// maxXTextBytesPerChar bytes) that the wrapped encoding accepts as one
// complete, valid code point. It never reports success for a prefix that
// the decoder flags as short/incomplete, so it never consumes a partial
// code point, matching the "conservative" mode from spec.md §6.
func (x *XTextEncoding) TryReadCodePoint(buf []byte) (chars, bytesUsed int, ok bool) {
	dec := x.enc.NewDecoder()
	limit := maxXTextBytesPerChar
	if len(buf) < limit {
		limit = len(buf)
	}
	for n := 1; n <= limit; n++ {
		out, err := dec.Bytes(buf[:n])
		if err != nil {
			continue
		}
		if len(out) == 0 {
			continue
		}
		if !utf8.Valid(out) {
			continue
		}
		return utf8.RuneCount(out), n, true
	}
	return 0, 0, false
}

// DecodeFull decodes the whole of b in one pass, counting how many bytes
// the wrapped decoder could not map (it substitutes the Unicode
// replacement character, mirroring repparser.koreanString's
// transform.String call but tolerating rather than propagating errors).
func (x *XTextEncoding) DecodeFull(b []byte) (s string, fallbacks int) {
	dec := x.enc.NewDecoder()
	var sb []byte
	pos := 0
	for pos < len(b) {
		chars, used, ok := x.TryReadCodePoint(b[pos:])
		if !ok {
			sb = append(sb, "�"...)
			fallbacks++
			pos++
			continue
		}
		_ = chars
		out, err := dec.Bytes(b[pos : pos+used])
		if err != nil {
			sb = append(sb, "�"...)
			fallbacks++
		} else {
			sb = append(sb, out...)
		}
		pos += used
	}
	return string(sb), fallbacks
}

// GetBytes encodes s rune by rune so that unmappable runes can be replaced
// and counted individually instead of aborting the whole string.
func (x *XTextEncoding) GetBytes(s string) (b []byte, fallbacks int) {
	enc := x.enc.NewEncoder()
	b = make([]byte, 0, len(s))
	for _, r := range s {
		out, err := enc.Bytes([]byte(string(r)))
		if err != nil || len(out) == 0 {
			b = append(b, x.replacement)
			fallbacks++
			continue
		}
		b = append(b, out...)
	}
	return b, fallbacks
}
