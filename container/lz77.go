// This file implements the compression collaborator, spec.md §4.8 and §D.3:
// a GBA-BIOS-style LZ77 codec, plus an uncompressed "wrap" mode that only
// carries the length header some MSG-container games still expect.
//
// The sliding-window match search is grounded on the same greedy
// longest-match idiom used by other_examples' xyproto-vibe67/compress.go
// and musclesoft-nin64k/cmd/compress/compress.go, adapted to the GBA BIOS
// token layout (tag byte + 8 flag bits + 2-byte back-reference records)
// instead of those examples' byte-oriented escape scheme.
package container

import (
	"fmt"
	"io"

	"github.com/textpetgo/msgarc/arccore"
)

const (
	lz77Tag  = 0x10 // GBA BIOS LZ77 compression type nibble.
	wrapTag  = 0x00 // Uncompressed payload, length-header only.
	minMatch = 3
	maxMatch = 3 + 0xF
	window   = 0x1000 // 12-bit back-reference: distances 1..4096.
)

// Compressor is the pluggable compression interface spec.md §4.8 needs for
// the container's compressed/size-header flow.
type Compressor interface {
	// Decompress reads a self-describing compressed stream from r (its
	// 4-byte header carries the true decompressed length; decompressedLen
	// is a hint used only for buffer preallocation and is not trusted over
	// the header) and returns the decompressed bytes.
	Decompress(r io.Reader, decompressedLen int) ([]byte, error)

	// Compress returns b encoded as a self-describing compressed stream.
	Compress(b []byte) []byte
}

// LZ77 is the shipped Compressor implementation.
type LZ77 struct{}

// Compress implements Compressor using real LZ77 back-references.
func (LZ77) Compress(b []byte) []byte {
	return encodeLZ77(b, lz77Tag)
}

// CompressWrap encodes b as an uncompressed "wrap": the same 4-byte GBA
// header, tagged so Decompress knows to copy the payload verbatim instead
// of interpreting it as LZ77 tokens. Some games require every archive to
// carry the compression header even when the author doesn't want the
// space/time cost of real compression; this is that escape hatch.
func (LZ77) CompressWrap(b []byte) []byte {
	return encodeLZ77(b, wrapTag)
}

func encodeLZ77(b []byte, tag byte) []byte {
	out := make([]byte, 4, len(b)+4)
	out[0] = tag
	out[1] = byte(len(b))
	out[2] = byte(len(b) >> 8)
	out[3] = byte(len(b) >> 16)

	if tag == wrapTag {
		return append(out, b...)
	}

	pos := 0
	for pos < len(b) {
		flagPos := len(out)
		out = append(out, 0)
		var flags byte

		for bit := 0; bit < 8 && pos < len(b); bit++ {
			dist, length := longestMatch(b, pos)
			if length >= minMatch {
				flags |= 1 << (7 - uint(bit))
				d := dist - 1
				l := length - minMatch
				out = append(out, byte(l)<<4|byte(d>>8), byte(d))
				pos += length
			} else {
				out = append(out, b[pos])
				pos++
			}
		}

		out[flagPos] = flags
	}

	return out
}

// longestMatch finds the longest run at b[pos:] that also occurs within
// the preceding window bytes, preferring the closest (largest-offset,
// i.e. smallest distance) match of the maximum length, the same greedy
// strategy as the other_examples sliding-window compressors.
func longestMatch(b []byte, pos int) (dist, length int) {
	start := pos - window
	if start < 0 {
		start = 0
	}
	limit := maxMatch
	if pos+limit > len(b) {
		limit = len(b) - pos
	}

	for i := pos - 1; i >= start; i-- {
		n := 0
		for n < limit && b[i+n] == b[pos+n] {
			n++
		}
		if n > length {
			length = n
			dist = pos - i
			if length == limit {
				break
			}
		}
	}
	return dist, length
}

// Decompress implements Compressor.
func (LZ77) Decompress(r io.Reader, decompressedLen int) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: lz77 header: %v", arccore.ErrIO, err)
	}
	length := int(header[1]) | int(header[2])<<8 | int(header[3])<<16

	out := make([]byte, 0, length)
	if decompressedLen > 0 && decompressedLen > length {
		out = make([]byte, 0, decompressedLen)
	}

	switch header[0] {
	case wrapTag:
		buf := out[:length]
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: lz77 wrap payload: %v", arccore.ErrIO, err)
		}
		return buf, nil
	case lz77Tag:
		return decodeLZ77Tokens(r, length, out)
	default:
		return nil, fmt.Errorf("%w: unrecognized lz77 tag byte 0x%02X", arccore.ErrMalformed, header[0])
	}
}

// decodeLZ77Tokens appends the decoded bytes to out, which the caller has
// preallocated.
func decodeLZ77Tokens(r io.Reader, length int, out []byte) ([]byte, error) {
	var flagByte [1]byte
	var pair [2]byte

	for len(out) < length {
		if _, err := io.ReadFull(r, flagByte[:]); err != nil {
			return nil, fmt.Errorf("%w: lz77 flag byte: %v", arccore.ErrIO, err)
		}
		flags := flagByte[0]

		for bit := 0; bit < 8 && len(out) < length; bit++ {
			if flags&(1<<(7-uint(bit))) == 0 {
				var lit [1]byte
				if _, err := io.ReadFull(r, lit[:]); err != nil {
					return nil, fmt.Errorf("%w: lz77 literal: %v", arccore.ErrIO, err)
				}
				out = append(out, lit[0])
				continue
			}

			if _, err := io.ReadFull(r, pair[:]); err != nil {
				return nil, fmt.Errorf("%w: lz77 back-reference: %v", arccore.ErrIO, err)
			}
			matchLen := int(pair[0]>>4) + minMatch
			dist := int(pair[0]&0xF)<<8 | int(pair[1])
			dist++

			start := len(out) - dist
			if start < 0 {
				return nil, fmt.Errorf("%w: lz77 back-reference distance %d exceeds output so far", arccore.ErrMalformed, dist)
			}
			for i := 0; i < matchLen; i++ {
				out = append(out, out[start+i])
			}
		}
	}

	return out, nil
}
