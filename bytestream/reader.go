// Package bytestream provides the small sequential byte-slice reader the
// core packages read scripts and commands from.
//
// It generalizes repparser/slicereader.go from the teacher (getByte /
// getUint16 / getUint32 / getString / readSlice over a []byte with a
// running position) with the operations the spec's command reader (C5) and
// script/archive readers (C7/C8) additionally need: unreading bytes for
// "rewind" (spec.md §4.4 step 4, §4.5), absolute repositioning for pointer
// resynchronization (§4.7 step 5), and bounded sub-views for per-script byte
// budgets (§4.7 step 4).
package bytestream

import (
	"encoding/binary"
	"errors"
)

// ErrEOF is returned when a read runs past the end of the underlying slice.
var ErrEOF = errors.New("bytestream: unexpected end of input")

// Reader sequentially reads bytes from an in-memory buffer, tracking its
// position.
type Reader struct {
	b   []byte
	pos int
}

// New creates a Reader over b, positioned at the start.
func New(b []byte) *Reader {
	return &Reader{b: b}
}

// Pos returns the index of the next byte to be read.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.b) - r.pos }

// Bytes returns the full underlying buffer (not just the unread tail).
func (r *Reader) Bytes() []byte { return r.b }

// ReadByte returns the next byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, ErrEOF
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, ErrEOF
	}
	return r.b[r.pos], nil
}

// ReadUint16 reads 2 bytes as a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.b) {
		return 0, ErrEOF
	}
	v := binary.LittleEndian.Uint16(r.b[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadSlice returns the next n bytes as a fresh, owned slice.
func (r *Reader) ReadSlice(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.b) {
		return nil, ErrEOF
	}
	out := make([]byte, n)
	copy(out, r.b[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// Unread moves the position back by n bytes (the "rewind" operation from
// spec.md §9). It is the caller's responsibility to ensure n does not
// overrun the start of the buffer; per the spec's design notes, an oversize
// rewind silently discarding data is the documented (if questionable)
// teacher behavior for the writer side, but the reader side returns an
// error instead of wrapping/clamping, since silently going negative would
// corrupt Pos for every subsequent read.
func (r *Reader) Unread(n int) error {
	if r.pos-n < 0 {
		return ErrEOF
	}
	r.pos -= n
	return nil
}

// SeekAbs repositions to an absolute offset within the buffer.
func (r *Reader) SeekAbs(pos int) error {
	if pos < 0 || pos > len(r.b) {
		return ErrEOF
	}
	r.pos = pos
	return nil
}

// Sub returns a new Reader over b[start:end], an independent position.
func (r *Reader) Sub(start, end int) (*Reader, error) {
	if start < 0 || end > len(r.b) || start > end {
		return nil, ErrEOF
	}
	return New(r.b[start:end]), nil
}
