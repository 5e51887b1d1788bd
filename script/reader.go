// This file implements the script reader, spec.md §4.6.

package script

import (
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/bytestream"
	"github.com/textpetgo/msgarc/command"
)

// Reader decodes scripts by trying a list of per-database command readers,
// in order of preference, applying the "accept most compatible fallback"
// policy from spec.md §4.6: only the last database in the list is allowed
// to emit ByteElements. The first database whose attempt produces zero
// ByteElements wins; otherwise the last database's attempt is accepted as-is.
type Reader struct {
	// Databases are tried in order; only the last one may emit ByteElements.
	Databases []*command.CommandReader
}

// NewReader creates a Reader over the given command readers.
func NewReader(dbs ...*command.CommandReader) *Reader {
	return &Reader{Databases: dbs}
}

// budgetUnbounded marks a Read call with no fixed byte budget (the last,
// open-ended script in an archive, spec.md §4.7 step 4).
const budgetUnbounded = -1

// Read decodes one script starting at r's current position, bounded to
// budget bytes if budget >= 0. Each database's attempt runs against a
// bytestream.Sub view clipped to exactly [r.Pos(), r.Pos()+budget) (or to the
// rest of the buffer when budget is unbounded), so a maximal text run or
// trailing ByteElement fallback can never read past the script's own region
// into the next script (spec.md §4.7 step 4). On success, r is advanced by
// however many bytes the winning attempt actually consumed.
func (rd *Reader) Read(r *bytestream.Reader, budget int) (*Script, error) {
	if len(rd.Databases) == 0 {
		return nil, arccore.ErrNoMatch
	}
	start := r.Pos()

	end := len(r.Bytes())
	if budget != budgetUnbounded {
		end = start + budget
	}

	for i, cr := range rd.Databases {
		sub, err := r.Sub(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: script byte budget [%d,%d) out of bounds", arccore.ErrMalformed, start, end)
		}
		allowBytes := i == len(rd.Databases)-1
		s, byteCount := readWithDatabase(sub, cr)
		if byteCount == 0 || allowBytes {
			if err := r.SeekAbs(start + sub.Pos()); err != nil {
				return nil, err
			}
			return s, nil
		}
		// This database's attempt fell back to raw bytes and it isn't the
		// last one to try: discard and retry with the next database.
	}
	// Unreachable: the last iteration always satisfies allowBytes.
	return nil, arccore.ErrNoMatch
}

// readWithDatabase runs the element loop from spec.md §4.6 for a single
// database, returning the script and how many ByteElements it contained. r
// is already bounded to the script's own region (see Read), so exhausting r
// is exhausting the script's budget, not just the underlying file.
func readWithDatabase(r *bytestream.Reader, cr *command.CommandReader) (*Script, int) {
	s := New(cr.DB.Name)
	byteCount := 0

	for {
		if s.Closed() {
			break
		}
		if r.Len() == 0 {
			break
		}

		if cmd, err := cr.Read(r); err == nil {
			s.Append(cmd)
			continue
		}

		if text, ok := readMaximalTextRun(r, cr.DB.Encoding); ok {
			s.Append(TextElement{Text: text})
			continue
		}

		b, err := r.ReadByte()
		if err != nil {
			break
		}
		s.Append(ByteElement{Value: b})
		byteCount++
	}

	return s, byteCount
}

// readMaximalTextRun decodes as many consecutive, fully valid code points
// as possible starting at r's current position, using the conservative
// (never-partial) mode, per spec.md §4.6 "maximal text run using the
// conservative text decoder".
func readMaximalTextRun(r *bytestream.Reader, enc textEncoding) (string, bool) {
	var out []byte
	for {
		buf := r.Bytes()[r.Pos():]
		if len(buf) == 0 {
			break
		}
		chars, used, ok := enc.TryReadCodePoint(buf)
		if !ok {
			break
		}
		_ = chars
		out = append(out, buf[:used]...)
		for i := 0; i < used; i++ {
			r.ReadByte()
		}
	}
	if len(out) == 0 {
		return "", false
	}
	return string(out), true
}

// textEncoding is the subset of arcenc.Encoding this file needs; kept local
// to avoid an explicit arcenc import purely for the type name.
type textEncoding interface {
	TryReadCodePoint(buf []byte) (chars, bytesUsed int, ok bool)
}
