// This file implements the text archive reader, spec.md §4.7 steps 1-5.

package archive

import (
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/bytestream"
	"github.com/textpetgo/msgarc/script"
)

// ErrNoArchive indicates data does not begin with a valid pointer table
// (spec.md §4.7 steps 1-3).
var ErrNoArchive = fmt.Errorf("%w: not a text archive (bad pointer table)", arccore.ErrMalformed)

// ReadOptions configures TextArchive decoding.
type ReadOptions struct {
	// Identifier is assigned to the returned archive.
	Identifier string

	// FixedSize is the caller-provided total archive length, used for the
	// last script's byte budget. 0 means "unknown" (the last script is
	// read until a script-ending element, spec.md §4.7 step 4).
	FixedSize int

	// IgnorePointerSyncErrors repositions to the declared offset instead of
	// failing when the stream isn't already there (spec.md §4.7 step 5,
	// §7 loose-mode toggle).
	IgnorePointerSyncErrors bool
}

// Read decodes a TextArchive from data using rd to decode each script.
func Read(data []byte, rd *script.Reader, opts ReadOptions) (*TextArchive, error) {
	r := bytestream.New(data)

	offsets, scriptCount, err := readPointerTable(r)
	if err != nil {
		return nil, err
	}

	a := &TextArchive{Identifier: opts.Identifier}
	if a.Identifier == "" {
		a.Identifier = randomIdentifier()
	}

	preferredDB := ""
	if len(rd.Databases) > 0 {
		preferredDB = rd.Databases[0].DB.Name
	}

	for i := 0; i < scriptCount; i++ {
		budget := -1
		last := i == scriptCount-1
		if !last {
			budget = offsets[i+1] - offsets[i]
			if budget < 0 {
				return nil, fmt.Errorf("%w: script %d has negative byte budget", arccore.ErrMalformed, i)
			}
		} else if opts.FixedSize > 0 {
			budget = opts.FixedSize - offsets[i]
			if budget < 0 {
				return nil, fmt.Errorf("%w: last script's budget is negative", arccore.ErrMalformed)
			}
		}

		if r.Pos() != offsets[i] {
			if !opts.IgnorePointerSyncErrors {
				return nil, fmt.Errorf("%w: script %d declared at offset %d but stream is at %d",
					arccore.ErrMalformed, i, offsets[i], r.Pos())
			}
			if err := r.SeekAbs(offsets[i]); err != nil {
				return nil, fmt.Errorf("%w: script %d offset %d out of bounds", arccore.ErrMalformed, i, offsets[i])
			}
		}

		s, err := rd.Read(r, budget)
		if err != nil {
			if last && budget < 0 {
				s = script.New(preferredDB)
			} else {
				return nil, fmt.Errorf("script %d: %w", i, err)
			}
		}
		a.Scripts = append(a.Scripts, s)
	}

	return a, nil
}

// readPointerTable implements spec.md §4.7 steps 1-3.
func readPointerTable(r *bytestream.Reader) (offsets []int, scriptCount int, err error) {
	firstOff := -1
	bytesRead := 0

	for firstOff < 0 || bytesRead != firstOff {
		v, rerr := r.ReadUint16()
		if rerr != nil {
			return nil, 0, ErrNoArchive
		}
		offsets = append(offsets, int(v))
		bytesRead += 2
		if firstOff < 0 || int(v) < firstOff {
			firstOff = int(v)
		}
	}

	if firstOff == 0 || firstOff%2 != 0 {
		return nil, 0, ErrNoArchive
	}
	scriptCount = firstOff / 2
	if offsets[0] != 2*scriptCount {
		return nil, 0, ErrNoArchive
	}
	return offsets, scriptCount, nil
}
