// This file implements the container write path, spec.md §4.8 "Write".

package container

import (
	"encoding/binary"
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/archive"
	"github.com/textpetgo/msgarc/command"
)

// padByte fills expansion gaps, per spec.md §4.8 "Expand the file with 0xFF
// padding up to the chosen offset".
const padByte = 0xFF

// alignUp rounds v up to the next multiple of n.
func alignUp(v, n uint32) uint32 {
	if v%n == 0 {
		return v
	}
	return v + (n - v%n)
}

// WriteResult reports where an archive ended up after WriteArchive, and
// what it occupies there.
type WriteResult struct {
	Offset uint32
	Size   uint32
}

// WriteArchive encodes a and splices it into file at the position dictated
// by entry (reuse) or freeSpaceOffset (reallocation), per spec.md §4.8
// "Write". It returns the (possibly grown) file, where the archive landed,
// and the free-space offset the next allocation should start from.
//
// On UpdateFileIndex, entry.Offset/Size and a.Identifier are mutated to
// reflect the final placement; per spec.md §5 "failures during encode/decode
// must not partially mutate external state", this only happens after the
// payload write has fully succeeded.
func WriteArchive(file []byte, entry *FileIndexEntry, a *archive.TextArchive, cw *command.CommandWriter, freeSpaceOffset uint32, opts Options) ([]byte, WriteResult, uint32, error) {
	raw, err := archive.Write(a, cw)
	if err != nil {
		return nil, WriteResult{}, freeSpaceOffset, fmt.Errorf("container: encoding archive %q: %w", a.Identifier, err)
	}

	payload := raw
	if entry.SizeHeader {
		if len(raw) > 0xFFFFFF-4 {
			return nil, WriteResult{}, freeSpaceOffset, fmt.Errorf("%w: size-header length 0x%X exceeds 24 bits", arccore.ErrMalformed, len(raw)+4)
		}
		total := len(raw) + 4
		header := []byte{0, byte(total), byte(total >> 8), byte(total >> 16)}
		payload = append(header, raw...)
	}

	if entry.Compressed {
		payload = opts.compressor().Compress(payload)
	}

	newOffset := entry.Offset
	if uint32(len(payload)) > entry.Size {
		newOffset = alignUp(freeSpaceOffset, 4)
		freeSpaceOffset = newOffset + uint32(len(payload))
	}

	needed := int(newOffset) + len(payload)
	if needed > len(file) {
		grown := make([]byte, needed)
		copy(grown, file)
		for i := len(file); i < needed; i++ {
			grown[i] = padByte
		}
		file = grown
	}
	copy(file[newOffset:], payload)

	for _, ptrOffset := range entry.SortedPointers() {
		if err := fixupPointer(file, ptrOffset, newOffset); err != nil {
			return nil, WriteResult{}, freeSpaceOffset, err
		}
	}

	result := WriteResult{Offset: newOffset, Size: uint32(len(payload))}

	if opts.UpdateFileIndex {
		entry.Offset = newOffset
		entry.Size = result.Size
		a.Identifier = fmt.Sprintf("%06X", newOffset)
	}

	return file, result, freeSpaceOffset, nil
}

// fixupPointer rewrites the 32-bit little-endian word at ptrOffset,
// preserving its top 7 bits and setting the low 25 bits to newOffset, per
// spec.md §6 "Pointer field layout" and §8 scenario C.
func fixupPointer(file []byte, ptrOffset, newOffset uint32) error {
	if int(ptrOffset)+4 > len(file) {
		return fmt.Errorf("%w: pointer fix-up offset 0x%X out of bounds", arccore.ErrMalformed, ptrOffset)
	}
	old := binary.LittleEndian.Uint32(file[ptrOffset:])
	updated := (old &^ 0x01FFFFFF) | (newOffset & 0x01FFFFFF)
	binary.LittleEndian.PutUint32(file[ptrOffset:], updated)
	return nil
}

// ScanPointers searches file at 4-byte alignment for 32-bit little-endian
// words whose low 25 bits equal entry.Offset, recording their positions
// into entry.Pointers (spec.md §4.8 "Pointer search (optional)"),
// generalizing repparser/slicereader.go's single-section linear buffer walk
// to a whole-file 4-byte-aligned scan.
func ScanPointers(file []byte, entry *FileIndexEntry) {
	want := entry.Offset & 0x01FFFFFF
	for off := 0; off+4 <= len(file); off += 4 {
		v := binary.LittleEndian.Uint32(file[off:])
		if v&0x01FFFFFF == want {
			entry.AddPointer(uint32(off))
		}
	}
}
