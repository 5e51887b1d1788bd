// Package container implements the file codec (component C9, spec.md §4.8):
// reading/writing text archives inside a larger binary file via a File
// Index, including compression, pointer fix-up and free-space allocation.
package container

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/textpetgo/msgarc/arccore"
)

// FileIndexEntry describes where one text archive lives inside a file,
// spec.md §3 "FileIndexEntry".
type FileIndexEntry struct {
	// Offset is the archive's byte offset within the file.
	Offset uint32

	// Size is the archive's encoded byte size. 0 means "unknown": the
	// reader has no upper bound and must read until a script-ending
	// element (spec.md §4.7 step 4), and the writer always allocates new
	// space rather than attempting reuse (spec.md §4.8 "Placement").
	Size uint32

	// Compressed marks this archive as LZ77-compressed on disk.
	Compressed bool

	// SizeHeader marks a 4-byte, 24-bit-length prefix before the payload
	// (spec.md §6 "Size header prefix").
	SizeHeader bool

	// Pointers is the deduplicated set of file offsets holding a 32-bit
	// pointer to this archive, fixed up on relocation (spec.md §4.8
	// "Pointer fix-up").
	Pointers map[uint32]struct{}
}

// NewFileIndexEntry creates an entry with an empty pointer set.
func NewFileIndexEntry(offset, size uint32, compressed, sizeHeader bool) *FileIndexEntry {
	return &FileIndexEntry{
		Offset:     offset,
		Size:       size,
		Compressed: compressed,
		SizeHeader: sizeHeader,
		Pointers:   make(map[uint32]struct{}),
	}
}

// End returns the exclusive end of this entry's byte range.
func (e *FileIndexEntry) End() uint32 { return e.Offset + e.Size }

// Overlaps reports whether e and o's half-open byte ranges intersect,
// spec.md §3 "Overlap test" / §8 property 4.
func (e *FileIndexEntry) Overlaps(o *FileIndexEntry) bool {
	maxStart := e.Offset
	if o.Offset > maxStart {
		maxStart = o.Offset
	}
	minEnd := e.End()
	if o.End() < minEnd {
		minEnd = o.End()
	}
	return maxStart < minEnd
}

// AddPointer records a pointer-field location, deduplicated.
func (e *FileIndexEntry) AddPointer(offset uint32) {
	if e.Pointers == nil {
		e.Pointers = make(map[uint32]struct{})
	}
	e.Pointers[offset] = struct{}{}
}

// SortedPointers returns e.Pointers in ascending order, for deterministic
// output (iterating a Go map directly would not be).
func (e *FileIndexEntry) SortedPointers() []uint32 {
	out := make([]uint32, 0, len(e.Pointers))
	for p := range e.Pointers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FileIndex is a keyed set of FileIndexEntry values, unique by Offset,
// spec.md §3 "FileIndex".
type FileIndex struct {
	entries map[uint32]*FileIndexEntry
}

// NewFileIndex creates an empty FileIndex.
func NewFileIndex() *FileIndex {
	return &FileIndex{entries: make(map[uint32]*FileIndexEntry)}
}

// Add registers e, keyed by e.Offset. An existing entry at the same offset
// is replaced.
func (fi *FileIndex) Add(e *FileIndexEntry) {
	fi.entries[e.Offset] = e
}

// Get returns the entry at offset, if any.
func (fi *FileIndex) Get(offset uint32) (*FileIndexEntry, bool) {
	e, ok := fi.entries[offset]
	return e, ok
}

// Lookup resolves a text-archive identifier (a hexadecimal offset string,
// spec.md §3 "Lookup by text-archive identifier") to its entry.
func (fi *FileIndex) Lookup(identifier string) (*FileIndexEntry, bool) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(identifier), "0x"), 16, 32)
	if err != nil {
		return nil, false
	}
	return fi.Get(uint32(v))
}

// Entries returns every registered entry, sorted by Offset for
// deterministic iteration (serialization, overlap scans, ...).
func (fi *FileIndex) Entries() []*FileIndexEntry {
	out := make([]*FileIndexEntry, 0, len(fi.entries))
	for _, e := range fi.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// CheckOverlaps reports the first pair of distinct entries whose ranges
// overlap (spec.md §8 property 4), or ok=false if none do. Entries with
// Size==0 ("unknown") are skipped, since an unknown-sized entry cannot be
// meaningfully checked for overlap.
func (fi *FileIndex) CheckOverlaps() (a, b *FileIndexEntry, ok bool) {
	entries := fi.Entries()
	for i := range entries {
		if entries[i].Size == 0 {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Size == 0 {
				continue
			}
			if entries[i].Overlaps(entries[j]) {
				return entries[i], entries[j], true
			}
		}
	}
	return nil, nil, false
}

// ErrInvalidFileIndexLine is returned by Parse for a non-blank,
// non-comment line that doesn't match the file-index text format.
var ErrInvalidFileIndexLine = fmt.Errorf("%w: invalid file-index line", arccore.ErrMalformed)
