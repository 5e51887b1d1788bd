// This file implements the container read path, spec.md §4.8 "Read".

package container

import (
	"bytes"
	"fmt"

	"github.com/textpetgo/msgarc/arccore"
	"github.com/textpetgo/msgarc/archive"
	"github.com/textpetgo/msgarc/script"
)

// Options configures container reads and writes.
type Options struct {
	// Compressor is used for Compressed entries. Defaults to LZ77{} when nil.
	Compressor Compressor

	// UpdateFileIndex, on Write, mutates the entry's Offset/Size and the
	// archive's Identifier to reflect where the archive actually landed
	// (spec.md §4.8 "If update_file_index, ...").
	UpdateFileIndex bool

	// IgnorePointerSyncErrors is forwarded to the archive reader's loose
	// pointer-table tolerance (spec.md §4.7 step 5).
	IgnorePointerSyncErrors bool
}

func (o Options) compressor() Compressor {
	if o.Compressor != nil {
		return o.Compressor
	}
	return LZ77{}
}

// ReadArchive decodes the text archive described by entry out of file,
// per spec.md §4.8 "Read".
func ReadArchive(file []byte, entry *FileIndexEntry, rd *script.Reader, opts Options) (*archive.TextArchive, error) {
	if int(entry.Offset) > len(file) {
		return nil, fmt.Errorf("%w: entry offset 0x%X beyond end of file (len %d)", arccore.ErrMalformed, entry.Offset, len(file))
	}

	var payload []byte
	var fixedSize int

	if entry.Compressed {
		r := bytes.NewReader(file[entry.Offset:])
		decoded, err := opts.compressor().Decompress(r, int(entry.Size))
		if err != nil {
			return nil, fmt.Errorf("container: decompressing entry at 0x%X: %w", entry.Offset, err)
		}
		payload = decoded
		fixedSize = len(decoded)
	} else {
		end := len(file)
		if entry.Size > 0 {
			end = int(entry.Offset) + int(entry.Size)
			if end > len(file) {
				return nil, fmt.Errorf("%w: entry at 0x%X claims size 0x%X past end of file", arccore.ErrMalformed, entry.Offset, entry.Size)
			}
			fixedSize = int(entry.Size)
		}
		payload = file[entry.Offset:end]
	}

	if entry.SizeHeader {
		if len(payload) < 4 {
			return nil, fmt.Errorf("%w: entry at 0x%X too short for a size header", arccore.ErrMalformed, entry.Offset)
		}
		declared := int(payload[1]) | int(payload[2])<<8 | int(payload[3])<<16
		payload = payload[4:]
		if fixedSize > 0 {
			fixedSize -= 4
		} else {
			fixedSize = declared - 4
		}
	}

	identifier := fmt.Sprintf("%06X", entry.Offset)
	a, err := archive.Read(payload, rd, archive.ReadOptions{
		Identifier:              identifier,
		FixedSize:               fixedSize,
		IgnorePointerSyncErrors: opts.IgnorePointerSyncErrors,
	})
	if err != nil {
		return nil, fmt.Errorf("container: entry at 0x%X: %w", entry.Offset, err)
	}
	return a, nil
}
