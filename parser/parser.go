// Package parser is the top-level orchestration layer: it mirrors
// repparser's file-vs-in-memory entry points and panic-recovery idiom
// (spec.md §1 "command-line frontend ... treated as collaborators", §5),
// but decodes a whole file's worth of text archives via a FileIndex instead
// of a single section-delimited replay.
package parser

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/textpetgo/msgarc/archive"
	"github.com/textpetgo/msgarc/container"
	"github.com/textpetgo/msgarc/script"
)

// ErrParsing indicates an unexpected error occurred while decoding, which
// may be due to a corrupt/invalid file or an implementation bug; mirrors
// repparser.ErrParsing.
var ErrParsing = errors.New("msgarc: parsing")

// Config controls how strict to be about pointer-table desynchronization
// and which container options to use, mirroring repparser.Config's role (a
// plain value, no flags/env framework at the library layer). It does not
// select entries: Parse decodes every entry of the FileIndex.
type Config struct {
	// IgnorePointerSyncErrors forwards to archive.ReadOptions
	// (spec.md §4.7 step 5, §7 loose-mode toggle).
	IgnorePointerSyncErrors bool

	// ContainerOptions forwards to container.ReadArchive (compression,
	// custom Compressor).
	ContainerOptions container.Options

	_ struct{} // To prevent unkeyed literals, as repparser.Config does.
}

// Result holds every archive decoded from a file, keyed by identifier
// (the 6-digit uppercase hex offset container.ReadArchive assigns).
type Result struct {
	Archives map[string]*archive.TextArchive

	// Failed records entries that failed to decode, keyed the same way,
	// so a caller auditing a whole ROM can see partial results instead of
	// aborting the entire run on the first bad entry.
	Failed map[string]error
}

// ParseFile reads name from disk and parses every entry of fi.
func ParseFile(name string, fi *container.FileIndex, rd *script.Reader, cfg Config) (*Result, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrParsing, name, err)
	}
	return Parse(data, fi, rd, cfg)
}

// Parse decodes every entry of fi out of file.
func Parse(file []byte, fi *container.FileIndex, rd *script.Reader, cfg Config) (*Result, error) {
	return parseProtected(file, fi, rd, cfg)
}

// parseProtected calls parse(), but protects the call from panics (input is
// untrusted binary data; this also guards against implementation bugs),
// exactly as repparser.parseProtected does.
func parseProtected(file []byte, fi *container.FileIndex, rd *script.Reader, cfg Config) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("msgarc: parsing panic: %v", r)
			buf := make([]byte, 2000)
			n := runtime.Stack(buf, false)
			log.Printf("msgarc: stack: %s", buf[:n])
			err = ErrParsing
		}
	}()
	return parse(file, fi, rd, cfg)
}

func parse(file []byte, fi *container.FileIndex, rd *script.Reader, cfg Config) (*Result, error) {
	res := &Result{
		Archives: make(map[string]*archive.TextArchive),
		Failed:   make(map[string]error),
	}

	opts := cfg.ContainerOptions
	opts.IgnorePointerSyncErrors = cfg.IgnorePointerSyncErrors

	for _, entry := range fi.Entries() {
		id := fmt.Sprintf("%06X", entry.Offset)
		a, err := container.ReadArchive(file, entry, rd, opts)
		if err != nil {
			res.Failed[id] = err
			continue
		}
		res.Archives[id] = a
	}

	if len(res.Archives) == 0 && len(res.Failed) > 0 {
		return res, fmt.Errorf("%w: every entry failed to decode", ErrParsing)
	}
	return res, nil
}
